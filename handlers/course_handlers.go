package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prepdesk/prepdesk-backend/models"
	"github.com/prepdesk/prepdesk-backend/services"
	"github.com/prepdesk/prepdesk-backend/store"
)

// maxThumbnailSize caps course thumbnail uploads at 5MB.
const maxThumbnailSize = 5 << 20

// CourseConfig parameterizes the controller for the paid and unpaid
// collections; the two share every contract except price policy.
type CourseConfig struct {
	ThumbnailDir  string
	PriceFloor    float64
	PriceRequired bool
}

func PaidCourseConfig() CourseConfig {
	return CourseConfig{ThumbnailDir: "paid-course-thumbnails", PriceFloor: 1, PriceRequired: true}
}

func UnpaidCourseConfig() CourseConfig {
	return CourseConfig{ThumbnailDir: "course-thumbnails", PriceFloor: 0, PriceRequired: false}
}

// CourseHandler serves one course collection.
type CourseHandler struct {
	store store.CourseStore
	files *services.FileStore
	cfg   CourseConfig
}

func NewCourseHandler(s store.CourseStore, files *services.FileStore, cfg CourseConfig) *CourseHandler {
	return &CourseHandler{store: s, files: files, cfg: cfg}
}

// readThumbnail pulls the optional thumbnail out of the multipart form.
// Returns (nil, nil, nil) when absent; size and type violations are
// client errors.
func readThumbnail(c *gin.Context) ([]byte, *models.ThumbnailMeta, error) {
	fileHeader, err := c.FormFile("courseThumbnail")
	if err != nil {
		return nil, nil, nil
	}
	if fileHeader.Size > maxThumbnailSize {
		return nil, nil, fmt.Errorf("courseThumbnail must not exceed 5MB")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open uploaded courseThumbnail")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read uploaded courseThumbnail")
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, nil, fmt.Errorf("courseThumbnail must be an image file")
	}

	meta := &models.ThumbnailMeta{
		FileName:    fileHeader.Filename,
		ContentType: mtype.String(),
		Size:        int64(len(data)),
		UploadedAt:  time.Now(),
	}
	return data, meta, nil
}

// Create handles the multipart course create request. The thumbnail is
// written to disk before the record insert; any failure after the file
// step removes the orphaned file (best-effort).
func (h *CourseHandler) Create(c *gin.Context) {
	courseTitle := strings.TrimSpace(c.PostForm("courseTitle"))
	tutor := strings.TrimSpace(c.PostForm("tutor"))
	class := strings.TrimSpace(c.PostForm("class"))
	if courseTitle == "" {
		respondFail(c, http.StatusBadRequest, "courseTitle is required")
		return
	}
	if tutor == "" {
		respondFail(c, http.StatusBadRequest, "tutor is required")
		return
	}
	if class == "" {
		respondFail(c, http.StatusBadRequest, "class is required")
		return
	}

	category := strings.ToLower(strings.TrimSpace(c.PostForm("category")))
	if category == "" {
		category = models.DefaultCategory
	}

	price, err := models.ParsePrice(c.PostForm("price"), h.cfg.PriceFloor, h.cfg.PriceRequired)
	if err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	rating, err := models.ParseRating(c.PostForm("rating"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	isActive, err := models.ParseBoolField("isActive", c.PostForm("isActive"), true)
	if err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	rawDetails := c.PostForm("courseDetails")
	if strings.TrimSpace(rawDetails) == "" {
		respondFail(c, http.StatusBadRequest, "courseDetails is required")
		return
	}
	details, err := models.ParseCourseDetails(rawDetails)
	if err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	var videoLinks []models.VideoLink
	if raw := c.PostForm("videoLinks"); strings.TrimSpace(raw) != "" {
		if videoLinks, err = models.ParseVideoLinks(raw); err != nil {
			respondFail(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	thumbData, thumbMeta, err := readThumbnail(c)
	if err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	if thumbData == nil {
		respondFail(c, http.StatusBadRequest, "courseThumbnail file is required")
		return
	}

	relPath, err := h.files.SaveBytes(h.cfg.ThumbnailDir, thumbMeta.FileName, thumbData)
	if err != nil {
		log.Printf("Error storing thumbnail for course '%s': %v", courseTitle, err)
		respondError(c, http.StatusInternalServerError, "Failed to store course thumbnail", err)
		return
	}

	course := &models.Course{
		CourseTitle:     courseTitle,
		Tutor:           tutor,
		Rating:          rating,
		Price:           price,
		Category:        category,
		Class:           class,
		CourseDetails:   details,
		VideoLinks:      videoLinks,
		CourseThumbnail: relPath,
		ThumbnailMeta:   thumbMeta,
		IsActive:        isActive,
	}

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	if err := h.store.Insert(ctx, course); err != nil {
		h.files.Remove(relPath)
		log.Printf("Error inserting course '%s': %v", courseTitle, err)
		respondError(c, http.StatusInternalServerError, "Failed to create course", err)
		return
	}

	respondOK(c, http.StatusCreated, "Course created successfully", course)
}

func (h *CourseHandler) respondList(c *gin.Context, courses []models.Course, err error) {
	if err != nil {
		log.Printf("Error listing courses: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to retrieve courses", err)
		return
	}
	respondOK(c, http.StatusOK, "", courses)
}

// List is a full scan, newest first.
func (h *CourseHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	courses, err := h.store.List(ctx)
	h.respondList(c, courses, err)
}

// ListByCategory is restricted to active courses.
func (h *CourseHandler) ListByCategory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	category := strings.ToLower(strings.TrimSpace(c.Param("category")))
	courses, err := h.store.ListByCategory(ctx, category)
	h.respondList(c, courses, err)
}

// ListFree lists active zero-price courses. Wired only for the unpaid
// collection.
func (h *CourseHandler) ListFree(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	courses, err := h.store.ListFree(ctx)
	h.respondList(c, courses, err)
}

func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	course, err := h.store.Get(ctx, id)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		log.Printf("Error finding course %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to retrieve course", err)
		return
	}
	respondOK(c, http.StatusOK, "", course)
}

// Update applies a partial update. A replacement thumbnail is written
// first; the old file is removed only after the record update succeeds,
// and the new file is cleaned up if anything fails in between.
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	existing, err := h.store.Get(ctx, id)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		log.Printf("Error finding course %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to retrieve course", err)
		return
	}

	var u store.CourseUpdate
	if v, ok := c.GetPostForm("courseTitle"); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			respondFail(c, http.StatusBadRequest, "courseTitle must not be empty")
			return
		}
		u.CourseTitle = &v
	}
	if v, ok := c.GetPostForm("tutor"); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			respondFail(c, http.StatusBadRequest, "tutor must not be empty")
			return
		}
		u.Tutor = &v
	}
	if v, ok := c.GetPostForm("class"); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			respondFail(c, http.StatusBadRequest, "class must not be empty")
			return
		}
		u.Class = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			v = models.DefaultCategory
		}
		u.Category = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := models.ParsePrice(v, h.cfg.PriceFloor, true)
		if err != nil {
			respondFail(c, http.StatusBadRequest, err.Error())
			return
		}
		u.Price = &price
	}
	if v, ok := c.GetPostForm("rating"); ok {
		rating, err := models.ParseRating(v)
		if err != nil {
			respondFail(c, http.StatusBadRequest, err.Error())
			return
		}
		u.Rating = &rating
	}
	if u.IsActive, err = models.ParseOptionalBoolField("isActive", c.PostForm("isActive")); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	if v, ok := c.GetPostForm("courseDetails"); ok {
		details, err := models.ParseCourseDetails(v)
		if err != nil {
			respondFail(c, http.StatusBadRequest, err.Error())
			return
		}
		u.CourseDetails = details
	}

	thumbData, thumbMeta, err := readThumbnail(c)
	if err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	if thumbData != nil {
		relPath, err := h.files.SaveBytes(h.cfg.ThumbnailDir, thumbMeta.FileName, thumbData)
		if err != nil {
			log.Printf("Error storing replacement thumbnail for course %s: %v", id.Hex(), err)
			respondError(c, http.StatusInternalServerError, "Failed to store course thumbnail", err)
			return
		}
		u.Thumbnail = &relPath
		u.ThumbnailMeta = thumbMeta
	}

	course, err := h.store.Update(ctx, id, u)
	if err != nil {
		if u.Thumbnail != nil {
			h.files.Remove(*u.Thumbnail)
		}
		if err == store.ErrNotFound {
			respondFail(c, http.StatusNotFound, "Course not found")
			return
		}
		log.Printf("Error updating course %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to update course", err)
		return
	}

	// Record now points at the new file; drop the old one.
	if u.Thumbnail != nil && existing.CourseThumbnail != "" {
		h.files.Remove(existing.CourseThumbnail)
	}

	respondOK(c, http.StatusOK, "Course updated successfully", course)
}

// Delete removes the thumbnail file, then the record. File removal
// failure is logged only.
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	course, err := h.store.Get(ctx, id)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		log.Printf("Error finding course %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to retrieve course", err)
		return
	}

	h.files.Remove(course.CourseThumbnail)

	if err := h.store.Delete(ctx, id); err != nil && err != store.ErrNotFound {
		log.Printf("Error deleting course %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to delete course", err)
		return
	}
	respondOK(c, http.StatusOK, "Course deleted successfully", nil)
}

type addVideoPayload struct {
	VideoTitle       string `json:"videoTitle" binding:"required"`
	VideoDescription string `json:"videoDescription"`
	VideoLink        string `json:"videoLink" binding:"required"`
	Duration         string `json:"duration"`
}

// AddVideo appends one entry to the course's video list; the entry's
// videoId is generated here.
func (h *CourseHandler) AddVideo(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var payload addVideoPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondFail(c, http.StatusBadRequest, "videoTitle and videoLink are required")
		return
	}

	video := models.VideoLink{
		VideoID:          uuid.NewString(),
		VideoTitle:       payload.VideoTitle,
		VideoDescription: payload.VideoDescription,
		VideoLink:        payload.VideoLink,
		Duration:         payload.Duration,
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	course, err := h.store.AddVideo(ctx, id, video)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "Course not found")
		return
	}
	if err != nil {
		log.Printf("Error adding video to course %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to add video", err)
		return
	}
	respondOK(c, http.StatusOK, "Video added successfully", course)
}

type updateVideoPayload struct {
	VideoTitle       *string `json:"videoTitle"`
	VideoDescription *string `json:"videoDescription"`
	VideoLink        *string `json:"videoLink"`
	Duration         *string `json:"duration"`
}

// UpdateVideo changes the supplied fields of one video entry, addressed
// by its videoId.
func (h *CourseHandler) UpdateVideo(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var payload updateVideoPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondFail(c, http.StatusBadRequest, "Invalid video payload")
		return
	}

	u := store.VideoUpdate{
		VideoTitle:       payload.VideoTitle,
		VideoDescription: payload.VideoDescription,
		VideoLink:        payload.VideoLink,
		Duration:         payload.Duration,
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	course, err := h.store.UpdateVideo(ctx, id, c.Param("videoId"), u)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "Course not found")
		return
	}
	if err == store.ErrVideoNotFound {
		respondFail(c, http.StatusNotFound, "Video not found")
		return
	}
	if err != nil {
		log.Printf("Error updating video on course %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to update video", err)
		return
	}
	respondOK(c, http.StatusOK, "Video updated successfully", course)
}

// RemoveVideo drops one video entry, addressed by its videoId.
func (h *CourseHandler) RemoveVideo(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	course, err := h.store.RemoveVideo(ctx, id, c.Param("videoId"))
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "Course not found")
		return
	}
	if err == store.ErrVideoNotFound {
		respondFail(c, http.StatusNotFound, "Video not found")
		return
	}
	if err != nil {
		log.Printf("Error removing video from course %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to remove video", err)
		return
	}
	respondOK(c, http.StatusOK, "Video removed successfully", course)
}

type enrollPayload struct {
	StudentID string `json:"studentId" binding:"required"`
	Mode      string `json:"mode"`
	Schedule  string `json:"schedule"`
}

// Enroll appends one student; a studentId already on the list is
// rejected and the enrollment list stays unchanged.
func (h *CourseHandler) Enroll(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var payload enrollPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondFail(c, http.StatusBadRequest, "studentId is required")
		return
	}

	enrollment := models.Enrollment{
		StudentID: payload.StudentID,
		Mode:      payload.Mode,
		Schedule:  payload.Schedule,
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	course, err := h.store.Enroll(ctx, id, enrollment)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "Course not found")
		return
	}
	if err == store.ErrDuplicateEnrollment {
		respondFail(c, http.StatusBadRequest, "Student is already enrolled in this course")
		return
	}
	if err != nil {
		log.Printf("Error enrolling student on course %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to enroll student", err)
		return
	}
	respondOK(c, http.StatusOK, "Student enrolled successfully", course)
}
