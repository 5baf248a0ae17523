package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/prepdesk/prepdesk-backend/models"
	"github.com/prepdesk/prepdesk-backend/services"
	"github.com/prepdesk/prepdesk-backend/store"
)

// Context timeouts for database operations.
const (
	dbTimeout     = 5 * time.Second
	uploadTimeout = 30 * time.Second
)

// maxPDFSize caps DPP PDF uploads at 50MB.
const maxPDFSize = 50 << 20

// DPPHandler serves the Daily Practice Problem endpoints.
type DPPHandler struct {
	store store.DPPStore
}

func NewDPPHandler(s store.DPPStore) *DPPHandler {
	return &DPPHandler{store: s}
}

// readPDFFile pulls one optional PDF out of the multipart form. Returns
// (nil, nil) when the field is absent; a size or type violation is a
// client error. The page count is best-effort metadata.
func readPDFFile(c *gin.Context, field string) (*models.PDFFile, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, nil
	}
	if fileHeader.Size > maxPDFSize {
		return nil, fmt.Errorf("%s must not exceed 50MB", field)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded %s", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded %s", field)
	}

	// Sniff the content rather than trusting the client's Content-Type.
	if !mimetype.Detect(data).Is("application/pdf") {
		return nil, fmt.Errorf("%s must be a PDF file", field)
	}

	pages, err := services.CountPDFPages(data)
	if err != nil {
		log.Printf("Warning: could not count pages of %s '%s': %v", field, fileHeader.Filename, err)
	}

	return &models.PDFFile{
		Data:        data,
		ContentType: "application/pdf",
		FileName:    fileHeader.Filename,
		Size:        int64(len(data)),
		Pages:       pages,
	}, nil
}

func parseObjectID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		respondFail(c, http.StatusNotFound, "Record not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

func parsePositiveInt(raw string, def int64) int64 {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Create handles the multipart DPP create request. Validation happens
// before any persistence call, so a rejected request writes nothing.
func (h *DPPHandler) Create(c *gin.Context) {
	in, err := models.ParseDPPCreate(
		c.PostForm("title"),
		c.PostForm("class"),
		c.PostForm("category"),
		c.PostForm("questionActive"),
		c.PostForm("answerActive"),
	)
	if err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	questionPDF, err := readPDFFile(c, "questionPdf")
	if err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	if questionPDF == nil {
		respondFail(c, http.StatusBadRequest, "questionPdf file is required")
		return
	}
	answerPDF, err := readPDFFile(c, "answerPdf")
	if err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	dpp := &models.DPP{
		Title:          in.Title,
		Class:          in.Class,
		Category:       in.Category,
		QuestionPDF:    questionPDF,
		AnswerPDF:      answerPDF,
		QuestionActive: in.QuestionActive,
		AnswerActive:   in.AnswerActive,
	}

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	if err := h.store.Insert(ctx, dpp); err != nil {
		log.Printf("Error inserting DPP '%s': %v", dpp.Title, err)
		respondError(c, http.StatusInternalServerError, "Failed to create DPP", err)
		return
	}

	respondOK(c, http.StatusCreated, "DPP created successfully", dpp)
}

func (h *DPPHandler) list(c *gin.Context, f store.DPPFilter) {
	page := parsePositiveInt(c.Query("page"), 1)
	limit := parsePositiveInt(c.Query("limit"), 10)

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	dpps, total, err := h.store.List(ctx, f, page, limit)
	if err != nil {
		log.Printf("Error listing DPPs: %v", err)
		respondError(c, http.StatusInternalServerError, "Failed to retrieve DPPs", err)
		return
	}

	pages := (total + limit - 1) / limit
	respondPage(c, "", dpps, Pagination{Total: total, Page: page, Limit: limit, Pages: pages})
}

// List supports category, class and questionActive filters with
// page/limit pagination, newest first.
func (h *DPPHandler) List(c *gin.Context) {
	f := store.DPPFilter{
		Category: strings.ToLower(strings.TrimSpace(c.Query("category"))),
		Class:    strings.TrimSpace(c.Query("class")),
	}
	questionActive, err := models.ParseOptionalBoolField("questionActive", c.Query("questionActive"))
	if err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	f.QuestionActive = questionActive
	h.list(c, f)
}

// ListByCategory restricts the listing to publicly fetchable records.
func (h *DPPHandler) ListByCategory(c *gin.Context) {
	active := true
	h.list(c, store.DPPFilter{
		Category:       strings.ToLower(strings.TrimSpace(c.Param("category"))),
		QuestionActive: &active,
	})
}

// ListByClass restricts the listing to publicly fetchable records.
func (h *DPPHandler) ListByClass(c *gin.Context) {
	active := true
	h.list(c, store.DPPFilter{
		Class:          strings.TrimSpace(c.Param("class")),
		QuestionActive: &active,
	})
}

func (h *DPPHandler) Get(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	dpp, err := h.store.Get(ctx, id)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "DPP not found")
		return
	}
	if err != nil {
		log.Printf("Error finding DPP %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to retrieve DPP", err)
		return
	}
	respondOK(c, http.StatusOK, "", dpp)
}

// servePDF streams a stored binary, gated on its active flag.
func (h *DPPHandler) servePDF(c *gin.Context, pick func(*models.DPP) (*models.PDFFile, bool)) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	dpp, err := h.store.GetFull(ctx, id)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "DPP not found")
		return
	}
	if err != nil {
		log.Printf("Error finding DPP %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to retrieve DPP", err)
		return
	}

	pdf, active := pick(dpp)
	if pdf == nil || len(pdf.Data) == 0 {
		respondFail(c, http.StatusNotFound, "PDF not found")
		return
	}
	if !active {
		respondFail(c, http.StatusForbidden, "This PDF is not currently available")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", pdf.FileName))
	c.Data(http.StatusOK, pdf.ContentType, pdf.Data)
}

func (h *DPPHandler) GetQuestionPDF(c *gin.Context) {
	h.servePDF(c, func(d *models.DPP) (*models.PDFFile, bool) {
		return d.QuestionPDF, d.QuestionActive
	})
}

func (h *DPPHandler) GetAnswerPDF(c *gin.Context) {
	h.servePDF(c, func(d *models.DPP) (*models.PDFFile, bool) {
		return d.AnswerPDF, d.AnswerActive
	})
}

// Update applies a partial update: only supplied fields change, and a
// supplied file fully replaces the stored binary and metadata.
func (h *DPPHandler) Update(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	var u store.DPPUpdate
	if v, ok := c.GetPostForm("title"); ok {
		v = strings.TrimSpace(v)
		if v == "" {
			respondFail(c, http.StatusBadRequest, "title must not be empty")
			return
		}
		u.Title = &v
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
			respondFail(c, http.StatusBadRequest, "category must not be empty")
			return
		}
		u.Category = &v
	}

	var err error
	if u.QuestionActive, err = models.ParseOptionalBoolField("questionActive", c.PostForm("questionActive")); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	if u.AnswerActive, err = models.ParseOptionalBoolField("answerActive", c.PostForm("answerActive")); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	if u.QuestionPDF, err = readPDFFile(c, "questionPdf"); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}
	if u.AnswerPDF, err = readPDFFile(c, "answerPdf"); err != nil {
		respondFail(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), uploadTimeout)
	defer cancel()

	dpp, err := h.store.Update(ctx, id, u)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "DPP not found")
		return
	}
	if err != nil {
		log.Printf("Error updating DPP %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to update DPP", err)
		return
	}
	respondOK(c, http.StatusOK, "DPP updated successfully", dpp)
}

func (h *DPPHandler) Delete(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	err := h.store.Delete(ctx, id)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "DPP not found")
		return
	}
	if err != nil {
		log.Printf("Error deleting DPP %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to delete DPP", err)
		return
	}
	respondOK(c, http.StatusOK, "DPP deleted successfully", nil)
}

// IncrementViews bumps the view counter atomically and returns the
// updated record.
func (h *DPPHandler) IncrementViews(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	dpp, err := h.store.IncrementViews(ctx, id)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "DPP not found")
		return
	}
	if err != nil {
		log.Printf("Error incrementing views for DPP %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to increment view count", err)
		return
	}
	respondOK(c, http.StatusOK, "View count updated", dpp)
}

// ToggleAnswerActive flips the answer's active flag and returns the
// updated record.
func (h *DPPHandler) ToggleAnswerActive(c *gin.Context) {
	id, ok := parseObjectID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	dpp, err := h.store.Get(ctx, id)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "DPP not found")
		return
	}
	if err != nil {
		log.Printf("Error finding DPP %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to retrieve DPP", err)
		return
	}

	updated, err := h.store.SetAnswerActive(ctx, id, !dpp.AnswerActive)
	if err == store.ErrNotFound {
		respondFail(c, http.StatusNotFound, "DPP not found")
		return
	}
	if err != nil {
		log.Printf("Error toggling answerActive for DPP %s: %v", id.Hex(), err)
		respondError(c, http.StatusInternalServerError, "Failed to toggle answer status", err)
		return
	}
	respondOK(c, http.StatusOK, "Answer status updated", updated)
}
