package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/prepdesk/prepdesk-backend/models"
	"github.com/prepdesk/prepdesk-backend/store"
)

// pdfBytes carries the %PDF- magic so mimetype sniffs it as a PDF.
var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< >>\n%%EOF\n")

// pngBytes carries the PNG signature so mimetype sniffs it as an image.
var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 13, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1}

type testEnvelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
	Error      string          `json:"error"`
}

type testFile struct {
	field string
	name  string
	data  []byte
}

func multipartBody(t *testing.T, fields map[string]string, files []testFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file %s: %v", f.field, err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("write form file %s: %v", f.field, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func doMultipart(t *testing.T, router *gin.Engine, method, url string, fields map[string]string, files []testFile) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, decodeEnvelope(t, w)
}

func doJSON(t *testing.T, router *gin.Engine, method, url string, payload interface{}) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, decodeEnvelope(t, w)
}

func doGet(t *testing.T, router *gin.Engine, url string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, decodeEnvelope(t, w)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var e testEnvelope
	if ct := w.Header().Get("Content-Type"); ct != "" && !bytes.Contains([]byte(ct), []byte("application/json")) {
		return e
	}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &e)
	}
	return e
}

// memDPPStore is an in-memory DPPStore mirroring the Mongo
// implementation's semantics.
type memDPPStore struct {
	dpps []models.DPP
}

func (m *memDPPStore) Insert(_ context.Context, d *models.DPP) error {
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now()
	m.dpps = append(m.dpps, *d)
	return nil
}

func stripBinaries(d models.DPP) models.DPP {
	if d.QuestionPDF != nil {
		q := *d.QuestionPDF
		q.Data = nil
		d.QuestionPDF = &q
	}
	if d.AnswerPDF != nil {
		a := *d.AnswerPDF
		a.Data = nil
		d.AnswerPDF = &a
	}
	return d
}

func (m *memDPPStore) matches(d models.DPP, f store.DPPFilter) bool {
	if f.Category != "" && d.Category != f.Category {
		return false
	}
	if f.Class != "" && d.Class != f.Class {
		return false
	}
	if f.QuestionActive != nil && d.QuestionActive != *f.QuestionActive {
		return false
	}
	return true
}

func (m *memDPPStore) List(_ context.Context, f store.DPPFilter, page, limit int64) ([]models.DPP, int64, error) {
	var matched []models.DPP
	// Newest first: records are appended in insertion order.
	for i := len(m.dpps) - 1; i >= 0; i-- {
		if m.matches(m.dpps[i], f) {
			matched = append(matched, stripBinaries(m.dpps[i]))
		}
	}
	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= total {
		return []models.DPP{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *memDPPStore) idx(id primitive.ObjectID) int {
	for i := range m.dpps {
		if m.dpps[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *memDPPStore) Get(_ context.Context, id primitive.ObjectID) (*models.DPP, error) {
	i := m.idx(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	d := stripBinaries(m.dpps[i])
	return &d, nil
}

func (m *memDPPStore) GetFull(_ context.Context, id primitive.ObjectID) (*models.DPP, error) {
	i := m.idx(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	d := m.dpps[i]
	return &d, nil
}

func (m *memDPPStore) Update(_ context.Context, id primitive.ObjectID, u store.DPPUpdate) (*models.DPP, error) {
	i := m.idx(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	d := &m.dpps[i]
	if u.Title != nil {
		d.Title = *u.Title
	}
	if u.Class != nil {
		d.Class = *u.Class
	}
	if u.Category != nil {
		d.Category = *u.Category
	}
	if u.QuestionActive != nil {
		d.QuestionActive = *u.QuestionActive
	}
	if u.AnswerActive != nil {
		d.AnswerActive = *u.AnswerActive
	}
	if u.QuestionPDF != nil {
		d.QuestionPDF = u.QuestionPDF
	}
	if u.AnswerPDF != nil {
		d.AnswerPDF = u.AnswerPDF
	}
	out := stripBinaries(*d)
	return &out, nil
}

func (m *memDPPStore) Delete(_ context.Context, id primitive.ObjectID) error {
	i := m.idx(id)
	if i < 0 {
		return store.ErrNotFound
	}
	m.dpps = append(m.dpps[:i], m.dpps[i+1:]...)
	return nil
}

func (m *memDPPStore) IncrementViews(_ context.Context, id primitive.ObjectID) (*models.DPP, error) {
	i := m.idx(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	m.dpps[i].ViewCount++
	d := stripBinaries(m.dpps[i])
	return &d, nil
}

func (m *memDPPStore) SetAnswerActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.DPP, error) {
	return m.Update(ctx, id, store.DPPUpdate{AnswerActive: &active})
}

// memCourseStore is an in-memory CourseStore mirroring the Mongo
// implementation's semantics.
type memCourseStore struct {
	courses []models.Course
}

func (m *memCourseStore) Insert(_ context.Context, c *models.Course) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	if c.VideoLinks == nil {
		c.VideoLinks = []models.VideoLink{}
	}
	if c.StudentsEnrolled == nil {
		c.StudentsEnrolled = []models.Enrollment{}
	}
	m.courses = append(m.courses, *c)
	return nil
}

func (m *memCourseStore) idx(id primitive.ObjectID) int {
	for i := range m.courses {
		if m.courses[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *memCourseStore) List(_ context.Context) ([]models.Course, error) {
	out := []models.Course{}
	for i := len(m.courses) - 1; i >= 0; i-- {
		out = append(out, m.courses[i])
	}
	return out, nil
}

func (m *memCourseStore) ListByCategory(_ context.Context, category string) ([]models.Course, error) {
	out := []models.Course{}
	for i := len(m.courses) - 1; i >= 0; i-- {
		c := m.courses[i]
		if c.Category == category && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCourseStore) ListFree(_ context.Context) ([]models.Course, error) {
	out := []models.Course{}
	for i := len(m.courses) - 1; i >= 0; i-- {
		c := m.courses[i]
		if c.Price == 0 && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCourseStore) Get(_ context.Context, id primitive.ObjectID) (*models.Course, error) {
	i := m.idx(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	c := m.courses[i]
	return &c, nil
}

func (m *memCourseStore) Update(_ context.Context, id primitive.ObjectID, u store.CourseUpdate) (*models.Course, error) {
	i := m.idx(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	c := &m.courses[i]
	if u.CourseTitle != nil {
		c.CourseTitle = *u.CourseTitle
	}
	if u.Tutor != nil {
		c.Tutor = *u.Tutor
	}
	if u.Class != nil {
		c.Class = *u.Class
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.Rating != nil {
		c.Rating = *u.Rating
	}
	if u.Price != nil {
		c.Price = *u.Price
	}
	if u.IsActive != nil {
		c.IsActive = *u.IsActive
	}
	if u.CourseDetails != nil {
		c.CourseDetails = u.CourseDetails
	}
	if u.Thumbnail != nil {
		c.CourseThumbnail = *u.Thumbnail
		c.ThumbnailMeta = u.ThumbnailMeta
	}
	out := *c
	return &out, nil
}

func (m *memCourseStore) Delete(_ context.Context, id primitive.ObjectID) error {
	i := m.idx(id)
	if i < 0 {
		return store.ErrNotFound
	}
	m.courses = append(m.courses[:i], m.courses[i+1:]...)
	return nil
}

func (m *memCourseStore) AddVideo(_ context.Context, id primitive.ObjectID, v models.VideoLink) (*models.Course, error) {
	i := m.idx(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	m.courses[i].VideoLinks = append(m.courses[i].VideoLinks, v)
	c := m.courses[i]
	return &c, nil
}

func (m *memCourseStore) UpdateVideo(_ context.Context, id primitive.ObjectID, videoID string, u store.VideoUpdate) (*models.Course, error) {
	i := m.idx(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	for j := range m.courses[i].VideoLinks {
		v := &m.courses[i].VideoLinks[j]
		if v.VideoID != videoID {
			continue
		}
		if u.VideoTitle != nil {
			v.VideoTitle = *u.VideoTitle
		}
		if u.VideoDescription != nil {
			v.VideoDescription = *u.VideoDescription
		}
		if u.VideoLink != nil {
			v.VideoLink = *u.VideoLink
		}
		if u.Duration != nil {
			v.Duration = *u.Duration
		}
		c := m.courses[i]
		return &c, nil
	}
	return nil, store.ErrVideoNotFound
}

func (m *memCourseStore) RemoveVideo(_ context.Context, id primitive.ObjectID, videoID string) (*models.Course, error) {
	i := m.idx(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	links := m.courses[i].VideoLinks
	for j := range links {
		if links[j].VideoID == videoID {
			m.courses[i].VideoLinks = append(links[:j:j], links[j+1:]...)
			c := m.courses[i]
			return &c, nil
		}
	}
	return nil, store.ErrVideoNotFound
}

func (m *memCourseStore) Enroll(_ context.Context, id primitive.ObjectID, e models.Enrollment) (*models.Course, error) {
	i := m.idx(id)
	if i < 0 {
		return nil, store.ErrNotFound
	}
	for _, existing := range m.courses[i].StudentsEnrolled {
		if existing.StudentID == e.StudentID {
			return nil, store.ErrDuplicateEnrollment
		}
	}
	e.EnrolledAt = time.Now()
	m.courses[i].StudentsEnrolled = append(m.courses[i].StudentsEnrolled, e)
	c := m.courses[i]
	return &c, nil
}
