package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PDFFile holds an uploaded PDF stored inline in the document. The raw
// bytes are never serialized into JSON responses; only the binary-fetch
// endpoints stream them.
type PDFFile struct {
	Data        []byte `bson:"data" json:"-"`
	ContentType string `bson:"contentType" json:"contentType"`
	FileName    string `bson:"fileName" json:"fileName"`
	Size        int64  `bson:"size" json:"size"`
	Pages       int    `bson:"pages" json:"pages"`
}

// DPP is a Daily Practice Problem record. The question PDF is always
// present after creation; the answer PDF may be absent.
type DPP struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title          string             `bson:"title" json:"title"`
	Class          string             `bson:"class" json:"class"`
	Category       string             `bson:"category" json:"category"`
	QuestionPDF    *PDFFile           `bson:"questionPdf,omitempty" json:"questionPdf,omitempty"`
	AnswerPDF      *PDFFile           `bson:"answerPdf,omitempty" json:"answerPdf,omitempty"`
	QuestionActive bool               `bson:"questionActive" json:"questionActive"`
	AnswerActive   bool               `bson:"answerActive" json:"answerActive"`
	ViewCount      int64              `bson:"viewCount" json:"viewCount"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}

// DPPCreateInput is the typed form of a DPP create request, produced by
// ParseDPPCreate before anything touches the database.
type DPPCreateInput struct {
	Title          string
	Class          string
	Category       string
	QuestionActive bool
	AnswerActive   bool
}

// ParseDPPCreate validates the scalar multipart fields of a DPP create
// request. File fields are checked separately by the handler.
func ParseDPPCreate(title, class, category, questionActive, answerActive string) (*DPPCreateInput, error) {
	in := &DPPCreateInput{
		Title:    strings.TrimSpace(title),
		Class:    strings.TrimSpace(class),
		Category: strings.ToLower(strings.TrimSpace(category)),
	}
	if in.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if in.Class == "" {
		return nil, fmt.Errorf("class is required")
	}
	if in.Category == "" {
		return nil, fmt.Errorf("category is required")
	}

	var err error
	if in.QuestionActive, err = ParseBoolField("questionActive", questionActive, true); err != nil {
		return nil, err
	}
	if in.AnswerActive, err = ParseBoolField("answerActive", answerActive, false); err != nil {
		return nil, err
	}
	return in, nil
}

// ParseBoolField coerces the "true"/"false" strings that multipart forms
// carry into a real bool. An empty value falls back to def.
func ParseBoolField(name, raw string, def bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return def, nil
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%s must be true or false", name)
	}
}

// ParseOptionalBoolField is ParseBoolField for partial updates: an empty
// value means "not supplied" rather than a default.
func ParseOptionalBoolField(name, raw string) (*bool, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	v, err := ParseBoolField(name, raw, false)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
