package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New()

// DefaultCategory is applied when a course is created without a category.
const DefaultCategory = "jee"

// CourseDetails is the structured blob describing a course. Subtitle and
// description are mandatory; the rest is optional copy.
type CourseDetails struct {
	Subtitle     string `bson:"subtitle" json:"subtitle" validate:"required"`
	Description  string `bson:"description" json:"description" validate:"required"`
	Level        string `bson:"level,omitempty" json:"level,omitempty"`
	Language     string `bson:"language,omitempty" json:"language,omitempty"`
	Prerequisite string `bson:"prerequisite,omitempty" json:"prerequisite,omitempty"`
}

// VideoLink is one entry of a course's ordered video list. VideoID is
// generated server-side and addresses the entry in sub-resource operations.
type VideoLink struct {
	VideoID          string `bson:"videoId" json:"videoId"`
	VideoTitle       string `bson:"videoTitle" json:"videoTitle"`
	VideoDescription string `bson:"videoDescription,omitempty" json:"videoDescription,omitempty"`
	VideoLink        string `bson:"videoLink" json:"videoLink"`
	Duration         string `bson:"duration,omitempty" json:"duration,omitempty"`
}

// Enrollment records one student on a course. StudentID is unique within
// a course's enrollment list.
type Enrollment struct {
	StudentID  string    `bson:"studentId" json:"studentId"`
	Mode       string    `bson:"mode,omitempty" json:"mode,omitempty"`
	Schedule   string    `bson:"schedule,omitempty" json:"schedule,omitempty"`
	EnrolledAt time.Time `bson:"enrolledAt" json:"enrolledAt"`
}

// ThumbnailMeta describes the stored thumbnail file. The record keeps only
// the relative path; the bytes live on disk.
type ThumbnailMeta struct {
	FileName    string    `bson:"fileName" json:"fileName"`
	ContentType string    `bson:"contentType" json:"contentType"`
	Size        int64     `bson:"size" json:"size"`
	UploadedAt  time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

// Course is a catalog record, shared between the paid and unpaid
// collections. The two differ only in price policy.
type Course struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseTitle      string             `bson:"courseTitle" json:"courseTitle"`
	Tutor            string             `bson:"tutor" json:"tutor"`
	Rating           float64            `bson:"rating" json:"rating"`
	Price            float64            `bson:"price" json:"price"`
	Category         string             `bson:"category" json:"category"`
	Class            string             `bson:"class" json:"class"`
	CourseDetails    *CourseDetails     `bson:"courseDetails,omitempty" json:"courseDetails,omitempty"`
	VideoLinks       []VideoLink        `bson:"videoLinks" json:"videoLinks"`
	CourseThumbnail  string             `bson:"courseThumbnail" json:"courseThumbnail"`
	ThumbnailMeta    *ThumbnailMeta     `bson:"thumbnailMeta,omitempty" json:"thumbnailMeta,omitempty"`
	IsActive         bool               `bson:"isActive" json:"isActive"`
	StudentsEnrolled []Enrollment       `bson:"studentsEnrolled" json:"studentsEnrolled"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
}

// ParseCourseDetails decodes the JSON-encoded courseDetails form field and
// checks its required fields. A decode or validation failure is a client
// error.
func ParseCourseDetails(raw string) (*CourseDetails, error) {
	var d CourseDetails
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("courseDetails is not valid JSON: %v", err)
	}
	if err := validate.Struct(&d); err != nil {
		return nil, fmt.Errorf("courseDetails must contain subtitle and description")
	}
	return &d, nil
}

type videoLinkInput struct {
	VideoTitle       string `json:"videoTitle" validate:"required"`
	VideoDescription string `json:"videoDescription"`
	VideoLink        string `json:"videoLink" validate:"required"`
	Duration         string `json:"duration"`
}

// ParseVideoLinks decodes the JSON-encoded videoLinks form field and
// assigns each entry a fresh videoId.
func ParseVideoLinks(raw string) ([]VideoLink, error) {
	var inputs []videoLinkInput
	if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
		return nil, fmt.Errorf("videoLinks is not valid JSON: %v", err)
	}
	links := make([]VideoLink, 0, len(inputs))
	for i, in := range inputs {
		if err := validate.Struct(&in); err != nil {
			return nil, fmt.Errorf("videoLinks[%d] must contain videoTitle and videoLink", i)
		}
		links = append(links, VideoLink{
			VideoID:          uuid.NewString(),
			VideoTitle:       in.VideoTitle,
			VideoDescription: in.VideoDescription,
			VideoLink:        in.VideoLink,
			Duration:         in.Duration,
		})
	}
	return links, nil
}

// ParsePrice coerces the price form field and enforces the collection's
// floor (1 for paid courses, 0 for unpaid). required marks whether the
// field may be omitted, in which case the floor is returned.
func ParsePrice(raw string, floor float64, required bool) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return 0, fmt.Errorf("price is required")
		}
		return floor, nil
	}
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("price must be a number")
	}
	if p < floor {
		return 0, fmt.Errorf("price must be at least %g", floor)
	}
	return p, nil
}

// ParseRating coerces the optional rating form field.
func ParseRating(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	r, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("rating must be a number")
	}
	if r < 0 || r > 5 {
		return 0, fmt.Errorf("rating must be between 0 and 5")
	}
	return r, nil
}
