package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/prepdesk/prepdesk-backend/models"
)

var (
	// ErrNotFound means no record matched the given identifier.
	ErrNotFound = errors.New("record not found")
	// ErrVideoNotFound means the course exists but carries no video entry
	// with the given videoId.
	ErrVideoNotFound = errors.New("video not found")
	// ErrDuplicateEnrollment means the student is already on the course's
	// enrollment list.
	ErrDuplicateEnrollment = errors.New("student already enrolled")
)

// DPPFilter narrows DPP listings. Zero values mean "no restriction".
type DPPFilter struct {
	Category       string
	Class          string
	QuestionActive *bool
}

// DPPUpdate carries the fields of a partial DPP update. Nil means "leave
// unchanged"; a non-nil PDF fully replaces the stored binary and metadata.
type DPPUpdate struct {
	Title          *string
	Class          *string
	Category       *string
	QuestionActive *bool
	AnswerActive   *bool
	QuestionPDF    *models.PDFFile
	AnswerPDF      *models.PDFFile
}

// IsZero reports whether the update would change nothing.
func (u DPPUpdate) IsZero() bool {
	return u.Title == nil && u.Class == nil && u.Category == nil &&
		u.QuestionActive == nil && u.AnswerActive == nil &&
		u.QuestionPDF == nil && u.AnswerPDF == nil
}

// DPPStore persists Daily Practice Problem records. Get and List return
// records without binary payloads; GetFull includes them.
type DPPStore interface {
	Insert(ctx context.Context, d *models.DPP) error
	List(ctx context.Context, f DPPFilter, page, limit int64) ([]models.DPP, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.DPP, error)
	GetFull(ctx context.Context, id primitive.ObjectID) (*models.DPP, error)
	Update(ctx context.Context, id primitive.ObjectID, u DPPUpdate) (*models.DPP, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.DPP, error)
	SetAnswerActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.DPP, error)
}

// CourseUpdate carries the fields of a partial course update. Thumbnail
// and ThumbnailMeta travel together when a replacement file was stored.
type CourseUpdate struct {
	CourseTitle   *string
	Tutor         *string
	Class         *string
	Category      *string
	Rating        *float64
	Price         *float64
	IsActive      *bool
	CourseDetails *models.CourseDetails
	Thumbnail     *string
	ThumbnailMeta *models.ThumbnailMeta
}

// IsZero reports whether the update would change nothing.
func (u CourseUpdate) IsZero() bool {
	return u.CourseTitle == nil && u.Tutor == nil && u.Class == nil &&
		u.Category == nil && u.Rating == nil && u.Price == nil &&
		u.IsActive == nil && u.CourseDetails == nil && u.Thumbnail == nil
}

// VideoUpdate carries the fields of a partial video-entry update.
type VideoUpdate struct {
	VideoTitle       *string
	VideoDescription *string
	VideoLink        *string
	Duration         *string
}

// IsZero reports whether the update would change nothing.
func (u VideoUpdate) IsZero() bool {
	return u.VideoTitle == nil && u.VideoDescription == nil &&
		u.VideoLink == nil && u.Duration == nil
}

// CourseStore persists course catalog records. One implementation serves
// both the paid and unpaid collections; the price policy lives in the
// handler layer.
type CourseStore interface {
	Insert(ctx context.Context, c *models.Course) error
	List(ctx context.Context) ([]models.Course, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Course, error)
	Update(ctx context.Context, id primitive.ObjectID, u CourseUpdate) (*models.Course, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddVideo(ctx context.Context, id primitive.ObjectID, v models.VideoLink) (*models.Course, error)
	UpdateVideo(ctx context.Context, id primitive.ObjectID, videoID string, u VideoUpdate) (*models.Course, error)
	RemoveVideo(ctx context.Context, id primitive.ObjectID, videoID string) (*models.Course, error)
	Enroll(ctx context.Context, id primitive.ObjectID, e models.Enrollment) (*models.Course, error)
	ListByCategory(ctx context.Context, category string) ([]models.Course, error)
	ListFree(ctx context.Context) ([]models.Course, error)
}
