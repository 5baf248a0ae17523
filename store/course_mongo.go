package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/prepdesk/prepdesk-backend/models"
)

// MongoCourseStore is the MongoDB-backed CourseStore. The same type backs
// the paid and unpaid collections.
type MongoCourseStore struct {
	coll *mongo.Collection
}

func NewMongoCourseStore(coll *mongo.Collection) *MongoCourseStore {
	return &MongoCourseStore{coll: coll}
}

func (s *MongoCourseStore) Insert(ctx context.Context, c *models.Course) error {
	c.CreatedAt = time.Now()
	if c.VideoLinks == nil {
		c.VideoLinks = []models.VideoLink{}
	}
	if c.StudentsEnrolled == nil {
		c.StudentsEnrolled = []models.Enrollment{}
	}
	result, err := s.coll.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	c.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoCourseStore) find(ctx context.Context, filter bson.M) ([]models.Course, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var courses []models.Course
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

func (s *MongoCourseStore) List(ctx context.Context) ([]models.Course, error) {
	return s.find(ctx, bson.M{})
}

func (s *MongoCourseStore) ListByCategory(ctx context.Context, category string) ([]models.Course, error) {
	return s.find(ctx, bson.M{"category": category, "isActive": true})
}

func (s *MongoCourseStore) ListFree(ctx context.Context) ([]models.Course, error) {
	return s.find(ctx, bson.M{"price": 0, "isActive": true})
}

func (s *MongoCourseStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	var c models.Course
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoCourseStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Course, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var c models.Course
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoCourseStore) Update(ctx context.Context, id primitive.ObjectID, u CourseUpdate) (*models.Course, error) {
	set := bson.M{}
	if u.CourseTitle != nil {
		set["courseTitle"] = *u.CourseTitle
	}
	if u.Tutor != nil {
		set["tutor"] = *u.Tutor
	}
	if u.Class != nil {
		set["class"] = *u.Class
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Rating != nil {
		set["rating"] = *u.Rating
	}
	if u.Price != nil {
		set["price"] = *u.Price
	}
	if u.IsActive != nil {
		set["isActive"] = *u.IsActive
	}
	if u.CourseDetails != nil {
		set["courseDetails"] = u.CourseDetails
	}
	if u.Thumbnail != nil {
		set["courseThumbnail"] = *u.Thumbnail
		set["thumbnailMeta"] = u.ThumbnailMeta
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (s *MongoCourseStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoCourseStore) AddVideo(ctx context.Context, id primitive.ObjectID, v models.VideoLink) (*models.Course, error) {
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$push": bson.M{"videoLinks": v}})
}

func (s *MongoCourseStore) UpdateVideo(ctx context.Context, id primitive.ObjectID, videoID string, u VideoUpdate) (*models.Course, error) {
	set := bson.M{}
	if u.VideoTitle != nil {
		set["videoLinks.$.videoTitle"] = *u.VideoTitle
	}
	if u.VideoDescription != nil {
		set["videoLinks.$.videoDescription"] = *u.VideoDescription
	}
	if u.VideoLink != nil {
		set["videoLinks.$.videoLink"] = *u.VideoLink
	}
	if u.Duration != nil {
		set["videoLinks.$.duration"] = *u.Duration
	}

	filter := bson.M{"_id": id, "videoLinks.videoId": videoID}
	if len(set) == 0 {
		// Nothing to change; still distinguish a missing course from a
		// missing video entry.
		c, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, v := range c.VideoLinks {
			if v.VideoID == videoID {
				return c, nil
			}
		}
		return nil, ErrVideoNotFound
	}

	updated, err := s.findOneAndUpdate(ctx, filter, bson.M{"$set": set})
	if err == ErrNotFound {
		if _, gerr := s.Get(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, ErrVideoNotFound
	}
	return updated, err
}

func (s *MongoCourseStore) RemoveVideo(ctx context.Context, id primitive.ObjectID, videoID string) (*models.Course, error) {
	filter := bson.M{"_id": id, "videoLinks.videoId": videoID}
	update := bson.M{"$pull": bson.M{"videoLinks": bson.M{"videoId": videoID}}}

	updated, err := s.findOneAndUpdate(ctx, filter, update)
	if err == ErrNotFound {
		if _, gerr := s.Get(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, ErrVideoNotFound
	}
	return updated, err
}

func (s *MongoCourseStore) Enroll(ctx context.Context, id primitive.ObjectID, e models.Enrollment) (*models.Course, error) {
	e.EnrolledAt = time.Now()

	// Guarded push: matches only when the student is not already on the
	// list, so the append is atomic in the store.
	filter := bson.M{"_id": id, "studentsEnrolled.studentId": bson.M{"$ne": e.StudentID}}
	update := bson.M{"$push": bson.M{"studentsEnrolled": e}}

	updated, err := s.findOneAndUpdate(ctx, filter, update)
	if err == ErrNotFound {
		if _, gerr := s.Get(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, ErrDuplicateEnrollment
	}
	return updated, err
}
