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

// dppListProjection strips the inline PDF bytes from list and single-record
// reads; metadata stays.
var dppListProjection = bson.M{
	"questionPdf.data": 0,
	"answerPdf.data":   0,
}

// MongoDPPStore is the MongoDB-backed DPPStore.
type MongoDPPStore struct {
	coll *mongo.Collection
}

func NewMongoDPPStore(coll *mongo.Collection) *MongoDPPStore {
	return &MongoDPPStore{coll: coll}
}

func (s *MongoDPPStore) Insert(ctx context.Context, d *models.DPP) error {
	d.CreatedAt = time.Now()
	result, err := s.coll.InsertOne(ctx, d)
	if err != nil {
		return err
	}
	d.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (s *MongoDPPStore) List(ctx context.Context, f DPPFilter, page, limit int64) ([]models.DPP, int64, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Class != "" {
		filter["class"] = f.Class
	}
	if f.QuestionActive != nil {
		filter["questionActive"] = *f.QuestionActive
	}

	total, err := s.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetProjection(dppListProjection).
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var dpps []models.DPP
	if err := cursor.All(ctx, &dpps); err != nil {
		return nil, 0, err
	}
	if dpps == nil {
		dpps = []models.DPP{}
	}
	return dpps, total, nil
}

func (s *MongoDPPStore) Get(ctx context.Context, id primitive.ObjectID) (*models.DPP, error) {
	opts := options.FindOne().SetProjection(dppListProjection)
	var d models.DPP
	err := s.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MongoDPPStore) GetFull(ctx context.Context, id primitive.ObjectID) (*models.DPP, error) {
	var d models.DPP
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *MongoDPPStore) Update(ctx context.Context, id primitive.ObjectID, u DPPUpdate) (*models.DPP, error) {
	set := bson.M{}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Class != nil {
		set["class"] = *u.Class
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.QuestionActive != nil {
		set["questionActive"] = *u.QuestionActive
	}
	if u.AnswerActive != nil {
		set["answerActive"] = *u.AnswerActive
	}
	if u.QuestionPDF != nil {
		set["questionPdf"] = u.QuestionPDF
	}
	if u.AnswerPDF != nil {
		set["answerPdf"] = u.AnswerPDF
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(dppListProjection)

	var updated models.DPP
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MongoDPPStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoDPPStore) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.DPP, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(dppListProjection)

	var updated models.DPP
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"viewCount": 1}}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MongoDPPStore) SetAnswerActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.DPP, error) {
	return s.Update(ctx, id, DPPUpdate{AnswerActive: &active})
}
