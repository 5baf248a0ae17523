package database

import (
	"context"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	dppCollectionName        = "dpps"
	courseCollectionName     = "courses"
	paidCourseCollectionName = "paidCourses"
)

var mongoClient *mongo.Client
var mongoDB *mongo.Database

// Connect initializes the MongoDB connection and ensures the indexes the
// list endpoints rely on.
func Connect() {
	mongoURI := os.Getenv("MONGODB_URI")
	dbName := os.Getenv("MONGODB_DATABASE")

	if mongoURI == "" || dbName == "" {
		log.Fatal("MONGODB_URI and MONGODB_DATABASE must be set in the environment variables or .env file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to create MongoDB client: %v", err)
	}

	// Ping the primary server to verify the connection.
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatalf("Failed to connect to MongoDB (ping failed): %v", err)
	}

	log.Println("Successfully connected and pinged MongoDB.")

	mongoClient = client
	mongoDB = client.Database(dbName)

	// Index creation runs in the background; failure is logged, not fatal.
	go ensureIndexes()
}

func ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		dppCollectionName: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "class", Value: 1}}},
		},
		courseCollectionName: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "price", Value: 1}}},
		},
		paidCourseCollectionName: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := mongoDB.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			log.Printf("Warning: could not create indexes on %s: %v", coll, err)
		}
	}
	log.Println("Collection indexes ensured.")
}

// DPPs returns the DPP collection.
func DPPs() *mongo.Collection {
	return mongoDB.Collection(dppCollectionName)
}

// Courses returns the unpaid course collection.
func Courses() *mongo.Collection {
	return mongoDB.Collection(courseCollectionName)
}

// PaidCourses returns the paid course collection.
func PaidCourses() *mongo.Collection {
	return mongoDB.Collection(paidCourseCollectionName)
}

// Disconnect closes the MongoDB connection. Call on graceful shutdown.
func Disconnect() {
	if mongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Fatalf("Error disconnecting MongoDB: %v", err)
		}
		log.Println("MongoDB connection closed.")
	}
}
