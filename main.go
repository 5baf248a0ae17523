package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/prepdesk/prepdesk-backend/database"
	"github.com/prepdesk/prepdesk-backend/handlers"
	"github.com/prepdesk/prepdesk-backend/services"
	"github.com/prepdesk/prepdesk-backend/store"
)

func main() {
	// Load .env file first. Missing file is fine in production where real
	// env vars are set.
	if err := godotenv.Load(); err != nil {
		log.Printf("Info: No .env file found or error loading it: %v. Relying on system environment variables.", err)
	}

	database.Connect()

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	fileStore := services.NewFileStore(uploadDir)

	dppHandler := handlers.NewDPPHandler(store.NewMongoDPPStore(database.DPPs()))
	courseHandler := handlers.NewCourseHandler(store.NewMongoCourseStore(database.Courses()), fileStore, handlers.UnpaidCourseConfig())
	paidCourseHandler := handlers.NewCourseHandler(store.NewMongoCourseStore(database.PaidCourses()), fileStore, handlers.PaidCourseConfig())

	router := gin.Default() // Includes Logger and Recovery middleware

	// DPP PDFs are capped at 50MB; give the multipart parser headroom.
	router.MaxMultipartMemory = 64 << 20

	// --- CORS Middleware ---
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:3000",
		"http://localhost:3001",
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"}
	corsConfig.AllowCredentials = true

	router.Use(cors.New(corsConfig))

	// --- API Routes ---
	api := router.Group("/api/v1")
	{
		dpps := api.Group("/dpps")
		{
			dpps.POST("", dppHandler.Create)
			dpps.GET("", dppHandler.List)
			dpps.GET("/category/:category", dppHandler.ListByCategory)
			dpps.GET("/class/:class", dppHandler.ListByClass)
			dpps.GET("/:id", dppHandler.Get)
			dpps.GET("/:id/question", dppHandler.GetQuestionPDF)
			dpps.GET("/:id/answer", dppHandler.GetAnswerPDF)
			dpps.PUT("/:id", dppHandler.Update)
			dpps.DELETE("/:id", dppHandler.Delete)
			dpps.PATCH("/:id/views", dppHandler.IncrementViews)
			dpps.PATCH("/:id/toggle-answer", dppHandler.ToggleAnswerActive)
		}

		registerCourseRoutes(api.Group("/courses"), courseHandler)
		registerCourseRoutes(api.Group("/paid-courses"), paidCourseHandler)

		// Free listing only makes sense on the unpaid collection.
		api.GET("/courses/free", courseHandler.ListFree)
	}

	// --- Health Check Endpoint ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	// --- Start Server ---
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
		log.Printf("Defaulting to port %s", port)
	}

	log.Printf("Server starting and listening on http://localhost:%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

func registerCourseRoutes(rg *gin.RouterGroup, h *handlers.CourseHandler) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/category/:category", h.ListByCategory)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/videos", h.AddVideo)
	rg.PUT("/:id/videos/:videoId", h.UpdateVideo)
	rg.DELETE("/:id/videos/:videoId", h.RemoveVideo)
	rg.POST("/:id/enroll", h.Enroll)
}
