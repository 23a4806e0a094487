package router

import (
	"log"
	"os"
	"time"

	"github.com/campusgate/admissions-api/database"
	"github.com/campusgate/admissions-api/handlers"
	application_handlers "github.com/campusgate/admissions-api/handlers/application"
	auth_handlers "github.com/campusgate/admissions-api/handlers/auth"
	course_handlers "github.com/campusgate/admissions-api/handlers/course"
	form_handlers "github.com/campusgate/admissions-api/handlers/form"
	user_handlers "github.com/campusgate/admissions-api/handlers/user"
	"github.com/campusgate/admissions-api/model"
	"github.com/campusgate/admissions-api/services"
	"github.com/campusgate/admissions-api/services/storage"
	"github.com/campusgate/admissions-api/utils/auth"
	"github.com/campusgate/admissions-api/utils/cache"
	"github.com/campusgate/admissions-api/utils/middleware"
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes composes the whole route table once at startup. Permissions live
// here, next to the paths they guard, instead of inside the handlers.
func SetupRoutes(app *fiber.App, store *database.GORMStore) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "admissions-api"
	}

	jwtManager := auth.NewJWTManager(auth.JWTConfig{
		Secret: jwtSecret,
		Issuer: jwtIssuer,
	})

	db := store.DB()

	// Redis backs brute force protection; the API runs without it
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// Object storage is optional; upload endpoints answer 503 without it
	var spaces *storage.SpacesClient
	if os.Getenv("SPACES_ACCESS_KEY") != "" {
		spaces, err = storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: os.Getenv("SPACES_ACCESS_KEY"),
			SecretKey: os.Getenv("SPACES_SECRET_KEY"),
			Bucket:    os.Getenv("SPACES_BUCKET"),
			Region:    os.Getenv("SPACES_REGION"),
			Endpoint:  os.Getenv("SPACES_ENDPOINT"),
			CDNURL:    os.Getenv("SPACES_CDN_URL"),
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. Uploads will be disabled.", err)
		}
	}

	emailService := services.NewEmailService()

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, emailService, bruteForceProtection)
	courseHandler := course_handlers.NewCourseHandler(db, spaces)
	formHandler := form_handlers.NewFormHandler(db)
	applicationHandler := application_handlers.NewApplicationHandler(db, spaces)
	userHandler := user_handlers.NewUserHandler(db)
	healthHandler := handlers.NewHealthHandler(store)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", healthHandler.Check)

	// Registration lives outside the /api prefix
	app.Post("/register", authHandler.Register)

	api := app.Group("/api")

	// Login with brute force protection
	if bruteForceProtection != nil {
		api.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		api.Post("/login", authHandler.Login)
	}

	// Profile and password management (protected)
	api.Get("/profile", authMiddleware.Required(), authHandler.GetProfile)
	app.Put("/change-password", authMiddleware.Required(), authHandler.ChangePassword)

	// Courses routes. Static segments are registered before :courseId so Fiber
	// does not swallow them as parameters.
	courses := api.Group("/courses")
	courses.Post("/newCourse", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin), courseHandler.ProvisionCourse)
	courses.Post("/verify-code", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleContentAdmin), courseHandler.VerifyCode)
	courses.Get("/", authMiddleware.Required(), courseHandler.ListCourses)
	courses.Get("/:courseId", courseHandler.GetCourse) // Public: applicants browse before signing up
	courses.Put("/:courseId", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin), courseHandler.UpdateCourse)
	courses.Delete("/:courseId", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin), courseHandler.DeleteCourse)
	courses.Post("/:courseId/add-description", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleContentAdmin), courseHandler.AddDescription)
	courses.Post("/:courseId/upload-image", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleContentAdmin), courseHandler.UploadImage)

	// Form structure routes
	forms := api.Group("/forms", authMiddleware.Required())
	forms.Post("/save-form-structure", authMiddleware.RequireRole(model.RoleContentAdmin), formHandler.SaveFormStructure)
	forms.Get("/get-form-structure/:courseId", formHandler.GetFormStructure)

	// Application routes
	api.Post("/applications", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleStudent), applicationHandler.SubmitApplication)
	api.Get("/applications", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin, model.RoleVerificationAdmin, model.RoleVerificationOfficer), applicationHandler.ListApplications)
	api.Get("/application/:id", authMiddleware.Required(), applicationHandler.GetApplication)
	api.Put("/application/:id/status", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin, model.RoleVerificationAdmin, model.RoleVerificationOfficer), applicationHandler.UpdateStatus)
	api.Delete("/application/:id", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleAdmin), applicationHandler.DeleteApplication)
	api.Post("/application/:id/documents", authMiddleware.Required(), authMiddleware.RequireRole(model.RoleStudent), applicationHandler.UploadDocument)

	// User management routes
	users := api.Group("/users", authMiddleware.Required())
	users.Post("/create", authMiddleware.RequireRole(model.RoleAdmin), userHandler.CreateUser)
	users.Get("/", authMiddleware.RequireRole(model.RoleAdmin), userHandler.ListUsers)
	users.Get("/:id", userHandler.GetUser)
	users.Delete("/:id", authMiddleware.RequireRole(model.RoleAdmin), userHandler.DeleteUser)
}
