package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/hardik18-hk19/urbifix_backend/config"
	"github.com/hardik18-hk19/urbifix_backend/middleware"
	"github.com/hardik18-hk19/urbifix_backend/routes"
	"github.com/hardik18-hk19/urbifix_backend/websocket"
)

// CustomValidator is a custom validator for Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates the request body
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found")
	}

	// Initialize Firebase (optional; push delivery disabled without it)
	config.InitFirebase()

	// Connect to Redis (optional; presence falls back to in-memory)
	config.ConnectRedis()

	// Connect to database
	client := config.ConnectDB()

	// Presence backing store: Redis when available so presence survives
	// across instances, in-memory otherwise.
	var presence websocket.PresenceRegistry
	if redisClient := config.GetRedisClient(); redisClient != nil {
		presence = websocket.NewRedisPresenceRegistry(redisClient)
	} else {
		presence = websocket.NewMemoryPresenceRegistry()
	}

	// Create WebSocket hub
	wsHub := websocket.NewHub(presence)
	go wsHub.Run()

	// Create a new Echo instance
	e := echo.New()

	// Initialize custom validator
	customValidator := &CustomValidator{validator: validator.New()}
	e.Validator = customValidator

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()

	// Middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.Secure())
	e.Use(rateLimiter.RateLimit())

	e.Match([]string{"GET", "HEAD"}, "/", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":  "OK",
			"message": "Urbifix Backend is running",
			"version": "1.0",
		})
	})

	e.Match([]string{"GET", "HEAD"}, "/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status":   "healthy",
			"database": "connected",
		})
	})

	// Setup routes and services
	_, proposalService, notificationService := routes.SetupRoutes(e, client, wsHub)

	// Expire overdue proposals so clients that never re-read one still
	// see it close.
	go func() {
		for {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := proposalService.ExpireSweep(ctx); err != nil {
				log.Printf("proposal expiry sweep failed: %v", err)
			}
			cancel()
			time.Sleep(5 * time.Minute)
		}
	}()

	// Purge old read notifications daily.
	go func() {
		for {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if _, err := notificationService.Cleanup(ctx, 30); err != nil {
				log.Printf("notification cleanup failed: %v", err)
			}
			cancel()
			time.Sleep(24 * time.Hour)
		}
	}()

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	e.Logger.Fatal(e.Start(":" + port))
}
