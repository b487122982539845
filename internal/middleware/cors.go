package middleware

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const defaultOrigins = "http://localhost:3000,http://localhost:8080,http://127.0.0.1:3000"

// CORSConfig allows the admin front-ends listed in ALLOWED_ORIGINS to call the API.
func CORSConfig() fiber.Handler {
	return cors.New(cors.Config{
		// Never "*": the dashboard origins are known.
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		AllowCredentials: false,
		ExposeHeaders:    "Content-Length,X-Request-ID",
		MaxAge:           3600,
	})
}

func allowedOrigins() string {
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		return v
	}
	return defaultOrigins
}
