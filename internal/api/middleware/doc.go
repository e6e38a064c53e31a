// Package middleware provides the HTTP middleware in front of the API.
//
// Middleware stack includes:
//   - CORS: loopback and desktop-shell origins by default, or an explicit list
//   - RateLimit: Per-IP token bucket rate limiting with idle bucket cleanup
//
// Example Usage:
//
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
