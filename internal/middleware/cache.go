package middleware

import "github.com/gin-gonic/gin"

// NoStore forbids any intermediary or browser caching. Applied to the
// routes that return participant answer data.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
