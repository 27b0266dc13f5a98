package controllers

import (
	"net/http"

	"fibbler/middleware"
	models "fibbler/models/postgres"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// authenticatedUser resolves the requesting account from the bearer token.
// Writes the error response itself, so callers just bail on !ok.
func authenticatedUser(c *gin.Context, db *gorm.DB) (*models.User, bool) {
	email, err := middleware.JWTDecoder(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or missing token"})
		return nil, false
	}

	var user models.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found: invalid email"})
		return nil, false
	}
	return &user, true
}
