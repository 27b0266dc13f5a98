package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"fibbler/middleware"
	models "fibbler/models/postgres"
	"fibbler/repository"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// @Summary Creates a new account
// @Description Registers a user with email, username and password, creating the associated game profile
// @Tags user
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Account email"
// @Param username formData string true "Public username"
// @Param password formData string true "Password"
// @Success 201 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Failure 500 {object} object{error=string}
// @Router /signup [post]
func SignUp(db *gorm.DB) gin.HandlerFunc {
	users := repository.NewUserRepository(db)
	return func(c *gin.Context) {
		email := strings.TrimSpace(c.PostForm("email"))
		username := strings.TrimSpace(c.PostForm("username"))
		password := c.PostForm("password")

		if email == "" || username == "" || password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}

		if _, err := users.FindByEmail(email); err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			return
		}
		if exists, err := users.UserExists(username); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking username"})
			return
		} else if exists {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already taken"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error hashing password"})
			return
		}

		user := models.User{
			Email:           email,
			ProfileUsername: username,
			PasswordHash:    string(hash),
			MemberSince:     time.Now().UTC(),
		}
		if err := users.CreateWithProfile(&user); err != nil {
			log.Printf("[SIGNUP-ERROR] Creating user %s: %v", username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating user"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "User created successfully"})
	}
}

// @Summary Logs a user in
// @Description Verifies credentials and returns a bearer token
// @Tags user
// @Accept x-www-form-urlencoded
// @Produce json
// @Param email formData string true "Account email"
// @Param password formData string true "Password"
// @Success 200 {object} object{token=string,username=string}
// @Failure 400 {object} object{error=string}
// @Failure 401 {object} object{error=string}
// @Router /login [post]
func Login(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		email := c.PostForm("email")
		password := c.PostForm("password")

		//Minimum input sanitizing
		if strings.Trim(email, " ") == "" || strings.Trim(password, " ") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Parameters can't be empty"})
			return
		}

		var user models.User
		if err := db.Where("email = ?", email).First(&user).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password!"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password!"})
			return
		}

		token, err := middleware.GenerateToken(user.Email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error generating token"})
			return
		}

		session.Set("Email", user.Email)
		if err := session.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No session!"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token":    token,
			"username": user.ProfileUsername,
		})
	}
}

// Logout from server, deletes the session associated with the Email key
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	user := session.Get("Email")
	// There is no session for the user, won't delete nothing
	if user == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session token"})
		return
	}

	session.Delete("Email")
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

// @Summary Returns the authenticated user's profile
// @Description Account data plus the aggregated game stats
// @Tags user
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {object} object{email=string,username=string,icon=integer,stats=object}
// @Failure 401 {object} object{error=string}
// @Router /auth/me [get]
// @Security ApiKeyAuth
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	users := repository.NewUserRepository(db)
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		profile, err := users.ProfileOf(user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching profile"})
			return
		}

		var stats models.ProfileStats
		if len(profile.UserStats) > 0 {
			if err := json.Unmarshal(profile.UserStats, &stats); err != nil {
				log.Printf("[PROFILE-ERROR] Decoding stats of %s: %v", user.ProfileUsername, err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"email":        user.Email,
			"username":     user.ProfileUsername,
			"full_name":    user.FullName,
			"member_since": user.MemberSince,
			"icon":         profile.UserIcon,
			"in_a_game":    profile.IsInAGame,
			"stats": gin.H{
				"games_played": stats.GamesPlayed,
				"games_won":    stats.GamesWon,
				"total_score":  stats.TotalScore,
			},
		})
	}
}

// @Summary Updates the user's profile icon
// @Tags user
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param icon formData integer true "Icon index"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Router /auth/icon [patch]
// @Security ApiKeyAuth
func UpdateIcon(db *gorm.DB) gin.HandlerFunc {
	users := repository.NewUserRepository(db)
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		var body struct {
			Icon int `form:"icon" json:"icon"`
		}
		if err := c.Bind(&body); err != nil || body.Icon < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid icon"})
			return
		}

		profile, err := users.ProfileOf(user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching profile"})
			return
		}
		profile.UserIcon = body.Icon
		if err := users.SaveProfile(profile); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving profile"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Icon updated"})
	}
}
