package api

import (
	"finance_tracker/internal/config" // Application configuration
	"finance_tracker/internal/domain" // Importing domain models
	"finance_tracker/internal/utils"  // Utility functions
	"net/http"                        // HTTP status codes
	"time"                            // Token lifetime

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Request struct for registration
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// Request struct for profile updates, every field optional
type UpdateProfileRequest struct {
	Username    string  `json:"username"`    // New username, skipped when empty
	Email       string  `json:"email"`       // New email, skipped when empty
	Description string  `json:"description"` // New profile text, skipped when empty
	Income      float64 `json:"income"`      // New income target, skipped when zero
}

// Response struct for authentication
type AuthResponse struct {
	Message string `json:"message"` // Human-readable outcome
	Token   string `json:"token"`   // JWT token
}

// setAuthCookie stores the issued token as an HTTP-only cookie
func setAuthCookie(c *gin.Context, cfg *config.Config, token string) {
	maxAge := cfg.JWTTTLMinutes * 60 // Cookie lives as long as the token
	c.SetCookie(cfg.CookieName, token, maxAge, "/", "", cfg.IsProd, true)
}

// RegisterHandler creates a new user and logs them in
func RegisterHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username, email and password required"})
			return
		}
		// Reject duplicates up front for a friendly message
		var count int64
		db.Model(&domain.User{}).Where("username = ? OR email = ?", req.Username, req.Email).Count(&count)
		if count > 0 {
			// Duplicate username or email
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists"})
			return
		}
		// Hash the password and create the user
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			// If hashing fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user := domain.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
		// Attempt to create the user in the database
		if err := db.Create(&user).Error; err != nil {
			// A concurrent registration can still hit the unique constraint here
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists"})
			return
		}
		// Issue a token so registration doubles as login
		token, err := utils.GenerateJWT(user.ID, cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		setAuthCookie(c, cfg, token) // Set the HTTP-only auth cookie
		// Log the registration
		logrus.WithFields(logrus.Fields{
			"user_id":  user.ID,       // New user ID
			"username": user.Username, // New username
		}).Info("User registered")
		// Return the token in the response
		c.JSON(http.StatusCreated, AuthResponse{Message: "User registered successfully", Token: token})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(db *gorm.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing username, email or password"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.Where("username = ?", req.Username).First(&user).Error; err != nil {
			// If user not found, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Compare provided password with stored hash
		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		// Generate JWT token
		token, err := utils.GenerateJWT(user.ID, cfg.JWTSecret, time.Duration(cfg.JWTTTLMinutes)*time.Minute)
		if err != nil {
			// If token generation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		setAuthCookie(c, cfg, token) // Set the HTTP-only auth cookie
		// Return the token in the response
		c.JSON(http.StatusOK, AuthResponse{Message: "User logged in successfully", Token: token})
	}
}

// CheckAuthHandler returns the authenticated user's profile
func CheckAuthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// Token subject no longer exists
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Return the profile, PasswordHash is excluded by the model's json tag
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// LogoutHandler clears the auth cookie
func LogoutHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Expire the cookie immediately
		c.SetCookie(cfg.CookieName, "", -1, "/", "", cfg.IsProd, true)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// UpdateProfileHandler applies a partial update to the authenticated user.
// A field is only overwritten when the caller supplied a non-zero value, so a
// zero income or an empty description cannot be expressed through this route.
func UpdateProfileHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateProfileRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var user domain.User // Fetch user from database
		if err := db.First(&user, userID).Error; err != nil {
			// Authenticated subject without a row should not happen
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		// Apply only the supplied fields
		if req.Username != "" {
			user.Username = req.Username // New username
		}
		if req.Email != "" {
			user.Email = req.Email // New email
		}
		if req.Description != "" {
			user.Description = req.Description // New profile text
		}
		if req.Income != 0 {
			user.Income = req.Income // New income target
		}
		// Persist the update
		if err := db.Save(&user).Error; err != nil {
			// Unique constraints on username/email can fire here
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username or email already exists"})
			return
		}
		// Return the updated profile
		c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
	}
}
