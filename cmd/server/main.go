package main

import (
	"context"                             // context package is needed for Redis operations
	"finance_tracker/internal/api"        // Custom package for API handlers
	"finance_tracker/internal/config"     // Custom package for configuration
	"finance_tracker/internal/middleware" // Custom package for middleware
	"finance_tracker/internal/notifier"   // Savings alerts
	"log"                                 // log package is needed for logging

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Savings notifier with the SMTP mail collaborator
	savings := &notifier.Notifier{
		DB: db, // Storage handle
		Mailer: &notifier.SMTPMailer{
			Host: cfg.SMTPHost, // Mail server host
			Port: cfg.SMTPPort, // Mail server port
			User: cfg.SMTPUser, // Mail server username
			Pass: cfg.SMTPPass, // Mail server password
		},
		Threshold: cfg.SavingsThreshold, // Savings alert floor
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	authGroup := r.Group("/auth")
	authGroup.POST("/register", api.RegisterHandler(db, cfg)) // Registration endpoint
	authGroup.POST("/login", api.LoginHandler(db, cfg))       // Login endpoint
	authGroup.GET("/logout", api.LogoutHandler(cfg))          // Logout endpoint, clears the auth cookie
	// Protected auth routes
	authGroup.GET("/checkAuth", middleware.JWTAuthMiddleware(cfg.JWTSecret, cfg.CookieName), api.CheckAuthHandler(db))
	authGroup.POST("/updateProfile", middleware.JWTAuthMiddleware(cfg.JWTSecret, cfg.CookieName), api.UpdateProfileHandler(db))

	// Expense routes (protected by JWT)
	expenseGroup := r.Group("/expense")
	// Protect expense routes with JWT middleware and inject Redis client into context
	expenseGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, cfg.CookieName), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	expenseGroup.POST("/create", api.CreateExpenseHandler(db, savings))                 // Create expense endpoint
	expenseGroup.PUT("/update", api.UpdateExpenseHandler(db, savings))                  // Update expense endpoint
	expenseGroup.GET("/read", api.ReadExpensesHandler(db))                              // Read expenses endpoint
	expenseGroup.DELETE("/delete", api.DeleteExpenseHandler(db))                        // Delete expense endpoint
	expenseGroup.GET("/recent", api.RecentExpensesHandler(db, redisClient))             // Six most recent expenses
	expenseGroup.GET("/recentmonthsExpense", api.RecentMonthsHandler(db, redisClient))  // Trailing 90-day window
	expenseGroup.GET("/latestMonthTotal", api.LatestMonthTotalHandler(db, redisClient)) // Latest-month total

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
