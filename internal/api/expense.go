package api

import (
	"context"                           // Context for Redis operations
	"finance_tracker/internal/domain"   // Importing domain models
	"finance_tracker/internal/notifier" // Savings threshold evaluation
	"finance_tracker/internal/utils"    // Utility functions
	"net/http"                          // HTTP status codes
	"strconv"                           // String conversion
	"time"                              // Timestamps and durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// dateLayout is the calendar-date format accepted for expense dates.
// No time-of-day component, parsed values land on start-of-day UTC.
const dateLayout = "2006-01-02"

// aggregateCacheTTL bounds how stale the cached expense aggregates can get
const aggregateCacheTTL = 60 * time.Second

// CreateExpenseRequest represents a new expense
type CreateExpenseRequest struct {
	Title        string  `json:"title" binding:"required"`        // Short label for the outflow
	Amount       float64 `json:"amount" binding:"required,gt=0"`  // Amount spent, must be positive
	CategoryName string  `json:"categoryName" binding:"required"` // Category label
	Date         string  `json:"date"`                            // Optional "YYYY-MM-DD", defaults to now
}

// UpdateExpenseRequest represents a partial expense update.
// A field is only applied when the supplied value is non-zero, so a zero
// amount is indistinguishable from "not supplied".
type UpdateExpenseRequest struct {
	ID           uint    `json:"id" binding:"required"` // Expense to update
	Title        string  `json:"title"`                 // New title, skipped when empty
	Amount       float64 `json:"amount"`                // New amount, skipped when zero
	CategoryName string  `json:"categoryName"`          // New category, skipped when empty
	Date         string  `json:"date"`                  // New date, skipped when empty
}

// DeleteExpenseRequest identifies the expense to remove
type DeleteExpenseRequest struct {
	ID uint `json:"id" binding:"required"` // Expense to delete
}

// subjectID extracts the authenticated user id placed by the JWT middleware
func subjectID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("userID") // Get userID from context
	if !exists {
		return 0, false // No authenticated subject
	}
	uid, ok := userID.(uint) // Middleware always stores a uint
	return uid, ok
}

// expenseCacheKeys lists every aggregate cache key held for a user
func expenseCacheKeys(userID uint) []string {
	id := strconv.Itoa(int(userID)) // Stringified user id
	return []string{
		"expenses:recent:user:" + id,     // Recent-6 list
		"expenses:window:user:" + id,     // Trailing-90-day list
		"expenses:monthtotal:user:" + id, // Latest-month total
	}
}

// invalidateExpenseCaches drops the user's aggregate caches after a mutation
func invalidateExpenseCaches(c *gin.Context, userID uint) {
	// The Redis client is injected into the context by the route group
	if v, exists := c.Get("redisClient"); exists {
		if rdb, ok := v.(*redis.Client); ok {
			ctx := context.Background() // Context for Redis operations
			// Drop every aggregate key for this user
			_ = utils.DeleteCache(ctx, rdb, expenseCacheKeys(userID)...)
		}
	}
}

// CreateExpenseHandler records a new expense for the authenticated user
// and re-evaluates their savings before responding.
func CreateExpenseHandler(db *gorm.DB, n *notifier.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := subjectID(c) // Get authenticated user
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateExpenseRequest // Bind JSON request to struct
		// Validate request, amount must be positive and title/category non-empty
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title, positive amount and categoryName required"})
			return
		}
		timestamp := time.Now() // Default to creation time
		// Parse the explicit calendar date when supplied
		if req.Date != "" {
			parsed, err := time.Parse(dateLayout, req.Date)
			if err != nil {
				// Malformed date string
				c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
				return
			}
			timestamp = parsed // Start-of-day timestamp
		}
		expense := domain.Expense{
			Title:     req.Title,        // Expense title
			Amount:    req.Amount,       // Expense amount
			Category:  req.CategoryName, // Category label
			Timestamp: timestamp,        // Expense date
			UserID:    userID,           // Owning user
		}
		// Persist the expense
		if err := db.Create(&expense).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create expense") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create expense"})
			return
		}
		// Log the mutation
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,         // User ID
			"expense_id": expense.ID,     // New expense ID
			"amount":     expense.Amount, // Expense amount
			"type":       "create",       // Mutation type
		}).Info("Expense created")
		n.Evaluate(userID)                 // Savings check runs before the response, its failures never surface here
		invalidateExpenseCaches(c, userID) // Aggregates changed
		// Return the created expense
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Expense added successfully", "expense": expense})
	}
}

// ReadExpensesHandler returns every expense owned by the authenticated user
func ReadExpensesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := subjectID(c) // Get authenticated user
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var expenses []domain.Expense // Slice to hold expenses
		// Fetch all expenses for the user
		if err := db.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"expenses": expenses}) // Return the list
	}
}

// UpdateExpenseHandler applies a partial update to an expense the
// authenticated user owns, then re-evaluates their savings.
func UpdateExpenseHandler(db *gorm.DB, n *notifier.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := subjectID(c) // Get authenticated user
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req UpdateExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Expense id required"})
			return
		}
		// At least one mutable field must be supplied
		if req.Title == "" && req.Amount == 0 && req.CategoryName == "" && req.Date == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Fields to update are missing"})
			return
		}
		var expense domain.Expense // Fetch the expense with the ownership check in the query
		if err := db.Where("id = ? AND user_id = ?", req.ID, userID).First(&expense).Error; err != nil {
			// Missing and foreign expenses are indistinguishable to the caller
			c.JSON(http.StatusNotFound, gin.H{"error": "No such expense exists"})
			return
		}
		// Apply only the supplied fields
		if req.Title != "" {
			expense.Title = req.Title // New title
		}
		if req.Amount != 0 {
			expense.Amount = req.Amount // New amount
		}
		if req.CategoryName != "" {
			expense.Category = req.CategoryName // New category
		}
		if req.Date != "" {
			parsed, err := time.Parse(dateLayout, req.Date) // Parse the new date
			if err != nil {
				// Malformed date string
				c.JSON(http.StatusBadRequest, gin.H{"error": "Date must be YYYY-MM-DD"})
				return
			}
			expense.Timestamp = parsed // New start-of-day timestamp
		}
		// Persist the update
		if err := db.Save(&expense).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,      // User ID
				"expense_id": req.ID,      // Expense ID
				"error":      err.Error(), // Error message
			}).Error("Failed to update expense") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
			return
		}
		// Log the mutation
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,         // User ID
			"expense_id": expense.ID,     // Expense ID
			"amount":     expense.Amount, // Current amount
			"type":       "update",       // Mutation type
		}).Info("Expense updated")
		n.Evaluate(userID)                 // An update can push savings below the threshold too
		invalidateExpenseCaches(c, userID) // Aggregates changed
		// Return the updated expense
		c.JSON(http.StatusOK, gin.H{"success": true, "expense": expense})
	}
}

// DeleteExpenseHandler removes an expense the authenticated user owns.
// No savings check runs here: removing an expense only raises savings.
func DeleteExpenseHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := subjectID(c) // Get authenticated user
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req DeleteExpenseRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Expense id missing"})
			return
		}
		var expense domain.Expense // Fetch the expense with the ownership check in the query
		if err := db.Where("id = ? AND user_id = ?", req.ID, userID).First(&expense).Error; err != nil {
			// Missing and foreign expenses are indistinguishable to the caller
			c.JSON(http.StatusNotFound, gin.H{"error": "No such expense exists"})
			return
		}
		// Delete the row
		if err := db.Delete(&expense).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,      // User ID
				"expense_id": req.ID,      // Expense ID
				"error":      err.Error(), // Error message
			}).Error("Failed to delete expense") // Log failure
			// Return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete expense"})
			return
		}
		// Log the mutation
		logrus.WithFields(logrus.Fields{
			"user_id":    userID,   // User ID
			"expense_id": req.ID,   // Expense ID
			"type":       "delete", // Mutation type
		}).Info("Expense deleted")
		invalidateExpenseCaches(c, userID) // Aggregates changed
		// Return success response
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Expense deleted successfully"})
	}
}

// RecentExpensesHandler returns the user's six most recent expenses
func RecentExpensesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := subjectID(c) // Get authenticated user
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                                     // Context for Redis operations
		cacheKey := "expenses:recent:user:" + strconv.Itoa(int(userID)) // Cache key for the recent list
		var expenses []domain.Expense                                   // Slice to hold expenses
		found, err := utils.GetCache(ctx, rdb, cacheKey, &expenses)     // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"expenses": expenses, "cached": true})
			return
		}
		// If not in cache, fetch from DB, newest first
		if err := db.Where("user_id = ?", userID).
			Order("timestamp desc").
			Limit(6).
			Find(&expenses).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, expenses, aggregateCacheTTL) // Cache the list
		c.JSON(http.StatusOK, gin.H{"expenses": expenses, "cached": false}) // Return the list
	}
}

// RecentMonthsHandler returns the user's expenses from the trailing 90 days
func RecentMonthsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := subjectID(c) // Get authenticated user
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                                     // Context for Redis operations
		cacheKey := "expenses:window:user:" + strconv.Itoa(int(userID)) // Cache key for the window list
		var expenses []domain.Expense                                   // Slice to hold expenses
		found, err := utils.GetCache(ctx, rdb, cacheKey, &expenses)     // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"expenses": expenses, "cached": true})
			return
		}
		cutoff := time.Now().AddDate(0, 0, -90) // Trailing 90-day window
		// Fetch expenses inside the window, newest first
		if err := db.Where("user_id = ? AND timestamp >= ?", userID, cutoff).
			Order("timestamp desc").
			Find(&expenses).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, expenses, aggregateCacheTTL) // Cache the list
		c.JSON(http.StatusOK, gin.H{"expenses": expenses, "cached": false}) // Return the list
	}
}

// LatestMonthTotalHandler sums the most recent calendar month that has data.
// Months are compared as "YYYY-MM" keys, so the result is the latest month
// with at least one expense, not necessarily the current wall-clock month.
func LatestMonthTotalHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := subjectID(c) // Get authenticated user
		// Check if userID exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                                         // Context for Redis operations
		cacheKey := "expenses:monthtotal:user:" + strconv.Itoa(int(userID)) // Cache key for the total
		var total float64                                                   // Latest month total
		found, err := utils.GetCache(ctx, rdb, cacheKey, &total)            // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"total": total, "cached": true})
			return
		}
		var expenses []domain.Expense // Slice to hold expenses
		// Fetch all expenses for the user
		if err := db.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch expenses"})
			return
		}
		// Group amounts by calendar month
		months := make(map[string]float64)
		for _, e := range expenses {
			key := e.Timestamp.Format("2006-01") // "YYYY-MM" month key
			months[key] += e.Amount              // Accumulate the month total
		}
		// Pick the lexicographically greatest month key present
		latest := ""
		for key := range months {
			if key > latest {
				latest = key // Later month found
			}
		}
		total = months[latest]                                           // Zero when the user has no expenses
		_ = utils.SetCache(ctx, rdb, cacheKey, total, aggregateCacheTTL) // Cache the total
		c.JSON(http.StatusOK, gin.H{"total": total, "cached": false})    // Return the total
	}
}
