package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"finance_tracker/internal/config"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/middleware"
	"finance_tracker/internal/notifier"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingMailer captures alert bodies instead of sending mail
type recordingMailer struct {
	sent []string
}

func (m *recordingMailer) Send(to, subject, body string) error {
	m.sent = append(m.sent, body)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "test-secret",
		JWTTTLMinutes:    60,
		CookieName:       "access_token",
		SavingsThreshold: 200,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Category{}, &domain.Expense{}))
	return db
}

// newTestRouter wires the full route table the way cmd/server does, with an
// unreachable Redis so every cache lookup falls through to the database.
func newTestRouter(t *testing.T, db *gorm.DB, mailer notifier.Mailer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		ReadTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	savings := &notifier.Notifier{DB: db, Mailer: mailer, Threshold: cfg.SavingsThreshold}

	r := gin.New()
	authGroup := r.Group("/auth")
	authGroup.POST("/register", RegisterHandler(db, cfg))
	authGroup.POST("/login", LoginHandler(db, cfg))
	authGroup.GET("/logout", LogoutHandler(cfg))
	authGroup.GET("/checkAuth", middleware.JWTAuthMiddleware(cfg.JWTSecret, cfg.CookieName), CheckAuthHandler(db))
	authGroup.POST("/updateProfile", middleware.JWTAuthMiddleware(cfg.JWTSecret, cfg.CookieName), UpdateProfileHandler(db))

	expenseGroup := r.Group("/expense")
	expenseGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret, cfg.CookieName), func(c *gin.Context) {
		c.Set("redisClient", rdb)
		c.Next()
	})
	expenseGroup.POST("/create", CreateExpenseHandler(db, savings))
	expenseGroup.PUT("/update", UpdateExpenseHandler(db, savings))
	expenseGroup.GET("/read", ReadExpensesHandler(db))
	expenseGroup.DELETE("/delete", DeleteExpenseHandler(db))
	expenseGroup.GET("/recent", RecentExpensesHandler(db, rdb))
	expenseGroup.GET("/recentmonthsExpense", RecentMonthsHandler(db, rdb))
	expenseGroup.GET("/latestMonthTotal", LatestMonthTotalHandler(db, rdb))
	return r
}

// doJSON performs a request with an optional bearer token and JSON body
func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// registerUser registers through the HTTP surface and returns the issued token
func registerUser(t *testing.T, r *gin.Engine, username, email, password string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/auth/register", "", gin.H{
		"username": username,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}
