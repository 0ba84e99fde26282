package notifier

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finance_tracker/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMailer records every send instead of talking to a server
type fakeMailer struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeMailer) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Category{}, &domain.Expense{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, income float64, amounts ...float64) uint {
	t.Helper()
	user := domain.User{Username: "alice", Email: "a@x.com", PasswordHash: "x", Income: income}
	require.NoError(t, db.Create(&user).Error)
	for _, amount := range amounts {
		expense := domain.Expense{Title: "e", Amount: amount, Category: "misc", Timestamp: time.Now(), UserID: user.ID}
		require.NoError(t, db.Create(&expense).Error)
	}
	return user.ID
}

func TestEvaluateBelowThresholdSendsAlert(t *testing.T) {
	db := setupDB(t)
	// income 1000, expenses 850 => savings 150, below the 200 floor
	userID := seedUser(t, db, 1000, 500, 350)
	mailer := &fakeMailer{}
	n := &Notifier{DB: db, Mailer: mailer, Threshold: 200}

	n.Evaluate(userID)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@x.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "150.00")
	assert.Contains(t, mailer.sent[0].body, "200.00")
	assert.Contains(t, mailer.sent[0].body, "alice")
}

func TestEvaluateResendsOnEveryQualifyingMutation(t *testing.T) {
	db := setupDB(t)
	userID := seedUser(t, db, 1000, 900)
	mailer := &fakeMailer{}
	n := &Notifier{DB: db, Mailer: mailer, Threshold: 200}

	// No sent-state is kept, so each evaluation below the floor mails again
	n.Evaluate(userID)
	n.Evaluate(userID)

	assert.Len(t, mailer.sent, 2)
}

func TestEvaluateAboveThresholdStaysQuiet(t *testing.T) {
	db := setupDB(t)
	// income 1000, expenses 700 => savings 300, above the 200 floor
	userID := seedUser(t, db, 1000, 700)
	mailer := &fakeMailer{}
	n := &Notifier{DB: db, Mailer: mailer, Threshold: 200}

	n.Evaluate(userID)

	assert.Empty(t, mailer.sent)
}

func TestEvaluateExactlyAtThresholdStaysQuiet(t *testing.T) {
	db := setupDB(t)
	// savings == threshold is not "below"
	userID := seedUser(t, db, 1000, 800)
	mailer := &fakeMailer{}
	n := &Notifier{DB: db, Mailer: mailer, Threshold: 200}

	n.Evaluate(userID)

	assert.Empty(t, mailer.sent)
}

func TestEvaluateSwallowsMailerFailure(t *testing.T) {
	db := setupDB(t)
	userID := seedUser(t, db, 1000, 900)
	mailer := &fakeMailer{err: errors.New("smtp down")}
	n := &Notifier{DB: db, Mailer: mailer, Threshold: 200}

	// Must not panic or propagate anything
	n.Evaluate(userID)

	assert.Empty(t, mailer.sent)
}

func TestEvaluateUnknownUser(t *testing.T) {
	db := setupDB(t)
	mailer := &fakeMailer{}
	n := &Notifier{DB: db, Mailer: mailer, Threshold: 200}

	n.Evaluate(9999)

	assert.Empty(t, mailer.sent)
}
