package notifier

import (
	"finance_tracker/internal/domain" // Importing domain models
	"fmt"                             // Message rendering

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// Notifier recomputes a user's savings after an expense mutation and emails
// an alert when savings fall below the configured threshold.
type Notifier struct {
	DB        *gorm.DB // Storage handle for users and expenses
	Mailer    Mailer   // External mail-sending collaborator
	Threshold float64  // Savings floor that triggers an alert
}

// Evaluate checks the user's savings and sends an alert if they are below the
// threshold. Every failure is logged and swallowed here: a broken mail server
// must never fail the expense mutation that triggered the check.
func (n *Notifier) Evaluate(userID uint) {
	var user domain.User // Load the user for income and email
	if err := n.DB.First(&user, userID).Error; err != nil {
		// Log and give up, the mutation already succeeded
		logrus.WithFields(logrus.Fields{
			"user_id": userID,      // Affected user
			"error":   err.Error(), // Error message
		}).Error("Savings check failed to load user")
		return
	}
	var total float64 // Sum of all the user's expenses
	if err := n.DB.Model(&domain.Expense{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,      // Affected user
			"error":   err.Error(), // Error message
		}).Error("Savings check failed to sum expenses")
		return
	}
	savings := user.Income - total // Computed savings
	// Nothing to do while the user is still above the floor
	if savings >= n.Threshold {
		return
	}
	// Fixed alert template containing the threshold and the computed savings
	body := fmt.Sprintf(
		"Hi %s,\n\nYou've just crossed your savings threshold of $%.2f with $%.2f in the bank!\nExpend money wisely !!!!\n",
		user.Username, n.Threshold, savings,
	)
	// Hand the rendered message to the external mail collaborator.
	// No sent-state is persisted, so every qualifying mutation re-sends.
	if err := n.Mailer.Send(user.Email, "Savings Alert", body); err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id": userID,      // Affected user
			"email":   user.Email,  // Alert recipient
			"savings": savings,     // Computed savings
			"error":   err.Error(), // Error message
		}).Error("Savings alert email failed")
		return
	}
	// Log the sent alert
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,      // Affected user
		"savings":   savings,     // Computed savings
		"threshold": n.Threshold, // Configured floor
	}).Info("Savings alert sent")
}
