package domain

import "time"

// Expense Model
type Expense struct {
	ID        uint      `gorm:"primaryKey" json:"id"`     // Primary key
	Title     string    `gorm:"not null" json:"title"`    // Short label for the outflow
	Amount    float64   `gorm:"not null" json:"amount"`   // Amount spent, always positive
	Category  string    `gorm:"not null" json:"category"` // Free-text category label
	Timestamp time.Time `json:"timestamp"`                // When the expense happened, defaults to creation time
	UserID    uint      `gorm:"index;not null" json:"-"`  // Foreign key to the owning User
}
