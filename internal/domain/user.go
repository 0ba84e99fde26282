package domain

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`            // Primary key
	Username     string    `gorm:"unique;not null" json:"username"` // Unique username
	Email        string    `gorm:"unique;not null" json:"email"`    // Unique email address
	PasswordHash string    `gorm:"not null" json:"-"`               // Bcrypt hash, never serialized
	Description  string    `json:"description"`                     // Optional profile text
	Income       float64   `gorm:"default:0" json:"income"`         // Income target used for savings
	Expenses     []Expense `gorm:"foreignKey:UserID" json:"-"`      // One-to-many relationship with Expense
}
