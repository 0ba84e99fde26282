package domain

// Category Model
type Category struct {
	ID     uint   `gorm:"primaryKey" json:"id"`        // Primary key
	Name   string `gorm:"unique;not null" json:"name"` // Unique category name
	Icon   string `json:"icon"`                        // e.g. "fa-utensils"
	UserID uint   `gorm:"index;not null" json:"-"`     // Foreign key to the owning User
}
