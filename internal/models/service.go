package models

import "time"

// Service stores an entry of the available services menu
type Service struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:150;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	DurationMin *int      `json:"durationMin,omitempty"`
	BasePrice   *float64  `gorm:"type:decimal(10,2)" json:"basePrice,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Relations
	Appointments []Appointment `gorm:"foreignKey:ServiceID" json:"-"`
}
