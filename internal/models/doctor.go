package models

import "time"

// Doctor stores provider information. The doctor's calendar is resolved
// from configuration by name, it is not a column here.
type Doctor struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Specialty string    `gorm:"size:100" json:"specialty"`
	IsActive  bool      `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"-"`
}
