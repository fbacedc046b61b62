package models

import (
	"strings"
	"time"
)

// Patient stores customer profile data
type Patient struct {
	BaseModel
	FirstName         string     `gorm:"size:100" json:"firstName"`
	LastName          string     `gorm:"size:100" json:"lastName"`
	DOB               *time.Time `json:"dob,omitempty"`
	Phone             string     `gorm:"size:30" json:"phone,omitempty"`
	Email             string     `gorm:"size:255" json:"email,omitempty"`
	InsuranceProvider string     `gorm:"size:100" json:"insuranceProvider,omitempty"`
	IsMinor           bool       `gorm:"default:false" json:"isMinor"`
	GuardianName      string     `gorm:"size:200" json:"guardianName,omitempty"`
	GuardianContact   string     `gorm:"size:100" json:"guardianContact,omitempty"`
	ConsentApproved   bool       `gorm:"default:false" json:"consentApproved"`

	// Relations (not always preloaded)
	Appointments []Appointment `gorm:"foreignKey:PatientID" json:"-"`
}

// FullName joins first and last name, tolerating a missing last name.
func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
