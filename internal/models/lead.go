package models

// LeadStatus represents the qualification state of a lead
type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadQualified LeadStatus = "QUALIFIED"
	LeadConverted LeadStatus = "CONVERTED"
	LeadLost      LeadStatus = "LOST"
)

// Lead stores lead information from ad campaigns
type Lead struct {
	BaseModel
	Name   string     `gorm:"size:200" json:"name,omitempty"`
	Phone  string     `gorm:"size:30" json:"phone,omitempty"`
	Email  string     `gorm:"size:255" json:"email,omitempty"`
	Source string     `gorm:"size:100" json:"source,omitempty"`
	Status LeadStatus `gorm:"size:20;default:'NEW'" json:"status"`
	Notes  string     `gorm:"type:text" json:"notes,omitempty"`
}
