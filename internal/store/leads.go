package store

import (
	"dental-clinic-server/internal/models"
)

// LeadUpdate is the allow-listed partial update for leads.
type LeadUpdate struct {
	Name   *string
	Phone  *string
	Email  *string
	Source *string
	Status *models.LeadStatus
	Notes  *string
}

func (u LeadUpdate) changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if u.Name != nil {
		changes["name"] = *u.Name
	}
	if u.Phone != nil {
		changes["phone"] = *u.Phone
	}
	if u.Email != nil {
		changes["email"] = *u.Email
	}
	if u.Source != nil {
		changes["source"] = *u.Source
	}
	if u.Status != nil {
		changes["status"] = *u.Status
	}
	if u.Notes != nil {
		changes["notes"] = *u.Notes
	}
	return changes
}

// CreateLead inserts a new lead row.
func (s *Store) CreateLead(lead *models.Lead) error {
	return s.db.Create(lead).Error
}

// GetLead fetches one lead by ID.
func (s *Store) GetLead(id string) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// ListLeads returns leads, optionally filtered by status.
func (s *Store) ListLeads(status models.LeadStatus) ([]models.Lead, error) {
	query := s.db.Order("created_at desc")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var leads []models.Lead
	if err := query.Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}

// UpdateLead applies an allow-listed partial update.
func (s *Store) UpdateLead(id string, update LeadUpdate) error {
	changes := update.changes()
	if len(changes) == 0 {
		return nil
	}
	result := s.db.Model(&models.Lead{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
