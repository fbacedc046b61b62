package store

import (
	"dental-clinic-server/internal/models"
)

// ListDoctors returns doctors, optionally only active ones.
func (s *Store) ListDoctors(activeOnly bool) ([]models.Doctor, error) {
	query := s.db.Order("name asc")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

// GetDoctor fetches one doctor by ID.
func (s *Store) GetDoctor(id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := s.db.First(&doctor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doctor, nil
}
