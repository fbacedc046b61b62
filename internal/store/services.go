package store

import (
	"dental-clinic-server/internal/models"
)

// ListServices returns the services menu, optionally filtered by a name
// substring.
func (s *Store) ListServices(name string) ([]models.Service, error) {
	query := s.db.Order("name asc")
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var services []models.Service
	if err := query.Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

// GetService fetches one service by ID.
func (s *Store) GetService(id uint) (*models.Service, error) {
	var service models.Service
	if err := s.db.First(&service, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &service, nil
}
