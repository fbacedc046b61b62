package store

import (
	"time"

	"dental-clinic-server/internal/models"
)

// PatientFilter narrows FindPatients. Zero values mean "any".
type PatientFilter struct {
	Name  string
	Phone string
}

// PatientUpdate is the allow-listed partial update for patients.
type PatientUpdate struct {
	FirstName         *string
	LastName          *string
	DOB               *time.Time
	Phone             *string
	Email             *string
	InsuranceProvider *string
	IsMinor           *bool
	GuardianName      *string
	GuardianContact   *string
	ConsentApproved   *bool
}

func (u PatientUpdate) changes() map[string]interface{} {
	changes := make(map[string]interface{})
	if u.FirstName != nil {
		changes["first_name"] = *u.FirstName
	}
	if u.LastName != nil {
		changes["last_name"] = *u.LastName
	}
	if u.DOB != nil {
		changes["dob"] = *u.DOB
	}
	if u.Phone != nil {
		changes["phone"] = *u.Phone
	}
	if u.Email != nil {
		changes["email"] = *u.Email
	}
	if u.InsuranceProvider != nil {
		changes["insurance_provider"] = *u.InsuranceProvider
	}
	if u.IsMinor != nil {
		changes["is_minor"] = *u.IsMinor
	}
	if u.GuardianName != nil {
		changes["guardian_name"] = *u.GuardianName
	}
	if u.GuardianContact != nil {
		changes["guardian_contact"] = *u.GuardianContact
	}
	if u.ConsentApproved != nil {
		changes["consent_approved"] = *u.ConsentApproved
	}
	return changes
}

// CreatePatient inserts a new patient row.
func (s *Store) CreatePatient(patient *models.Patient) error {
	return s.db.Create(patient).Error
}

// GetPatient fetches one patient by ID.
func (s *Store) GetPatient(id string) (*models.Patient, error) {
	var patient models.Patient
	if err := s.db.First(&patient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &patient, nil
}

// FindPatients lists patients matching the filter.
func (s *Store) FindPatients(filter PatientFilter) ([]models.Patient, error) {
	query := s.db.Order("created_at desc")
	if filter.Name != "" {
		pattern := "%" + filter.Name + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ?", pattern, pattern)
	}
	if filter.Phone != "" {
		query = query.Where("phone = ?", filter.Phone)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		return nil, err
	}
	return patients, nil
}

// UpdatePatient applies an allow-listed partial update.
func (s *Store) UpdatePatient(id string, update PatientUpdate) error {
	changes := update.changes()
	if len(changes) == 0 {
		return nil
	}
	result := s.db.Model(&models.Patient{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
