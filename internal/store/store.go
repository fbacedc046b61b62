// Package store is the persistence facade over the relational database.
// It owns transaction scoping; every mutating method is one short-lived
// transaction, and callers never hold one open across a calendar call.
package store

import (
	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// Store provides typed access to patients, doctors, services,
// appointments, and leads.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of an open gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}
