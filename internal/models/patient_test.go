package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatientFullName(t *testing.T) {
	p := &Patient{FirstName: "Jane", LastName: "Doe"}
	assert.Equal(t, "Jane Doe", p.FullName())

	p = &Patient{FirstName: "Cher"}
	assert.Equal(t, "Cher", p.FullName())
}

func TestStatusSets(t *testing.T) {
	active := ActiveStatuses()
	assert.Contains(t, active, StatusReminderSent)
	assert.NotContains(t, active, StatusCancelled)
	assert.NotContains(t, active, StatusCompleted)

	// Reminder-sent appointments still block the chair but a reminder
	// annotation is not something the sweep needs to push.
	sync := SyncStatuses()
	assert.NotContains(t, sync, StatusReminderSent)
	assert.Contains(t, sync, StatusPendingSync)
	assert.NotContains(t, sync, StatusCancelled)
}
