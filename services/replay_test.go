package services

import (
	"testing"

	"content-approval-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func auditEntry(action models.AuditAction, userID string) models.AuditEntry {
	return models.AuditEntry{Action: action, UserID: userID}
}

func TestReplayStatusEmptyTrail(t *testing.T) {
	_, err := ReplayStatus(nil)
	assert.Error(t, err)
}

func TestReplayStatusMustStartWithCreation(t *testing.T) {
	entries := []models.AuditEntry{auditEntry(models.ActionApproved, "approver-1")}
	_, err := ReplayStatus(entries)
	assert.Error(t, err)
}

func TestReplayStatusRejectsIllegalSequence(t *testing.T) {
	entries := []models.AuditEntry{
		auditEntry(models.ActionCreated, "requester-1"),
		auditEntry(models.ActionApproved, "approver-1"),
		auditEntry(models.ActionRejected, "approver-1"),
	}
	_, err := ReplayStatus(entries)
	assert.Error(t, err)
}

func TestReplayStatusFoldsFullLifecycle(t *testing.T) {
	entries := []models.AuditEntry{
		auditEntry(models.ActionCreated, "requester-1"),
		auditEntry(models.ActionRevisionRequested, "approver-1"),
		auditEntry(models.ActionCommentAdded, "requester-1"),
		auditEntry(models.ActionResubmitted, "requester-1"),
		auditEntry(models.ActionApproved, "approver-2"),
	}
	state, err := ReplayStatus(entries)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, state.Status)
	require.NotNil(t, state.ApproverID)
	assert.Equal(t, "approver-2", *state.ApproverID)
}

func TestReplayStatusCreationOnly(t *testing.T) {
	entries := []models.AuditEntry{auditEntry(models.ActionCreated, "requester-1")}
	state, err := ReplayStatus(entries)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, state.Status)
	assert.Nil(t, state.ApproverID)
}
