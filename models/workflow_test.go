package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatusTable(t *testing.T) {
	cases := []struct {
		from   SubmissionStatus
		action AuditAction
		want   SubmissionStatus
		legal  bool
	}{
		{StatusPending, ActionApproved, StatusApproved, true},
		{StatusPending, ActionRejected, StatusRejected, true},
		{StatusPending, ActionRevisionRequested, StatusRevisionRequested, true},
		{StatusPending, ActionResubmitted, "", false},
		{StatusPending, ActionCommentAdded, "", false},
		{StatusRevisionRequested, ActionCommentAdded, StatusRevisionRequested, true},
		{StatusRevisionRequested, ActionResubmitted, StatusPending, true},
		{StatusRevisionRequested, ActionApproved, "", false},
		{StatusRevisionRequested, ActionRejected, "", false},
		{StatusApproved, ActionApproved, "", false},
		{StatusApproved, ActionResubmitted, "", false},
		{StatusRejected, ActionRejected, "", false},
		{StatusRejected, ActionResubmitted, "", false},
	}
	for _, tc := range cases {
		next, ok := NextStatus(tc.from, tc.action)
		assert.Equal(t, tc.legal, ok, "%s + %s", tc.from, tc.action)
		if tc.legal {
			assert.Equal(t, tc.want, next, "%s + %s", tc.from, tc.action)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRevisionRequested.Terminal())
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("Pending")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	// Values are exact; persisted casing never drifts.
	_, err = ParseStatus("pending")
	assert.Error(t, err)
	_, err = ParseStatus("Archived")
	assert.Error(t, err)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("Approver")
	require.NoError(t, err)
	assert.True(t, role.CanDecide())

	role, err = ParseRole("Requester")
	require.NoError(t, err)
	assert.False(t, role.CanDecide())

	_, err = ParseRole("superuser")
	assert.Error(t, err)
}

func TestParseAction(t *testing.T) {
	action, err := ParseAction("revision_requested")
	require.NoError(t, err)
	assert.Equal(t, ActionRevisionRequested, action)

	_, err = ParseAction("deleted")
	assert.Error(t, err)
}

func TestCategoryForMime(t *testing.T) {
	assert.Equal(t, ContentPDF, CategoryForMime("application/pdf"))
	assert.Equal(t, ContentImage, CategoryForMime("image/png"))
	assert.Equal(t, ContentVideo, CategoryForMime("video/mp4"))
	assert.Equal(t, ContentOther, CategoryForMime("text/plain"))
	assert.Equal(t, ContentOther, CategoryForMime(""))
}
