package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"content-approval-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory WorkflowStore with the same compare-and-swap
// semantics as the production store.
type memStore struct {
	mu          sync.Mutex
	users       map[string]*models.User
	submissions map[string]*models.Submission
	attachments map[string][]models.Attachment
	comments    map[string][]models.Comment
	entries     map[string][]models.AuditEntry
	failCommits bool
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[string]*models.User),
		submissions: make(map[string]*models.Submission),
		attachments: make(map[string][]models.Attachment),
		comments:    make(map[string][]models.Comment),
		entries:     make(map[string][]models.AuditEntry),
	}
}

func (m *memStore) addUser(id string, role models.Role) {
	m.users[id] = &models.User{
		UserID:   id,
		Email:    id + "@example.org",
		FullName: id,
		Role:     role,
		IsActive: true,
	}
}

func (m *memStore) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, notFoundError("user %s not found", id)
	}
	copied := *user
	return &copied, nil
}

func (m *memStore) GetSubmission(_ context.Context, id string) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.submissions[id]
	if !ok {
		return nil, notFoundError("submission %s not found", id)
	}
	copied := *sub
	return &copied, nil
}

func (m *memStore) CreateSubmission(_ context.Context, sub *models.Submission, files []models.Attachment, entry *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCommits {
		return storageError("commit failed", fmt.Errorf("simulated failure"))
	}
	copied := *sub
	m.submissions[sub.SubmissionID] = &copied
	m.attachments[sub.SubmissionID] = append(m.attachments[sub.SubmissionID], files...)
	entry.Seq = 1
	m.entries[sub.SubmissionID] = []models.AuditEntry{*entry}
	return nil
}

func (m *memStore) ApplyTransition(_ context.Context, rec *TransitionRecord) (*models.Submission, *models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCommits {
		return nil, nil, storageError("commit failed", fmt.Errorf("simulated failure"))
	}

	sub, ok := m.submissions[rec.SubmissionID]
	if !ok {
		return nil, nil, notFoundError("submission %s not found", rec.SubmissionID)
	}
	// Compare-and-swap on current status, as the SQL store's guarded UPDATE.
	if sub.Status != rec.FromStatus {
		return nil, nil, invalidTransitionError("submission %s is now in status %s", rec.SubmissionID, sub.Status)
	}

	sub.Status = rec.NewStatus
	sub.UpdatedAt = rec.Entry.CreatedAt
	if rec.ApproverID != nil {
		sub.ApproverID = rec.ApproverID
	}
	if rec.ApprovedAt != nil {
		sub.ApprovedAt = rec.ApprovedAt
	}
	if rec.RejectedAt != nil {
		sub.RejectedAt = rec.RejectedAt
	}

	m.attachments[rec.SubmissionID] = append(m.attachments[rec.SubmissionID], rec.Attachments...)
	if rec.Comment != nil {
		m.comments[rec.SubmissionID] = append(m.comments[rec.SubmissionID], *rec.Comment)
	}

	entry := rec.Entry
	entry.Seq = len(m.entries[rec.SubmissionID]) + 1
	m.entries[rec.SubmissionID] = append(m.entries[rec.SubmissionID], entry)

	copied := *sub
	return &copied, &entry, nil
}

func (m *memStore) History(_ context.Context, submissionID string) ([]models.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.submissions[submissionID]; !ok {
		return nil, notFoundError("submission %s not found", submissionID)
	}
	entries := make([]models.AuditEntry, len(m.entries[submissionID]))
	copy(entries, m.entries[submissionID])
	return entries, nil
}

func newTestService() (*WorkflowService, *memStore, *objectStoreFake) {
	store := newMemStore()
	store.addUser("requester-1", models.RoleRequester)
	store.addUser("requester-2", models.RoleRequester)
	store.addUser("approver-1", models.RoleApprover)
	store.addUser("admin-1", models.RoleAdmin)
	objects := &objectStoreFake{stored: make(map[string]bool)}
	return NewWorkflowService(store, objects), store, objects
}

var (
	requester = ActorContext{UserID: "requester-1", Role: models.RoleRequester}
	otherUser = ActorContext{UserID: "requester-2", Role: models.RoleRequester}
	approver  = ActorContext{UserID: "approver-1", Role: models.RoleApprover}
	admin     = ActorContext{UserID: "admin-1", Role: models.RoleAdmin}
)

func pdfFile(name string) FileInput {
	content := []byte("%PDF-1.4 test")
	return FileInput{
		Name:        name,
		ContentType: "application/pdf",
		Size:        int64(len(content)),
		Reader:      bytes.NewReader(content),
	}
}

func mustCreate(t *testing.T, svc *WorkflowService, files ...FileInput) *models.Submission {
	t.Helper()
	sub, _, err := svc.Create(context.Background(), requester, CreateInput{
		Title:       "Q1 Campaign",
		Description: "Campaign assets for review",
		Files:       files,
	})
	require.NoError(t, err)
	return sub
}

func TestCreateYieldsPendingWithoutApprover(t *testing.T) {
	svc, store, _ := newTestService()

	sub, entry, err := svc.Create(context.Background(), requester, CreateInput{
		Title:       "Q1 Campaign",
		Description: "Campaign assets for review",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, sub.Status)
	assert.Nil(t, sub.ApproverID)
	assert.Equal(t, "requester-1", sub.RequesterID)

	assert.Equal(t, models.ActionCreated, entry.Action)
	assert.Equal(t, 1, entry.Seq)

	history, err := svc.History(context.Background(), sub.SubmissionID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Len(t, store.attachments[sub.SubmissionID], 0)
}

func TestCreateStoresAttachments(t *testing.T) {
	svc, store, objects := newTestService()

	sub := mustCreate(t, svc, pdfFile("brief.pdf"), pdfFile("assets.pdf"))

	attachments := store.attachments[sub.SubmissionID]
	require.Len(t, attachments, 2)
	assert.Equal(t, "brief.pdf", attachments[0].Filename)
	assert.Equal(t, models.ContentPDF, attachments[0].Category)
	assert.NotEmpty(t, attachments[0].StoragePath)
	assert.NotEmpty(t, attachments[0].PublicURL)
	assert.Equal(t, 2, objects.puts)
}

func TestCreateRequiresRequesterRole(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Create(context.Background(), approver, CreateInput{
		Title:       "Q1 Campaign",
		Description: "desc",
	})
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestCreateValidatesBeforeAnyUpload(t *testing.T) {
	svc, _, objects := newTestService()

	_, _, err := svc.Create(context.Background(), requester, CreateInput{
		Title:       "   ",
		Description: "desc",
		Files:       []FileInput{pdfFile("brief.pdf")},
	})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Zero(t, objects.puts)
}

func TestCreateRejectsDisallowedFileType(t *testing.T) {
	svc, _, objects := newTestService()

	exe := FileInput{Name: "run.exe", ContentType: "application/x-msdownload", Size: 10, Reader: bytes.NewReader(make([]byte, 10))}
	_, _, err := svc.Create(context.Background(), requester, CreateInput{
		Title:       "Q1 Campaign",
		Description: "desc",
		Files:       []FileInput{exe},
	})
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Zero(t, objects.puts)
}

func TestCreateRollsBackUploadsOnCommitFailure(t *testing.T) {
	svc, store, objects := newTestService()
	store.failCommits = true

	_, _, err := svc.Create(context.Background(), requester, CreateInput{
		Title:       "Q1 Campaign",
		Description: "desc",
		Files:       []FileInput{pdfFile("brief.pdf")},
	})
	require.Error(t, err)
	assert.Equal(t, KindStorageFailure, KindOf(err))
	assert.Len(t, objects.removed, 1)
	assert.Empty(t, store.submissions)
}

func TestCreateFailsWhenUploadFails(t *testing.T) {
	svc, store, objects := newTestService()
	objects.failPut = true

	_, _, err := svc.Create(context.Background(), requester, CreateInput{
		Title:       "Q1 Campaign",
		Description: "desc",
		Files:       []FileInput{pdfFile("brief.pdf")},
	})
	require.Error(t, err)
	assert.Equal(t, KindStorageFailure, KindOf(err))
	assert.Empty(t, store.submissions)
}

func TestApproveSetsApproverAndTimestamp(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	updated, entry, err := svc.Approve(context.Background(), approver, sub.SubmissionID, "looks good")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, updated.Status)
	require.NotNil(t, updated.ApproverID)
	assert.Equal(t, "approver-1", *updated.ApproverID)
	assert.NotNil(t, updated.ApprovedAt)
	assert.Nil(t, updated.RejectedAt)

	assert.Equal(t, models.ActionApproved, entry.Action)
	assert.Equal(t, 2, entry.Seq)
	require.NotNil(t, entry.Comment)
	assert.Equal(t, "looks good", *entry.Comment)
	assert.Equal(t, string(models.StatusPending), entry.Details["previous_status"])
	assert.Equal(t, string(models.StatusApproved), entry.Details["new_status"])
}

func TestApproveCommentOptional(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	updated, entry, err := svc.Approve(context.Background(), approver, sub.SubmissionID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	assert.Nil(t, entry.Comment)
}

func TestApproveFromTerminalStateFails(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	_, _, err := svc.Approve(context.Background(), approver, sub.SubmissionID, "")
	require.NoError(t, err)

	_, _, err = svc.Approve(context.Background(), approver, sub.SubmissionID, "")
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))

	current, err := svc.store.GetSubmission(context.Background(), sub.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, current.Status)
}

func TestApproveRequiresDecidingRole(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	_, _, err := svc.Approve(context.Background(), requester, sub.SubmissionID, "")
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))
}

func TestApproveMissingSubmission(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.Approve(context.Background(), approver, "missing-id", "")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRejectRequiresComment(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	_, _, err := svc.Reject(context.Background(), approver, sub.SubmissionID, "   ")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	// No audit entry was produced by the failed call.
	history, err := svc.History(context.Background(), sub.SubmissionID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRejectSetsRejectedAt(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	updated, entry, err := svc.Reject(context.Background(), approver, sub.SubmissionID, "off brand")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)
	assert.NotNil(t, updated.RejectedAt)
	assert.Nil(t, updated.ApprovedAt)
	assert.Equal(t, models.ActionRejected, entry.Action)
}

func TestRequestRevisionRequiresComment(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	_, _, err := svc.RequestRevision(context.Background(), approver, sub.SubmissionID, "")
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))

	history, err := svc.History(context.Background(), sub.SubmissionID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRequestRevisionRecordsComment(t *testing.T) {
	svc, store, _ := newTestService()
	sub := mustCreate(t, svc)

	updated, _, err := svc.RequestRevision(context.Background(), approver, sub.SubmissionID, "add more data")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevisionRequested, updated.Status)
	assert.Nil(t, updated.ApproverID)

	comments := store.comments[sub.SubmissionID]
	require.Len(t, comments, 1)
	assert.Equal(t, "add more data", comments[0].Body)
	assert.Equal(t, models.CommentKindRevision, comments[0].Kind)
	assert.Equal(t, "approver-1", comments[0].UserID)
}

func TestAddRevisionContentOnlyDuringRevision(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	_, _, err := svc.AddRevisionContent(context.Background(), requester, sub.SubmissionID, "update", nil)
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestAddRevisionContentOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	_, _, err := svc.RequestRevision(context.Background(), approver, sub.SubmissionID, "fix it")
	require.NoError(t, err)

	_, _, err = svc.AddRevisionContent(context.Background(), otherUser, sub.SubmissionID, "hello", nil)
	require.Error(t, err)
	assert.Equal(t, KindForbidden, KindOf(err))

	// The admin may act on any submission.
	_, entry, err := svc.AddRevisionContent(context.Background(), admin, sub.SubmissionID, "admin note", nil)
	require.NoError(t, err)
	assert.Equal(t, models.ActionCommentAdded, entry.Action)
}

func TestAddRevisionContentNeedsCommentOrFile(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	_, _, err := svc.RequestRevision(context.Background(), approver, sub.SubmissionID, "fix it")
	require.NoError(t, err)

	_, _, err = svc.AddRevisionContent(context.Background(), requester, sub.SubmissionID, "  ", nil)
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestAddRevisionContentKeepsStatus(t *testing.T) {
	svc, store, _ := newTestService()
	sub := mustCreate(t, svc)

	_, _, err := svc.RequestRevision(context.Background(), approver, sub.SubmissionID, "fix it")
	require.NoError(t, err)

	updated, entry, err := svc.AddRevisionContent(context.Background(), requester, sub.SubmissionID, "updated copy", []FileInput{pdfFile("v2.pdf")})
	require.NoError(t, err)

	assert.Equal(t, models.StatusRevisionRequested, updated.Status)
	assert.Equal(t, models.ActionCommentAdded, entry.Action)
	assert.Equal(t, []string{"v2.pdf"}, entry.Details["files_added"])
	assert.Len(t, store.attachments[sub.SubmissionID], 1)
}

func TestResubmitOnlyFromRevisionRequested(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	_, _, err := svc.Resubmit(context.Background(), requester, sub.SubmissionID, "")
	require.Error(t, err)
	assert.Equal(t, KindInvalidTransition, KindOf(err))
}

func TestResubmitReturnsToPending(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	_, _, err := svc.RequestRevision(context.Background(), approver, sub.SubmissionID, "fix it")
	require.NoError(t, err)

	updated, entry, err := svc.Resubmit(context.Background(), requester, sub.SubmissionID, "done")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Equal(t, models.ActionResubmitted, entry.Action)
}

func TestConcurrentApproveRejectOneWinner(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	var wg sync.WaitGroup
	results := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, results[0] = svc.Approve(context.Background(), approver, sub.SubmissionID, "")
	}()
	go func() {
		defer wg.Done()
		_, _, results[1] = svc.Reject(context.Background(), approver, sub.SubmissionID, "no")
	}()
	wg.Wait()

	successes := 0
	losers := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else if IsKind(err, KindInvalidTransition) {
			losers++
		}
	}
	assert.Equal(t, 1, successes, "exactly one transition must win")
	assert.Equal(t, 1, losers, "the loser must observe the changed state")

	// The stored status matches the fold of the audit trail either way.
	entries, err := svc.History(context.Background(), sub.SubmissionID)
	require.NoError(t, err)
	replayed, err := ReplayStatus(entries)
	require.NoError(t, err)

	current, err := svc.store.GetSubmission(context.Background(), sub.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, current.Status, replayed.Status)
}

func TestHistoryReplayReconstructsFinalState(t *testing.T) {
	svc, _, _ := newTestService()
	sub := mustCreate(t, svc)

	ctx := context.Background()
	_, _, err := svc.RequestRevision(ctx, approver, sub.SubmissionID, "more detail")
	require.NoError(t, err)
	_, _, err = svc.Resubmit(ctx, requester, sub.SubmissionID, "")
	require.NoError(t, err)
	_, _, err = svc.Reject(ctx, approver, sub.SubmissionID, "still not enough")
	require.NoError(t, err)

	entries, err := svc.History(ctx, sub.SubmissionID)
	require.NoError(t, err)

	replayed, err := ReplayStatus(entries)
	require.NoError(t, err)

	current, err := svc.store.GetSubmission(ctx, sub.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, current.Status, replayed.Status)
	require.NotNil(t, replayed.ApproverID)
	require.NotNil(t, current.ApproverID)
	assert.Equal(t, *current.ApproverID, *replayed.ApproverID)
}

func TestEndToEndApprovalScenario(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	sub, _, err := svc.Create(ctx, requester, CreateInput{
		Title:       "Blog Content",
		Description: "Draft post for the product launch",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, sub.Status)

	updated, _, err := svc.RequestRevision(ctx, approver, sub.SubmissionID, "add more data")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevisionRequested, updated.Status)

	updated, _, err = svc.AddRevisionContent(ctx, requester, sub.SubmissionID, "", []FileInput{pdfFile("charts.pdf")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRevisionRequested, updated.Status)

	updated, _, err = svc.Resubmit(ctx, requester, sub.SubmissionID, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)

	updated, _, err = svc.Approve(ctx, approver, sub.SubmissionID, "looks good")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
	require.NotNil(t, updated.ApproverID)
	assert.Equal(t, "approver-1", *updated.ApproverID)

	entries, err := svc.History(ctx, sub.SubmissionID)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	expected := []models.AuditAction{
		models.ActionCreated,
		models.ActionRevisionRequested,
		models.ActionCommentAdded,
		models.ActionResubmitted,
		models.ActionApproved,
	}
	for i, action := range expected {
		assert.Equal(t, action, entries[i].Action, "entry %d", i)
		assert.Equal(t, i+1, entries[i].Seq)
	}

	replayed, err := ReplayStatus(entries)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, replayed.Status)
}

func TestNotifierObservesCommittedEntries(t *testing.T) {
	svc, _, _ := newTestService()

	observed := &recordingNotifier{}
	svc.SetNotifier(observed)

	sub := mustCreate(t, svc)
	_, _, err := svc.Approve(context.Background(), approver, sub.SubmissionID, "")
	require.NoError(t, err)

	require.Len(t, observed.entries, 2)
	assert.Equal(t, models.ActionCreated, observed.entries[0].Action)
	assert.Equal(t, models.ActionApproved, observed.entries[1].Action)
}

type recordingNotifier struct {
	entries []models.AuditEntry
}

func (r *recordingNotifier) AuditRecorded(_ *models.Submission, entry *models.AuditEntry) {
	r.entries = append(r.entries, *entry)
}

// objectStoreFake implements ObjectStore in memory.
type objectStoreFake struct {
	mu      sync.Mutex
	puts    int
	stored  map[string]bool
	removed []string
	failPut bool
}

func (o *objectStoreFake) Put(_ context.Context, r io.Reader, originalName string) (StoredObject, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failPut {
		return StoredObject{}, fmt.Errorf("simulated upload failure")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return StoredObject{}, err
	}
	o.puts++
	path := fmt.Sprintf("mem/%d-%s", o.puts, originalName)
	o.stored[path] = true
	return StoredObject{Path: path, PublicURL: "http://localhost/files/" + originalName}, nil
}

func (o *objectStoreFake) Remove(_ context.Context, path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.stored, path)
	o.removed = append(o.removed, path)
	return nil
}
