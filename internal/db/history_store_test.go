package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryStore_RecordAndList(t *testing.T) {
	ctx := context.Background()
	hs := NewHistoryStore(openTestStore(t))

	records := []AssignmentRecord{
		{JobID: "job-1", CaseID: "case-9", EmailID: "email-01", Subject: "Discovery request", Sender: "counsel@firm.test", Success: true, CreatedAt: time.Unix(100, 0)},
		{JobID: "job-1", CaseID: "case-9", EmailID: "email-02", Subject: "Deposition notes", Sender: "counsel@firm.test", Success: false, Error: "no case", CreatedAt: time.Unix(200, 0)},
	}
	require.NoError(t, hs.RecordAssignments(ctx, records))

	got, err := hs.ListAssignments(ctx, "case-9", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first
	assert.Equal(t, "email-02", got[0].EmailID)
	assert.False(t, got[0].Success)
	assert.Equal(t, "no case", got[0].Error)
	assert.Equal(t, "email-01", got[1].EmailID)
	assert.True(t, got[1].Success)
	assert.NotEmpty(t, got[0].ID, "id should be generated when missing")
}

func TestHistoryStore_ListLimit(t *testing.T) {
	ctx := context.Background()
	hs := NewHistoryStore(openTestStore(t))

	var records []AssignmentRecord
	for i := 0; i < 5; i++ {
		records = append(records, AssignmentRecord{
			JobID: "job-1", CaseID: "case-9", EmailID: "email", Success: true,
			CreatedAt: time.Unix(int64(i), 0),
		})
	}
	require.NoError(t, hs.RecordAssignments(ctx, records))

	got, err := hs.ListAssignments(ctx, "case-9", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestHistoryStore_EmptyBatchIsNoop(t *testing.T) {
	hs := NewHistoryStore(openTestStore(t))
	assert.NoError(t, hs.RecordAssignments(context.Background(), nil))
}

func TestHistoryStore_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	hs := NewHistoryStore(openTestStore(t))

	err := hs.RecordAssignments(ctx, []AssignmentRecord{{JobID: "job-1", CaseID: "", EmailID: "email-01"}})
	assert.Error(t, err)

	_, err = hs.ListAssignments(ctx, "  ", 10)
	assert.Error(t, err)
}

func TestHistoryStore_CasesAreIndependent(t *testing.T) {
	ctx := context.Background()
	hs := NewHistoryStore(openTestStore(t))

	require.NoError(t, hs.RecordAssignments(ctx, []AssignmentRecord{
		{JobID: "job-1", CaseID: "case-1", EmailID: "email-01", Success: true},
		{JobID: "job-2", CaseID: "case-2", EmailID: "email-02", Success: true},
	}))

	got, err := hs.ListAssignments(ctx, "case-1", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "email-01", got[0].EmailID)
}
