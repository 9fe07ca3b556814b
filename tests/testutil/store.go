package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/jira-bridge/internal/model"
	"github.com/nhle/jira-bridge/internal/store"
)

// NewTestStore creates an in-memory SQLiteStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedCachedIssue upserts a minimal cache record for key.
func SeedCachedIssue(t *testing.T, s store.IssueCache, key, summary, status string) {
	t.Helper()

	err := s.UpsertCachedIssue(context.Background(), model.CacheRecord{
		JiraKey:  key,
		Summary:  summary,
		Status:   status,
		LastSync: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		RawData:  `{"jiraKey":"` + key + `"}`,
	})
	if err != nil {
		t.Fatalf("seeding cached issue %s: %v", key, err)
	}
}
