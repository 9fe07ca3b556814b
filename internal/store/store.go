package store

import (
	"context"
	"errors"

	"github.com/nhle/jira-bridge/internal/model"
)

// ErrNotFound is returned when no cached issue exists for a key.
var ErrNotFound = errors.New("cached issue not found")

// CacheFilter controls filtering, sorting, and pagination for cache reads.
type CacheFilter struct {
	Status   *string
	Query    *string // matches key or summary
	SortBy   string  // "jira_key", "summary", "status", "last_sync"
	SortDesc bool
	Limit    int
	Offset   int
}

// IssueCache is the local table of recently synced issues. Records are
// upserted by key and never deleted.
type IssueCache interface {
	UpsertCachedIssue(ctx context.Context, rec model.CacheRecord) error
	GetCachedIssues(ctx context.Context, filter CacheFilter) ([]model.CacheRecord, error)
	GetCachedIssue(ctx context.Context, key string) (*model.CacheRecord, error)
}
