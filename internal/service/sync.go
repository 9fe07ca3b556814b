package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/jira-bridge/internal/model"
	"github.com/nhle/jira-bridge/internal/source/jira"
)

// SyncIssues fetches the issues updated in the last day and upserts each
// into the cache by key. The first cache-write failure aborts the rest of
// the run.
func (s *Service) SyncIssues(ctx context.Context) (string, error) {
	runID := uuid.New().String()
	s.logger.Info().Str("run_id", runID).Msg("syncing recently updated issues")

	res := s.jiraClient(ctx).SearchIssues(ctx, jira.RecentlyUpdatedJQL)
	if !res.Success {
		s.logger.Error().
			Str("run_id", runID).
			Str("error", res.Error).
			Msg("sync search failed")
		return "", opError("failed to sync issues", "", res)
	}

	for _, issue := range res.Data {
		if err := s.cacheIssue(ctx, issue); err != nil {
			s.logger.Error().
				Err(err).
				Str("run_id", runID).
				Str("key", issue.JiraKey).
				Msg("sync aborted on cache write")
			return "", &OperationError{
				Op:      "failed to sync issues",
				Message: err.Error(),
			}
		}
	}

	s.logger.Info().
		Str("run_id", runID).
		Int("count", len(res.Data)).
		Msg("sync complete")
	return fmt.Sprintf("Successfully synced %d issues", len(res.Data)), nil
}

func (s *Service) cacheIssue(ctx context.Context, issue model.Issue) error {
	raw, err := json.Marshal(issue)
	if err != nil {
		return fmt.Errorf("marshaling issue %s: %w", issue.JiraKey, err)
	}

	return s.cache.UpsertCachedIssue(ctx, model.CacheRecord{
		JiraKey:  issue.JiraKey,
		Summary:  issue.Summary,
		Status:   issue.Status,
		LastSync: s.now().UTC(),
		RawData:  string(raw),
	})
}
