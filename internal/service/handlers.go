package service

import (
	"context"
	"fmt"

	"github.com/nhle/jira-bridge/internal/model"
	"github.com/nhle/jira-bridge/internal/store"
)

// ReadIssues serves the Issues collection from the local cache.
func (s *Service) ReadIssues(ctx context.Context) ([]model.CacheRecord, error) {
	records, err := s.cache.GetCachedIssues(ctx, store.CacheFilter{})
	if err != nil {
		return nil, fmt.Errorf("reading cached issues: %w", err)
	}
	return records, nil
}

// ReadProjects serves the Projects collection live from Jira. Failures
// degrade to an empty list so a tracker outage does not block reads.
func (s *Service) ReadProjects(ctx context.Context) []model.Project {
	projects, err := s.GetProjects(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("could not fetch projects from Jira")
		return []model.Project{}
	}
	return projects
}

// ReadUsers serves the Users collection, which is always empty.
func (s *Service) ReadUsers(_ context.Context) []model.User {
	return []model.User{}
}
