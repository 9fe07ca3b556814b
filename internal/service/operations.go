package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nhle/jira-bridge/internal/model"
	"github.com/nhle/jira-bridge/internal/source/jira"
)

// Defaults applied to SearchByJQL when the caller omits paging.
const (
	DefaultMaxResults = 50
	DefaultStartAt    = 0
)

// Placeholder answers of the unimplemented write operations.
const (
	CreateIssuePlaceholder = "Create issue functionality not yet implemented"
	UpdateIssuePlaceholder = "Update issue functionality not yet implemented"
)

// SearchRequest is the input of SearchByJQL. Zero MaxResults means
// DefaultMaxResults.
type SearchRequest struct {
	JQL        string `json:"jql"`
	MaxResults int    `json:"maxResults,omitempty"`
	StartAt    int    `json:"startAt,omitempty"`
}

// SearchPayload is the serialized result of paginated searches.
type SearchPayload struct {
	Issues  []model.Issue `json:"issues"`
	Total   int           `json:"total"`
	IsLast  bool          `json:"isLast"`
	HasMore bool          `json:"hasMore"`
	JQLUsed string        `json:"jqlUsed,omitempty"`
}

// CreateIssueRequest is accepted by CreateIssue.
type CreateIssueRequest struct {
	Project     string `json:"project"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	IssueType   string `json:"issueType"`
}

// UpdateIssueRequest is accepted by UpdateIssue.
type UpdateIssueRequest struct {
	JiraKey     string `json:"jiraKey"`
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// TestConnection checks the credentials against Jira and reports the
// account in use.
func (s *Service) TestConnection(ctx context.Context) (string, error) {
	s.logger.Info().Msg("testing Jira connection")

	res := s.jiraClient(ctx).TestConnection(ctx)
	if !res.Success {
		s.logger.Error().Str("error", res.Error).Msg("connection test failed")
		return "", opError("connection failed", "", res)
	}

	s.logger.Info().
		Str("user", res.Data.User).
		Bool("destination_used", res.Data.DestinationUsed).
		Str("destination", res.Data.DestinationName).
		Msg("connection test successful")
	return "Connection successful. Logged in as: " + res.Data.User, nil
}

// GetProjects lists the projects visible to the account.
func (s *Service) GetProjects(ctx context.Context) ([]model.Project, error) {
	res := s.jiraClient(ctx).GetProjects(ctx)
	if !res.Success {
		return nil, opError("failed to fetch projects", "", res)
	}

	s.logger.Info().Int("count", len(res.Data)).Msg("fetched projects")
	return res.Data, nil
}

// GetIssueByKey fetches a single issue.
func (s *Service) GetIssueByKey(ctx context.Context, jiraKey string) (*model.Issue, error) {
	res := s.jiraClient(ctx).GetIssue(ctx, jiraKey)
	if !res.Success {
		s.logger.Error().
			Str("key", jiraKey).
			Int("status", res.Status).
			Str("error", res.Error).
			Msg("failed to fetch issue")
		return nil, opError("failed to fetch issue", jiraKey, res)
	}
	return &res.Data, nil
}

// SearchIssues runs a free-text JQL query.
func (s *Service) SearchIssues(ctx context.Context, jql string) ([]model.Issue, error) {
	res := s.jiraClient(ctx).SearchIssues(ctx, jql)
	if !res.Success {
		return nil, opError("failed to search issues", "", res)
	}
	return res.Data, nil
}

// SearchByJQL runs a paginated JQL query and returns the page serialized
// as JSON.
func (s *Service) SearchByJQL(ctx context.Context, req SearchRequest) (string, error) {
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	startAt := req.StartAt
	if startAt < 0 {
		startAt = DefaultStartAt
	}

	s.logger.Info().
		Str("jql", req.JQL).
		Int("max_results", maxResults).
		Int("start_at", startAt).
		Msg("searching Jira")

	res := s.jiraClient(ctx).SearchByJQL(ctx, req.JQL, maxResults, startAt)
	if !res.Success {
		return "", opError("failed to search issues", "", res)
	}

	s.logger.Info().
		Int("total", res.Data.Total).
		Int("returned", len(res.Data.Issues)).
		Msg("search successful")
	return encodePage(res.Data, "")
}

// GetMyOpenIssues returns the caller's open issues serialized as JSON,
// including the JQL that selected them.
func (s *Service) GetMyOpenIssues(ctx context.Context) (string, error) {
	res := s.jiraClient(ctx).GetMyOpenIssues(ctx)
	if !res.Success {
		return "", opError("failed to fetch my open issues", "", res)
	}

	s.logger.Info().
		Int("total", res.Data.Total).
		Int("returned", len(res.Data.Issues)).
		Msg("found open issues assigned to current user")
	return encodePage(res.Data, jira.MyOpenIssuesJQL)
}

// GetAbapOpenIssues returns the ABAP team's in-progress issues
// serialized as JSON, including the JQL that selected them.
func (s *Service) GetAbapOpenIssues(ctx context.Context) (string, error) {
	res := s.jiraClient(ctx).GetAbapOpenIssues(ctx)
	if !res.Success {
		return "", opError("failed to fetch open ABAP issues", "", res)
	}
	return encodePage(res.Data, jira.AbapOpenIssuesJQL)
}

// CreateIssue is not implemented; it performs no call.
func (s *Service) CreateIssue(_ context.Context, _ CreateIssueRequest) (string, error) {
	return CreateIssuePlaceholder, nil
}

// UpdateIssue is not implemented; it performs no call.
func (s *Service) UpdateIssue(_ context.Context, _ UpdateIssueRequest) (string, error) {
	return UpdateIssuePlaceholder, nil
}

func encodePage(page model.SearchPage, jqlUsed string) (string, error) {
	issues := page.Issues
	if issues == nil {
		issues = []model.Issue{}
	}

	data, err := json.Marshal(SearchPayload{
		Issues:  issues,
		Total:   page.Total,
		IsLast:  page.IsLast,
		HasMore: !page.IsLast,
		JQLUsed: jqlUsed,
	})
	if err != nil {
		return "", fmt.Errorf("encoding search result: %w", err)
	}
	return string(data), nil
}

func opError[T any](op, key string, res jira.Result[T]) *OperationError {
	return &OperationError{
		Op:      op,
		Key:     key,
		Status:  res.Status,
		Message: res.Error,
	}
}
