package jira

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/go-querystring/query"

	"github.com/nhle/jira-bridge/internal/model"
)

// ConnectionInfo identifies the account the client is authenticated as.
type ConnectionInfo struct {
	User            string `json:"user"`
	Email           string `json:"email"`
	DestinationUsed bool   `json:"destinationUsed"`
	DestinationName string `json:"destinationName"`
}

// searchParams are the query parameters of a structured search.
type searchParams struct {
	JQL        string `url:"jql"`
	StartAt    int    `url:"startAt"`
	MaxResults int    `url:"maxResults,omitempty"`
}

// TestConnection verifies credentials by calling GET /rest/api/3/myself.
func (c *Client) TestConnection(ctx context.Context) Result[ConnectionInfo] {
	var me Myself
	if err := c.Get(ctx, "/rest/api/3/myself", nil, &me); err != nil {
		return fail[ConnectionInfo](err)
	}
	return succeed(ConnectionInfo{
		User:            me.DisplayName,
		Email:           me.EmailAddress,
		DestinationUsed: c.cfg.DestinationUsed,
		DestinationName: c.cfg.DestinationName,
	})
}

// GetProjects lists every project visible to the account.
func (c *Client) GetProjects(ctx context.Context) Result[[]model.Project] {
	var raw []Project
	if err := c.Get(ctx, "/rest/api/3/project", nil, &raw); err != nil {
		return fail[[]model.Project](err)
	}

	projects := make([]model.Project, 0, len(raw))
	for _, p := range raw {
		projects = append(projects, MapProject(p))
	}
	return succeed(projects)
}

// SearchIssues runs a free-text JQL query. The query is escaped and
// interpolated into the URL as-is.
func (c *Client) SearchIssues(ctx context.Context, jql string) Result[[]model.Issue] {
	path := "/rest/api/3/search?jql=" + url.QueryEscape(jql)

	var resp SearchResponse
	if err := c.Get(ctx, path, nil, &resp); err != nil {
		return fail[[]model.Issue](err)
	}
	return succeed(mapIssues(resp.Issues))
}

// SearchByJQL runs a structured JQL query for one page of results.
// IsLast is computed from the paging values Jira echoes back.
func (c *Client) SearchByJQL(
	ctx context.Context,
	jql string,
	maxResults int,
	startAt int,
) Result[model.SearchPage] {
	params, err := query.Values(searchParams{
		JQL:        jql,
		StartAt:    startAt,
		MaxResults: maxResults,
	})
	if err != nil {
		return fail[model.SearchPage](fmt.Errorf("encoding search params: %w", err))
	}

	var resp SearchResponse
	if err := c.Get(ctx, "/rest/api/3/search", params, &resp); err != nil {
		return fail[model.SearchPage](err)
	}

	return succeed(model.SearchPage{
		Issues:     mapIssues(resp.Issues),
		Total:      resp.Total,
		StartAt:    resp.StartAt,
		MaxResults: resp.MaxResults,
		IsLast:     IsLastPage(resp.StartAt, resp.MaxResults, resp.Total),
	})
}

// GetIssue fetches a single issue by key.
func (c *Client) GetIssue(ctx context.Context, key string) Result[model.Issue] {
	var issue Issue
	path := "/rest/api/3/issue/" + url.PathEscape(key)
	if err := c.Get(ctx, path, nil, &issue); err != nil {
		return fail[model.Issue](err)
	}
	return succeed(MapIssue(issue))
}

// GetMyOpenIssues returns open issues assigned to the current user.
func (c *Client) GetMyOpenIssues(ctx context.Context) Result[model.SearchPage] {
	c.logger.Info().Str("jql", MyOpenIssuesJQL).Msg("fetching my open issues")
	return c.SearchByJQL(ctx, MyOpenIssuesJQL, 0, 0)
}

// GetAbapOpenIssues returns the in-progress issues of the ABAP team.
func (c *Client) GetAbapOpenIssues(ctx context.Context) Result[model.SearchPage] {
	c.logger.Info().Str("jql", AbapOpenIssuesJQL).Msg("fetching open ABAP issues")
	return c.SearchByJQL(ctx, AbapOpenIssuesJQL, 0, 0)
}

// IsLastPage reports whether a page starting at startAt with pageSize
// entries reaches the end of a result set of total issues.
func IsLastPage(startAt, pageSize, total int) bool {
	return startAt+pageSize >= total
}
