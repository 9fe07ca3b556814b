package model

import "time"

// Issue is the normalized projection of a Jira issue. It is derived
// entirely from the last successful API response for its key.
type Issue struct {
	// JiraKey is the issue key (e.g., "PROJ-123").
	JiraKey string `json:"jiraKey"`

	Summary string `json:"summary"`

	// Description is the plain text of the first paragraph of the
	// issue's rich-text description, or empty when there is none.
	Description string `json:"description"`

	IssueType string `json:"issueType"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`

	// Assignee and Reporter hold display names; empty when unset.
	Assignee string `json:"assignee"`
	Reporter string `json:"reporter"`

	// Project is the owning project's key.
	Project string `json:"project"`

	// Created and Updated are passed through as Jira formats them.
	Created string `json:"created"`
	Updated string `json:"updated"`
}

// Project is the normalized projection of a Jira project.
type Project struct {
	JiraKey     string `json:"jiraKey"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ProjectType string `json:"projectType"`
	Lead        string `json:"lead"`
}

// User is an element of the Users collection.
type User struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// SearchPage is one page of a structured (JQL) search.
type SearchPage struct {
	Issues     []Issue `json:"issues"`
	Total      int     `json:"total"`
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`

	// IsLast reports whether StartAt+MaxResults reaches Total.
	IsLast bool `json:"isLast"`
}

// CacheRecord is a row of the local issue cache, upserted by JiraKey.
type CacheRecord struct {
	JiraKey  string    `json:"jiraKey" db:"jira_key"`
	Summary  string    `json:"summary" db:"summary"`
	Status   string    `json:"status" db:"status"`
	LastSync time.Time `json:"lastSync" db:"last_sync"`

	// RawData holds the serialized normalized issue.
	RawData string `json:"rawData" db:"raw_data"`
}
