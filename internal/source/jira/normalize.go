package jira

import (
	"encoding/json"

	"github.com/nhle/jira-bridge/internal/model"
)

// MapIssue flattens a Jira issue into the normalized shape. Absent
// relational fields degrade to empty strings.
func MapIssue(issue Issue) model.Issue {
	f := issue.Fields

	out := model.Issue{
		JiraKey:     issue.Key,
		Summary:     f.Summary,
		Description: plainDescription(f.Description),
		Created:     f.Created,
		Updated:     f.Updated,
	}
	if f.IssueType != nil {
		out.IssueType = f.IssueType.Name
	}
	if f.Status != nil {
		out.Status = f.Status.Name
	}
	if f.Priority != nil {
		out.Priority = f.Priority.Name
	}
	if f.Assignee != nil {
		out.Assignee = f.Assignee.DisplayName
	}
	if f.Reporter != nil {
		out.Reporter = f.Reporter.DisplayName
	}
	if f.Project != nil {
		out.Project = f.Project.Key
	}
	return out
}

// MapProject flattens a Jira project into the normalized shape.
func MapProject(p Project) model.Project {
	lead := ""
	if p.Lead != nil {
		lead = p.Lead.DisplayName
	}
	return model.Project{
		JiraKey:     p.Key,
		Name:        p.Name,
		Description: p.Description,
		ProjectType: p.ProjectTypeKey,
		Lead:        lead,
	}
}

func mapIssues(issues []Issue) []model.Issue {
	out := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, MapIssue(issue))
	}
	return out
}

// plainDescription returns the first text run of the first content block
// of an ADF document. Anything else (null, a legacy plain string, an
// empty document) yields "".
func plainDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var doc adfNode
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	if len(doc.Content) == 0 || len(doc.Content[0].Content) == 0 {
		return ""
	}
	return doc.Content[0].Content[0].Text
}
