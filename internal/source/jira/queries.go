package jira

// Canned JQL queries. The assignee IDs and excluded keys are business
// constants, not user input.
const (
	// MyOpenIssuesJQL selects unresolved issues assigned to the caller.
	MyOpenIssuesJQL = "assignee = currentUser() AND status not in (Done, Closed, Resolved)"

	// AbapOpenIssuesJQL selects in-progress work of the ABAP team,
	// excluding the PM project, a fixed set of tracking issues and
	// build/unit-test sub-tasks.
	AbapOpenIssuesJQL = `assignee IN (712020:c1db29d7-8dee-4163-91cc-8fa4cb2837eb, 63dce551614cb4ba53001678, 557058:afccb85b-0dcc-4fee-971c-af6bf9067bf7, 63c825b10385ff0c65469949, 5eec6415a228c50ab94c350b, 712020:da8104df-9dac-414a-a369-5a44ef5015e3, 5fb64810facfd60076ad4e0b, 6398260ffbf54baf29036d2a, 712020:5ef25df8-21f3-4be7-8127-59146eb0f2af, 712020:db10cee4-f448-4443-baf2-14fb88436c7c, 712020:9616c79b-8b48-4e05-ac27-e017434ce8ac) AND status = "In Progress"` +
		` AND project != ISHPM` +
		` AND key != ISHCHCMP-10451` +
		` AND key != ISHCHCMP-10452` +
		` AND key != ISHSINGTMS-996` +
		` AND key != ISHSINGTMS-998` +
		` AND key != ISHSINGTMS-1004` +
		` AND key != ISHSINGTMS-1006` +
		` AND key != ROLATAMP0G-3791` +
		` AND key != ROLATAMP0G-3793` +
		` AND "Sub-Task Category[Dropdown]" not in ("Build & UT")` +
		` ORDER BY assignee ASC, project ASC, created DESC`

	// RecentlyUpdatedJQL selects issues touched in the last day; it
	// drives the cache sync.
	RecentlyUpdatedJQL = "updated >= -1d"
)
