package report_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glhours/glhours/internal/gitlab"
	"github.com/glhours/glhours/internal/report"
	"github.com/glhours/glhours/internal/timeutil"
)

var (
	me       = &gitlab.User{ID: "gid://gitlab/User/1", Username: "me"}
	meRef    = gitlab.UserRef{ID: "gid://gitlab/User/1", Username: "me"}
	otherRef = gitlab.UserRef{ID: "gid://gitlab/User/2", Username: "other"}

	march = timeutil.MonthPeriod(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))
)

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func tl(user gitlab.UserRef, spentAt string, seconds int64, summary string) gitlab.TimelogNode {
	return gitlab.TimelogNode{SpentAt: spentAt, Summary: summary, TimeSpent: seconds, User: user}
}

func issue(name string, weight *int, estimate *int64, logs ...gitlab.TimelogNode) gitlab.IssueNode {
	node := gitlab.IssueNode{
		Name:         name,
		WebURL:       "https://gitlab.com/g/p/-/issues/" + name,
		Weight:       weight,
		TimeEstimate: estimate,
	}
	node.Timelogs.Nodes = logs
	return node
}

func TestBuildMonthlyFiltersUserAndWindow(t *testing.T) {
	nodes := []gitlab.IssueNode{
		issue("A", intPtr(3), int64Ptr(7200),
			tl(meRef, "2024-03-05T10:00:00Z", 3600, "in window"),
			tl(otherRef, "2024-03-06T10:00:00Z", 1800, "someone else"),
			tl(meRef, "2024-02-29T10:00:00Z", 900, "before window"),
			tl(meRef, "2024-04-01T00:00:00Z", 900, "after window"),
		),
	}

	m := report.BuildMonthly(nodes, me, march)

	require.Len(t, m.Tasks, 1)
	require.Len(t, m.Tasks[0].Entries, 1)
	assert.Equal(t, "in window", m.Tasks[0].Entries[0].Description)
	assert.Equal(t, int64(3600), m.TotalSeconds)
}

func TestBuildMonthlyBoundaryDatesQualify(t *testing.T) {
	nodes := []gitlab.IssueNode{
		issue("A", intPtr(1), int64Ptr(1),
			tl(meRef, "2024-03-01T00:00:00Z", 100, "first instant"),
			tl(meRef, "2024-03-31T23:59:59Z", 200, "last instant"),
			tl(meRef, "2024-03-31T15:00:00Z", 300, "last day afternoon"),
		),
	}

	m := report.BuildMonthly(nodes, me, march)

	require.Len(t, m.Tasks, 1)
	assert.Len(t, m.Tasks[0].Entries, 3, "both inclusive bounds qualify")
}

func TestBuildMonthlyDropsTasksWithoutEntries(t *testing.T) {
	nodes := []gitlab.IssueNode{
		// Missing weight AND estimate, but no qualifying entries.
		issue("B", nil, nil, tl(otherRef, "2024-03-05T10:00:00Z", 3600, "x")),
		issue("C", intPtr(3), int64Ptr(5)),
	}

	m := report.BuildMonthly(nodes, me, march)

	assert.Empty(t, m.Tasks, "issues with zero qualifying entries never surface")
	assert.Empty(t, m.Validations, "and never produce validation warnings")
	assert.Empty(t, m.Insights)
	assert.Zero(t, m.TotalSeconds)
}

func TestBuildMonthlyEntryAndTaskOrdering(t *testing.T) {
	nodes := []gitlab.IssueNode{
		issue("later", intPtr(1), int64Ptr(1),
			tl(meRef, "2024-03-10T09:00:00Z", 900, "c"),
			tl(meRef, "2024-03-05T09:00:00Z", 3600, "a"),
		),
		issue("earlier", intPtr(1), int64Ptr(1),
			tl(meRef, "2024-03-05T08:00:00Z", 1800, "b"),
			tl(meRef, "2024-03-01T09:00:00Z", 1800, "d"),
		),
	}

	m := report.BuildMonthly(nodes, me, march)

	require.Len(t, m.Tasks, 2)
	assert.Equal(t, "earlier", m.Tasks[0].Name, "task list ordered by first entry date")
	assert.Equal(t, "later", m.Tasks[1].Name)

	for _, task := range m.Tasks {
		for i := 1; i < len(task.Entries); i++ {
			assert.False(t, task.Entries[i].SpentAt.Before(task.Entries[i-1].SpentAt),
				"entries of %q non-decreasing by date", task.Name)
		}
	}
}

// Spec scenario: entries 05/01/10 March with 3600/1800/900 seconds.
func TestBuildMonthlyScenarioOrderingAndTotal(t *testing.T) {
	nodes := []gitlab.IssueNode{
		issue("A", intPtr(1), int64Ptr(1),
			tl(meRef, "2024-03-05T10:00:00Z", 3600, "second"),
			tl(meRef, "2024-03-01T10:00:00Z", 1800, "first"),
			tl(meRef, "2024-03-10T10:00:00Z", 900, "third"),
		),
	}

	m := report.BuildMonthly(nodes, me, march)

	require.Len(t, m.Tasks, 1)
	got := make([]string, 0, 3)
	for _, e := range m.Tasks[0].Entries {
		got = append(got, e.Day)
	}
	assert.Equal(t, []string{"2024-03-01", "2024-03-05", "2024-03-10"}, got)
	assert.Equal(t, int64(6300), m.Tasks[0].TotalSeconds())
	assert.Equal(t, "1h 45m", timeutil.FormatDuration(m.Tasks[0].TotalSeconds()))
}

func TestBuildMonthlyValidations(t *testing.T) {
	nodes := []gitlab.IssueNode{
		issue("no-weight", nil, int64Ptr(5), tl(meRef, "2024-03-05T10:00:00Z", 60, "x")),
		issue("no-estimate", intPtr(2), nil, tl(meRef, "2024-03-06T10:00:00Z", 60, "x")),
		issue("complete", intPtr(3), int64Ptr(5), tl(meRef, "2024-03-07T10:00:00Z", 60, "x")),
	}

	m := report.BuildMonthly(nodes, me, march)

	require.Len(t, m.Tasks, 3)
	require.Len(t, m.Validations, 2)

	assert.Equal(t, "no-weight", m.Validations[0].IssueName)
	assert.False(t, m.Validations[0].HasWeight)
	assert.True(t, m.Validations[0].HasTimeEstimate)

	assert.Equal(t, "no-estimate", m.Validations[1].IssueName)
	assert.True(t, m.Validations[1].HasWeight)
	assert.False(t, m.Validations[1].HasTimeEstimate)
}

func TestBuildMonthlyInsights(t *testing.T) {
	nodes := []gitlab.IssueNode{
		issue("A", intPtr(1), int64Ptr(1),
			tl(meRef, "2024-03-05T09:00:00Z", 3600, "morning"),
			tl(meRef, "2024-03-05T15:00:00Z", 1800, "afternoon"),
			tl(meRef, "2024-03-02T09:00:00Z", 900, "earlier day"),
		),
		issue("B", intPtr(1), int64Ptr(1),
			tl(meRef, "2024-03-05T18:00:00Z", 600, "other task same day"),
		),
	}

	m := report.BuildMonthly(nodes, me, march)

	assert.Equal(t, []report.Insight{
		{Date: "2024-03-02", Seconds: 900},
		{Date: "2024-03-05", Seconds: 6000},
	}, m.Insights)

	var sum int64
	for _, in := range m.Insights {
		sum += in.Seconds
	}
	assert.Equal(t, m.TotalSeconds, sum, "insights and total are the same figure bucketed differently")
}

func TestBuildMonthlyWithoutUserPanics(t *testing.T) {
	assert.Panics(t, func() { report.BuildMonthly(nil, nil, march) })
	assert.Panics(t, func() { report.BuildMonthly(nil, &gitlab.User{}, march) })
}

func epicIssue(name, iterationID string, milestone string, assignee gitlab.UserRef, logs ...gitlab.TimelogNode) gitlab.IssueNode {
	node := gitlab.IssueNode{
		Name:   name,
		WebURL: "https://gitlab.com/g/p/-/issues/" + name,
		State:  "opened",
	}
	if iterationID != "" {
		start := "2024-03-01"
		node.Iteration = &gitlab.Iteration{ID: iterationID, Title: "Sprint " + iterationID, StartDate: &start}
	}
	if milestone != "" {
		node.Milestone = &gitlab.Milestone{ID: "m1", Title: milestone}
	}
	node.Assignees.Nodes = []gitlab.UserRef{assignee}
	node.Timelogs.Nodes = logs
	var total int64
	for _, l := range logs {
		total += l.TimeSpent
	}
	node.Timelogs.TotalSpentTime = total
	return node
}

func epic(title string, issues ...gitlab.IssueNode) gitlab.EpicNode {
	node := gitlab.EpicNode{ID: "gid://gitlab/Epic/" + title, Title: title, WebURL: "https://gitlab.com/groups/g/-/epics/1"}
	node.Issues.Nodes = issues
	return node
}

func TestBuildEpicsGroupsByIteration(t *testing.T) {
	nodes := []gitlab.EpicNode{
		epic("Payments",
			epicIssue("a", "it-1", "", meRef, tl(meRef, "2024-03-05T10:00:00Z", 3600, "x")),
			epicIssue("b", "it-1", "", otherRef),
			epicIssue("c", "", "", meRef),
		),
	}

	epics := report.BuildEpics(nodes, me.ID, "")

	require.Len(t, epics, 1)
	require.Len(t, epics[0].Sprints, 2)

	withIteration := epics[0].Sprints[0]
	assert.Equal(t, "it-1", withIteration.ID)
	assert.Len(t, withIteration.Issues, 2)

	noSprint := epics[0].Sprints[1]
	assert.Equal(t, report.NoSprintID, noSprint.ID)
	assert.Equal(t, "Sem Sprint", noSprint.Title)
	assert.Nil(t, noSprint.StartDate, "sprints without a start date sort last")
}

func TestBuildEpicsFiltersTimelogsToUser(t *testing.T) {
	nodes := []gitlab.EpicNode{
		epic("Payments",
			epicIssue("a", "it-1", "", meRef,
				tl(meRef, "2024-03-05T10:00:00Z", 3600, "mine"),
				tl(otherRef, "2024-03-05T11:00:00Z", 7200, "not mine"),
			),
		),
	}

	epics := report.BuildEpics(nodes, me.ID, "")

	require.Len(t, epics, 1)
	iss := epics[0].Sprints[0].Issues[0]
	require.Len(t, iss.Entries, 1)
	assert.Equal(t, "mine", iss.Entries[0].Description)
	assert.Equal(t, int64(3600), iss.UserSeconds())
	assert.Equal(t, int64(10800), iss.TotalSpentTime,
		"issue-level aggregate stays unfiltered, distinct from the user-scoped breakdown")
}

func TestBuildEpicsMilestoneFilterIsExact(t *testing.T) {
	nodes := []gitlab.EpicNode{
		epic("Payments",
			epicIssue("a", "it-1", "Release 1.0", meRef, tl(meRef, "2024-03-05T10:00:00Z", 60, "x")),
			epicIssue("b", "it-1", "release 1.0", meRef),
		),
		epic("Checkout",
			epicIssue("c", "it-2", "Release 2.0", meRef),
		),
	}

	epics := report.BuildEpics(nodes, me.ID, "Release 1.0")

	require.Len(t, epics, 1, "epic with zero matching issues is skipped entirely")
	assert.Equal(t, "Payments", epics[0].Title)
	require.Len(t, epics[0].Sprints, 1)
	assert.Len(t, epics[0].Sprints[0].Issues, 1, "match is case-sensitive and exact")
}

func TestBuildEpicsSkipsNonParticipating(t *testing.T) {
	nodes := []gitlab.EpicNode{
		epic("Theirs", epicIssue("a", "it-1", "", otherRef, tl(otherRef, "2024-03-05T10:00:00Z", 60, "x"))),
		epic("ByTimelog", epicIssue("b", "it-1", "", otherRef, tl(meRef, "2024-03-05T10:00:00Z", 60, "x"))),
	}

	epics := report.BuildEpics(nodes, me.ID, "")

	require.Len(t, epics, 1)
	assert.Equal(t, "ByTimelog", epics[0].Title, "a time log counts as participation even without assignment")
}

func TestBuildEpicsSprintOrdering(t *testing.T) {
	early, late := "2024-02-01", "2024-04-01"
	a := epicIssue("a", "it-late", "", meRef, tl(meRef, "2024-03-05T10:00:00Z", 60, "x"))
	a.Iteration.StartDate = &late
	b := epicIssue("b", "it-early", "", meRef)
	b.Iteration.StartDate = &early
	c := epicIssue("c", "", "", meRef)

	epics := report.BuildEpics([]gitlab.EpicNode{epic("E", a, b, c)}, me.ID, "")

	require.Len(t, epics, 1)
	ids := make([]string, 0, 3)
	for _, s := range epics[0].Sprints {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"it-early", "it-late", report.NoSprintID}, ids)
}
