// Package report reconciles raw GitLab issue and time-log nodes into
// the task, insight and validation views shown and exported by the CLI.
// Aggregation itself performs no I/O and is deterministic; the
// multi-group scan delegates fetching to an EpicSource.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/glhours/glhours/internal/gitlab"
	"github.com/glhours/glhours/internal/timeutil"
)

// Entry is one recorded unit of work surfaced in a report.
type Entry struct {
	Seconds     int64
	Description string
	SpentAt     time.Time
	Day         string // calendar day of the raw timestamp, "YYYY-MM-DD"
}

// Task is an issue with the current user's qualifying time entries,
// ordered ascending by date.
type Task struct {
	Name         string
	WebURL       string
	Weight       *int
	TimeEstimate *int64
	Iteration    *gitlab.Iteration
	Entries      []Entry
}

// TotalSeconds sums the task's surfaced entries.
func (t Task) TotalSeconds() int64 {
	var total int64
	for _, e := range t.Entries {
		total += e.Seconds
	}
	return total
}

// Validation flags a task with qualifying entries that is missing
// weight and/or time estimate metadata.
type Validation struct {
	HasWeight       bool
	HasTimeEstimate bool
	IssueName       string
	IssueURL        string
}

// Insight is the summed logged time of one calendar day.
type Insight struct {
	Date    string // "YYYY-MM-DD"
	Seconds int64
}

// Monthly is the aggregated month view. TotalSeconds is always
// recomputed from the surfaced entries, never taken from a remote
// aggregate.
type Monthly struct {
	Tasks        []Task
	Validations  []Validation
	Insights     []Insight
	TotalSeconds int64
}

// BuildMonthly filters raw issue nodes down to the current user's time
// logs inside the month window, drops issues without qualifying
// entries, and derives validations and per-day insights.
//
// Calling it without a resolved user is a programming error.
func BuildMonthly(nodes []gitlab.IssueNode, user *gitlab.User, period timeutil.Period) Monthly {
	if user == nil || user.ID == "" {
		panic("report: BuildMonthly called without a resolved user")
	}

	var out Monthly

	for _, node := range nodes {
		task := Task{
			Name:         node.Name,
			WebURL:       node.WebURL,
			Weight:       node.Weight,
			TimeEstimate: node.TimeEstimate,
			Iteration:    node.Iteration,
		}

		for _, tl := range node.Timelogs.Nodes {
			if tl.User.ID != user.ID {
				continue
			}
			spentAt := parseSpentAt(tl.SpentAt)
			if !period.Contains(spentAt) {
				continue
			}
			task.Entries = append(task.Entries, Entry{
				Seconds:     tl.TimeSpent,
				Description: tl.Summary,
				SpentAt:     spentAt,
				Day:         timeutil.DayKey(tl.SpentAt),
			})
		}

		// Issues with zero qualifying entries are dropped entirely and
		// never produce a validation warning either.
		if len(task.Entries) == 0 {
			continue
		}

		sortEntries(task.Entries)

		hasWeight := node.Weight != nil
		hasEstimate := node.TimeEstimate != nil
		if !hasWeight || !hasEstimate {
			out.Validations = append(out.Validations, Validation{
				HasWeight:       hasWeight,
				HasTimeEstimate: hasEstimate,
				IssueName:       node.Name,
				IssueURL:        node.WebURL,
			})
		}

		out.Tasks = append(out.Tasks, task)
	}

	// Task order follows each task's earliest surviving entry.
	sort.SliceStable(out.Tasks, func(i, j int) bool {
		return out.Tasks[i].Entries[0].SpentAt.Before(out.Tasks[j].Entries[0].SpentAt)
	})

	out.Insights = buildInsights(out.Tasks)
	for _, t := range out.Tasks {
		out.TotalSeconds += t.TotalSeconds()
	}

	return out
}

func parseSpentAt(iso string) time.Time {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		panic(fmt.Sprintf("report: malformed spentAt timestamp %q: %v", iso, err))
	}
	return t
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].SpentAt.Before(entries[j].SpentAt)
	})
}

// buildInsights buckets every surfaced entry by the calendar day of its
// own timestamp representation and sums the seconds per day.
func buildInsights(tasks []Task) []Insight {
	byDay := make(map[string]int64)
	for _, t := range tasks {
		for _, e := range t.Entries {
			byDay[e.Day] += e.Seconds
		}
	}

	insights := make([]Insight, 0, len(byDay))
	for day, secs := range byDay {
		insights = append(insights, Insight{Date: day, Seconds: secs})
	}
	sort.Slice(insights, func(i, j int) bool {
		return insights[i].Date < insights[j].Date
	})
	return insights
}

// SprintIssue is one issue inside a sprint group. Entries hold only the
// current user's time logs; TotalSpentTime is the issue-level aggregate
// reported by GitLab across all collaborators, shown as-is.
type SprintIssue struct {
	ID             string
	Name           string
	WebURL         string
	Weight         *int
	TimeEstimate   *int64
	State          string
	TotalSpentTime int64
	Assignees      []gitlab.UserRef
	Entries        []Entry
}

// UserSeconds sums the current user's entries on this issue.
func (s SprintIssue) UserSeconds() int64 {
	var total int64
	for _, e := range s.Entries {
		total += e.Seconds
	}
	return total
}

// Sprint groups issues sharing an iteration. The sentinel id "no-sprint"
// collects issues without any iteration.
type Sprint struct {
	ID          string
	Title       string
	Description *string
	StartDate   *string
	DueDate     *string
	Issues      []SprintIssue
}

type Epic struct {
	ID          string
	Title       string
	WebURL      string
	Description *string
	Sprints     []Sprint
}

// NoSprintID groups issues that carry no iteration.
const NoSprintID = "no-sprint"

const noSprintTitle = "Sem Sprint"

// BuildEpics turns raw epic nodes into the epic → sprint → issue view.
// When milestoneTitle is non-empty, issues are filtered to an exact
// title match and epics left with no issues are skipped. Epics the user
// does not participate in (no assigned issues and no time logs) are
// skipped as well.
func BuildEpics(nodes []gitlab.EpicNode, userID, milestoneTitle string) []Epic {
	if userID == "" {
		panic("report: BuildEpics called without a resolved user")
	}

	var epics []Epic

	for _, node := range nodes {
		issues := node.Issues.Nodes

		if milestoneTitle != "" {
			issues = filterByMilestone(issues, milestoneTitle)
			if len(issues) == 0 {
				continue
			}
		}

		if !userParticipates(issues, userID) {
			continue
		}

		epics = append(epics, Epic{
			ID:          node.ID,
			Title:       node.Title,
			WebURL:      node.WebURL,
			Description: node.Description,
			Sprints:     groupBySprint(issues, userID),
		})
	}

	sort.SliceStable(epics, func(i, j int) bool {
		return strings.ToLower(epics[i].Title) < strings.ToLower(epics[j].Title)
	})
	return epics
}

func filterByMilestone(issues []gitlab.IssueNode, title string) []gitlab.IssueNode {
	var kept []gitlab.IssueNode
	for _, issue := range issues {
		if issue.Milestone != nil && issue.Milestone.Title == title {
			kept = append(kept, issue)
		}
	}
	return kept
}

// userParticipates reports whether the user is assigned to, or has
// logged time on, at least one of the issues.
func userParticipates(issues []gitlab.IssueNode, userID string) bool {
	for _, issue := range issues {
		for _, a := range issue.Assignees.Nodes {
			if a.ID == userID {
				return true
			}
		}
		for _, tl := range issue.Timelogs.Nodes {
			if tl.User.ID == userID {
				return true
			}
		}
	}
	return false
}

func groupBySprint(issues []gitlab.IssueNode, userID string) []Sprint {
	grouped := make(map[string]*Sprint)
	var order []string

	for _, issue := range issues {
		id := NoSprintID
		if issue.Iteration != nil {
			id = issue.Iteration.ID
		}

		sprint, ok := grouped[id]
		if !ok {
			sprint = &Sprint{ID: id, Title: noSprintTitle}
			if issue.Iteration != nil {
				sprint.Title = issue.Iteration.Title
				sprint.Description = issue.Iteration.Description
				sprint.StartDate = issue.Iteration.StartDate
				sprint.DueDate = issue.Iteration.DueDate
			}
			grouped[id] = sprint
			order = append(order, id)
		}

		sprint.Issues = append(sprint.Issues, buildSprintIssue(issue, userID))
	}

	sprints := make([]Sprint, 0, len(order))
	for _, id := range order {
		sprints = append(sprints, *grouped[id])
	}

	// Ascending by start date; sprints without one sort last.
	sort.SliceStable(sprints, func(i, j int) bool {
		a, b := sprints[i].StartDate, sprints[j].StartDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return *a < *b
	})
	return sprints
}

func buildSprintIssue(issue gitlab.IssueNode, userID string) SprintIssue {
	si := SprintIssue{
		ID:             issue.ID,
		Name:           issue.Name,
		WebURL:         issue.WebURL,
		Weight:         issue.Weight,
		TimeEstimate:   issue.TimeEstimate,
		State:          issue.State,
		TotalSpentTime: issue.Timelogs.TotalSpentTime,
		Assignees:      issue.Assignees.Nodes,
	}

	// Other collaborators' entries are dropped, not hidden; they must not
	// count toward the user-scoped breakdown.
	for _, tl := range issue.Timelogs.Nodes {
		if tl.User.ID != userID {
			continue
		}
		si.Entries = append(si.Entries, Entry{
			Seconds:     tl.TimeSpent,
			Description: tl.Summary,
			SpentAt:     parseSpentAt(tl.SpentAt),
			Day:         timeutil.DayKey(tl.SpentAt),
		})
	}
	sortEntries(si.Entries)

	return si
}
