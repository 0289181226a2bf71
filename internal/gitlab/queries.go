package gitlab

import (
	"fmt"
	"strconv"
)

// Query construction. GitLab's GraphQL API takes a page-size argument
// and an `after` cursor; 100 is the maximum page size.
const pageSize = 100

// quote renders s as a GraphQL string literal.
func quote(s string) string {
	return strconv.Quote(s)
}

const currentUserQuery = `
query CurrentUser {
  currentUser {
    id
    username
    name
    avatarUrl
    email
  }
}`

const timelogFields = `
timelogs(first: 100) {
  count
  totalSpentTime
  nodes {
    id
    spentAt
    summary
    timeSpent
    user {
      id
      username
    }
  }
  pageInfo {
    hasNextPage
  }
}`

const iterationFields = `
iteration {
  id
  title
  description
  startDate
  dueDate
}`

// monthlyIssuesQuery fetches issues assigned to the numeric user id and
// updated on or after monthStart, each with its first page of time logs.
func monthlyIssuesQuery(numericUserID, monthStart string) string {
	return fmt.Sprintf(`
query MonthlyIssues {
  issues(assigneeId: %s, first: %d, updatedAfter: %s) {
    count
    nodes {
      id
      name
      webUrl
      weight
      timeEstimate
      %s
      %s
    }
  }
}`, quote(numericUserID), pageSize, quote(monthStart), iterationFields, timelogFields)
}

// groupEpicsQuery fetches one page of a group's open epics with their
// nested issue/assignee/iteration/time-log trees. An empty cursor asks
// for the first page.
func groupEpicsQuery(groupPath, cursor string) string {
	after := ""
	if cursor != "" {
		after = fmt.Sprintf(", after: %s", quote(cursor))
	}
	return fmt.Sprintf(`
query GroupEpics {
  group(fullPath: %s) {
    epics(state: opened, first: %d%s) {
      pageInfo {
        hasNextPage
        endCursor
      }
      nodes {
        id
        title
        webUrl
        description
        issues(first: %d) {
          nodes {
            id
            name
            webUrl
            weight
            timeEstimate
            state
            milestone {
              id
              title
              webPath
            }
            assignees {
              nodes {
                id
                username
              }
            }
            %s
            %s
          }
        }
      }
    }
  }
}`, quote(groupPath), pageSize, after, pageSize, iterationFields, timelogFields)
}

func groupMilestonesQuery(groupPath, search string) string {
	searchFilter := ""
	if search != "" {
		searchFilter = fmt.Sprintf("searchTitle: %s, ", quote(search))
	}
	return fmt.Sprintf(`
query GroupMilestones {
  group(fullPath: %s) {
    milestones(
      %sincludeAncestors: true
      includeDescendants: true
      sort: EXPIRED_LAST_DUE_DATE_ASC
      state: active
      first: %d
    ) {
      nodes {
        id
        title
        webPath
      }
    }
  }
}`, quote(groupPath), searchFilter, pageSize)
}

func currentUserGroupsQuery() string {
	return fmt.Sprintf(`
query CurrentUserGroups {
  currentUser {
    groups(first: %d) {
      nodes {
        id
        fullPath
        name
      }
    }
  }
}`, pageSize)
}
