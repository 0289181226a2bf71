package gitlab

// Typed mirrors of the GraphQL response shapes. Fields are validated by
// the decoder at the API boundary instead of being accessed dynamically.

// User is the authenticated GitLab identity. IDs are composite global
// ids like "gid://gitlab/User/4217".
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
	Email     string `json:"email"`
}

// UserRef is the minimal user shape nested in time logs and assignees.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// Iteration is a GitLab iteration (sprint).
type Iteration struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	StartDate   *string `json:"startDate"`
	DueDate     *string `json:"dueDate"`
}

type Milestone struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	WebPath string `json:"webPath"`
}

type Group struct {
	ID       string `json:"id"`
	FullPath string `json:"fullPath"`
	Name     string `json:"name"`
}

// TimelogNode is one recorded unit of work on an issue.
type TimelogNode struct {
	ID        string  `json:"id"`
	SpentAt   string  `json:"spentAt"` // ISO-8601, kept as written
	Summary   string  `json:"summary"`
	TimeSpent int64   `json:"timeSpent"` // seconds
	User      UserRef `json:"user"`
}

type TimelogConnection struct {
	Count          int           `json:"count"`
	TotalSpentTime int64         `json:"totalSpentTime"`
	Nodes          []TimelogNode `json:"nodes"`
	PageInfo       PageInfo      `json:"pageInfo"`
}

// IssueNode is a raw issue with its first page of time logs.
type IssueNode struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	WebURL       string     `json:"webUrl"`
	Weight       *int       `json:"weight"`
	TimeEstimate *int64     `json:"timeEstimate"`
	State        string     `json:"state"`
	Milestone    *Milestone `json:"milestone"`
	Iteration    *Iteration `json:"iteration"`
	Assignees    struct {
		Nodes []UserRef `json:"nodes"`
	} `json:"assignees"`
	Timelogs TimelogConnection `json:"timelogs"`
}

// EpicNode is a raw epic with its nested issue tree.
type EpicNode struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	WebURL      string  `json:"webUrl"`
	Description *string `json:"description"`
	Issues      struct {
		Nodes []IssueNode `json:"nodes"`
	} `json:"issues"`
}
