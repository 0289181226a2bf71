// Package gitlab wraps the authenticated GitLab GraphQL API behind
// typed operations, hiding query construction, pagination and error
// wrapping from the report layer.
package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/glhours/glhours/internal/timeutil"
)

const defaultBaseURL = "https://gitlab.com/api/graphql"

type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	collator   *collate.Collator
	user       *User // cached after first CurrentUser call
}

// NewClient creates a client bound to one access token. The token is
// carried as a bearer credential on every query.
func NewClient(token, baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:   logger,
		collator: collate.New(language.BrazilianPortuguese, collate.IgnoreCase),
	}
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// do posts one GraphQL query and decodes the `data` envelope into out.
func (c *Client) do(ctx context.Context, op, query string, out any) error {
	payload, err := json.Marshal(graphQLRequest{Query: query})
	if err != nil {
		return &QueryError{Op: op, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return &QueryError{Op: op, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("gitlab API request", "op", op)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("gitlab API transport error", "op", op, "error", err)
		return &QueryError{Op: op, Err: fmt.Errorf("sending request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &QueryError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	c.logger.Debug("gitlab API response", "op", op, "status", resp.StatusCode,
		"bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &AuthError{Reason: fmt.Sprintf("token rejected (status %d)", resp.StatusCode)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("gitlab API error", "op", op, "status", resp.StatusCode, "response", truncate(string(body), 200))
		return &QueryError{Op: op, Err: fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 200))}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &QueryError{Op: op, Err: fmt.Errorf("parsing response: %w", err)}
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			msgs[i] = e.Message
		}
		return &QueryError{Op: op, Err: fmt.Errorf("GraphQL errors: %s", strings.Join(msgs, "; "))}
	}
	if envelope.Data == nil {
		return &QueryError{Op: op, Err: fmt.Errorf("response carried no data")}
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return &QueryError{Op: op, Err: fmt.Errorf("decoding %s data: %w", op, err)}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// CurrentUser resolves the authenticated identity. The result is cached
// on the client; every report run starts here because all time-log
// filtering needs the user id.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	if c.user != nil {
		return c.user, nil
	}

	var data struct {
		CurrentUser *User `json:"currentUser"`
	}
	if err := c.do(ctx, "CurrentUser", currentUserQuery, &data); err != nil {
		return nil, err
	}
	if data.CurrentUser == nil || data.CurrentUser.ID == "" {
		return nil, &AuthError{Reason: "identity query returned no user"}
	}

	c.user = data.CurrentUser
	return c.user, nil
}

// MonthlyIssues fetches the first page of issues assigned to userID and
// updated on or after monthStart, each with its first page of time logs.
// userID may be a composite global id; the numeric form is extracted
// before being used as a query argument.
func (c *Client) MonthlyIssues(ctx context.Context, userID string, monthStart time.Time) ([]IssueNode, error) {
	query := monthlyIssuesQuery(timeutil.Digits(userID), monthStart.Format(time.RFC3339))

	var data struct {
		Issues struct {
			Count int         `json:"count"`
			Nodes []IssueNode `json:"nodes"`
		} `json:"issues"`
	}
	if err := c.do(ctx, "MonthlyIssues", query, &data); err != nil {
		return nil, err
	}

	// The time-log sublist is capped at one page; a deep backlog of logs
	// on a single issue would be truncated, so at least make it visible.
	for _, issue := range data.Issues.Nodes {
		if issue.Timelogs.PageInfo.HasNextPage {
			c.logger.Warn("time logs truncated at one page", "issue", issue.Name, "count", issue.Timelogs.Count)
		}
	}

	return data.Issues.Nodes, nil
}

// GroupEpics fetches all open epics of a group, following the page
// cursor until the API signals no further pages.
func (c *Client) GroupEpics(ctx context.Context, groupPath string) ([]EpicNode, error) {
	var all []EpicNode
	cursor := ""

	for {
		var data struct {
			Group *struct {
				Epics *struct {
					PageInfo PageInfo   `json:"pageInfo"`
					Nodes    []EpicNode `json:"nodes"`
				} `json:"epics"`
			} `json:"group"`
		}
		if err := c.do(ctx, "GroupEpics", groupEpicsQuery(groupPath, cursor), &data); err != nil {
			return nil, err
		}
		if data.Group == nil {
			return nil, &QueryError{Op: "GroupEpics", Err: fmt.Errorf("group %q not found or not accessible", groupPath)}
		}
		if data.Group.Epics == nil {
			return nil, &QueryError{Op: "GroupEpics", Err: fmt.Errorf("group %q returned no epic list", groupPath)}
		}

		all = append(all, data.Group.Epics.Nodes...)
		c.logger.Debug("epic page fetched", "group", groupPath, "page_epics", len(data.Group.Epics.Nodes), "total", len(all))

		if !data.Group.Epics.PageInfo.HasNextPage {
			return all, nil
		}
		cursor = data.Group.Epics.PageInfo.EndCursor
	}
}

// Milestones lists a group's active milestones, optionally filtered by a
// search term, sorted by title with a locale-aware compare.
func (c *Client) Milestones(ctx context.Context, groupPath, search string) ([]Milestone, error) {
	var data struct {
		Group *struct {
			Milestones struct {
				Nodes []Milestone `json:"nodes"`
			} `json:"milestones"`
		} `json:"group"`
	}
	if err := c.do(ctx, "Milestones", groupMilestonesQuery(groupPath, search), &data); err != nil {
		return nil, err
	}
	if data.Group == nil {
		return nil, &QueryError{Op: "Milestones", Err: fmt.Errorf("group %q not found or not accessible", groupPath)}
	}

	ms := data.Group.Milestones.Nodes
	sort.SliceStable(ms, func(i, j int) bool {
		return c.collator.CompareString(ms[i].Title, ms[j].Title) < 0
	})
	return ms, nil
}

// Groups lists every group visible to the token, sorted by name.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	var data struct {
		CurrentUser *struct {
			Groups struct {
				Nodes []Group `json:"nodes"`
			} `json:"groups"`
		} `json:"currentUser"`
	}
	if err := c.do(ctx, "Groups", currentUserGroupsQuery(), &data); err != nil {
		return nil, err
	}
	if data.CurrentUser == nil {
		return nil, nil
	}

	gs := data.CurrentUser.Groups.Nodes
	sort.SliceStable(gs, func(i, j int) bool {
		return c.collator.CompareString(gs[i].Name, gs[j].Name) < 0
	})
	return gs, nil
}
