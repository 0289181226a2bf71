package report

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/glhours/glhours/internal/gitlab"
)

// EpicSource fetches a group's raw epic tree. *gitlab.Client satisfies it.
type EpicSource interface {
	GroupEpics(ctx context.Context, groupPath string) ([]gitlab.EpicNode, error)
}

// ScanGroups builds the epic view across several groups. A single
// failing group is logged and skipped so the remaining groups still
// contribute; this is the one place partial success is allowed.
func ScanGroups(ctx context.Context, src EpicSource, paths []string, userID, milestoneTitle string, logger *slog.Logger) []Epic {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var all []Epic
	for _, path := range paths {
		nodes, err := src.GroupEpics(ctx, path)
		if err != nil {
			logger.Warn("skipping group", "group", path, "error", err)
			continue
		}
		all = append(all, BuildEpics(nodes, userID, milestoneTitle)...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return strings.ToLower(all[i].Title) < strings.ToLower(all[j].Title)
	})
	return all
}

// GroupScanOrder returns the group paths to scan, preferred group
// first, without duplicates.
func GroupScanOrder(groups []gitlab.Group, preferred string) []string {
	var paths []string
	seen := make(map[string]bool)
	if preferred != "" {
		paths = append(paths, preferred)
		seen[preferred] = true
	}
	for _, g := range groups {
		if !seen[g.FullPath] {
			paths = append(paths, g.FullPath)
			seen[g.FullPath] = true
		}
	}
	return paths
}
