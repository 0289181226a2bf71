package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/glhours/glhours/internal/business"
	"github.com/glhours/glhours/internal/config"
	"github.com/glhours/glhours/internal/export"
	"github.com/glhours/glhours/internal/gitlab"
	"github.com/glhours/glhours/internal/holidays"
	"github.com/glhours/glhours/internal/render"
	"github.com/glhours/glhours/internal/report"
	"github.com/glhours/glhours/internal/store"
	"github.com/glhours/glhours/internal/timeutil"
	"github.com/glhours/glhours/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "glhours",
	Short: "Monthly work-hour reports from GitLab time logs",
	Long: `glhours fetches your GitLab issues and time logs, aggregates them into
monthly task and calendar views, compares the total against the month's
business hours, and exports a spreadsheet-compatible CSV.`,
	SilenceUsage: true,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Validate and store a GitLab access token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored access token",
	RunE:  runLogout,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the monthly time report",
	RunE:  runReport,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the monthly time report as CSV",
	RunE:  runExport,
}

var epicsCmd = &cobra.Command{
	Use:   "epics",
	Short: "Show the epic/sprint view of your groups",
	RunE:  runEpics,
}

var milestonesCmd = &cobra.Command{
	Use:   "milestones",
	Short: "List a group's active milestones",
	RunE:  runMilestones,
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List the groups visible to your token",
	RunE:  runGroups,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open the config file in your editor",
	RunE:  runConfig,
}

var (
	flagVerbose bool
	flagToken   string
	flagMonth   string
	flagPick    bool
	flagHours   float64
	flagOut     string

	flagGroup     string
	flagMilestone string
	flagAllGroups bool
	flagSearch    string
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "GitLab access token (overrides stored token)")

	for _, c := range []*cobra.Command{reportCmd, exportCmd} {
		c.Flags().StringVar(&flagMonth, "month", "", "Report month as YYYY-MM (default: current month)")
		c.Flags().BoolVar(&flagPick, "pick", false, "Pick the month interactively")
		c.Flags().Float64Var(&flagHours, "hours", 0, "Working hours per day (overrides config)")
	}
	exportCmd.Flags().StringVar(&flagOut, "out", "", "Output file (default: horas-trabalhadas-<month>-<day>.csv)")

	epicsCmd.Flags().StringVar(&flagGroup, "group", "", "Group full path (default: scan all visible groups)")
	epicsCmd.Flags().StringVar(&flagMilestone, "milestone", "", "Filter issues to this exact milestone title")
	epicsCmd.Flags().BoolVar(&flagAllGroups, "all-groups", false, "Scan every visible group even when a group is configured")

	milestonesCmd.Flags().StringVar(&flagGroup, "group", "", "Group full path")
	milestonesCmd.Flags().StringVar(&flagSearch, "search", "", "Milestone title search term")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(epicsCmd)
	rootCmd.AddCommand(milestonesCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveToken picks the access token: explicit flag, then environment,
// then the stored token, then the config file.
func resolveToken(cfg *config.Config, db *store.DB) (string, error) {
	if flagToken != "" {
		return flagToken, nil
	}
	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		return v, nil
	}

	stored, err := db.Token()
	if err != nil {
		return "", fmt.Errorf("reading stored token: %w", err)
	}
	if stored != "" {
		return stored, nil
	}

	if cfg.GitLab.Token != "" {
		return cfg.GitLab.Token, nil
	}
	return "", fmt.Errorf("no access token found — run 'glhours login' or set GITLAB_TOKEN")
}

type session struct {
	cfg    *config.Config
	db     *store.DB
	client *gitlab.Client
	logger *slog.Logger
}

// newSession builds the per-run context: config, store and a client
// bound to the resolved token. Each run gets its own client so rapid
// consecutive reports never share state.
func newSession() (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open()
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	token, err := resolveToken(cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	logger := newLogger()
	return &session{
		cfg:    cfg,
		db:     db,
		client: gitlab.NewClient(token, cfg.GitLab.URL, logger),
		logger: logger,
	}, nil
}

func (s *session) Close() {
	s.db.Close()
}

// selectedMonth resolves the report month from --month, the interactive
// picker, or the current month.
func selectedMonth() (time.Time, error) {
	if flagMonth != "" {
		t, err := time.ParseInLocation("2006-01", flagMonth, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --month %q, expected YYYY-MM", flagMonth)
		}
		return t, nil
	}

	if flagPick {
		picked, ok, err := tui.PickMonth(time.Now())
		if err != nil {
			return time.Time{}, err
		}
		if !ok {
			return time.Time{}, fmt.Errorf("month selection canceled")
		}
		return picked, nil
	}

	return time.Now(), nil
}

func (s *session) hoursPerDay() float64 {
	if flagHours > 0 {
		return flagHours
	}
	return s.cfg.Report.HoursPerDay
}

type monthlyData struct {
	selected time.Time
	user     *gitlab.User
	monthly  report.Monthly
	info     business.Info
}

// fetchMonthly resolves the user, then fetches issues and holidays
// concurrently (holidays do not depend on issue data) and aggregates.
func (s *session) fetchMonthly(ctx context.Context) (*monthlyData, error) {
	selected, err := selectedMonth()
	if err != nil {
		return nil, err
	}

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	period := timeutil.MonthPeriod(selected)
	hclient := holidays.NewClient(s.cfg.Holidays.URL, s.db, s.logger)

	var (
		nodes []gitlab.IssueNode
		hs    []holidays.Holiday
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		nodes, err = s.client.MonthlyIssues(gctx, user.ID, period.First)
		return err
	})
	g.Go(func() error {
		var err error
		hs, err = hclient.Year(gctx, selected.Year())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	monthly := report.BuildMonthly(nodes, user, period)
	info := business.Calculate(selected.Year(), selected.Month(), s.hoursPerDay(), hs, monthly.TotalSeconds)

	return &monthlyData{selected: selected, user: user, monthly: monthly, info: info}, nil
}

func friendlyErr(err error) error {
	var authErr *gitlab.AuthError
	if errors.As(err, &authErr) {
		return fmt.Errorf("%v — check your token with 'glhours login'", authErr)
	}
	return err
}

func runReport(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := s.fetchMonthly(cmd.Context())
	if err != nil {
		return friendlyErr(err)
	}

	fmt.Println(render.BusinessHours(data.info))
	fmt.Print(render.Monthly(data.monthly))
	if out := render.Insights(data.monthly.Insights); out != "" {
		fmt.Println()
		fmt.Print(out)
	}
	if out := render.Validations(data.monthly.Validations); out != "" {
		fmt.Println()
		fmt.Print(out)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	data, err := s.fetchMonthly(cmd.Context())
	if err != nil {
		return friendlyErr(err)
	}

	if len(data.monthly.Tasks) == 0 {
		fmt.Printf("Nenhuma hora registrada em %s %d — nada para exportar.\n",
			timeutil.MonthNamePT(data.selected.Month()), data.selected.Year())
		return nil
	}

	path := flagOut
	if path == "" {
		path = export.Filename(data.selected)
	}
	if err := export.WriteFile(path, data.monthly.Tasks); err != nil {
		return err
	}

	total := timeutil.FormatDuration(data.monthly.TotalSeconds)
	if err := beeep.Notify("glhours", fmt.Sprintf("Relatório exportado: %s (%s)", path, total), ""); err != nil {
		s.logger.Debug("desktop notification failed", "error", err)
	}

	fmt.Printf("Exportado %s (%d tarefas, %s)\n", path, len(data.monthly.Tasks), total)
	return nil
}

func runEpics(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()
	ctx := cmd.Context()

	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		return friendlyErr(err)
	}

	if flagGroup != "" && !flagAllGroups {
		nodes, err := s.client.GroupEpics(ctx, flagGroup)
		if err != nil {
			return friendlyErr(err)
		}
		fmt.Print(render.Epics(report.BuildEpics(nodes, user.ID, flagMilestone)))
		return nil
	}

	groups, err := s.client.Groups(ctx)
	if err != nil {
		return friendlyErr(err)
	}

	// The configured group is scanned first.
	paths := report.GroupScanOrder(groups, s.cfg.Report.Group)
	all := report.ScanGroups(ctx, s.client, paths, user.ID, flagMilestone, s.logger)
	fmt.Print(render.Epics(all))
	return nil
}

func runMilestones(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	group := flagGroup
	if group == "" {
		group = s.cfg.Report.Group
	}
	if group == "" {
		return fmt.Errorf("no group given — pass --group or set report.group in the config")
	}

	ms, err := s.client.Milestones(cmd.Context(), group, flagSearch)
	if err != nil {
		return friendlyErr(err)
	}

	if len(ms) == 0 {
		fmt.Println("No milestones found.")
		return nil
	}
	for _, m := range ms {
		fmt.Printf("  %-40s %s\n", m.Title, m.WebPath)
	}
	return nil
}

func runGroups(cmd *cobra.Command, args []string) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	gs, err := s.client.Groups(cmd.Context())
	if err != nil {
		return friendlyErr(err)
	}

	if len(gs) == 0 {
		fmt.Println("No groups visible to this token.")
		return nil
	}
	for _, g := range gs {
		fmt.Printf("  %-30s %s\n", g.Name, g.FullPath)
	}
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	token := flagToken
	if token == "" {
		var ok bool
		token, ok, err = tui.PromptToken()
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Login canceled.")
			return nil
		}
	}

	// Validate before storing.
	client := gitlab.NewClient(token, cfg.GitLab.URL, newLogger())
	user, err := client.CurrentUser(cmd.Context())
	if err != nil {
		return friendlyErr(err)
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer db.Close()

	if err := db.SaveToken(token); err != nil {
		return fmt.Errorf("storing token: %w", err)
	}

	fmt.Printf("Logged in as %s (@%s).\n", user.Name, user.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer db.Close()

	if err := db.ClearToken(); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	fmt.Println("Token removed.")
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		data := fmt.Sprintf(`[gitlab]
url = "%s"
token = ""

[report]
hours_per_day = %.1f
group = ""

[holidays]
url = "%s"
`, cfg.GitLab.URL, cfg.Report.HoursPerDay, cfg.Holidays.URL)
		if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
