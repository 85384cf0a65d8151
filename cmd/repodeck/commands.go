package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"
	"github.com/urfave/cli/v3"

	"github.com/johanforsgren/repodeck/internal/auth"
	"github.com/johanforsgren/repodeck/internal/buildinfo"
	"github.com/johanforsgren/repodeck/internal/config"
	"github.com/johanforsgren/repodeck/internal/domain"
	"github.com/johanforsgren/repodeck/internal/logger"
	"github.com/johanforsgren/repodeck/internal/notify"
	"github.com/johanforsgren/repodeck/internal/provider/backend"
	"github.com/johanforsgren/repodeck/internal/provider/github"
	"github.com/johanforsgren/repodeck/internal/repolist"
	"github.com/johanforsgren/repodeck/internal/session"
	"github.com/johanforsgren/repodeck/internal/storage"
	"github.com/johanforsgren/repodeck/internal/ui"
)

var (
	errNotLoggedIn     = errors.New("not logged in, run 'repodeck login' first")
	errAlreadyLoggedIn = errors.New("already logged in, run 'repodeck logout' first")
)

// Replaced in tests.
var runProgramFunc = func(ctx context.Context, model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "repodeck",
		Usage:   "Browse trending repositories from the terminal",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			loginCommand(),
			registerCommand(),
			logoutCommand(),
			reposCommand(),
			statusCommand(),
		},
		Action: runTUI,
	}
}

// services is everything one invocation talks to.
type services struct {
	cfg     *config.AppConfig
	store   domain.SessionStore
	session *session.Context
	auth    *auth.Controller
	repos   *repolist.Fetcher
	details domain.DetailsSource
}

func loadConfig(cmd *cli.Command) (*config.AppConfig, error) {
	configFile := cmd.String("config-file")
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		if configFile != "" {
			return nil, err
		}
		fmt.Fprintf(cmd.Root().ErrWriter, "Error loading config: %v\n", err)
		cfg = config.DefaultConfig()
	}
	applyFlagOverrides(cfg, cmd)
	return cfg, nil
}

func newStore(cfg *config.AppConfig, ephemeral bool) (domain.SessionStore, error) {
	if ephemeral {
		return storage.NewMemoryStore(domain.Session{}), nil
	}
	path := cfg.SessionFile
	if path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		path = expanded
	}
	return storage.NewFileStore(path)
}

func newServices(cmd *cli.Command, notifier notify.Notifier) (*services, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.DebugLog); err != nil {
		return nil, err
	}

	store, err := newStore(cfg, cmd.Bool("ephemeral"))
	if err != nil {
		return nil, err
	}
	sess, err := session.New(store)
	if err != nil {
		return nil, err
	}

	client, err := backend.NewClient(cfg.APIBase, sess,
		backend.WithTimeout(cfg.RequestTimeout),
		backend.WithNotifier(notifier),
	)
	if err != nil {
		return nil, err
	}

	svc := &services{
		cfg:     cfg,
		store:   store,
		session: sess,
		auth:    auth.NewController(client, sess, notifier),
		repos:   repolist.NewFetcher(client, notifier),
	}
	if cfg.GitHub.Enabled {
		svc.details = github.NewProvider(github.NewClient(cfg.GitHub.Token))
	}

	logger.Log("Config: api=%s github=%t config=%q", cfg.APIBase, cfg.GitHub.Enabled, cfg.Path)
	return svc, nil
}

// cliNotifier prints notices the way the TUI would show them in its banner.
func cliNotifier(w io.Writer) notify.Notifier {
	return notify.Func(func(level notify.Level, text string) {
		if level == notify.LevelError {
			fmt.Fprintf(w, "Error: %s\n", text)
			return
		}
		fmt.Fprintln(w, text)
	})
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	defer func() {
		_ = logger.Close()
	}()

	queue := notify.NewQueue(32)
	svc, err := newServices(cmd, queue)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Deps{
		Session: svc.session,
		Auth:    svc.auth,
		Repos:   svc.repos,
		Details: svc.details,
		Notices: queue,
	})
	return runProgramFunc(ctx, model)
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in with email, password and verification code",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
		},
		Action: handleLoginAction,
	}
}

func handleLoginAction(ctx context.Context, cmd *cli.Command) error {
	defer func() {
		_ = logger.Close()
	}()

	root := cmd.Root()
	svc, err := newServices(cmd, cliNotifier(root.ErrWriter))
	if err != nil {
		return err
	}
	if svc.session.IsAuthenticated() {
		return errAlreadyLoggedIn
	}

	p := newPrompter(root.Reader, root.Writer)
	email := cmd.String("email")
	if email == "" {
		if email, err = p.Line("Email: "); err != nil {
			return err
		}
	}
	password, err := p.Secret("Password: ")
	if err != nil {
		return err
	}
	if err := svc.auth.Login(ctx, email, password); err != nil {
		return err
	}

	code, err := p.Line("Verification code: ")
	if err != nil {
		return err
	}
	if err := svc.auth.VerifyMFA(ctx, email, code); err != nil {
		return err
	}

	fmt.Fprintf(root.Writer, "Logged in as %s\n", email)
	return nil
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:  "register",
		Usage: "Create an account",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email"},
		},
		Action: handleRegisterAction,
	}
}

func handleRegisterAction(ctx context.Context, cmd *cli.Command) error {
	defer func() {
		_ = logger.Close()
	}()

	root := cmd.Root()
	svc, err := newServices(cmd, cliNotifier(root.ErrWriter))
	if err != nil {
		return err
	}

	p := newPrompter(root.Reader, root.Writer)
	email := cmd.String("email")
	if email == "" {
		if email, err = p.Line("Email: "); err != nil {
			return err
		}
	}
	password, err := p.Secret("Password: ")
	if err != nil {
		return err
	}
	return svc.auth.Register(ctx, email, password)
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Sign out and forget the stored session",
		Action: handleLogoutAction,
	}
}

func handleLogoutAction(ctx context.Context, cmd *cli.Command) error {
	defer func() {
		_ = logger.Close()
	}()

	root := cmd.Root()
	svc, err := newServices(cmd, cliNotifier(root.ErrWriter))
	if err != nil {
		return err
	}
	if !svc.session.IsAuthenticated() {
		fmt.Fprintln(root.Writer, "Not logged in")
		return nil
	}
	if err := svc.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(root.Writer, "Logged out")
	return nil
}

func reposCommand() *cli.Command {
	return &cli.Command{
		Name:    "repos",
		Aliases: []string{"ls"},
		Usage:   "Print one page of trending repositories",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1, Usage: "Page number, starting at 1"},
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: handleReposAction,
	}
}

// repoPageJSON is the --json output of the repos command.
type repoPageJSON struct {
	Page       int                       `json:"page"`
	PageCount  int                       `json:"page_count"`
	TotalCount int                       `json:"total_count"`
	Content    []domain.RepositoryRecord `json:"content"`
}

func handleReposAction(ctx context.Context, cmd *cli.Command) error {
	defer func() {
		_ = logger.Close()
	}()

	page := int(cmd.Int("page"))
	if page < 1 {
		return fmt.Errorf("--page must be 1 or greater, got %d", page)
	}

	root := cmd.Root()
	svc, err := newServices(cmd, cliNotifier(root.ErrWriter))
	if err != nil {
		return err
	}
	if !svc.session.IsAuthenticated() {
		return errNotLoggedIn
	}

	switch svc.repos.Load(ctx, page-1) {
	case repolist.OutcomeUnauthorized:
		return errNotLoggedIn
	case repolist.OutcomeFailed:
		return errors.New(repolist.MsgFetchFailed)
	}

	state := svc.repos.Snapshot()
	pageCount := svc.repos.PageCount()
	if cmd.Bool("json") {
		enc := json.NewEncoder(root.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(repoPageJSON{
			Page:       page,
			PageCount:  pageCount,
			TotalCount: state.TotalCount,
			Content:    state.Records,
		})
	}
	return outputReposTable(root.Writer, state, pageCount)
}

func outputReposTable(out io.Writer, state repolist.State, pageCount int) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARS\tREPOSITORY\tLANGUAGE\tDESCRIPTION")
	for _, r := range state.Records {
		language := r.Language
		if language == "" {
			language = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			strconv.Itoa(r.Stars), r.FullName, language, truncate.StringWithTail(r.Description, 60, "…"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "\nPage %d/%d (%d repositories)\n", state.Page+1, pageCount, state.TotalCount)
	return err
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show whether a session is stored",
		Action: handleStatusAction,
	}
}

func handleStatusAction(_ context.Context, cmd *cli.Command) error {
	defer func() {
		_ = logger.Close()
	}()

	root := cmd.Root()
	svc, err := newServices(cmd, cliNotifier(root.ErrWriter))
	if err != nil {
		return err
	}

	fmt.Fprintf(root.Writer, "Phase:   %s\n", svc.session.Phase())
	fmt.Fprintf(root.Writer, "API:     %s\n", svc.cfg.APIBase)
	if fs, ok := svc.store.(*storage.FileStore); ok {
		fmt.Fprintf(root.Writer, "Session: %s\n", fs.Path())
	} else {
		fmt.Fprintln(root.Writer, "Session: in memory")
	}
	return nil
}
