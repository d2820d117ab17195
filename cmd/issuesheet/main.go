package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/browser"
	flag "github.com/spf13/pflag"

	"github.com/willbl/issuesheet/internal/auth"
	"github.com/willbl/issuesheet/internal/config"
	"github.com/willbl/issuesheet/internal/domain"
	"github.com/willbl/issuesheet/internal/publish"
	"github.com/willbl/issuesheet/internal/sheet"
	"github.com/willbl/issuesheet/internal/tui"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// defaultClientID is the client ID of the issuesheet OAuth app. It is
// non-confidential (device flow apps have no secret) so it is safe to ship
// with the binary. Users can override it with --client-id, the
// ISSUESHEET_CLIENT_ID environment variable, or client_id in the config file.
const defaultClientID = "Iv1.8e2f72a339c1bafd"

// oauthScope is the permission requested during device authorization;
// creating issues needs repo access.
const oauthScope = "repo"

func main() {
	var (
		file        = flag.StringP("file", "f", "", "path to the CSV input file (required)")
		repo        = flag.StringP("repo", "r", "", "target repository, owner/name or name (required)")
		titleColumn = flag.String("title-column", "", "column holding the issue title")
		bodyColumns = flag.StringArray("body-column", nil, "column to include in the issue body (repeatable, in order)")
		clientID    = flag.String("client-id", "", "OAuth app client ID")
		noBrowser   = flag.Bool("no-browser", false, "do not open the verification page in a browser")
		plain       = flag.Bool("plain", false, "plain output instead of the interactive display")
		initConfig  = flag.Bool("init", false, "write a config file skeleton and exit")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("issuesheet", version)
		os.Exit(0)
	}

	configPath := config.DefaultConfigPath()
	if *initConfig {
		if err := config.Save(configPath, config.Config{ClientID: defaultClientID}); err != nil {
			fmt.Fprintf(os.Stderr, "error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", configPath)
		os.Exit(0)
	}

	if *file == "" || *repo == "" {
		fmt.Fprintln(os.Stderr, "usage: issuesheet --file issues.csv --repo owner/name")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	cols := sheet.DefaultColumns()
	if cfg.TitleColumn != "" {
		cols.Title = cfg.TitleColumn
	}
	if len(cfg.BodyColumns) > 0 {
		cols.Body = cfg.BodyColumns
	}
	if *titleColumn != "" {
		cols.Title = *titleColumn
	}
	if len(*bodyColumns) > 0 {
		cols.Body = *bodyColumns
	}

	id := defaultClientID
	if cfg.ClientID != "" {
		id = cfg.ClientID
	}
	if *clientID != "" {
		id = *clientID
	}

	f, err := os.Open(*file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening input file: %v\n", err)
		os.Exit(1)
	}
	rows, err := sheet.Read(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading input file: %v\n", err)
		os.Exit(1)
	}
	records := sheet.DeriveRecords(rows, cols)
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "input file has no data rows, nothing to create")
		os.Exit(0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flow := auth.NewFlow(id, oauthScope, cfg.AuthBaseURL)

	if *plain {
		s := &plainSink{openBrowser: !*noBrowser}
		if err := run(ctx, flow, cfg.APIBaseURL, *repo, records, s); err != nil {
			fmt.Fprintf(os.Stderr, "issuesheet: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	model := tui.NewModel(len(records))
	if !*noBrowser {
		model.OpenBrowser = browser.OpenURL
	}
	final, err := tui.Run(model, func(send func(tea.Msg)) {
		run(ctx, flow, cfg.APIBaseURL, *repo, records, tuiSink{send: send})
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "issuesheet: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(final.Summary())
	if final.Err() != nil {
		os.Exit(1)
	}
}

// sink receives run progress. It is an output side channel only: nothing it
// does feeds back into the pipeline.
type sink interface {
	Grant(grant auth.DeviceGrant, err error)
	Authenticated(err error)
	Resolved(target domain.TargetCollection, err error)
	Result(result domain.CreationResult)
	Done(err error)
}

// run executes the whole pipeline: device authorization, target resolution,
// then serial fail-fast creation. The access token exists only in this
// frame; it is never persisted.
func run(ctx context.Context, flow *auth.Flow, apiBaseURL string, repo string, records []domain.IssueRecord, s sink) error {
	grant, err := flow.RequestCode(ctx)
	s.Grant(grant, err)
	if err != nil {
		return err
	}

	token, err := flow.PollToken(ctx, grant)
	s.Authenticated(err)
	if err != nil {
		return err
	}

	var pub *publish.Publisher
	if apiBaseURL != "" {
		pub, err = publish.NewWithBaseURL(ctx, token, apiBaseURL)
		if err != nil {
			s.Resolved(domain.TargetCollection{}, err)
			return err
		}
	} else {
		pub = publish.New(ctx, token)
	}

	target, err := pub.ResolveTarget(ctx, repo)
	s.Resolved(target, err)
	if err != nil {
		return err
	}

	err = pub.Publish(ctx, target, records, s.Result)
	s.Done(err)
	return err
}

// plainSink writes prose to stderr, for terminals where the interactive
// display is unwanted (piped output, CI).
type plainSink struct {
	openBrowser bool
}

func (s *plainSink) Grant(grant auth.DeviceGrant, err error) {
	if err != nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Logging into GitHub...\n")
	fmt.Fprintf(os.Stderr, "Visit:      %s\n", grant.VerificationURI)
	fmt.Fprintf(os.Stderr, "Enter code: %s\n", grant.UserCode)
	fmt.Fprintf(os.Stderr, "Waiting for authorization...\n")
	if s.openBrowser {
		browser.OpenURL(grant.VerificationURI) // best-effort
	}
}

func (s *plainSink) Authenticated(err error) {
	if err == nil {
		fmt.Fprintf(os.Stderr, "Authenticated.\n")
	}
}

func (s *plainSink) Resolved(target domain.TargetCollection, err error) {
	if err == nil {
		fmt.Fprintf(os.Stderr, "Creating issues in %s\n", target)
	}
}

func (s *plainSink) Result(result domain.CreationResult) {
	if result.OK() {
		fmt.Fprintf(os.Stderr, "created #%d %s\n", result.Number, result.Record.Title)
	} else {
		fmt.Fprintf(os.Stderr, "failed row %d: %v\n", result.Index+1, result.Err)
	}
}

func (s *plainSink) Done(err error) {
	if err == nil {
		fmt.Fprintf(os.Stderr, "Done.\n")
	}
}

// tuiSink forwards pipeline progress into the running bubbletea program.
type tuiSink struct {
	send func(tea.Msg)
}

func (s tuiSink) Grant(grant auth.DeviceGrant, err error) {
	s.send(tui.GrantMsg{Grant: grant, Err: err})
}

func (s tuiSink) Authenticated(err error) {
	s.send(tui.AuthenticatedMsg{Err: err})
}

func (s tuiSink) Resolved(target domain.TargetCollection, err error) {
	s.send(tui.ResolvedMsg{Target: target, Err: err})
}

func (s tuiSink) Result(result domain.CreationResult) {
	s.send(tui.ResultMsg{Result: result})
}

func (s tuiSink) Done(err error) {
	s.send(tui.DoneMsg{Err: err})
}
