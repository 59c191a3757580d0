package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/linkpub"
	"github.com/fwojciec/linkpub/consume"
	"github.com/fwojciec/linkpub/fs"
	lphttp "github.com/fwojciec/linkpub/http"
	lpslog "github.com/fwojciec/linkpub/slog"
	"github.com/fwojciec/linkpub/socket"
	"github.com/fwojciec/linkpub/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Environ replaces the process environment when non-nil.
	Environ map[string]string

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// SQLite database, opened only for the sqlite cache backend.
	DB *sqlite.DB

	// Client is set when the full-client strategy was selected.
	Client *lphttp.Client
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{Now: time.Now}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Client != nil {
		_ = m.Client.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("linkpub"),
		kong.Description("Serve curated links from a LinkPub dispenser"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'linkpub --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := m.parseEnv()
	if err != nil {
		return err
	}
	if cli.Cache != "" {
		cfg.CachePath = cli.Cache
	}
	if cli.Backend != "" {
		cfg.CacheBackend = cli.Backend
	}
	if cfg.CachePath == "" {
		cfg.CachePath = defaultCachePath(cfg.CacheBackend)
	}
	deps.Config = cfg

	// check reports configuration problems itself.
	if strings.HasPrefix(kongCtx.Command(), "check") {
		return kongCtx.Run(deps)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, "Hint: Run 'linkpub check' to validate the LINKPUB_* environment")
		return err
	}
	if err := m.wire(deps); err != nil {
		return err
	}
	defer m.Close()

	return kongCtx.Run(deps)
}

func (m *Main) parseEnv() (consume.Config, error) {
	if m.Environ != nil {
		return consume.ParseEnvFrom(m.Environ)
	}
	return consume.ParseEnv()
}

// wire builds the transport, the snapshot store and the consumer from a
// validated configuration.
func (m *Main) wire(deps *Dependencies) error {
	cfg := deps.Config

	disabled, err := linkpub.ParseStrategies(cfg.DisabledStrategies)
	if err != nil {
		return err
	}
	enabled := func(s linkpub.Strategy) func() bool {
		return func() bool { return !disabled[s] }
	}

	selector := linkpub.NewTransportSelector(
		linkpub.Candidate{
			Strategy:  linkpub.StrategyFetchCall,
			Available: enabled(linkpub.StrategyFetchCall),
			New: func() linkpub.Transport {
				return lphttp.NewCall(lphttp.WithTimeout(cfg.ConnectTimeout), lphttp.WithUserAgent(cfg.UserAgent))
			},
		},
		linkpub.Candidate{
			Strategy:  linkpub.StrategyFullClient,
			Available: enabled(linkpub.StrategyFullClient),
			New: func() linkpub.Transport {
				m.Client = lphttp.NewClient(lphttp.WithTimeout(cfg.ConnectTimeout), lphttp.WithUserAgent(cfg.UserAgent))
				return m.Client
			},
		},
		linkpub.Candidate{
			Strategy:  linkpub.StrategyRawSocket,
			Available: enabled(linkpub.StrategyRawSocket),
			New: func() linkpub.Transport {
				return socket.NewTransport(socket.WithTimeout(cfg.ConnectTimeout), socket.WithUserAgent(cfg.UserAgent))
			},
		},
	)
	strategy, transport := selector.Select()
	deps.Strategy = strategy
	deps.Transport = lpslog.NewLoggingTransport(transport, deps.Logger)

	store, err := m.openStore(cfg)
	if err != nil {
		return err
	}
	deps.Store = lpslog.NewLoggingSnapshotStore(store, deps.Logger)

	identity, err := cfg.Identity()
	if err != nil {
		return err
	}
	hosts, err := cfg.HostRotation()
	if err != nil {
		return err
	}

	deps.Consumer = &consume.Consumer{
		Identity:  identity,
		Hosts:     hosts,
		Transport: deps.Transport,
		Store:     deps.Store,
		Policy:    cfg.Policy(),
		Now:       m.Now,
	}
	return nil
}

func (m *Main) openStore(cfg consume.Config) (linkpub.SnapshotStore, error) {
	if cfg.CacheBackend != consume.BackendSQLite {
		return fs.NewSnapshotStore(cfg.CachePath), nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	m.DB = sqlite.NewDB(cfg.CachePath)
	if err := m.DB.Open(); err != nil {
		return nil, fmt.Errorf("failed to open cache database at %q: %w", cfg.CachePath, err)
	}
	return sqlite.NewSnapshotStore(m.DB), nil
}

func defaultCachePath(backend string) string {
	name := "db.json"
	if backend == consume.BackendSQLite {
		name = "db.db"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "linkpub-" + name
	}
	return filepath.Join(home, ".linkpub", name)
}
