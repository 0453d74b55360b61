// ABOUTME: Admin CLI for the DigiStav platform backend
// ABOUTME: One-shot commands plus an interactive console over a persisted cookie session

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/digistav-admin/internal/client"
	"github.com/2389/digistav-admin/internal/config"
	"github.com/2389/digistav-admin/internal/console"
	"github.com/2389/digistav-admin/internal/session"
)

// Version is set at build time.
var version = "dev"

const banner = `
     _ _       _     _
  __| (_) __ _(_)___| |_ __ ___   __
 / _' | |/ _' | / __| __/ _' \ \ / /
| (_| | | (_| | \__ \ || (_| |\ V /
 \__,_|_|\__, |_|___/\__\__,_| \_/   admin
         |___/
`

func main() {
	opts, cmd, args := parseGlobalFlags(os.Args[1:])
	if cmd == "" {
		printUsage()
		os.Exit(1)
	}

	switch cmd {
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "--version":
		fmt.Printf("digistav-admin %s\n", version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, opts, cmd, args)
	stop()

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are flags accepted before or after the command.
type globalOptions struct {
	configPath string
	assumeYes  bool
}

// parseGlobalFlags pulls --config and --yes out of argv and returns the
// command and its remaining arguments.
func parseGlobalFlags(argv []string) (globalOptions, string, []string) {
	var opts globalOptions
	var rest []string

	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "--config", "-c":
			if i+1 < len(argv) {
				opts.configPath = argv[i+1]
				i++
			}
		case "--yes", "-y":
			opts.assumeYes = true
		default:
			rest = append(rest, argv[i])
		}
	}

	if len(rest) == 0 {
		return opts, "", nil
	}
	return opts, rest[0], rest[1:]
}

func run(ctx context.Context, opts globalOptions, cmd string, args []string) error {
	cfg, err := config.Resolve(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	a, err := newApp(cfg, appIO{in: os.Stdin, out: os.Stdout}, opts.assumeYes, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.dispatch(ctx, cmd, args)
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: digistav-admin [--config PATH] [--yes] <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  dashboard                 Session user card and user metrics")
	fmt.Println("  me                        Show the session user")
	fmt.Println("  users                     List all users")
	fmt.Println("  users list                List all users")
	fmt.Println("  users update <id>         Update a user (--credits N, --plan P)")
	fmt.Println("  users delete <id>         Delete a user")
	fmt.Println("  documents                 List documents")
	fmt.Println("  documents delete <id>     Delete a document")
	fmt.Println("  chat                      Show the last chat messages")
	fmt.Println("  deduct <amount>           Deduct credits from the session user")
	fmt.Println("  settings                  Backend, session cookie and token expiry")
	fmt.Println("  report --out FILE         Write an HTML report of every section")
	fmt.Println("  login <token>             Store a session token")
	fmt.Println("  logout                    Forget the stored session")
	fmt.Println("  console                   Interactive console")
	fmt.Println("  version                   Show version")
	fmt.Println()
	yellow.Println("Flags:")
	fmt.Println("  --config, -c PATH         Config file (YAML or TOML)")
	fmt.Println("  --yes, -y                 Confirm destructive actions without asking")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  DIGISTAV_CONFIG           Config file path")
	fmt.Println("  DIGISTAV_BASE_URL         Backend URL (default: " + config.DefaultBaseURL + ")")
	fmt.Println("  DIGISTAV_TOKEN            Session token, seeded into the cookie jar")
	fmt.Println("  DIGISTAV_LOG_LEVEL        debug, info, warn or error")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  export DIGISTAV_TOKEN=\"eyJhbG...\"")
	fmt.Println("  digistav-admin dashboard")
	fmt.Println("  digistav-admin users update 64f1c2 --credits 50 --plan \"Best Value\"")
	fmt.Println("  digistav-admin --yes documents delete 650a9e")
	fmt.Println()
}

// appIO is the terminal the app talks to.
type appIO struct {
	in  io.Reader
	out io.Writer
}

// app wires configuration, the session jar, the backend client and the
// console together.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	jar      *session.Jar
	client   *client.Client
	console  *console.Console
	prompter *console.Prompter
	out      io.Writer
}

func newApp(cfg *config.Config, tio appIO, assumeYes bool, logger *slog.Logger) (*app, error) {
	jar, err := session.Open(cfg.Session.Path)
	if err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}

	if cfg.Session.Token != "" {
		if err := jar.Seed(cfg.Backend.BaseURL, cfg.Session.CookieName, cfg.Session.Token); err != nil {
			jar.Close()
			return nil, fmt.Errorf("seeding session: %w", err)
		}
	}

	c, err := client.New(client.Options{
		BaseURL: cfg.Backend.BaseURL,
		Jar:     jar,
		Timeout: cfg.Backend.Timeout,
		Logger:  logger,
	})
	if err != nil {
		jar.Close()
		return nil, fmt.Errorf("creating client: %w", err)
	}

	prompter := console.NewPrompter(tio.in, tio.out, assumeYes)
	con := console.New(c, console.Options{
		Notifier:        prompter,
		Confirmer:       prompter,
		Logger:          logger,
		SkipEmptyUpdate: cfg.Console.SkipEmptyUpdate,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		jar:      jar,
		client:   c,
		console:  con,
		prompter: prompter,
		out:      tio.out,
	}, nil
}

func (a *app) Close() error {
	a.console.Wait()
	return a.jar.Close()
}

// hint adds a next step to errors the admin can fix.
func hint(err error) error {
	if client.IsUnauthorized(err) {
		return fmt.Errorf("%w (session rejected; run 'digistav-admin login <token>' or set DIGISTAV_TOKEN)", err)
	}
	if errors.Is(err, client.ErrTransport) {
		return fmt.Errorf("%w (is the backend URL reachable? see 'digistav-admin settings')", err)
	}
	return err
}
