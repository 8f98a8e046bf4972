// Package cli provides the command-line interface of the Atlassian version probe.
// The single status line goes to stdout; logs, help and usage go to stderr.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/clean-dependency-project/check-atlassian-version/internal/check"
	"github.com/clean-dependency-project/check-atlassian-version/internal/config"
	"github.com/clean-dependency-project/check-atlassian-version/internal/logger"
	"github.com/clean-dependency-project/check-atlassian-version/internal/probe"
	"github.com/clean-dependency-project/check-atlassian-version/internal/product"
	"github.com/clean-dependency-project/check-atlassian-version/internal/resolve"
)

// Resolvers overrides the version lookups. Nil fields use the HTTP resolvers.
type Resolvers struct {
	Installed probe.InstalledResolver
	Latest    probe.LatestResolver
}

// Execute runs the probe with os.Args-style arguments and returns the process exit code.
func Execute(args []string) int {
	return run(context.Background(), args, os.Stdout, os.Stderr, Resolvers{})
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, resolvers Resolvers) int {
	app := NewApp(stdout, stderr, resolvers)

	err := app.RunContext(ctx, args)
	if err == nil {
		return check.OK.ExitCode()
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}

	_, _ = fmt.Fprintf(stdout, "UNKNOWN: %v\n", err)
	return check.Unknown.ExitCode()
}

// NewApp creates and configures the CLI application.
func NewApp(stdout, stderr io.Writer, resolvers Resolvers) *cli.App {
	return &cli.App{
		Name:            "check_atlassian_version",
		Usage:           "Atlassian product version checker for Nagios/Icinga",
		Version:         "1.0.0",
		Writer:          stderr,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		// Exit codes are mapped by run, never by os.Exit inside the app.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "host",
				Aliases:  []string{"H"},
				Usage:    "hostname to check",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "software",
				Usage:    "type of Atlassian software (" + strings.Join(product.Names(), ", ") + ")",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "ssl",
				Aliases: []string{"S"},
				Usage:   "use SSL for connection",
			},
			&cli.StringFlag{
				Name:  "auth",
				Usage: "optional authentication string (user:password for basic auth, otherwise a bearer token)",
			},
			&cli.BoolFlag{
				Name:  "lts",
				Usage: "check for LTS version if set, non-LTS otherwise",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Value: resolve.DefaultTimeout,
				Usage: "timeout for each HTTP request",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "optional YAML file with feed, http and log defaults",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: config.DefaultLogLevel,
				Usage: "log level for stderr output (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: config.DefaultLogFormat,
				Usage: "log format for stderr output (text, json)",
			},
		},
		Action: func(c *cli.Context) error {
			return checkVersion(c, stdout, stderr, resolvers)
		},
	}
}

// loadConfig builds the effective configuration: defaults, then the optional file,
// then any flag given explicitly on the command line.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.IsSet("timeout") {
		timeout := c.Duration("timeout")
		if timeout <= 0 {
			return nil, fmt.Errorf("--timeout must be positive, got %s", timeout)
		}
		cfg.HTTP.Timeout = timeout.String()
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// checkVersion implements the probe action.
func checkVersion(c *cli.Context, stdout, stderr io.Writer, resolvers Resolvers) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	host := strings.TrimSpace(c.String("host"))
	if host == "" {
		return errors.New("--host must not be empty")
	}

	prod, err := product.Parse(c.String("software"))
	if err != nil {
		return fmt.Errorf("invalid --software: %w", err)
	}

	resolverConfig := resolve.Config{
		FeedBaseURL: cfg.Feed.BaseURL,
		UserAgent:   cfg.HTTP.UserAgent,
		Timeout:     cfg.HTTP.GetTimeout(),
		Logger:      log,
	}

	installed := resolvers.Installed
	if installed == nil {
		installed = resolve.NewServerClient(resolverConfig)
	}
	latest := resolvers.Latest
	if latest == nil {
		latest = resolve.NewFeedClient(resolverConfig)
	}

	target := probe.Target{
		Host:        host,
		UseTLS:      c.Bool("ssl"),
		Product:     prod,
		Credentials: resolve.ParseCredentials(c.String("auth")),
		LTS:         c.Bool("lts"),
	}

	log.Debug("starting version check",
		"host", target.Host,
		"product", prod.String(),
		"ssl", target.UseTLS,
		"lts", target.LTS,
		"timeout", cfg.HTTP.GetTimeout().String(),
		"feed_base_url", cfg.Feed.BaseURL)

	ctx, cancel := context.WithTimeout(c.Context, 2*cfg.HTTP.GetTimeout()+time.Second)
	defer cancel()

	result := probe.New(installed, latest, log).Run(ctx, target)

	if _, err := fmt.Fprintln(stdout, result.Message()); err != nil {
		log.Error("failed to write result", "error", err)
	}

	if code := result.ExitCode(); code != check.OK.ExitCode() {
		return cli.Exit("", code)
	}
	return nil
}
