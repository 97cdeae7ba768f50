package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/fitlo/fitlo/internal/app"
	"github.com/fitlo/fitlo/internal/auth"
	"github.com/fitlo/fitlo/internal/browser"
	"github.com/fitlo/fitlo/internal/config"
	"github.com/fitlo/fitlo/internal/logger"
)

var (
	version = "dev"
)

func main() {
	cliApp := newCLI()
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%sfitlo: %v%s\n", red, err, reset)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:    "fitlo",
		Usage:   "Competition leaderboards with live updates",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file", EnvVars: []string{"FITLO_CONFIG"}},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (overrides config)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error (overrides config)"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json (overrides config)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP and WebSocket server",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address, e.g. :8081"},
					&cli.StringFlag{Name: "base-url", Usage: "public URL encoded into QR codes"},
					&cli.StringFlag{Name: "admin-password", Usage: "admin password (auto-generated if not set)"},
					&cli.StringFlag{Name: "redis", Usage: "redis address for admin sessions"},
					&cli.BoolFlag{Name: "http-log", Usage: "log every HTTP request"},
					&cli.BoolFlag{Name: "open", Usage: "open the leaderboard in a browser once listening"},
					&cli.StringFlag{Name: "competition", Usage: "competition slug used by --open and the console"},
					&cli.BoolFlag{Name: "no-console", Usage: "do not read operator commands from stdin"},
				},
				Action: serve,
			},
			{
				Name:      "rank",
				Usage:     "Rank a YAML or JSON competition snapshot offline",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "scope", Usage: "All or a category name", Value: "All"},
				},
				Action: func(c *cli.Context) error {
					file := c.Args().First()
					if file == "" {
						return cli.Exit("rank requires a snapshot file", 2)
					}
					data, err := os.ReadFile(file)
					if err != nil {
						return err
					}
					return rankSnapshot(c.App.Writer, data, c.String("scope"))
				},
			},
			{
				Name:  "export",
				Usage: "Write a competition's leaderboard to an Excel workbook",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "competition", Usage: "competition ID", Required: true},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file", Value: "leaderboard.xlsx"},
				},
				Action: export,
			},
			{
				Name:  "seed",
				Usage: "Register fake entries for a demo or load test",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "competition", Usage: "competition ID", Required: true},
					&cli.IntFlag{Name: "count", Usage: "number of entries", Value: 20},
					&cli.BoolFlag{Name: "scores", Usage: "also record random scores"},
				},
				Action: seed,
			},
		},
	}
}

// loadConfig reads the config file and applies global flag overrides
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if v := c.String("db"); v != "" {
		cfg.Database.Path = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Log.Format = v
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *logger.SlogLogger {
	return logger.NewWithOptions(logger.Options{
		Level:       logger.ParseLevel(cfg.Log.Level),
		Format:      logger.ParseFormat(cfg.Log.Format),
		HTTPLogging: cfg.Log.HTTP,
	})
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if v := c.String("addr"); v != "" {
		cfg.Server.Addr = v
	}
	if v := c.String("base-url"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := c.String("admin-password"); v != "" {
		cfg.Auth.AdminPassword = v
	}
	if v := c.String("redis"); v != "" {
		cfg.Redis.Addr = v
	}
	if c.Bool("http-log") {
		cfg.Log.HTTP = true
	}

	generated := cfg.Auth.AdminPassword == ""
	if generated {
		cfg.Auth.AdminPassword = auth.GeneratePassword()
	}

	appLog := newLogger(cfg)
	a, err := app.New(cfg, appLog)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()

	fmt.Fprintf(c.App.Writer, "\n  %s%sfitlo %s%s  %s%s%s\n\n", bold, cyan, version, reset, yellow, a.BaseURL(), reset)
	if generated {
		appLog.Info("Admin password", "password", cfg.Auth.AdminPassword)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	openLeaderboard := func() error {
		target := a.BaseURL() + "/healthz"
		if slug := c.String("competition"); slug != "" {
			target = browser.LeaderboardURL(a.BaseURL(), slug, "")
		}
		return browser.Open(target)
	}
	if c.Bool("open") {
		if err := openLeaderboard(); err != nil {
			appLog.Warn("Failed to open browser", "error", err)
		}
	}

	if !c.Bool("no-console") {
		con := &console{log: appLog, out: c.App.Writer, open: openLeaderboard, quit: stop}
		con.printHelp()
		go con.run(ctx, os.Stdin)
	}

	return a.Run(ctx)
}

// withApp builds the application for a one-shot command. Those commands never
// serve admin routes, so a throwaway password satisfies app.New.
func withApp(c *cli.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if cfg.Auth.AdminPassword == "" {
		cfg.Auth.AdminPassword = auth.GeneratePassword()
	}

	a, err := app.New(cfg, newLogger(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer a.Close()
	return fn(c.Context, a)
}

func export(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, a *app.App) error {
		f, err := os.Create(c.String("out"))
		if err != nil {
			return err
		}
		if err := a.Services().Leaderboard.ExportXLSX(ctx, c.Int("competition"), f); err != nil {
			f.Close()
			os.Remove(c.String("out"))
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%sWrote %s%s\n", green, c.String("out"), reset)
		return nil
	})
}

func seed(c *cli.Context) error {
	return withApp(c, func(ctx context.Context, a *app.App) error {
		n, err := a.Services().Entry.SeedMockEntries(ctx, c.Int("competition"), c.Int("count"), c.Bool("scores"))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%sCreated %d entries%s\n", green, n, reset)
		return nil
	})
}
