package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	internalcli "github.com/themizzi/shopflow/internal/cli"
	"github.com/themizzi/shopflow/internal/config"
	"github.com/themizzi/shopflow/internal/database"
	"github.com/themizzi/shopflow/internal/repository"
	"github.com/themizzi/shopflow/internal/services"
)

var version = "0.1.0"

var configFlag = &cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "YAML scenario configuration file",
	EnvVars: []string{"SHOPFLOW_CONFIG"},
}

// loadScenario layers the CLI flags over the file and environment configuration
func loadScenario(c *cli.Context) (config.Scenario, error) {
	cfg, err := config.LoadScenario(c.String("config"))
	if err != nil {
		return cfg, err
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("headless") {
		cfg.Browser.Headless = c.Bool("headless")
	}
	if c.IsSet("interstitials") {
		cfg.Interstitials.Policy = config.InterstitialPolicy(c.String("interstitials"))
	}
	if c.IsSet("install") {
		cfg.Browser.Install = c.Bool("install")
	}
	return cfg, nil
}

// RunCommand returns the run command
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the login and checkout scenario against a shop",
		Flags: []cli.Flag{
			configFlag,
			&cli.StringFlag{Name: "base-url", Usage: "shop to test"},
			&cli.BoolFlag{Name: "headless", Usage: "run the browser without a window"},
			&cli.StringFlag{Name: "interstitials", Usage: "optional or required"},
			&cli.BoolFlag{Name: "install", Usage: "download the Playwright driver and Chromium first"},
			&cli.BoolFlag{Name: "no-color", Usage: "disable coloured output"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadScenario(c)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			_, err = internalcli.RunScenario(ctx, internalcli.RunOptions{
				Scenario: cfg,
				Out:      os.Stdout,
				Color:    !color.NoColor && !c.Bool("no-color"),
				Logger:   logrus.StandardLogger(),
			})
			if errors.Is(err, internalcli.ErrScenarioFailed) {
				return cli.Exit("", 1)
			}
			return err
		},
	}
}

// ServeCommand returns the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the fixture storefront",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "postgres",
				Usage:   "store orders in PostgreSQL (POSTGRES_* variables) instead of memory",
				EnvVars: []string{"SHOPFLOW_POSTGRES"},
			},
		},
		Action: func(c *cli.Context) error {
			serverConfig, err := config.LoadServerConfig(os.Getenv)
			if err != nil {
				return err
			}

			var repo services.OrderRepository = repository.NewMemoryOrderRepository()
			if c.Bool("postgres") {
				if err := database.Connect(os.Getenv); err != nil {
					return fmt.Errorf("failed to connect to database: %w", err)
				}
				defer database.Close()
				logrus.Info("Connected to database successfully")

				if err := database.RunMigrations(); err != nil {
					return fmt.Errorf("failed to run database migrations: %w", err)
				}
				repo = repository.NewOrderRepository()
			}

			deps, err := internalcli.NewStorefront(serverConfig, repo)
			if err != nil {
				return err
			}
			return internalcli.RunServe(deps)
		},
	}
}

// ConfigCommand returns the config command
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Print the effective scenario configuration",
		Flags: []cli.Flag{configFlag},
		Action: func(c *cli.Context) error {
			cfg, err := loadScenario(c)
			if err != nil {
				return err
			}
			return internalcli.WriteConfig(os.Stdout, cfg)
		},
	}
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		logrus.Debug(".env file not found, using environment variables")
	}

	app := &cli.App{
		Name:    "shopflow",
		Usage:   "End-to-end login and checkout checks for an online shop",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "panic, fatal, error, warn, info, debug or trace",
				EnvVars: []string{"SHOPFLOW_LOG_LEVEL"},
			},
		},
		Before: func(c *cli.Context) error {
			return internalcli.SetupLogger(logrus.StandardLogger(), c.String("log-level"), os.Stderr)
		},
		Commands: []*cli.Command{
			RunCommand(),
			ServeCommand(),
			ConfigCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}
