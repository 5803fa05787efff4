package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/themizzi/shopflow/internal/browser"
	"github.com/themizzi/shopflow/internal/config"
	"github.com/themizzi/shopflow/internal/scenario"
)

// ErrScenarioFailed is returned by RunScenario when a case did not pass
var ErrScenarioFailed = errors.New("scenario failed")

// RunOptions configures one scenario run
type RunOptions struct {
	Scenario config.Scenario
	Out      io.Writer
	Color    bool
	Logger   logrus.FieldLogger
	// Launcher opens the browser session. Nil launches Chromium through Playwright.
	Launcher scenario.Launcher
}

// PlaywrightLauncher opens Chromium sessions configured by cfg
func PlaywrightLauncher(cfg config.BrowserConfig, log logrus.FieldLogger) scenario.Launcher {
	return func(ctx context.Context) (browser.Session, error) {
		s, err := browser.Launch(ctx, browser.LaunchOptions{
			Headless:       cfg.Headless,
			Channel:        cfg.Channel,
			SlowMo:         cfg.SlowMo,
			ViewportWidth:  cfg.ViewportWidth,
			ViewportHeight: cfg.ViewportHeight,
			Install:        cfg.Install,
		}, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// RunScenario validates the configuration, executes both cases and writes the report
func RunScenario(ctx context.Context, opts RunOptions) (scenario.Result, error) {
	if err := opts.Scenario.Validate(); err != nil {
		return scenario.Result{}, fmt.Errorf("invalid configuration: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	launch := opts.Launcher
	if launch == nil {
		launch = PlaywrightLauncher(opts.Scenario.Browser, log)
	}

	driver := scenario.NewDriver(opts.Scenario, launch, scenario.WithLogger(log))
	res := driver.Run(ctx)

	if err := scenario.WriteReport(opts.Out, res, opts.Color); err != nil {
		return res, fmt.Errorf("failed to write report: %w", err)
	}
	if !res.Passed() {
		return res, ErrScenarioFailed
	}
	return res, nil
}

// WriteConfig prints cfg as YAML with the password masked
func WriteConfig(w io.Writer, cfg config.Scenario) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg.Redacted()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// SetupLogger points l at out with the named level
func SetupLogger(l *logrus.Logger, level string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})
	return nil
}
