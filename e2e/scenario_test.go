package e2e

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/themizzi/shopflow/internal/cli"
	"github.com/themizzi/shopflow/internal/config"
	"github.com/themizzi/shopflow/internal/scenario"
)

// TestScenarioAgainstStorefront tests the full scenario in a real browser
// Feature: Shop scenario
//
//	As a QA engineer
//	I want to run the login and checkout scenario against the fixture shop
//	So that I know it synchronises with the shop's delayed controls
func TestScenarioAgainstStorefront(t *testing.T) {
	requireE2E(t)

	// Scenario: Run both cases
	//   Given the storefront with delayed prompts, controls and towns
	//   When I run the scenario
	//   Then login passes
	//   And the order case fails because the order is never sent
	//   And no order is stored

	// Given the storefront with delayed prompts, controls and towns
	cfg := config.DefaultScenario()
	cfg.BaseURL = shop.URL
	cfg.Credentials = config.Credentials{Email: shopperEmail, Password: shopperPassword}
	cfg.Wait = config.WaitConfig{Timeout: 5 * time.Second, Interval: 250 * time.Millisecond}
	cfg.Interstitials.Timeout = 3 * time.Second
	before, err := orders.ListOrders()
	if err != nil {
		t.Fatal(err)
	}

	// When I run the scenario
	logger, _ := test.NewNullLogger()
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	res, err := cli.RunScenario(ctx, cli.RunOptions{
		Scenario: cfg,
		Out:      &out,
		Logger:   logger,
		Launcher: cli.PlaywrightLauncher(config.BrowserConfig{Headless: true}, logger),
	})
	t.Log(out.String())

	// Then login passes
	if !errors.Is(err, cli.ErrScenarioFailed) {
		t.Fatalf("Expected the scenario to fail, got %v", err)
	}
	if len(res.Cases) != 2 {
		t.Fatalf("Expected 2 cases, got %d", len(res.Cases))
	}
	if res.Cases[0].Status != scenario.StatusPassed {
		t.Fatalf("Expected login to pass, got %s: %s", res.Cases[0].Status, res.Cases[0].Message)
	}

	// And the order case fails because the order is never sent
	order := res.Cases[1]
	if order.Status != scenario.StatusFailed || order.Kind != scenario.KindAssertion {
		t.Fatalf("Expected an assertion failure, got %s/%s: %s", order.Status, order.Kind, order.Message)
	}
	if order.Message != "Your order was not placed." {
		t.Errorf("Unexpected message %q", order.Message)
	}
	if res.FinalState != scenario.StateOrderNotSubmitted || !res.SubmitLocated {
		t.Errorf("Expected the submit control located and state %s, got %s", scenario.StateOrderNotSubmitted, res.FinalState)
	}
	if !strings.Contains(out.String(), "PASS  test01") {
		t.Errorf("Report missing the passed login case:\n%s", out.String())
	}

	// And no order is stored
	after, err := orders.ListOrders()
	if err != nil {
		t.Fatal(err)
	}
	if len(after) != len(before) {
		t.Errorf("Expected no new orders, got %d", len(after)-len(before))
	}
}
