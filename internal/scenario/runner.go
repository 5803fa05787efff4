package scenario

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// Step is one named phase of a case
type Step struct {
	Name string
	Run  func(ctx context.Context, r *Run) error
}

// Case is a named, ordered group of steps reported as one pass/fail result
type Case struct {
	Name        string
	DisplayName string
	Steps       []Step
}

// Status of a case after a run
type Status string

// Case statuses
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// CaseResult is the outcome of one case
type CaseResult struct {
	Name        string
	DisplayName string
	Status      Status
	// Step is the step that failed, if any.
	Step     string
	Kind     ErrorKind
	Message  string
	Err      error
	Duration time.Duration
}

// Result is the outcome of a whole run
type Result struct {
	RunID      string
	BaseURL    string
	Cases      []CaseResult
	FinalState State
	Duration   time.Duration
	// SubmitLocated is true when the order submission control was found (and left alone).
	SubmitLocated bool
}

// Passed returns true if every case passed
func (r Result) Passed() bool {
	for _, c := range r.Cases {
		if c.Status != StatusPassed {
			return false
		}
	}
	return len(r.Cases) > 0
}

// Counts returns the number of passed, failed and skipped cases
func (r Result) Counts() (passed, failed, skipped int) {
	for _, c := range r.Cases {
		switch c.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return passed, failed, skipped
}

// Cases returns the scenario's cases in execution order
func (d *Driver) Cases() []Case {
	return []Case{
		{
			Name:        "test01",
			DisplayName: "Tests if login with a valid user is possible",
			Steps: []Step{
				{Name: "start session", Run: d.StartSession},
				{Name: "dismiss interstitials", Run: d.DismissInterstitials},
				{Name: "open login", Run: d.OpenLogin},
				{Name: "authenticate", Run: d.Authenticate},
			},
		},
		{
			Name:        "test02",
			DisplayName: "Tests if an order can be placed",
			Steps: []Step{
				{Name: "add item to cart", Run: d.AddItemToCart},
				{Name: "place order", Run: d.PlaceOrder},
				{Name: "verify outcome", Run: d.VerifyOutcome},
			},
		},
	}
}

// Run executes the scenario's cases in order on a fresh run
func (d *Driver) Run(ctx context.Context) Result {
	return d.RunCases(ctx, d.NewRun(), d.Cases())
}

// RunCases executes cases in order against r. Once a case fails the
// remaining ones are skipped. The session is closed before returning.
func (d *Driver) RunCases(ctx context.Context, r *Run, cases []Case) Result {
	log := d.log.WithFields(logrus.Fields{"run_id": r.ID, "base_url": d.cfg.BaseURL})
	res := Result{RunID: r.ID, BaseURL: d.cfg.BaseURL}
	start := d.clock.Now()

	failed := false
	for _, c := range cases {
		cr := CaseResult{Name: c.Name, DisplayName: c.DisplayName}
		if failed {
			cr.Status = StatusSkipped
			cr.Message = "not run: an earlier case failed"
			res.Cases = append(res.Cases, cr)
			continue
		}

		caseStart := d.clock.Now()
		log.WithField("case", c.Name).Info("Case started")
		step, err := d.runSteps(ctx, r, c.Steps)
		cr.Duration = d.clock.Now().Sub(caseStart)

		if err != nil {
			failed = true
			cr.Status = StatusFailed
			cr.Step = step
			cr.Kind = Classify(err)
			cr.Err = err
			cr.Message = failureMessage(err)
			log.WithError(err).WithFields(logrus.Fields{
				"case":  c.Name,
				"step":  step,
				"kind":  cr.Kind,
				"state": r.State,
			}).Error("Case failed")
		} else {
			cr.Status = StatusPassed
			log.WithFields(logrus.Fields{"case": c.Name, "state": r.State}).Info("Case passed")
		}
		res.Cases = append(res.Cases, cr)
	}

	if r.Session != nil {
		if err := r.Session.Close(); err != nil {
			log.WithError(err).Warn("Failed to close browser session")
		}
	}

	res.FinalState = r.State
	res.SubmitLocated = r.SubmitLocated
	res.Duration = d.clock.Now().Sub(start)
	return res
}

func (d *Driver) runSteps(ctx context.Context, r *Run, steps []Step) (string, error) {
	for _, s := range steps {
		stepStart := d.clock.Now()
		if err := s.Run(ctx, r); err != nil {
			return s.Name, &StepError{Step: s.Name, Err: err}
		}
		d.log.WithFields(logrus.Fields{
			"run_id":  r.ID,
			"step":    s.Name,
			"state":   r.State,
			"elapsed": d.clock.Now().Sub(stepStart),
		}).Debug("Step completed")
	}
	return "", nil
}

// failureMessage returns the human-readable reason for a failed case
func failureMessage(err error) string {
	var assertion *AssertionError
	if errors.As(err, &assertion) {
		return assertion.Message
	}
	return err.Error()
}
