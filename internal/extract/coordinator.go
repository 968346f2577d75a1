package extract

import (
	"errors"
	"time"

	"gcpt/internal/cleaner"
	"gcpt/internal/logger"
	"gcpt/internal/models"
)

// ErrAllStrategiesFailed is the coordinator's total-failure report: every
// strategy was exhausted without yielding a usable record. The pipeline
// never fabricates data in its place.
var ErrAllStrategiesFailed = errors.New("all extraction strategies failed")

// State tracks one strategy's progress through the run.
type State int

// Per-strategy states.
const (
	NotTried State = iota
	Running
	Succeeded
	PartiallySucceeded
	Failed
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case NotTried:
		return "not tried"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case PartiallySucceeded:
		return "partially succeeded"
	case Failed:
		return "failed"
	}

	return "unknown"
}

// Coordinator drives the strategies in fixed priority order, merges and
// deduplicates their raw output and cleans every surviving record. It owns
// the record collection until handoff to the assembler.
type Coordinator struct {
	strategies []Strategy
	cleaner    *cleaner.Cleaner
	log        *logger.Logger
	states     map[string]State
	minRecords int
	politeness time.Duration
	rejected   int
}

// NewCoordinator creates a coordinator over strategies in priority order.
// minRecords is the sufficiency threshold that allows an early stop;
// politeness is the pause between network-bound strategy attempts.
func NewCoordinator(strategies []Strategy, cl *cleaner.Cleaner, log *logger.Logger, minRecords int, politeness time.Duration) *Coordinator {
	states := make(map[string]State, len(strategies))
	for _, s := range strategies {
		states[s.Name()] = NotTried
	}

	return &Coordinator{
		strategies: strategies,
		cleaner:    cl,
		log:        log,
		states:     states,
		minRecords: minRecords,
		politeness: politeness,
	}
}

// Run executes the extraction. It returns the cleaned canonical records,
// or ErrAllStrategiesFailed when nothing usable was gathered. Individual
// strategy failures never surface here; they are logged and the next
// strategy is tried.
func (c *Coordinator) Run() ([]*models.PlantRecord, error) {
	var raw []models.RawRecord

	for i, strategy := range c.strategies {
		if i > 0 && c.politeness > 0 {
			// Politeness delay: the strategies hit the same rate-limited
			// upstream.
			time.Sleep(c.politeness)
		}

		c.states[strategy.Name()] = Running
		c.log.Info("trying extraction strategy", "strategy", strategy.Name())

		result := strategy.Extract()
		c.states[strategy.Name()] = stateFor(result)

		c.log.Info("strategy finished",
			"strategy", strategy.Name(),
			"status", result.Status.String(),
			"records", len(result.Records))

		if result.Err != nil {
			c.log.Warn("strategy reported failure", "strategy", strategy.Name(), "error", result.Err)
		}

		raw = append(raw, result.Records...)

		if c.sufficient(result) {
			break
		}
	}

	if len(raw) == 0 {
		return nil, ErrAllStrategiesFailed
	}

	merged := dedupeRaw(raw)
	if len(merged) < len(raw) {
		c.log.Info("deduplicated raw records", "before", len(raw), "after", len(merged))
	}

	records := c.clean(merged)
	if len(records) == 0 {
		return nil, ErrAllStrategiesFailed
	}

	return records, nil
}

// States returns each strategy's final state, keyed by strategy name.
func (c *Coordinator) States() map[string]State {
	states := make(map[string]State, len(c.states))
	for name, state := range c.states {
		states[name] = state
	}

	return states
}

// Rejected returns how many raw records the cleaner rejected in the last
// run.
func (c *Coordinator) Rejected() int {
	return c.rejected
}

// sufficient reports whether a strategy's batch is big enough to stop the
// fallback chain.
func (c *Coordinator) sufficient(result Result) bool {
	return len(result.Records) > 0 && len(result.Records) >= c.minRecords
}

func (c *Coordinator) clean(raw []models.RawRecord) []*models.PlantRecord {
	records := make([]*models.PlantRecord, 0, len(raw))
	c.rejected = 0

	for _, rec := range raw {
		cleaned, err := c.cleaner.Clean(rec)
		if err != nil {
			c.rejected++

			c.log.Debug("record rejected", "reason", err)

			continue
		}

		records = append(records, cleaned)
	}

	if c.rejected > 0 {
		c.log.Info("records rejected during cleaning", "rejected", c.rejected, "kept", len(records))
	}

	return records
}

func stateFor(result Result) State {
	switch result.Status {
	case StatusSuccess:
		return Succeeded
	case StatusPartial:
		return PartiallySucceeded
	default:
		return Failed
	}
}
