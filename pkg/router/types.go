package router

import "time"

// Request is the router's input: the model name as the client requested
// it, plus the classification result already produced earlier in the
// pipeline.
type Request struct {
	RequestedModel string
	Category       string
	Complexity     int
}

// Decision is the router's output: which provider and model to dispatch
// to, and why.
type Decision struct {
	ProviderID   string
	ModelID      string
	DisplayAlias string
	Reason       string
	Category     string
	Complexity   int
}

// Config tunes the tier-based selection algorithm. All fields have
// sane defaults applied by New when left zero.
type Config struct {
	// MinSampleCount is the sample count at which a model's historical
	// stats are considered "confident" rather than unproven.
	MinSampleCount int

	// ExplorationProbability is the chance, when at least one model in
	// a tier lacks confident data, that the cheapest unproven model is
	// picked instead of falling through to exploitation.
	ExplorationProbability float64

	// MinSuccessRate is the historical success rate a model must clear
	// to survive the exploitation pass.
	MinSuccessRate float64

	// StatsWindow is how far back historical stats are pulled from.
	StatsWindow time.Duration

	// DefaultProviderID is preferred on cost ties in the fallback path.
	DefaultProviderID string
}

func (c Config) withDefaults() Config {
	if c.MinSampleCount <= 0 {
		c.MinSampleCount = 3
	}
	if c.ExplorationProbability <= 0 {
		c.ExplorationProbability = 0.2
	}
	if c.MinSuccessRate <= 0 {
		c.MinSuccessRate = 0.8
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = 7 * 24 * time.Hour
	}
	if c.DefaultProviderID == "" {
		c.DefaultProviderID = "claude-cli"
	}
	return c
}
