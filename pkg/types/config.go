// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// ConnectorConfig holds the rate-limit and fetch settings for one connector
// type. The token bucket holds Capacity tokens and refills at RefillRate
// tokens per second; it must never be exceeded, even under burst submission.
type ConnectorConfig struct {
	// Capacity is the token bucket size (burst allowance).
	Capacity int `json:"capacity" yaml:"capacity" mapstructure:"capacity"`

	// RefillRate is tokens added per second.
	RefillRate float64 `json:"refill_rate" yaml:"refill_rate" mapstructure:"refill_rate"`

	// Timeout bounds each individual fetch task.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the retry ceiling for transient fetch failures.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// Endpoint overrides the connector's default API endpoint. Used for
	// self-hosted mirrors and tests.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty" mapstructure:"endpoint"`

	// APIKey authenticates against the connector's API when required.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty" mapstructure:"user_agent"`
}

// StoreConfig holds session persistence settings.
type StoreConfig struct {
	// Dir is the directory holding the session database.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`
}

// ReportConfig holds report generation settings.
type ReportConfig struct {
	// OutputDir is where rendered reports are written.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`

	// AllowGapOverride lets a caller force report emission even when
	// unresolved gaps exceed the hard threshold.
	AllowGapOverride bool `json:"allow_gap_override" yaml:"allow_gap_override" mapstructure:"allow_gap_override"`
}

// PipelineConfig groups all settings for a session. It is built once at
// session creation, validated, and passed into the orchestrator; the
// per-connector token buckets are the only mutable state derived from it.
type PipelineConfig struct {
	// MaxRounds bounds the meta-auditor's feedback loop.
	MaxRounds int `json:"max_rounds" yaml:"max_rounds" mapstructure:"max_rounds"`

	// RecencyWindow is the default evidence recency window applied when
	// the intent does not set one.
	RecencyWindow time.Duration `json:"recency_window" yaml:"recency_window" mapstructure:"recency_window"`

	// QualityFloor is the minimum quality score (0-1) for evidence to pass
	// the quality check.
	QualityFloor float64 `json:"quality_floor" yaml:"quality_floor" mapstructure:"quality_floor"`

	// GapThreshold is the number of missing categories above which report
	// generation fails closed.
	GapThreshold int `json:"gap_threshold" yaml:"gap_threshold" mapstructure:"gap_threshold"`

	// MinCategoryFindings is the support a category needs to not appear
	// in the gap report.
	MinCategoryFindings int `json:"min_category_findings" yaml:"min_category_findings" mapstructure:"min_category_findings"`

	// GlobalConcurrencyCap bounds in-flight fetch tasks across all
	// connectors, independent of per-connector rate limits.
	GlobalConcurrencyCap int `json:"global_concurrency_cap" yaml:"global_concurrency_cap" mapstructure:"global_concurrency_cap"`

	// DegradedFailureRatio is the per-stage failure ratio above which the
	// session is marked degraded rather than failed.
	DegradedFailureRatio float64 `json:"degraded_failure_ratio" yaml:"degraded_failure_ratio" mapstructure:"degraded_failure_ratio"`

	// Connectors maps connector type to its rate-limit and fetch settings.
	Connectors map[string]ConnectorConfig `json:"connectors" yaml:"connectors" mapstructure:"connectors"`

	Store  StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`
	Report ReportConfig `json:"report" yaml:"report" mapstructure:"report"`
}

// DefaultPipelineConfig returns the documented defaults.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		MaxRounds:            2,
		RecencyWindow:        365 * 24 * time.Hour,
		QualityFloor:         0.4,
		GapThreshold:         1,
		MinCategoryFindings:  1,
		GlobalConcurrencyCap: 8,
		DegradedFailureRatio: 0.5,
		Connectors:           map[string]ConnectorConfig{},
		Store:                StoreConfig{Dir: "sessions"},
		Report:               ReportConfig{OutputDir: "output/reports"},
	}
}

// Validate checks the configuration before any stage runs. A non-nil error
// wraps ErrConfiguration and is fatal to the session.
func (c PipelineConfig) Validate() error {
	if c.MaxRounds < 1 {
		return fmt.Errorf("%w: max_rounds must be at least 1, got %d", ErrConfiguration, c.MaxRounds)
	}
	if c.QualityFloor < 0 || c.QualityFloor > 1 {
		return fmt.Errorf("%w: quality_floor must be in [0,1], got %g", ErrConfiguration, c.QualityFloor)
	}
	if c.GapThreshold < 0 {
		return fmt.Errorf("%w: gap_threshold must be non-negative, got %d", ErrConfiguration, c.GapThreshold)
	}
	if c.GlobalConcurrencyCap < 1 {
		return fmt.Errorf("%w: global_concurrency_cap must be at least 1, got %d", ErrConfiguration, c.GlobalConcurrencyCap)
	}
	if c.DegradedFailureRatio < 0 || c.DegradedFailureRatio > 1 {
		return fmt.Errorf("%w: degraded_failure_ratio must be in [0,1], got %g", ErrConfiguration, c.DegradedFailureRatio)
	}
	for name, cc := range c.Connectors {
		if cc.Capacity < 1 {
			return fmt.Errorf("%w: connector %s: capacity must be at least 1, got %d", ErrConfiguration, name, cc.Capacity)
		}
		if cc.RefillRate <= 0 {
			return fmt.Errorf("%w: connector %s: refill_rate must be positive, got %g", ErrConfiguration, name, cc.RefillRate)
		}
		if cc.Timeout <= 0 {
			return fmt.Errorf("%w: connector %s: timeout must be positive, got %v", ErrConfiguration, name, cc.Timeout)
		}
		if cc.MaxRetries < 0 {
			return fmt.Errorf("%w: connector %s: max_retries must be non-negative, got %d", ErrConfiguration, name, cc.MaxRetries)
		}
	}
	return nil
}
