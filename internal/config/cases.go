package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JaimeStill/courtfetch/internal/captcha"
)

const (
	EnvCasesSensitiveCaseTypes = "COURTFETCH_CASES_SENSITIVE_CASE_TYPES"
	EnvCasesBaseline           = "COURTFETCH_CASES_BASELINE"
	EnvCasesCodeLength         = "COURTFETCH_CASES_CODE_LENGTH"
	EnvCasesImageTemplate      = "COURTFETCH_CASES_IMAGE_TEMPLATE"
	EnvCasesChallengeTTL       = "COURTFETCH_CASES_CHALLENGE_TTL"
	EnvCasesSessionTTL         = "COURTFETCH_CASES_SESSION_TTL"
	EnvCasesSourceTimeout      = "COURTFETCH_CASES_SOURCE_TIMEOUT"
	EnvCasesSourceLatency      = "COURTFETCH_CASES_SOURCE_LATENCY"
	EnvCasesSourceFailureRate  = "COURTFETCH_CASES_SOURCE_FAILURE_RATE"
	EnvCasesMaxSessions        = "COURTFETCH_CASES_MAX_SESSIONS"
)

// DefaultMaxSessions is the live session cap applied when none is configured.
const DefaultMaxSessions = 10000

// CasesConfig tunes the challenge policy and the case source.
type CasesConfig struct {
	SensitiveCaseTypes []string `toml:"sensitive_case_types"`
	// Baseline is the challenge probability for non-sensitive case types.
	// Nil means captcha.DefaultBaseline; zero disables baseline challenges.
	Baseline          *float64 `toml:"baseline"`
	CodeLength        int      `toml:"code_length"`
	ImageTemplate     string   `toml:"image_template"`
	ChallengeTTL      string   `toml:"challenge_ttl"`
	SessionTTL        string   `toml:"session_ttl"`
	SourceTimeout     string   `toml:"source_timeout"`
	SourceLatency     string   `toml:"source_latency"`
	SourceFailureRate float64  `toml:"source_failure_rate"`
	// MaxSessions caps live search sessions.
	MaxSessions int `toml:"max_sessions"`
}

func (c *CasesConfig) BaselineValue() float64 {
	if c.Baseline == nil {
		return captcha.DefaultBaseline
	}
	return *c.Baseline
}

func (c *CasesConfig) ChallengeTTLDuration() time.Duration  { return duration(c.ChallengeTTL) }
func (c *CasesConfig) SessionTTLDuration() time.Duration    { return duration(c.SessionTTL) }
func (c *CasesConfig) SourceTimeoutDuration() time.Duration { return duration(c.SourceTimeout) }
func (c *CasesConfig) SourceLatencyDuration() time.Duration { return duration(c.SourceLatency) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CasesConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *CasesConfig) Merge(overlay *CasesConfig) {
	if overlay.SensitiveCaseTypes != nil {
		c.SensitiveCaseTypes = overlay.SensitiveCaseTypes
	}
	if overlay.Baseline != nil {
		c.Baseline = overlay.Baseline
	}
	if overlay.CodeLength != 0 {
		c.CodeLength = overlay.CodeLength
	}
	if overlay.MaxSessions != 0 {
		c.MaxSessions = overlay.MaxSessions
	}
	if overlay.SourceFailureRate != 0 {
		c.SourceFailureRate = overlay.SourceFailureRate
	}
	mergeString(&c.ImageTemplate, overlay.ImageTemplate)
	mergeString(&c.ChallengeTTL, overlay.ChallengeTTL)
	mergeString(&c.SessionTTL, overlay.SessionTTL)
	mergeString(&c.SourceTimeout, overlay.SourceTimeout)
	mergeString(&c.SourceLatency, overlay.SourceLatency)
}

func (c *CasesConfig) loadDefaults() {
	if c.SensitiveCaseTypes == nil {
		c.SensitiveCaseTypes = []string{"Civil Appeal", "Criminal Appeal"}
	}
	if c.CodeLength == 0 {
		c.CodeLength = captcha.DefaultLength
	}
	if c.MaxSessions == 0 {
		c.MaxSessions = DefaultMaxSessions
	}
	defaultString(&c.ImageTemplate, captcha.DefaultImageTemplate)
	defaultString(&c.ChallengeTTL, "5m")
	defaultString(&c.SessionTTL, "30m")
	defaultString(&c.SourceTimeout, "10s")
	defaultString(&c.SourceLatency, "1s")
}

func (c *CasesConfig) loadEnv() {
	envList(&c.SensitiveCaseTypes, EnvCasesSensitiveCaseTypes)
	envFloat(&c.Baseline, EnvCasesBaseline)
	envInt(&c.CodeLength, EnvCasesCodeLength)
	envInt(&c.MaxSessions, EnvCasesMaxSessions)
	envString(&c.ImageTemplate, EnvCasesImageTemplate)
	envString(&c.ChallengeTTL, EnvCasesChallengeTTL)
	envString(&c.SessionTTL, EnvCasesSessionTTL)
	envString(&c.SourceTimeout, EnvCasesSourceTimeout)
	envString(&c.SourceLatency, EnvCasesSourceLatency)

	var rate *float64
	envFloat(&rate, EnvCasesSourceFailureRate)
	if rate != nil {
		c.SourceFailureRate = *rate
	}
}

func (c *CasesConfig) validate() error {
	if b := c.BaselineValue(); b < 0 || b > 1 {
		return fmt.Errorf("invalid baseline %v: must be within [0, 1]", b)
	}
	if c.SourceFailureRate < 0 || c.SourceFailureRate > 1 {
		return fmt.Errorf("invalid source_failure_rate %v: must be within [0, 1]", c.SourceFailureRate)
	}
	if c.CodeLength < 1 {
		return fmt.Errorf("invalid code_length: %d", c.CodeLength)
	}
	if c.ImageTemplate == "" {
		return errors.New("image_template required")
	}
	if !strings.Contains(c.ImageTemplate, captcha.CodePlaceholder) {
		return fmt.Errorf("invalid image_template %q: missing %s placeholder", c.ImageTemplate, captcha.CodePlaceholder)
	}
	if c.MaxSessions < 0 {
		return fmt.Errorf("invalid max_sessions: %d", c.MaxSessions)
	}
	return validateDurations(map[string]string{
		"challenge_ttl":  c.ChallengeTTL,
		"session_ttl":    c.SessionTTL,
		"source_timeout": c.SourceTimeout,
		"source_latency": c.SourceLatency,
	})
}
