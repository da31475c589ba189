package captcha

import "github.com/JaimeStill/courtfetch/internal/courts"

// DefaultBaseline is the chance a non-sensitive query is challenged.
const DefaultBaseline = 0.3

// Policy decides whether a query must pass a challenge before it is fetched.
type Policy interface {
	Required(caseType string, strategy courts.CaptchaStrategy) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(caseType string, strategy courts.CaptchaStrategy) bool

func (f PolicyFunc) Required(caseType string, strategy courts.CaptchaStrategy) bool {
	return f(caseType, strategy)
}

var (
	// Always challenges every query.
	Always Policy = PolicyFunc(func(string, courts.CaptchaStrategy) bool { return true })
	// Never challenges any query.
	Never Policy = PolicyFunc(func(string, courts.CaptchaStrategy) bool { return false })
)

// Gate challenges sensitive case types always, and other case types with a
// baseline probability. Courts with the bypass strategy are never challenged.
// The service strategy is treated as manual.
type Gate struct {
	sensitive map[string]struct{}
	baseline  float64
	rnd       RandomSource
}

// NewGate builds a Gate. baseline is clamped to [0, 1]. A nil rnd uses Global.
func NewGate(sensitive []string, baseline float64, rnd RandomSource) *Gate {
	set := make(map[string]struct{}, len(sensitive))
	for _, s := range sensitive {
		set[s] = struct{}{}
	}
	if rnd == nil {
		rnd = Global
	}
	return &Gate{
		sensitive: set,
		baseline:  min(max(baseline, 0), 1),
		rnd:       rnd,
	}
}

func (g *Gate) Required(caseType string, strategy courts.CaptchaStrategy) bool {
	if strategy == courts.CaptchaBypass {
		return false
	}
	if _, ok := g.sensitive[caseType]; ok {
		return true
	}
	return g.baseline > 0 && g.rnd.Float64() < g.baseline
}
