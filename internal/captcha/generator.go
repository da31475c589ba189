package captcha

import (
	"math/rand/v2"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// Alphabet is the character set challenge codes are drawn from.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// CodePlaceholder marks where an image template receives the code.
	CodePlaceholder = "{code}"

	DefaultLength        = 5
	DefaultImageTemplate = "https://dummyimage.com/200x80/cccccc/000000.png&text=" + CodePlaceholder
)

// RandomSource supplies uniform randomness. *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
	Float64() float64
}

type globalSource struct{}

func (globalSource) IntN(n int) int   { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// Global draws from the process-wide math/rand/v2 generator.
var Global RandomSource = globalSource{}

// Locked serialises access to src so it can be shared across goroutines.
func Locked(src RandomSource) RandomSource {
	return &lockedSource{src: src}
}

type lockedSource struct {
	mu  sync.Mutex
	src RandomSource
}

func (l *lockedSource) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.IntN(n)
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

// Generator produces challenge codes and the image references that encode them.
type Generator struct {
	length   int
	template string
	rnd      RandomSource
}

// NewGenerator creates a Generator. Non-positive length and an empty template
// fall back to DefaultLength and DefaultImageTemplate. A nil src uses Global.
func NewGenerator(length int, template string, src RandomSource) *Generator {
	if length <= 0 {
		length = DefaultLength
	}
	if template == "" {
		template = DefaultImageTemplate
	}
	if src == nil {
		src = Global
	}
	return &Generator{length: length, template: template, rnd: src}
}

// Generate issues a new challenge whose code differs from exclude.
func (g *Generator) Generate(exclude string) Challenge {
	code := g.code()
	for code == exclude {
		code = g.code()
	}

	return Challenge{
		ImageReference: g.ImageReference(code),
		SessionID:      "sess_" + uuid.NewString(),
		Answer:         code,
	}
}

// ImageReference renders code into the configured image URL template.
func (g *Generator) ImageReference(code string) string {
	return strings.ReplaceAll(g.template, CodePlaceholder, url.QueryEscape(code))
}

func (g *Generator) code() string {
	var b strings.Builder
	b.Grow(g.length)
	for range g.length {
		b.WriteByte(Alphabet[g.rnd.IntN(len(Alphabet))])
	}
	return b.String()
}
