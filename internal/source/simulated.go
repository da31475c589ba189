// Package source provides case-data sources for the orchestrator. Simulated
// stands in for a court website: it fetches the case page and the order sheet
// concurrently and produces realistic records.
package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/courtfetch/internal/cases"
)

const (
	MethodSimulated = "simulated"
	dateLayout      = "2006-01-02"
)

// ErrUnavailable is returned when a simulated page load fails.
var ErrUnavailable = errors.New("court website unavailable")

// Rand supplies uniform randomness. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Config tunes the simulated court website.
type Config struct {
	// Latency is the time each page load takes.
	Latency time.Duration
	// FailureRate is the chance in [0, 1] that a page load fails.
	FailureRate float64
}

// Simulated is a cases.Source that fabricates records.
type Simulated struct {
	cfg    Config
	mu     sync.Mutex
	rnd    Rand
	now    func() time.Time
	logger *slog.Logger
}

// NewSimulated creates a Simulated source. A nil rnd uses a randomly seeded PCG.
func NewSimulated(cfg Config, rnd Rand, logger *slog.Logger) *Simulated {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Simulated{
		cfg:    cfg,
		rnd:    rnd,
		now:    time.Now,
		logger: logger.With("system", "source"),
	}
}

type casePage struct {
	parties     cases.Parties
	filing      time.Time
	nextHearing time.Time
	lastOrder   time.Time
	status      string
}

// Fetch loads the case page and the order sheet in parallel and assembles a record.
func (s *Simulated) Fetch(ctx context.Context, q cases.Query) (*cases.Record, error) {
	caseNumber := q.CaseNumber + "/" + q.FilingYear
	sourceURL := fmt.Sprintf("%s/case/%s", q.Court, caseNumber)

	var (
		page   casePage
		orders []cases.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		page, err = s.fetchCasePage(gctx, sourceURL)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.fetchOrders(gctx, q)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("simulated fetch failed", "source_url", sourceURL, "error", err)
		return nil, err
	}

	return &cases.Record{
		Parties:         page.parties,
		FilingDate:      page.filing.Format(dateLayout),
		NextHearingDate: page.nextHearing.Format(dateLayout),
		LastOrderDate:   page.lastOrder.Format(dateLayout),
		Status:          page.status,
		CaseType:        q.CaseType,
		CaseNumber:      caseNumber,
		FilingYear:      q.FilingYear,
		Court:           q.Court,
		Orders:          orders,
		Snapshot: &cases.Snapshot{
			SourceURL:   sourceURL,
			RetrievedAt: s.now().UTC(),
			Method:      MethodSimulated,
		},
	}, nil
}

func (s *Simulated) fetchCasePage(ctx context.Context, url string) (casePage, error) {
	if err := s.load(ctx, url); err != nil {
		return casePage{}, err
	}

	return casePage{
		parties: cases.Parties{
			Petitioners: []string{"M/s ABC Corporation Ltd.", "Shri Ram Kumar"},
			Respondents: []string{"State of Delhi", "Union of India", "Delhi Development Authority"},
		},
		filing:      s.daysFromNow(-365, -30),
		nextHearing: s.daysFromNow(1, 60),
		lastOrder:   s.daysFromNow(-30, -1),
		status:      "Pending",
	}, nil
}

func (s *Simulated) fetchOrders(ctx context.Context, q cases.Query) ([]cases.Order, error) {
	if err := s.load(ctx, fmt.Sprintf("%s/orders/%s/%s", q.Court, q.CaseNumber, q.FilingYear)); err != nil {
		return nil, err
	}

	latest := s.daysFromNow(-15, -1)
	notice := s.daysFromNow(-45, -16)
	older := s.daysFromNow(-90, -46)

	return []cases.Order{
		{
			Title:       "Order dated " + latest.Format(dateLayout),
			Type:        cases.OrderTypeOrder,
			Date:        latest.Format(dateLayout),
			DocumentRef: DocumentKey(q, "order-"+latest.Format(dateLayout)+".pdf"),
			IsLatest:    true,
		},
		{
			Title:       "Notice dated " + notice.Format(dateLayout),
			Type:        cases.OrderTypeNotice,
			Date:        notice.Format(dateLayout),
			DocumentRef: DocumentKey(q, "notice-"+notice.Format(dateLayout)+".pdf"),
		},
		{
			Title:       "Order dated " + older.Format(dateLayout),
			Type:        cases.OrderTypeOrder,
			Date:        older.Format(dateLayout),
			DocumentRef: DocumentKey(q, "order-"+older.Format(dateLayout)+".pdf"),
		},
	}, nil
}

// load simulates one page request: it waits out the latency, then fails with
// the configured probability.
func (s *Simulated) load(ctx context.Context, url string) error {
	if s.cfg.Latency > 0 {
		timer := time.NewTimer(s.cfg.Latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if s.cfg.FailureRate > 0 && s.float() < s.cfg.FailureRate {
		return fmt.Errorf("%w: %s", ErrUnavailable, url)
	}
	return ctx.Err()
}

func (s *Simulated) daysFromNow(from, to int) time.Time {
	s.mu.Lock()
	n := s.rnd.IntN(to-from+1) + from
	s.mu.Unlock()
	return s.now().AddDate(0, 0, n)
}

func (s *Simulated) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// DocumentKey builds the storage key for a document filed in the case q names.
func DocumentKey(q cases.Query, name string) string {
	return fmt.Sprintf("%s/%s-%s/%s", slug(q.Court), q.CaseNumber, q.FilingYear, name)
}

func slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
