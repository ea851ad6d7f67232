// Package stats derives pipeline-wide projections from a fresh snapshot of the
// loan store on every call.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"loan-pipeline/internal/domain/loan"

	"github.com/shopspring/decimal"
)

const (
	MaxMonthsBack = 120
	MaxDaysBack   = 366
	MaxClosings   = 100
)

type Aggregator struct {
	repo loan.Repository
	loc  *time.Location
	now  func() time.Time
}

type Option func(*Aggregator)

// WithLocation sets the reference timezone for calendar buckets.
func WithLocation(loc *time.Location) Option { return func(a *Aggregator) { a.loc = loc } }
func WithClock(now func() time.Time) Option  { return func(a *Aggregator) { a.now = now } }

func NewAggregator(repo loan.Repository, opts ...Option) *Aggregator {
	a := &Aggregator{repo: repo, loc: time.UTC, now: time.Now}
	for _, o := range opts {
		o(a)
	}
	if a.loc == nil {
		a.loc = time.UTC
	}
	return a
}

// snapshot reads every loan. Any store failure becomes ErrUnavailable so no
// caller ever sees a partial aggregate.
func (a *Aggregator) snapshot(ctx context.Context) ([]loan.Loan, error) {
	loans, err := a.repo.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", loan.ErrUnavailable, err)
	}
	return loans, nil
}

func (a *Aggregator) ComputeStats(ctx context.Context) (*PipelineStats, error) {
	loans, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	now := a.now().In(a.loc)
	monthStart := startOfMonth(now)

	out := &PipelineStats{
		TotalLoans:    len(loans),
		TotalAmount:   decimal.Zero,
		FundedAmount:  decimal.Zero,
		MonthlyVolume: decimal.Zero,
		MonthlyFunded: decimal.Zero,
		ByStatus:      []StatusBucket{},
		AsOf:          now,
	}
	counts := make(map[loan.Status]int)
	sums := make(map[loan.Status]decimal.Decimal)
	for i := range loans {
		l := &loans[i]
		out.TotalAmount = out.TotalAmount.Add(l.LoanAmount)
		counts[l.Status]++
		sums[l.Status] = sums[l.Status].Add(l.LoanAmount)

		if !l.CreatedAt.In(a.loc).Before(monthStart) {
			out.MonthlyVolume = out.MonthlyVolume.Add(l.LoanAmount)
		}
		if at, ok := fundedAt(l); ok {
			out.FundedLoans++
			out.FundedAmount = out.FundedAmount.Add(l.LoanAmount)
			if !at.In(a.loc).Before(monthStart) {
				out.MonthlyFunded = out.MonthlyFunded.Add(l.LoanAmount)
			}
		}
	}

	for _, s := range loan.Statuses() {
		if counts[s] == 0 {
			continue
		}
		out.ByStatus = append(out.ByStatus, StatusBucket{Status: s, Label: s.Label(), Count: counts[s], TotalAmount: sums[s]})
		delete(counts, s)
	}
	// Rows with a status outside the enumeration still count toward the totals.
	for s, n := range counts {
		out.ByStatus = append(out.ByStatus, StatusBucket{Status: s, Label: s.Label(), Count: n, TotalAmount: sums[s]})
	}
	return out, nil
}

// ComputeMonthlyHistory returns monthsBack calendar months ending with the
// current one, oldest first.
func (a *Aggregator) ComputeMonthlyHistory(ctx context.Context, monthsBack int) (*History, error) {
	if monthsBack < 1 || monthsBack > MaxMonthsBack {
		return nil, fmt.Errorf("%w: months must be between 1 and %d", loan.ErrInvalidInput, MaxMonthsBack)
	}
	first := startOfMonth(a.now().In(a.loc)).AddDate(0, -(monthsBack - 1), 0)
	return a.history(ctx, monthsBack, func(i int) time.Time { return first.AddDate(0, i, 0) }, func(t time.Time) time.Time {
		return startOfMonth(t)
	}, "2006-01")
}

// ComputeDailyHistory returns daysBack calendar days ending with today, oldest first.
func (a *Aggregator) ComputeDailyHistory(ctx context.Context, daysBack int) (*History, error) {
	if daysBack < 1 || daysBack > MaxDaysBack {
		return nil, fmt.Errorf("%w: days must be between 1 and %d", loan.ErrInvalidInput, MaxDaysBack)
	}
	first := startOfDay(a.now().In(a.loc)).AddDate(0, 0, -(daysBack - 1))
	return a.history(ctx, daysBack, func(i int) time.Time { return first.AddDate(0, 0, i) }, startOfDay, "2006-01-02")
}

func (a *Aggregator) history(ctx context.Context, n int, start func(int) time.Time, truncate func(time.Time) time.Time, layout string) (*History, error) {
	loans, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := &History{Timezone: a.loc.String(), Buckets: make([]Bucket, n)}
	index := make(map[int64]int, n)
	for i := 0; i < n; i++ {
		s := start(i)
		out.Buckets[i] = Bucket{
			Period:        s.Format(layout),
			Start:         s,
			CreatedVolume: decimal.Zero,
			FundedAmount:  decimal.Zero,
		}
		index[s.Unix()] = i
	}

	for i := range loans {
		l := &loans[i]
		if b, ok := index[truncate(l.CreatedAt.In(a.loc)).Unix()]; ok {
			out.Buckets[b].CreatedCount++
			out.Buckets[b].CreatedVolume = out.Buckets[b].CreatedVolume.Add(l.LoanAmount)
		}
		if at, ok := fundedAt(l); ok {
			if b, ok := index[truncate(at.In(a.loc)).Unix()]; ok {
				out.Buckets[b].FundedCount++
				out.Buckets[b].FundedAmount = out.Buckets[b].FundedAmount.Add(l.LoanAmount)
			}
		}
	}
	return out, nil
}

// ComputeRecentClosings returns up to limit funded loans, most recently funded first.
func (a *Aggregator) ComputeRecentClosings(ctx context.Context, limit int) ([]ClosingSummary, error) {
	if limit < 1 || limit > MaxClosings {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", loan.ErrInvalidInput, MaxClosings)
	}
	loans, err := a.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ClosingSummary, 0, limit)
	for i := range loans {
		l := &loans[i]
		at, ok := fundedAt(l)
		if !ok {
			continue
		}
		out = append(out, ClosingSummary{
			LoanID:          l.LoanID,
			LoanNumber:      l.LoanNumber,
			BorrowerID:      l.BorrowerID,
			LoanAmount:      l.LoanAmount,
			PropertyType:    l.PropertyType,
			TransactionType: l.TransactionType,
			FundedAt:        at.In(a.loc),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FundedAt.Equal(out[j].FundedAt) {
			return out[i].LoanNumber > out[j].LoanNumber
		}
		return out[i].FundedAt.After(out[j].FundedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fundedAt is the closing date of a funded loan. Rows funded before FundedAt
// was tracked fall back to their last status change.
func fundedAt(l *loan.Loan) (time.Time, bool) {
	if l.Status != loan.StatusFunded {
		return time.Time{}, false
	}
	if l.FundedAt != nil {
		return *l.FundedAt, true
	}
	return l.StatusUpdatedAt, true
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
