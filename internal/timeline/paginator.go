package timeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/roomview/internal/metrics"
	"github.com/tOgg1/roomview/internal/room"
)

// ErrNoFetchInFlight marks a backlog result delivered while no fetch was
// outstanding.
var ErrNoFetchInFlight = errors.New("no backlog fetch in flight")

// PaginatorState is the backlog loader's state.
type PaginatorState int

const (
	Idle PaginatorState = iota
	Fetching
	Exhausted
)

func (s PaginatorState) String() string {
	switch s {
	case Fetching:
		return "fetching"
	case Exhausted:
		return "exhausted"
	default:
		return "idle"
	}
}

// Fetch is one backlog page request. The host runs Do wherever it likes and
// hands the result back to Timeline.ApplyBacklog on the timeline's goroutine.
type Fetch struct {
	Source room.Source
	From   string
	Limit  int
}

// FetchResult is the outcome of a Fetch.
type FetchResult struct {
	From     string
	Page     room.Page
	Err      error
	Duration time.Duration
}

// Do requests the page. It never returns early on its own; ctx is the only
// way to abandon it.
func (f *Fetch) Do(ctx context.Context) FetchResult {
	started := time.Now()
	page, err := f.Source.Messages(ctx, room.Backward, f.From, f.Limit)
	elapsed := time.Since(started)
	metrics.BacklogFetchDuration.Observe(elapsed.Seconds())
	if err != nil {
		err = fmt.Errorf("fetch backlog before %q: %w", f.From, err)
	}
	return FetchResult{From: f.From, Page: page, Err: err, Duration: elapsed}
}

// Paginator decides when to request older history. At most one fetch is
// outstanding, and once the room's creation event has been seen no fetch is
// issued again.
type Paginator struct {
	source    room.Source
	pageSize  int
	fetching  bool
	exhausted bool
	issued    int
	lastErr   error
	logger    zerolog.Logger
}

func NewPaginator(source room.Source, pageSize int, logger zerolog.Logger) *Paginator {
	if pageSize <= 0 {
		pageSize = room.DefaultPageSize
	}
	return &Paginator{source: source, pageSize: pageSize, logger: logger}
}

func (p *Paginator) State() PaginatorState {
	switch {
	case p.exhausted:
		return Exhausted
	case p.fetching:
		return Fetching
	default:
		return Idle
	}
}

// InFlight reports whether a fetch is outstanding, which can be true in the
// Exhausted state when a creation event arrived live meanwhile.
func (p *Paginator) InFlight() bool { return p.fetching }

// Issued counts the fetches handed out.
func (p *Paginator) Issued() int { return p.issued }

// LastError is the most recent fetch failure, cleared by the next success.
func (p *Paginator) LastError() error { return p.lastErr }

// Observe marks the paginator exhausted when ev creates the room.
func (p *Paginator) Observe(ev room.Event) {
	if ev.IsCreate() && !p.exhausted {
		p.exhausted = true
		p.logger.Debug().Str("event_id", ev.ID).Msg("reached room creation")
	}
}

// Check returns a fetch when the scroll value is at or below the trigger
// margin, nothing is in flight, and history remains.
func (p *Paginator) Check(value, trigger int, from string) *Fetch {
	if value > trigger || p.fetching || p.exhausted || p.source == nil {
		return nil
	}
	p.fetching = true
	p.issued++
	p.logger.Debug().Str("from", from).Int("limit", p.pageSize).Msg("growing backlog")
	return &Fetch{Source: p.source, From: from, Limit: p.pageSize}
}

// complete ends the outstanding fetch and records its outcome.
func (p *Paginator) complete(res FetchResult) error {
	if !p.fetching {
		panic(fmt.Errorf("%w: result from %q", ErrNoFetchInFlight, res.From))
	}
	p.fetching = false

	if res.Err != nil {
		p.lastErr = res.Err
		metrics.BacklogFetches.WithLabelValues(metrics.ResultError).Inc()
		p.logger.Warn().Err(res.Err).Str("from", res.From).Msg("error growing backlog")
		return res.Err
	}
	p.lastErr = nil
	if len(res.Page.Events) == 0 {
		metrics.BacklogFetches.WithLabelValues(metrics.ResultEmpty).Inc()
		p.logger.Debug().Str("from", res.From).Msg("backlog page empty")
		return nil
	}
	metrics.BacklogFetches.WithLabelValues(metrics.ResultOK).Inc()
	metrics.BacklogEvents.Add(float64(len(res.Page.Events)))
	return nil
}
