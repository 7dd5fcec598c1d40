package crawler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"arena-crawler/lib/scrapers/arena"
	"arena-crawler/lib/textutil"
	"arena-crawler/services/crawler/db"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/crawler")

// DatabaseError wraps store failures. Data integrity beats completeness,
// the orchestrator aborts the run when it sees one.
type DatabaseError struct {
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database failure: %s", e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

type Options struct {
	// cap on the total number of profiles taken from the list stage,
	// 0 means no cap
	Limit int
	// run the full pipeline but never write to the store
	DryRun bool
	// re-fetch profiles whose username is already persisted, the
	// default is to skip them
	ForceRefetch bool
	// detail-stage worker count
	Concurrency int
	// list page size
	PageSize int
	// politeness delay before every outbound request
	RequestDelay time.Duration
	// transient retry cap per request
	MaxRetries int
}

func (o *Options) withDefaults() {
	if o.Concurrency <= 0 {
		o.Concurrency = 2
	}
	if o.PageSize <= 0 {
		o.PageSize = 50
	}
	if o.RequestDelay <= 0 {
		o.RequestDelay = time.Second * 2
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
}

// Summary is what a run leaves behind for the operator.
type Summary struct {
	QueryStart   int64
	Listed       int64
	Skipped      int64
	DetailFailed int64
	ParseErrors  int64
	Persisted    int64
	Failed       int64
	Duration     time.Duration
}

type Service struct {
	client *arena.Client
	qry    *db.Queries
	merger Merger
	opts   Options

	listed       atomic.Int64
	skipped      atomic.Int64
	detailFailed atomic.Int64
	parseErrors  atomic.Int64
	persisted    atomic.Int64
	failed       atomic.Int64

	// current politeness delay in nanoseconds, grown on transient
	// failure streaks, never the worker count
	requestDelay atomic.Int64

	fatalMu  sync.Mutex
	fatalErr error
	cancel   context.CancelFunc
}

func NewService(client *arena.Client, database *sql.DB, merger Merger, opts Options) *Service {
	opts.withDefaults()
	return &Service{
		client: client,
		qry:    db.New(database),
		merger: merger,
		opts:   opts,
	}
}

func (s *Service) setFatal(err error) {
	s.fatalMu.Lock()
	defer s.fatalMu.Unlock()
	if s.fatalErr == nil {
		s.fatalErr = err
		s.cancel()
	}
}

func (s *Service) delay() time.Duration {
	return time.Duration(s.requestDelay.Load())
}

func (s *Service) growDelay() {
	current := s.requestDelay.Load()
	max := int64(s.opts.RequestDelay) * 8
	next := current * 2
	if next > max {
		next = max
	}
	s.requestDelay.CompareAndSwap(current, next)
}

func (s *Service) resetDelay() {
	s.requestDelay.Store(int64(s.opts.RequestDelay))
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

// Run drives the full pipeline: list pagination feeds a bounded worker
// pool that dedups, fetches detail, merges and persists one profile at a
// time. Pagination itself stays sequential, each page's offset depends on
// the prior page.
func (s *Service) Run(ctx context.Context) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	start := time.Now()
	queryStart := start.UnixMilli()
	span.SetAttributes(attribute.Int64("query_start", queryStart))

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	defer cancel()

	// the summary must describe this run alone
	s.listed.Store(0)
	s.skipped.Store(0)
	s.detailFailed.Store(0)
	s.parseErrors.Store(0)
	s.persisted.Store(0)
	s.failed.Store(0)
	s.fatalMu.Lock()
	s.fatalErr = nil
	s.fatalMu.Unlock()

	s.resetDelay()

	exec := arena.NewExecutor(s.opts.MaxRetries, s.opts.RequestDelay)
	pager := arena.NewPager(s.client, exec, queryStart, s.opts.PageSize)
	fetcher := arena.DetailFetcher{Client: s.client, Exec: exec}
	gate := NewDedupGate(s.qry, s.opts.ForceRefetch)

	jobs := make(chan arena.ListProfile)
	var wg sync.WaitGroup
	for i := 0; i < s.opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for profile := range jobs {
				if ctx.Err() != nil {
					continue
				}
				s.process(ctx, gate, fetcher, profile)
			}
		}()
	}

	listed := int64(0)
pagination:
	for ctx.Err() == nil {
		profiles, ok, err := pager.Next(ctx)
		if err != nil {
			// pagination cannot proceed without its current page
			s.setFatal(err)
			break
		}
		if !ok {
			break
		}

		for _, profile := range profiles {
			if s.opts.Limit > 0 && listed >= int64(s.opts.Limit) {
				slog.InfoContext(ctx, "item limit reached", "limit", s.opts.Limit)
				break pagination
			}
			select {
			case jobs <- profile:
				listed++
			case <-ctx.Done():
				break pagination
			}
		}

		sleepCtx(ctx, s.delay())
	}
	close(jobs)
	wg.Wait()

	s.listed.Store(listed)
	summary := Summary{
		QueryStart:   queryStart,
		Listed:       s.listed.Load(),
		Skipped:      s.skipped.Load(),
		DetailFailed: s.detailFailed.Load(),
		ParseErrors:  s.parseErrors.Load(),
		Persisted:    s.persisted.Load(),
		Failed:       s.failed.Load(),
		Duration:     time.Since(start),
	}

	s.fatalMu.Lock()
	fatal := s.fatalErr
	s.fatalMu.Unlock()
	if fatal != nil {
		span.RecordError(fatal)
		span.SetStatus(codes.Error, "run aborted")
		return summary, fatal
	}
	return summary, nil
}

// process takes one listed profile through dedup, detail enrichment,
// merge and persist. Everything short of auth and db failures degrades
// to a partial record instead of aborting.
func (s *Service) process(ctx context.Context, gate DedupGate, fetcher arena.DetailFetcher, profile arena.ListProfile) {
	ctx, span := tracer.Start(ctx, "process")
	defer span.End()

	username := textutil.NormalizeUsername(profile.Username)
	span.SetAttributes(attribute.String("username", username))

	if username == "" && profile.UserId <= 0 {
		slog.WarnContext(ctx, "list entry carries neither username nor id, skipping")
		s.parseErrors.Add(1)
		return
	}

	if username != "" {
		fetch, err := gate.ShouldFetch(ctx, username)
		if err != nil {
			s.setFatal(err)
			return
		}
		if !fetch {
			slog.DebugContext(ctx, "skipping existing profile", "username", username)
			s.skipped.Add(1)
			return
		}
	}

	var detail *arena.DetailProfile
	if profile.UserId > 0 {
		sleepCtx(ctx, s.delay())

		fetched, err := fetcher.Fetch(ctx, profile.UserId)
		var authErr *arena.AuthError
		var parseErr *arena.ParseError
		switch {
		case err == nil:
			detail = fetched
			s.resetDelay()
		case errors.As(err, &authErr):
			s.setFatal(err)
			return
		case errors.As(err, &parseErr):
			slog.WarnContext(ctx, "detail payload did not parse, skipping profile",
				"username", username, "err", err)
			s.parseErrors.Add(1)
			return
		case ctx.Err() != nil:
			return
		default:
			// detail enrichment is best-effort, persist the partial
			// record built from the list stage alone
			slog.WarnContext(ctx, "detail fetch failed, persisting partial record",
				"username", username, "err", err)
			s.detailFailed.Add(1)
			s.growDelay()
		}
	}

	merged := s.merger.Merge(profile, detail)

	if s.opts.DryRun {
		slog.InfoContext(ctx, "would persist profile",
			"username", merged.Username,
			"complete", detail != nil,
		)
		s.persisted.Add(1)
		return
	}

	params, err := merged.upsertParams(time.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode profile", "username", merged.Username, "err", err)
		s.failed.Add(1)
		return
	}
	err = s.qry.UpsertProfile(ctx, params)
	if err != nil {
		s.setFatal(&DatabaseError{Err: err})
		return
	}

	slog.InfoContext(ctx, "persisted profile",
		"username", merged.Username,
		"complete", detail != nil,
	)
	s.persisted.Add(1)
}
