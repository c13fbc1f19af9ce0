package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dbguardian/dbguardian/internal/checks"
	"github.com/dbguardian/dbguardian/internal/core"
	"github.com/dbguardian/dbguardian/internal/metrics"
	"github.com/dbguardian/dbguardian/internal/pool"
	"github.com/dbguardian/dbguardian/internal/report"
	"github.com/dbguardian/dbguardian/internal/rules"
)

// Session is the borrowed-connection contract the orchestrator needs. The
// pool's Session satisfies it; tests substitute fakes.
type Session interface {
	checks.Querier
	Ping(ctx context.Context) error
	Release()
}

// Pool hands out sessions per target and tears everything down at run end.
type Pool interface {
	Borrow(ctx context.Context, target core.Target) (Session, error)
	CloseAll()
}

type Config struct {
	// Workers bounds how many targets are processed concurrently. Checks
	// within one target always run sequentially.
	Workers int
	// CheckTimeout bounds a single check invocation.
	CheckTimeout time.Duration
	// ConnectAttempts and ConnectBackoff govern the connectivity probe:
	// fixed attempt count, backoff doubling per attempt.
	ConnectAttempts int
	ConnectBackoff  time.Duration
	// ConnectRate paces new connection attempts across all workers to avoid
	// listener connection storms. Zero disables pacing.
	ConnectRate  float64
	ConnectBurst int
}

// Orchestrator drives one bounded run: resolve rules per target, probe
// connectivity with retry, execute checks in registry order, and fold
// everything into a scored RunReport. One target's failure never affects
// another's report.
type Orchestrator struct {
	cfg       Config
	pool      Pool
	registry  *checks.Registry
	global    rules.Document
	overrides map[string]rules.Document
	metrics   *metrics.Collector
	logger    *zap.Logger
	limiter   *rate.Limiter
}

func New(cfg Config, p Pool, reg *checks.Registry, global rules.Document, overrides map[string]rules.Document, mc *metrics.Collector, logger *zap.Logger) *Orchestrator {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.ConnectAttempts < 1 {
		cfg.ConnectAttempts = 1
	}
	o := &Orchestrator{
		cfg:       cfg,
		pool:      p,
		registry:  reg,
		global:    global,
		overrides: overrides,
		metrics:   mc,
		logger:    logger,
	}
	if cfg.ConnectRate > 0 {
		burst := cfg.ConnectBurst
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(cfg.ConnectRate), burst)
	}
	return o
}

// Run executes one bounded validation run over the targets. It always returns
// a report unless an internal scoring invariant is violated; cancellation
// drains in-flight work and marks the report partial.
func (o *Orchestrator) Run(ctx context.Context, targets []core.Target) (*core.RunReport, error) {
	defer o.pool.CloseAll()

	reports := make([]core.TargetReport, len(targets))
	errs := make([]error, len(targets))
	processed := make([]bool, len(targets))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			log := o.logger.With(zap.Int("worker", worker))
			for idx := range jobs {
				reports[idx], errs[idx] = o.processTarget(ctx, targets[idx], log)
				processed[idx] = true
			}
		}(w)
	}

feed:
	for idx := range targets {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	partial := ctx.Err() != nil
	for idx := range targets {
		if processed[idx] {
			continue
		}
		tr, err := report.BuildTarget(targets[idx].ID, core.ConnectivitySkipped, "run cancelled", nil, o.registry)
		if err != nil {
			return nil, err
		}
		reports[idx] = tr
	}

	run := report.BuildRun(uuid.New().String(), time.Now(), targets, reports, partial)
	o.metrics.RecordRun(run)
	return run, nil
}

func (o *Orchestrator) processTarget(ctx context.Context, t core.Target, log *zap.Logger) (core.TargetReport, error) {
	log = log.With(zap.String("target", t.ID))
	start := time.Now()

	resolved, warnings := rules.Resolve(o.global, o.overrides, t.ID, o.registry.IDs())
	for _, w := range warnings {
		log.Warn("rule resolution warning", zap.String("warning", w))
	}

	probe, err := o.connect(ctx, t, log)
	if err != nil {
		// A probe cut short by run cancellation is not a connectivity verdict:
		// the target was never given its full retry budget.
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			log.Info("run cancelled before target connected")
			return report.BuildTarget(t.ID, core.ConnectivitySkipped, "run cancelled", nil, o.registry)
		}
		log.Error("target unreachable, skipping all checks",
			zap.Int("attempts", o.cfg.ConnectAttempts),
			zap.Error(err),
		)
		reason := string(pool.ReasonNetwork)
		var connErr *pool.ConnectionError
		if errors.As(err, &connErr) {
			reason = string(connErr.Reason)
		}
		o.metrics.RecordConnectFailure(t.ID, reason)
		return report.BuildTarget(t.ID, core.ConnectivityFailed, err.Error(), nil, o.registry)
	}
	probe.Release()

	outcomes := make([]core.CheckOutcome, 0, o.registry.Len())
	for _, c := range o.registry.All() {
		rule, _ := resolved.Rule(c.ID())
		outcome := o.runCheck(ctx, t, c, rule, log)
		o.metrics.RecordOutcome(outcome)
		outcomes = append(outcomes, outcome)
	}

	log.Info("target processed",
		zap.Int("checks", len(outcomes)),
		zap.Duration("duration", time.Since(start)),
	)
	return report.BuildTarget(t.ID, core.ConnectivityOK, "", outcomes, o.registry)
}

// connect probes connectivity with a fixed attempt count and exponential
// backoff. The probe session is released by the caller; checks borrow their
// own sessions afterwards.
func (o *Orchestrator) connect(ctx context.Context, t core.Target, log *zap.Logger) (Session, error) {
	var lastErr error
	backoff := o.cfg.ConnectBackoff

	for attempt := 1; attempt <= o.cfg.ConnectAttempts; attempt++ {
		if o.limiter != nil {
			if err := o.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		borrowStart := time.Now()
		sess, err := o.pool.Borrow(ctx, t)
		o.metrics.ObserveBorrowWait(time.Since(borrowStart))
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, o.cfg.CheckTimeout)
			err = sess.Ping(pingCtx)
			cancel()
			if err == nil {
				return sess, nil
			}
			sess.Release()
		}
		lastErr = err
		log.Debug("connect attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)

		if attempt < o.cfg.ConnectAttempts {
			select {
			case <-ctx.Done():
				return nil, lastErr
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}

// runCheck executes one check on its own borrowed session, releasing it on
// every exit path. Timeouts and execution errors become ERROR outcomes;
// execution always continues with the next check.
func (o *Orchestrator) runCheck(ctx context.Context, t core.Target, c checks.Check, rule rules.ResolvedRule, log *zap.Logger) core.CheckOutcome {
	outcome := core.CheckOutcome{
		CheckID:   c.ID(),
		TargetID:  t.ID,
		Category:  c.Category(),
		Override:  rule.Override,
		Timestamp: time.Now(),
	}

	if !rule.Enabled {
		outcome.Status = core.StatusSkipped
		outcome.Message = "disabled by rules"
		return outcome
	}
	if ctx.Err() != nil {
		outcome.Status = core.StatusSkipped
		outcome.Message = "run cancelled"
		return outcome
	}

	sess, err := o.pool.Borrow(ctx, t)
	if err != nil {
		if ctx.Err() != nil {
			outcome.Status = core.StatusSkipped
			outcome.Message = "run cancelled"
			return outcome
		}
		outcome.Status = core.StatusError
		outcome.Message = err.Error()
		return outcome
	}
	defer sess.Release()

	// An in-flight check survives run cancellation up to its own timeout;
	// the drain waits for it rather than tearing the session away.
	checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.CheckTimeout)
	defer cancel()

	start := time.Now()
	result, err := c.Evaluate(checkCtx, sess, rule.Params)
	outcome.Duration = time.Since(start)
	o.metrics.ObserveCheckDuration(c.ID(), outcome.Duration)

	if err != nil {
		outcome.Status = core.StatusError
		if errors.Is(err, context.DeadlineExceeded) {
			outcome.Message = "timeout after " + o.cfg.CheckTimeout.String()
		} else {
			outcome.Message = err.Error()
		}
		log.Warn("check execution error",
			zap.String("check", c.ID()),
			zap.Error(err),
		)
		return outcome
	}

	outcome.Status = result.Status
	outcome.Actual = result.Actual
	outcome.Expected = result.Expected
	outcome.Message = result.Message
	return outcome
}
