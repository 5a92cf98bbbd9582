// Package insight runs one refresh cycle end to end and publishes the
// resulting Snapshot: mentions, then prices, then lifecycle and stage.
package insight

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/memestock/internal/classifier"
	"github.com/wonny/memestock/internal/contracts"
	"github.com/wonny/memestock/pkg/config"
	"github.com/wonny/memestock/pkg/logger"
)

// MentionSource aggregates forum mentions for one cycle
type MentionSource interface {
	Aggregate(ctx context.Context, forums []string) (*contracts.AggregateResult, error)
}

// QuoteSource is the price ladder as seen by the orchestrator
type QuoteSource interface {
	FetchQuotes(ctx context.Context, tickers []string, maxTickers int) map[string]*contracts.PriceQuote
	Status() []contracts.ProviderStatus
}

// LifecycleObserver anchors tickers and reports days-active
type LifecycleObserver interface {
	Observe(ctx context.Context, ticker string, price *float64, now time.Time) contracts.LifecycleView
}

// ForumLister supplies the forums to scan this cycle
type ForumLister interface {
	Forums() []string
	Dynamic() string
}

// Options tune one cycle
type Options struct {
	TopN            int
	MaxPriceTickers int
	CycleTimeout    time.Duration
	MentionTimeout  time.Duration
	PriceTimeout    time.Duration
	SkipColdStart   bool
	Thresholds      classifier.Thresholds
	Weights         classifier.Weights
}

// DefaultOptions returns the stock cycle settings
func DefaultOptions() Options {
	return Options{
		TopN:            3,
		MaxPriceTickers: 10,
		CycleTimeout:    90 * time.Second,
		MentionTimeout:  60 * time.Second,
		PriceTimeout:    25 * time.Second,
		Thresholds:      classifier.DefaultThresholds(),
		Weights:         classifier.DefaultWeights(),
	}
}

// OptionsFromConfig maps the insight section of cfg
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TopN:            cfg.Insight.TopN,
		MaxPriceTickers: cfg.Insight.MaxPriceTickers,
		CycleTimeout:    cfg.Insight.CycleTimeout,
		MentionTimeout:  cfg.Insight.MentionTimeout,
		PriceTimeout:    cfg.Insight.PriceTimeout,
		SkipColdStart:   cfg.Insight.SkipColdStart,
		Thresholds:      classifier.ThresholdsFromConfig(cfg.Thresholds),
		Weights:         classifier.WeightsFromConfig(cfg.Weights),
	}
}

// errMsgLimit bounds the error text carried in a snapshot status
const errMsgLimit = 50

// Orchestrator owns the cycle state machine and the published snapshot
// ⭐ SSOT: 사이클 조율과 스냅샷 발행은 여기서만
type Orchestrator struct {
	mentions  MentionSource
	quotes    QuoteSource
	lifecycle LifecycleObserver
	forums    ForumLister
	opts      Options
	reporter  ErrorReporter
	now       func() time.Time
	logger    *logger.Logger

	// cycleMu serialises cycles; fields below it are only touched while held
	cycleMu                          sync.Mutex
	lastGood                         *contracts.Snapshot
	coldStartPending                 bool
	hasCompletedFirstSuccessfulCycle bool

	state       atomic.Value // contracts.CycleState
	gen         atomic.Uint64 // bumped when a cycle is abandoned
	latest      atomic.Pointer[contracts.Snapshot]
	lastSuccess atomic.Bool

	subsMu sync.RWMutex
	subs   []func(*contracts.Snapshot)
}

var (
	_ contracts.SnapshotSource = (*Orchestrator)(nil)
	_ contracts.Refresher      = (*Orchestrator)(nil)
)

// NewOrchestrator creates an orchestrator with a "starting" snapshot published
func NewOrchestrator(
	mentions MentionSource,
	quotes QuoteSource,
	lifecycle LifecycleObserver,
	forums ForumLister,
	opts Options,
	log *logger.Logger,
) *Orchestrator {
	def := DefaultOptions()
	if opts.TopN <= 0 {
		opts.TopN = def.TopN
	}
	if opts.MaxPriceTickers <= 0 {
		opts.MaxPriceTickers = def.MaxPriceTickers
	}
	if opts.CycleTimeout <= 0 {
		opts.CycleTimeout = def.CycleTimeout
	}

	o := &Orchestrator{
		mentions:         mentions,
		quotes:           quotes,
		lifecycle:        lifecycle,
		forums:           forums,
		opts:             opts,
		reporter:         nopReporter{},
		now:              time.Now,
		logger:           log.WithComponent("insight"),
		coldStartPending: opts.SkipColdStart,
	}
	o.state.Store(contracts.CycleIdle)
	o.latest.Store(contracts.EmptySnapshot(contracts.StatusStarting, o.now()))
	return o
}

// WithReporter sets the sink for cycle failures
func (o *Orchestrator) WithReporter(r ErrorReporter) *Orchestrator {
	if r != nil {
		o.reporter = r
	}
	return o
}

// OnPublish registers fn to receive every published snapshot.
// fn runs on the cycle goroutine and must not block.
func (o *Orchestrator) OnPublish(fn func(*contracts.Snapshot)) {
	o.subsMu.Lock()
	defer o.subsMu.Unlock()
	o.subs = append(o.subs, fn)
}

// Latest returns the last published snapshot. Never nil.
func (o *Orchestrator) Latest() *contracts.Snapshot {
	return o.latest.Load()
}

// LastUpdateSuccess reports whether the last cycle completed
func (o *Orchestrator) LastUpdateSuccess() bool {
	return o.lastSuccess.Load()
}

// State returns where the current (or last) cycle is
func (o *Orchestrator) State() contracts.CycleState {
	return o.state.Load().(contracts.CycleState)
}

// HasCompletedFirstSuccessfulCycle reports whether any cycle has succeeded
func (o *Orchestrator) HasCompletedFirstSuccessfulCycle() bool {
	o.cycleMu.Lock()
	defer o.cycleMu.Unlock()
	return o.hasCompletedFirstSuccessfulCycle
}

// Refresh runs one cycle and publishes its snapshot. It never panics and
// never returns nil; failures produce a fallback snapshot. Calls are serialised.
func (o *Orchestrator) Refresh(ctx context.Context) *contracts.Snapshot {
	o.cycleMu.Lock()
	defer o.cycleMu.Unlock()

	start := o.now()
	cycleID := uuid.NewString()
	log := o.logger.WithField("cycle_id", cycleID)

	if o.coldStartPending {
		o.coldStartPending = false
		snap := contracts.EmptySnapshot(contracts.StatusStarting, start)
		snap.CycleID = cycleID
		snap.Providers = o.quotes.Status()
		log.Info("Cold start: published empty snapshot without external calls")
		o.publish(snap)
		return snap
	}

	log.WithField("forums", o.forums.Forums()).Info("Refresh cycle started")

	snap, err := o.runWithTimeout(ctx, cycleID)
	if err == nil {
		snap.Status = contracts.StatusSuccess
		snap.Duration = o.now().Sub(start)
		o.lastGood = snap
		o.hasCompletedFirstSuccessfulCycle = true
		o.setState(contracts.CycleDone)

		log.WithFields(map[string]interface{}{
			"duration":       snap.Duration.String(),
			"total_mentions": snap.Aggregate.TotalMentions,
			"top":            len(snap.Top),
			"stage":          snap.Stage.Stage,
		}).Info("Refresh cycle completed")

		o.publish(snap)
		return snap
	}

	status := statusFor(err)
	o.setState(contracts.CycleFailed)
	o.reporter.Report(err, map[string]string{"cycle_id": cycleID, "status": status})

	fallback := o.fallback(status, start)
	fallback.CycleID = cycleID
	log.WithError(err).WithFields(map[string]interface{}{
		"status":     status,
		"stale_data": o.lastGood != nil,
	}).Error("Refresh cycle failed, publishing fallback")

	o.publish(fallback)
	return fallback
}

type cycleResult struct {
	snap *contracts.Snapshot
	err  error
}

// runWithTimeout bounds the cycle by CycleTimeout even if a stage ignores ctx.
// Abandoned work finishes in the background and its result is dropped.
func (o *Orchestrator) runWithTimeout(ctx context.Context, cycleID string) (*contracts.Snapshot, error) {
	cctx, cancel := context.WithTimeout(ctx, o.opts.CycleTimeout)
	defer cancel()

	gen := o.gen.Load()
	done := make(chan cycleResult, 1)
	go func() {
		var res cycleResult
		defer func() {
			if r := recover(); r != nil {
				res = cycleResult{err: fmt.Errorf("panic: %v", r)}
			}
			done <- res
		}()
		res.snap, res.err = o.runCycle(cctx, cycleID, gen)
	}()

	select {
	case res := <-done:
		return res.snap, res.err
	case <-cctx.Done():
		// late state updates from the abandoned run are ignored
		o.gen.Add(1)
		return nil, fmt.Errorf("cycle aborted: %w", cctx.Err())
	}
}

func (o *Orchestrator) fallback(status string, now time.Time) *contracts.Snapshot {
	if o.lastGood != nil {
		return o.lastGood.WithStatus(status)
	}
	snap := contracts.EmptySnapshot(status, now)
	snap.Providers = o.quotes.Status()
	snap.DynamicForum = o.forums.Dynamic()
	return snap
}

func (o *Orchestrator) publish(snap *contracts.Snapshot) {
	o.latest.Store(snap)
	o.lastSuccess.Store(snap.IsSuccess())

	o.subsMu.RLock()
	subs := append(([]func(*contracts.Snapshot))(nil), o.subs...)
	o.subsMu.RUnlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func (o *Orchestrator) setState(s contracts.CycleState) {
	o.state.Store(s)
}

func (o *Orchestrator) setStateFor(gen uint64, s contracts.CycleState) {
	if o.gen.Load() == gen {
		o.state.Store(s)
	}
}

// statusFor maps a cycle error onto the snapshot status
func statusFor(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return contracts.StatusTimeout
	}
	return contracts.StatusErrorPfx + truncate(err.Error(), errMsgLimit)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
