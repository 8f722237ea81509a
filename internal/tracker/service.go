// Package tracker samples the foreground window and turns samples into
// persisted sessions.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/actionsum/focusday/internal/classifier"
	"github.com/actionsum/focusday/internal/clock"
	"github.com/actionsum/focusday/internal/config"
	"github.com/actionsum/focusday/internal/metrics"
	"github.com/actionsum/focusday/internal/models"
	"github.com/actionsum/focusday/internal/store"
	"github.com/actionsum/focusday/pkg/window"
)

const (
	sourceProbe = "probe"
	sourceStore = "store"
)

type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithTicker(f clock.TickerFactory) Option {
	return func(s *Service) { s.newTicker = f }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClassifier(c *classifier.Classifier) Option {
	return func(s *Service) { s.classifier = c }
}

type Service struct {
	store      store.Store
	resolve    window.Resolver
	classifier *classifier.Classifier
	policy     Policy
	interval   time.Duration
	clock      clock.Clock
	newTicker  clock.TickerFactory
	metrics    metrics.Recorder
	logger     *zap.Logger

	lifecycle sync.Mutex
	probe     window.Probe
	cancel    context.CancelFunc
	done      chan struct{}
	running   atomic.Bool

	progressMu sync.Mutex
	progress   *models.Progress
}

func NewService(cfg *config.Config, st store.Store, resolve window.Resolver, logger *zap.Logger, opts ...Option) (*Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s := &Service{
		store:      st,
		resolve:    resolve,
		classifier: classifier.New(cfg.Classifier),
		policy: Policy{
			MinSessionDuration: cfg.Tracker.MinSessionDuration,
			Location:           loc,
		},
		interval:  cfg.Tracker.PollInterval,
		clock:     clock.SystemClock{},
		newTicker: clock.NewTicker,
		metrics:   metrics.Noop{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start begins sampling. onUpdate receives the open session after every
// sampled tick and must not call Stop. Start is a no-op while running.
func (s *Service) Start(ctx context.Context, onUpdate func(models.Progress)) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.running.Load() {
		return nil
	}

	if s.probe == nil {
		probe, err := s.resolveProbe()
		if err != nil {
			s.logger.Error("monitoring did not start", zap.Error(err))
			return fmt.Errorf("monitoring did not start: %w", err)
		}
		s.probe = probe
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running.Store(true)

	ticker := s.newTicker(s.interval)
	go s.loop(loopCtx, ticker, onUpdate, s.done)

	s.logger.Info("monitoring started",
		zap.Duration("poll_interval", s.interval),
		zap.Duration("min_session", s.policy.MinSessionDuration))
	return nil
}

func (s *Service) resolveProbe() (probe window.Probe, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("probe resolver panicked: %v", r)
		}
	}()
	probe, err = s.resolve()
	if err == nil && probe == nil {
		err = fmt.Errorf("no probe available")
	}
	return probe, err
}

// Stop flushes the open session and waits for the loop to exit. It is safe
// to call at any time and more than once.
func (s *Service) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.done == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	s.logger.Info("monitoring stopped")
}

// Close stops the service and releases the probe.
func (s *Service) Close() error {
	s.Stop()

	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if c, ok := s.probe.(window.Closer); ok {
		s.probe = nil
		return c.Close()
	}
	return nil
}

func (s *Service) IsRunning() bool {
	return s.running.Load()
}

// Current returns the last progress emitted, or nil when idle.
func (s *Service) Current() *models.Progress {
	s.progressMu.Lock()
	defer s.progressMu.Unlock()
	if s.progress == nil {
		return nil
	}
	p := *s.progress
	return &p
}

func (s *Service) setProgress(p *models.Progress) {
	s.progressMu.Lock()
	s.progress = p
	s.progressMu.Unlock()
}

func (s *Service) loop(ctx context.Context, ticker clock.Ticker, onUpdate func(models.Progress), done chan struct{}) {
	defer close(done)
	defer s.running.Store(false)
	defer ticker.Stop()

	state := State{Running: true}
	for {
		select {
		case <-ctx.Done():
			// Final flush must survive the cancellation that triggered it
			flushCtx := context.WithoutCancel(ctx)
			_, eff := s.policy.Finish(state, s.clock.Now())
			s.apply(flushCtx, eff)
			s.setProgress(nil)
			return

		case now := <-ticker.C():
			state = s.tick(ctx, state, now, onUpdate)
		}
	}
}

func (s *Service) tick(ctx context.Context, state State, now time.Time, onUpdate func(models.Progress)) State {
	s.metrics.Tick(ctx)

	sample, err := s.poll()
	if err != nil {
		s.logger.Warn("probe failed", zap.Error(err))
		s.metrics.ProbeFailed(ctx)
		s.recordError(ctx, now, sourceProbe, err)
		return state
	}
	if sample == nil {
		return state
	}

	state, eff := s.policy.Observe(state, s.classifier.Classify(*sample), now)
	s.apply(ctx, eff)

	if eff.Progress != nil {
		s.setProgress(eff.Progress)
		if onUpdate != nil {
			onUpdate(*eff.Progress)
		}
	}
	return state
}

func (s *Service) poll() (sample *window.Sample, err error) {
	defer func() {
		if r := recover(); r != nil {
			sample, err = nil, fmt.Errorf("probe panicked: %v", r)
		}
	}()
	return s.probe.Poll()
}

func (s *Service) apply(ctx context.Context, eff Effects) {
	if eff.Discarded != nil {
		s.metrics.SessionDiscarded(ctx)
		s.logger.Debug("discarded short session",
			zap.String("app", eff.Discarded.App),
			zap.Int64("duration", eff.Discarded.Duration))
	}

	if eff.Flush == nil {
		return
	}
	if err := s.store.Append(ctx, *eff.Flush); err != nil {
		s.logger.Error("failed to persist session",
			zap.String("app", eff.Flush.App),
			zap.Int64("duration", eff.Flush.Duration),
			zap.Error(err))
		s.metrics.PersistFailed(ctx)
		s.recordError(ctx, s.clock.Now(), sourceStore, err)
		return
	}
	s.metrics.SessionFlushed(ctx, eff.Flush.App, eff.Flush.Duration)
}

func (s *Service) recordError(ctx context.Context, at time.Time, source string, cause error) {
	rec, ok := s.store.(store.ErrorRecorder)
	if !ok {
		return
	}
	if err := rec.RecordError(ctx, at, source, cause); err != nil {
		s.logger.Warn("failed to store error log", zap.Error(err), zap.NamedError("cause", cause))
	}
}
