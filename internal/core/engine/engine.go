// Package engine drives a scene: it owns the phase lock, queues input from
// any goroutine and runs the frame loop.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/chickadee/internal/config"
	"github.com/zeusync/chickadee/internal/core/events/bus"
	"github.com/zeusync/chickadee/internal/core/input"
	"github.com/zeusync/chickadee/internal/core/observability/log"
	"github.com/zeusync/chickadee/internal/core/scene"
)

// EventFrame is published on bus.TopicEngine after every frame with a
// FrameStats payload.
const EventFrame = "engine.frame"

type FrameStats struct {
	Frame     uint64
	DeltaTime time.Duration
	Events    int
	Duration  time.Duration
}

// Service runs alongside the frame loop until its context is cancelled.
type Service interface {
	Name() string
	Run(ctx context.Context) error
}

// Engine is the explicit context object passed to whoever needs the scene.
// Every phase (setup, start, update, draw) runs under one lock, so a scene
// is never observed mid-frame.
type Engine struct {
	mu      sync.Mutex
	scene   *scene.Scene
	started bool

	queue   chan input.Event
	dropped atomic.Uint64
	frames  atomic.Uint64
	closed  atomic.Bool

	bus    bus.EventBus
	sub    bus.Subscription
	watch  *busWatch
	logger log.Log
	cfg    config.EngineConfig
	now    func() time.Time
}

type Option func(*Engine)

func WithLogger(l log.Log) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithConfig(cfg config.EngineConfig) Option {
	return func(e *Engine) { e.cfg = cfg }
}

// WithClock replaces time.Now for frame timing.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New wraps s. When b is not nil the engine consumes input.Event payloads
// published on bus.TopicInput and announces frames on bus.TopicEngine.
func New(s *scene.Scene, b bus.EventBus, opts ...Option) (*Engine, error) {
	if s == nil {
		return nil, ErrNilScene
	}
	e := &Engine{
		scene:  s,
		bus:    b,
		logger: log.Nop(),
		cfg:    config.Default().Engine,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.InputQueue <= 0 {
		e.cfg.InputQueue = config.Default().Engine.InputQueue
	}
	e.logger = e.logger.With(log.String("module", "engine"))
	e.queue = make(chan input.Event, e.cfg.InputQueue)

	if b != nil {
		sub, err := b.SubscribeTopic(bus.TopicInput, bus.Wildcard, e.onInput)
		if err != nil {
			return nil, fmt.Errorf("subscribe input: %w", err)
		}
		e.sub = sub
		e.watch = &busWatch{logger: e.logger}
		b.AddObserver(e.watch)
	}
	return e, nil
}

// busWatch logs failed bus deliveries. Registering it also turns on the bus
// metrics reported by the viewer.
type busWatch struct {
	logger log.Log
	errors atomic.Uint64
}

var _ bus.EventBusObserver = (*busWatch)(nil)

func (w *busWatch) OnPublish(string, string, bus.Event) {}

func (w *busWatch) OnDelivered(topic, eventType string, handlers int, err error, d time.Duration) {
	if err == nil {
		return
	}
	w.errors.Add(1)
	w.logger.Warn("Bus delivery failed",
		log.String("topic", topic),
		log.String("event", eventType),
		log.Int("handlers", handlers),
		log.Duration("duration", d),
		log.Error(err))
}

// BusErrors counts bus deliveries with at least one failing handler since
// New. It stays zero for engines without a bus.
func (e *Engine) BusErrors() uint64 {
	if e.watch == nil {
		return 0
	}
	return e.watch.errors.Load()
}

func (e *Engine) onInput(ev bus.Event) error {
	in, ok := ev.Data().(input.Event)
	if !ok {
		return fmt.Errorf("%w: %T from %s", ErrInvalidInput, ev.Data(), ev.Source())
	}
	return e.PushEvent(in)
}

// PublishInput sends ev to every engine listening on b.
func PublishInput(b bus.EventBus, source string, ev input.Event) error {
	return b.PublishToTopic(bus.TopicInput, bus.NewEvent(ev.Kind(), source, ev))
}

// Scene returns the driven scene. Callers outside the frame loop should
// prefer WithScene.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// WithScene runs fn under the phase lock, between frames.
func (e *Engine) WithScene(fn func(*scene.Scene) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.scene)
}

// Start dispatches OnStart once.
func (e *Engine) Start() error {
	if e.closed.Load() {
		return ErrClosed
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return ErrAlreadyStarted
	}
	e.started = true
	e.scene.OnStart()
	e.logger.Info("Engine started", log.Int("components", e.scene.Len()))
	return nil
}

func (e *Engine) Started() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.started
}

// PushEvent queues ev for the next frame. It never blocks.
func (e *Engine) PushEvent(ev input.Event) error {
	if ev == nil {
		return ErrInvalidInput
	}
	if e.closed.Load() {
		return ErrClosed
	}
	select {
	case e.queue <- ev:
		return nil
	default:
		e.dropped.Add(1)
		return ErrInputQueueFull
	}
}

// Update runs one frame: queued input is delivered first, then the scene
// updates with dt.
func (e *Engine) Update(dt time.Duration) FrameStats {
	begin := e.now()

	e.mu.Lock()
	events := 0
drain:
	for {
		select {
		case ev := <-e.queue:
			e.scene.OnEvent(ev)
			events++
		default:
			break drain
		}
	}
	e.scene.OnUpdate(dt)
	e.mu.Unlock()

	stats := FrameStats{
		Frame:     e.frames.Add(1),
		DeltaTime: dt,
		Events:    events,
		Duration:  e.now().Sub(begin),
	}
	if e.bus != nil {
		if err := e.bus.PublishToTopic(bus.TopicEngine, bus.NewEvent(EventFrame, "engine", stats)); err != nil {
			e.logger.Warn("Frame notification failed", log.Frame(stats.Frame), log.Error(err))
		}
	}
	return stats
}

// Draw hands the current draw list to fn under the phase lock.
func (e *Engine) Draw(fn func(scene.DrawItem) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene.Draw(fn)
}

// Frame is the number of frames run by Update.
func (e *Engine) Frame() uint64 { return e.frames.Load() }

// Dropped counts input events rejected because the queue was full.
func (e *Engine) Dropped() uint64 { return e.dropped.Load() }

// Run starts the engine if needed and runs the frame loop next to services
// until ctx is cancelled, MaxFrames is reached or a service fails. A frame
// in progress always completes.
func (e *Engine) Run(ctx context.Context, services ...Service) error {
	if err := e.Start(); err != nil && !errors.Is(err, ErrAlreadyStarted) {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return e.loop(gctx)
	})
	for _, svc := range services {
		g.Go(func() error {
			e.logger.Info("Service started", log.String("service", svc.Name()))
			if err := svc.Run(gctx); err != nil {
				return fmt.Errorf("%s: %w", svc.Name(), err)
			}
			e.logger.Info("Service stopped", log.String("service", svc.Name()))
			return nil
		})
	}
	return g.Wait()
}

func (e *Engine) loop(ctx context.Context) error {
	interval := e.cfg.FrameInterval()

	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	last := e.now()
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		now := e.now()
		stats := e.Update(now.Sub(last))
		last = now

		if e.cfg.MaxFrames > 0 && stats.Frame >= e.cfg.MaxFrames {
			e.logger.Info("Frame limit reached", log.Frame(stats.Frame))
			return nil
		}
	}
}

// Close detaches the engine from the bus. Queued input is discarded.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	if e.watch != nil {
		e.bus.RemoveObserver(e.watch)
	}
	if e.sub != nil {
		return e.sub.Cancel()
	}
	return nil
}
