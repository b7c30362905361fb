package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/chickadee/internal/config"
	"github.com/zeusync/chickadee/internal/core/components"
	"github.com/zeusync/chickadee/internal/core/events/bus"
	"github.com/zeusync/chickadee/internal/core/input"
	"github.com/zeusync/chickadee/internal/core/scene"
)

// journal records lifecycle calls.
type journal struct {
	scene.Base
	mu    sync.Mutex
	calls []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.calls = append(j.calls, s)
	j.mu.Unlock()
}

func (j *journal) OnStart(*scene.Scene, scene.StartContext)   { j.add("start") }
func (j *journal) OnUpdate(*scene.Scene, scene.UpdateContext) { j.add("update") }
func (j *journal) OnEvent(_ *scene.Scene, ctx scene.EventContext) {
	j.add(ctx.Event.Kind())
}

func (j *journal) snapshot() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.calls...)
}

func newEngine(t *testing.T, b bus.EventBus, cfg config.EngineConfig) (*Engine, *journal) {
	t.Helper()
	s := scene.New()
	j := &journal{}
	_, err := s.AddComponent(s.Root(), j)
	require.NoError(t, err)
	e, err := New(s, b, WithConfig(cfg))
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e, j
}

func TestNewRejectsNilScene(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNilScene)
}

func TestStartOnce(t *testing.T) {
	e, j := newEngine(t, nil, config.Default().Engine)
	require.NoError(t, e.Start())
	assert.ErrorIs(t, e.Start(), ErrAlreadyStarted)
	assert.True(t, e.Started())
	assert.Equal(t, []string{"start"}, j.snapshot())
}

func TestQueuedInputIsDeliveredBeforeUpdate(t *testing.T) {
	e, j := newEngine(t, nil, config.Default().Engine)
	require.NoError(t, e.Start())

	require.NoError(t, e.PushEvent(input.KeyboardInput{Pressed: true, Key: input.KeyW}))
	require.NoError(t, e.PushEvent(input.CursorMoved{X: 1, Y: 2}))
	assert.Equal(t, []string{"start"}, j.snapshot(), "input waits for the next frame")

	stats := e.Update(16 * time.Millisecond)
	assert.Equal(t, uint64(1), stats.Frame)
	assert.Equal(t, 2, stats.Events)
	assert.Equal(t, []string{"start", input.KindKeyboard, input.KindCursor, "update"}, j.snapshot())
	assert.Equal(t, uint64(1), e.Frame())
	assert.Equal(t, uint64(1), e.Scene().Frame())
}

func TestPushEventQueueFull(t *testing.T) {
	cfg := config.Default().Engine
	cfg.InputQueue = 1
	e, _ := newEngine(t, nil, cfg)

	require.NoError(t, e.PushEvent(input.Other{}))
	assert.ErrorIs(t, e.PushEvent(input.Other{}), ErrInputQueueFull)
	assert.Equal(t, uint64(1), e.Dropped())
	assert.ErrorIs(t, e.PushEvent(nil), ErrInvalidInput)
}

func TestInputFromBus(t *testing.T) {
	b := bus.New()
	e, j := newEngine(t, b, config.Default().Engine)

	require.NoError(t, PublishInput(b, "test", input.KeyboardInput{Pressed: true, Key: input.KeyA}))
	err := b.PublishToTopic(bus.TopicInput, bus.NewEvent("bogus", "test", 42))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, uint64(1), e.BusErrors())
	assert.Equal(t, uint64(2), b.GetMetrics().Published)

	e.Update(time.Millisecond)
	assert.Equal(t, []string{input.KindKeyboard, "update"}, j.snapshot())

	require.NoError(t, e.Close())
	assert.ErrorIs(t, e.PushEvent(input.Other{}), ErrClosed)
	require.NoError(t, PublishInput(b, "test", input.Other{}), "closed engines are unsubscribed")
	assert.Equal(t, uint64(3), b.GetMetrics().Published, "metrics stop with the last observer")
}

func TestFrameNotification(t *testing.T) {
	b := bus.New()
	var frames []uint64
	_, err := b.SubscribeTopic(bus.TopicEngine, EventFrame, func(ev bus.Event) error {
		frames = append(frames, ev.Data().(FrameStats).Frame)
		return nil
	})
	require.NoError(t, err)

	e, _ := newEngine(t, b, config.Default().Engine)
	e.Update(time.Millisecond)
	e.Update(time.Millisecond)
	assert.Equal(t, []uint64{1, 2}, frames)
}

func TestDraw(t *testing.T) {
	e, _ := newEngine(t, nil, config.Default().Engine)
	require.NoError(t, e.WithScene(func(s *scene.Scene) error {
		id, err := s.AddEntity(s.Root(), "cube")
		if err != nil {
			return err
		}
		_, err = s.AddComponent(id, components.NewModel("cube.obj", "metal"))
		return err
	}))
	e.Update(time.Millisecond)

	var meshes []string
	require.NoError(t, e.Draw(func(item scene.DrawItem) error {
		meshes = append(meshes, item.Mesh)
		return nil
	}))
	assert.Equal(t, []string{"cube.obj"}, meshes)
}

func TestRunStopsAtFrameLimit(t *testing.T) {
	cfg := config.Default().Engine
	cfg.TargetFPS = 0
	cfg.MaxFrames = 3
	e, j := newEngine(t, nil, cfg)

	svc := &blockingService{}
	require.NoError(t, e.Run(context.Background(), svc))
	assert.Equal(t, uint64(3), e.Frame())
	assert.Equal(t, []string{"start", "update", "update", "update"}, j.snapshot())
	assert.True(t, svc.stopped)
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := config.Default().Engine
	cfg.TargetFPS = 1000
	e, _ := newEngine(t, nil, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	assert.Greater(t, e.Frame(), uint64(0))
}

func TestRunReturnsServiceError(t *testing.T) {
	cfg := config.Default().Engine
	cfg.TargetFPS = 100
	e, _ := newEngine(t, nil, cfg)

	boom := errors.New("boom")
	err := e.Run(context.Background(), failingService{err: boom})
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failing")
}

type blockingService struct{ stopped bool }

func (*blockingService) Name() string { return "blocking" }
func (s *blockingService) Run(ctx context.Context) error {
	<-ctx.Done()
	s.stopped = true
	return nil
}

type failingService struct{ err error }

func (failingService) Name() string                { return "failing" }
func (f failingService) Run(context.Context) error { return f.err }
