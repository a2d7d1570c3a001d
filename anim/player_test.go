package anim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/bihua/core"
)

// recorder 记录各句柄开始与完成的先后顺序及时间。
type recorder struct {
	mu     sync.Mutex
	events []string
	starts map[int]time.Time
	ends   map[int]time.Time
}

func newRecorder() *recorder {
	return &recorder{starts: map[int]time.Time{}, ends: map[int]time.Time{}}
}

func (r *recorder) add(kind string, i int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.events = append(r.events, fmt.Sprintf("%s %d", kind, i))
	if kind == "play" {
		r.starts[i] = now
	} else {
		r.ends[i] = now
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// stubHandle 在延迟之后发出完成信号；block 为 true 时直到 ctx 结束都不完成。
type stubHandle struct {
	index int
	delay time.Duration
	err   error
	block bool
	rec   *recorder
}

func (h *stubHandle) Play(ctx context.Context) <-chan error {
	h.rec.add("play", h.index)
	done := make(chan error, 1)
	go func() {
		if h.block {
			<-ctx.Done()
			return
		}
		time.Sleep(h.delay)
		h.rec.add("done", h.index)
		done <- h.err
	}()
	return done
}

func handles(rec *recorder, delays ...time.Duration) []Handle {
	out := make([]Handle, len(delays))
	for i, d := range delays {
		out[i] = &stubHandle{index: i, delay: d, rec: rec}
	}
	return out
}

func TestStartPlaysStrictlyInOrder(t *testing.T) {
	rec := newRecorder()
	p := NewPlayer(PlayerOptions{})
	// 前面的句柄延迟更长，若并发播放则顺序会被打乱
	p.Replace(handles(rec, 40*time.Millisecond, 5*time.Millisecond, 20*time.Millisecond, 0))

	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, []string{
		"play 0", "done 0",
		"play 1", "done 1",
		"play 2", "done 2",
		"play 3", "done 3",
	}, rec.snapshot())
	for i := 1; i < 4; i++ {
		assert.False(t, rec.starts[i].Before(rec.ends[i-1]), "handle %d started before handle %d completed", i, i-1)
	}
	assert.Equal(t, Completed, p.Status().State)
}

func TestStartTwoGlyphScenario(t *testing.T) {
	rec := newRecorder()
	var states []Status
	p := NewPlayer(PlayerOptions{OnState: func(s Status) { states = append(states, s) }})
	p.Replace(handles(rec, time.Millisecond, time.Millisecond))

	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, []Status{
		{State: Idle},
		{State: Playing, Index: 0},
		{State: Playing, Index: 1},
		{State: Completed, Index: 1},
	}, states)
}

func TestStartEmptySession(t *testing.T) {
	p := NewPlayer(PlayerOptions{})
	err := p.Start(context.Background())
	assert.ErrorIs(t, err, core.ErrEmptyInput)
	assert.Equal(t, Idle, p.Status().State)

	p.Replace(nil)
	assert.ErrorIs(t, p.Start(context.Background()), core.ErrEmptyInput)
	assert.Equal(t, Idle, p.Status().State)
}

func TestStartHaltsOnPlaybackError(t *testing.T) {
	rec := newRecorder()
	hs := handles(rec, 0, 0, 0)
	boom := errors.New("boom")
	hs[1].(*stubHandle).err = boom

	p := NewPlayer(PlayerOptions{})
	p.Replace(hs)
	err := p.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrPlayback)
	assert.ErrorIs(t, err, boom)

	st := p.Status()
	assert.Equal(t, Failed, st.State)
	assert.Equal(t, 1, st.Index)
	assert.NotContains(t, rec.snapshot(), "play 2")
}

func TestStartTimesOut(t *testing.T) {
	rec := newRecorder()
	p := NewPlayer(PlayerOptions{Timeout: 20 * time.Millisecond})
	p.Replace([]Handle{&stubHandle{index: 0, block: true, rec: rec}, &stubHandle{index: 1, rec: rec}})

	err := p.Start(context.Background())
	assert.ErrorIs(t, err, core.ErrPlayback)
	assert.ErrorIs(t, err, core.ErrTimeout)
	assert.Equal(t, Failed, p.Status().State)
	assert.NotContains(t, rec.snapshot(), "play 1")
}

func TestReplaceAbandonsInFlightPlayback(t *testing.T) {
	rec := newRecorder()
	p := NewPlayer(PlayerOptions{})
	p.Replace([]Handle{&stubHandle{index: 0, block: true, rec: rec}, &stubHandle{index: 1, rec: rec}})

	errc := make(chan error, 1)
	go func() { errc <- p.Start(context.Background()) }()

	require.Eventually(t, func() bool { return p.Status().State == Playing }, time.Second, time.Millisecond)
	next := p.Replace(handles(newRecorder(), 0))

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, core.ErrAbandoned)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Replace")
	}
	assert.Equal(t, Idle, p.Status().State)
	assert.Same(t, next, p.Session())
	assert.Equal(t, 1, next.Len())
	assert.NotContains(t, rec.snapshot(), "play 1")

	require.NoError(t, p.Start(context.Background()))
	assert.Equal(t, Completed, p.Status().State)
}

// heldHandle 记下播放时拿到的 ctx，直到 release 关闭才完成。
type heldHandle struct {
	mu      sync.Mutex
	ctx     context.Context
	release chan struct{}
}

func (h *heldHandle) Play(ctx context.Context) <-chan error {
	h.mu.Lock()
	h.ctx = ctx
	h.mu.Unlock()
	done := make(chan error, 1)
	go func() {
		<-h.release
		done <- nil
	}()
	return done
}

func (h *heldHandle) playCtx() context.Context {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ctx
}

func TestReplaceDoesNotStopAbandonedHandle(t *testing.T) {
	h := &heldHandle{release: make(chan struct{})}
	defer close(h.release)
	p := NewPlayer(PlayerOptions{})
	p.Replace([]Handle{h})

	errc := make(chan error, 1)
	go func() { errc <- p.Start(context.Background()) }()
	require.Eventually(t, func() bool { return h.playCtx() != nil }, time.Second, time.Millisecond)

	p.Replace(nil)
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, core.ErrAbandoned)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Replace")
	}
	assert.NoError(t, h.playCtx().Err())
	assert.Equal(t, Idle, p.Status().State)
}

func TestStartWhilePlayingIsBusy(t *testing.T) {
	rec := newRecorder()
	p := NewPlayer(PlayerOptions{})
	p.Replace([]Handle{&stubHandle{index: 0, block: true, rec: rec}})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Start(ctx) }()
	require.Eventually(t, func() bool { return p.Status().State == Playing }, time.Second, time.Millisecond)

	assert.ErrorIs(t, p.Start(context.Background()), core.ErrBusy)

	cancel()
	err := <-errc
	assert.ErrorIs(t, err, core.ErrPlayback)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Failed, p.Status().State)
}
