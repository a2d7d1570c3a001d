package gifbackend

import (
	"context"
	"errors"
	"image/gif"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/bihua/anim"
	"github.com/ByLCY/bihua/core"
	"github.com/ByLCY/bihua/strokedata"
)

// 两笔的“二”，第 0 笔标记为部首。
const erJSON = `{
  "strokes": [
    "M 300 600 L 724 600 L 724 560 L 300 560 Z",
    "M 150 200 L 874 200 L 874 150 L 150 150 Z"
  ],
  "medians": [[[300, 580], [724, 580]], [[150, 175], [874, 175]]],
  "radStrokes": [0]
}`

func testSource() strokedata.Source {
	return strokedata.NewFS(fstest.MapFS{
		"二.json": {Data: []byte(erJSON)},
		"坏.json": {Data: []byte(`{"strokes":["X 1 2"]}`)},
	})
}

func TestCreateHandleUnsupported(t *testing.T) {
	b := New(Options{Source: testSource(), OutDir: t.TempDir()})
	_, err := b.CreateHandle("char-0", "龘", anim.DefaultOptions())
	assert.ErrorIs(t, err, core.ErrUnsupportedGlyph)

	_, err = b.CreateHandle("char-1", "坏", anim.DefaultOptions())
	assert.ErrorIs(t, err, core.ErrUnsupportedGlyph)
}

func TestAnimationHasFramePerStroke(t *testing.T) {
	b := New(Options{Source: testSource(), OutDir: t.TempDir()})
	h, err := b.CreateHandle("char-0", "二", anim.DefaultOptions())
	require.NoError(t, err)

	g, err := h.(*Handle).Animation()
	require.NoError(t, err)
	require.Len(t, g.Image, 3)
	assert.Equal(t, 140, g.Image[0].Bounds().Dx())
	assert.Equal(t, 140, g.Image[0].Bounds().Dy())
	assert.Equal(t, 10, g.Delay[0]) // 100ms 笔画间隔
	assert.Equal(t, 50, g.Delay[1]) // 400ms + 100ms
	assert.Equal(t, holdDelay, g.Delay[2])
}

func TestPlayWritesGIF(t *testing.T) {
	dir := t.TempDir()
	b := New(Options{Source: testSource(), OutDir: dir})
	h, err := b.CreateHandle("char-3", "二", anim.DefaultOptions())
	require.NoError(t, err)

	select {
	case err := <-h.Play(context.Background()):
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Play did not complete")
	}

	f, err := os.Open(h.(*Handle).Path())
	require.NoError(t, err)
	defer f.Close()
	g, err := gif.DecodeAll(f)
	require.NoError(t, err)
	assert.Len(t, g.Image, 3)
}

func TestRealtimePlayHonoursCancellation(t *testing.T) {
	opts := anim.DefaultOptions()
	opts.DelayBetweenStrokes = time.Second
	b := New(Options{Source: testSource(), OutDir: t.TempDir(), Realtime: true})
	h, err := b.CreateHandle("char-0", "二", opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := h.Play(ctx)
	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "unexpected error %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("Play ignored cancellation")
	}
}

func TestDurationScalesWithSpeed(t *testing.T) {
	b := New(Options{Source: testSource(), StrokeDuration: 200 * time.Millisecond})
	opts := anim.DefaultOptions()
	opts.StrokeAnimationSpeed = 2
	opts.DelayBetweenStrokes = 0
	h, err := b.CreateHandle("char-0", "二", opts)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, h.(*Handle).Duration())
}

func TestWritePlaceholder(t *testing.T) {
	b := New(Options{Source: testSource(), OutDir: t.TempDir()})
	path, err := b.WritePlaceholder("char-9", anim.DefaultOptions())
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
