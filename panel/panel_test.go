package panel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/bihua/anim"
	"github.com/ByLCY/bihua/core"
)

type nopHandle struct{ char string }

func (h *nopHandle) Play(context.Context) <-chan error {
	done := make(chan error, 1)
	done <- nil
	return done
}

// stubBackend 对 unsupported 中的字符返回给定错误，其余字符返回句柄。
type stubBackend struct {
	unsupported  map[string]error
	created      []string
	placeholders []string
}

func (b *stubBackend) CreateHandle(containerID, char string, _ anim.Options) (anim.Handle, error) {
	b.created = append(b.created, containerID+":"+char)
	if err, ok := b.unsupported[char]; ok {
		return nil, err
	}
	return &nopHandle{char: char}, nil
}

func (b *stubBackend) WritePlaceholder(containerID string, _ anim.Options) (string, error) {
	b.placeholders = append(b.placeholders, containerID)
	return "/tmp/" + containerID + ".gif", nil
}

func TestBuildSkipsBlanks(t *testing.T) {
	b := &stubBackend{}
	p := Build(b, "你 好", anim.DefaultOptions())

	require.Len(t, p.Items, 3)
	assert.True(t, p.Items[1].Blank)
	assert.Nil(t, p.Items[1].Handle)
	assert.Equal(t, []string{"char-0:你", "char-2:好"}, b.created)
	assert.Len(t, p.Handles(), 2)
	assert.Empty(t, p.Placeholders())
}

func TestBuildIsolatesUnsupportedGlyph(t *testing.T) {
	b := &stubBackend{unsupported: map[string]error{
		"龘": core.Errorf(core.ErrUnsupportedGlyph, "load", nil),
		"?": errors.New("io failure"),
	}}
	p := Build(b, "一龘二?三", anim.DefaultOptions())

	handles := p.Handles()
	require.Len(t, handles, 3)
	assert.Equal(t, "一", handles[0].(*nopHandle).char)
	assert.Equal(t, "二", handles[1].(*nopHandle).char)
	assert.Equal(t, "三", handles[2].(*nopHandle).char)

	ph := p.Placeholders()
	require.Len(t, ph, 2)
	for _, it := range ph {
		assert.ErrorIs(t, it.Err, core.ErrUnsupportedGlyph)
		assert.NotEmpty(t, it.Placeholder)
	}
	assert.Equal(t, []string{"char-1", "char-3"}, b.placeholders)
}

func TestBuildEmpty(t *testing.T) {
	p := Build(&stubBackend{}, "", anim.DefaultOptions())
	assert.Empty(t, p.Items)
	assert.Empty(t, p.Handles())
}
