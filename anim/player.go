package anim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ByLCY/bihua/core"
)

// State 是播放器的状态。
type State int

const (
	Idle State = iota
	Playing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Status 是某一时刻的播放状态；Index 仅在 Playing 时有意义。
type Status struct {
	State State
	Index int
	Err   error
}

// Session 是一次输入对应的句柄列表，整体替换，不做局部修改。
type Session struct {
	id      uint64
	handles []Handle
	// 会话被替换时关闭，只有播放器自己在等待它
	abandoned chan struct{}
}

func newSession(id uint64, handles []Handle) *Session {
	return &Session{id: id, handles: handles, abandoned: make(chan struct{})}
}

// ID 返回会话编号，每次替换递增。
func (s *Session) ID() uint64 { return s.id }

// Len 返回句柄数量。
func (s *Session) Len() int { return len(s.handles) }

// PlayerOptions 是播放器的配置。
type PlayerOptions struct {
	// Timeout 是单个句柄的最长播放时间，0 表示不限。
	Timeout time.Duration
	// OnState 在每次状态变化时被调用。调用时持有播放器内部锁，回调中不能再调用 Player 的方法。
	OnState func(Status)
}

// DefaultTimeout 是单个句柄的默认最长播放时间。
const DefaultTimeout = 30 * time.Second

// Player 持有当前会话，并严格按顺序播放其中的句柄：
// 第 i+1 个句柄只会在第 i 个句柄发出完成信号之后开始。
type Player struct {
	timeout time.Duration
	onState func(Status)

	mu      sync.Mutex
	nextID  uint64
	session *Session
	status  Status
}

// NewPlayer 创建一个会话为空的播放器。
func NewPlayer(opts PlayerOptions) *Player {
	return &Player{timeout: opts.Timeout, onState: opts.OnState, session: newSession(0, nil)}
}

// Status 返回当前状态。
func (p *Player) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Session 返回当前会话。
func (p *Player) Session() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Replace 放弃旧会话，然后安装新会话并回到 Idle。
// 旧会话中正在播放的句柄不会收到停止信号，只是不再被跟踪。
func (p *Player) Replace(handles []Handle) *Session {
	p.mu.Lock()
	defer p.mu.Unlock()

	close(p.session.abandoned)
	p.nextID++
	p.session = newSession(p.nextID, append([]Handle(nil), handles...))
	p.setLocked(Status{State: Idle})
	core.Logger().Info("动画会话已替换", "session", p.nextID, "handles", len(handles))
	return p.session
}

// Start 播放当前会话直到完成、失败或被替换。
//   - 会话为空：返回 ErrEmptyInput，状态保持 Idle；
//   - 已在播放：返回 ErrBusy；
//   - 任一句柄报错或超时：进入 Failed 并返回 ErrPlayback，后续句柄不再播放；
//   - 播放中被 Replace：返回 ErrAbandoned，状态由 Replace 置为 Idle。
func (p *Player) Start(ctx context.Context) error {
	p.mu.Lock()
	s := p.session
	if p.status.State == Playing {
		p.mu.Unlock()
		return core.Errorf(core.ErrBusy, "start", nil)
	}
	if len(s.handles) == 0 {
		p.mu.Unlock()
		return core.Errorf(core.ErrEmptyInput, "start", nil)
	}
	p.setLocked(Status{State: Playing, Index: 0})
	p.mu.Unlock()

	for i, h := range s.handles {
		if i > 0 && !p.transition(s, Status{State: Playing, Index: i}) {
			return core.Errorf(core.ErrAbandoned, "start", nil)
		}
		if err := p.await(ctx, s, i, h); err != nil {
			if errors.Is(err, core.ErrAbandoned) {
				return err
			}
			if !p.transition(s, Status{State: Failed, Index: i, Err: err}) {
				return core.Errorf(core.ErrAbandoned, "start", nil)
			}
			return err
		}
	}
	if !p.transition(s, Status{State: Completed, Index: len(s.handles) - 1}) {
		return core.Errorf(core.ErrAbandoned, "start", nil)
	}
	return nil
}

// await 播放单个句柄并挂起整个播放器，直到完成信号、超时、会话被替换或 ctx 结束。
// 句柄拿到的是调用方的 ctx。
func (p *Player) await(ctx context.Context, s *Session, i int, h Handle) error {
	log := core.Logger().With("session", s.id, "index", i)
	log.Debug("开始播放句柄")

	done := h.Play(ctx)
	if done == nil {
		return &core.Error{Kind: core.ErrPlayback, Op: "play", Err: fmt.Errorf("第 %d 个句柄没有返回完成通道", i)}
	}

	var expired <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case err := <-done:
		if err != nil {
			return &core.Error{Kind: core.ErrPlayback, Op: "play", Err: err}
		}
		log.Debug("句柄播放完成")
		return nil
	case <-expired:
		return &core.Error{Kind: core.ErrPlayback, Op: "play", Err: core.ErrTimeout}
	case <-s.abandoned:
		log.Debug("会话已被替换，不再等待句柄")
		return core.Errorf(core.ErrAbandoned, "play", nil)
	case <-ctx.Done():
		return &core.Error{Kind: core.ErrPlayback, Op: "play", Err: ctx.Err()}
	}
}

// transition 仅在 s 仍是当前会话时更新状态。
func (p *Player) transition(s *Session, st Status) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.session != s {
		return false
	}
	p.setLocked(st)
	return true
}

func (p *Player) setLocked(st Status) {
	p.status = st
	if p.onState != nil {
		p.onState(st)
	}
}
