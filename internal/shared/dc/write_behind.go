package dc

import (
	"context"
	"sync"
	"time"
)

// WriteBehind 是“脏检查 + 同步快照 + 异步写库”的公共写回循环。
// 只保留最新版本的待写快照：写库慢于产生速度时合并成最后一次全量。
// 写库失败重排当前快照，更高版本入队时自然覆盖旧值。
type WriteBehind[S any] struct {
	save       func(context.Context, S) error
	flushEvery time.Duration

	mu      sync.Mutex
	pending *versioned[S]
	version uint64
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
}

type versioned[S any] struct {
	version uint64
	state   S
}

func NewWriteBehind[S any](save func(context.Context, S) error) *WriteBehind[S] {
	d := &WriteBehind[S]{
		save:       save,
		flushEvery: 3000 * time.Millisecond,
		wake:       make(chan struct{}, 1),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go d.writerLoop()
	return d
}

func (d *WriteBehind[S]) FlushEvery() time.Duration { return d.flushEvery }

// Enqueue 在调用方（actor）线程取好的快照入队。
func (d *WriteBehind[S]) Enqueue(s S) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.version++
	d.pending = &versioned[S]{version: d.version, state: s}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *WriteBehind[S]) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.stop)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *WriteBehind[S]) popPending() *versioned[S] {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.pending
	d.pending = nil
	return s
}

func (d *WriteBehind[S]) requeueOnError(s *versioned[S]) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if d.pending == nil || d.pending.version < s.version {
		d.pending = s
	}
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *WriteBehind[S]) writerLoop() {
	defer close(d.done)

	for {
		select {
		case <-d.wake:
			d.consumePending()
		case <-d.stop:
			d.consumePending()
			return
		}
	}
}

func (d *WriteBehind[S]) consumePending() {
	for {
		s := d.popPending()
		if s == nil {
			return
		}
		if err := d.save(context.TODO(), s.state); err != nil {
			d.requeueOnError(s)
			time.Sleep(200 * time.Millisecond)
			continue
		}
	}
}
