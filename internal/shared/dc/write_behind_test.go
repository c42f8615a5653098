package dc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type captureSaver struct {
	mu    sync.Mutex
	saved []int
	fail  int // 前 N 次写库失败
}

func (c *captureSaver) save(_ context.Context, s int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail > 0 {
		c.fail--
		return errors.New("db down")
	}
	c.saved = append(c.saved, s)
	return nil
}

func (c *captureSaver) last() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.saved) == 0 {
		return 0, false
	}
	return c.saved[len(c.saved)-1], true
}

func TestWriteBehind_Close前落盘最新快照(t *testing.T) {
	c := &captureSaver{}
	d := NewWriteBehind(c.save)

	d.Enqueue(1)
	d.Enqueue(2)
	d.Enqueue(3)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got, ok := c.last(); !ok || got != 3 {
		t.Fatalf("最后落盘应为最新快照 3, got %d ok=%v", got, ok)
	}
}

func TestWriteBehind_写库失败重试(t *testing.T) {
	c := &captureSaver{fail: 2}
	d := NewWriteBehind(c.save)

	d.Enqueue(7)

	deadline := time.Now().Add(3 * time.Second)
	for {
		if got, ok := c.last(); ok && got == 7 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("失败重排后最终应落盘")
		}
		time.Sleep(20 * time.Millisecond)
	}
	_ = d.Close(context.Background())
}

func TestWriteBehind_Close后入队被丢弃(t *testing.T) {
	c := &captureSaver{}
	d := NewWriteBehind(c.save)
	_ = d.Close(context.Background())

	d.Enqueue(9)
	time.Sleep(50 * time.Millisecond)
	if got, ok := c.last(); ok {
		t.Fatalf("关闭后入队不应落盘, got %d", got)
	}
}
