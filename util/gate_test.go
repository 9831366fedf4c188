package util

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGateMaximum(t *testing.T) {
	// 10 goroutines trying to enter a gate that can only hold 5 at once.
	g := NewGate(5)
	var inside int64
	var maxSeen int64
	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			g.Enter()
			n := atomic.AddInt64(&inside, 1)
			for {
				old := atomic.LoadInt64(&maxSeen)
				if n <= old || atomic.CompareAndSwapInt64(&maxSeen, old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&inside, -1)
			g.Leave()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
	if maxSeen > 5 {
		t.Errorf("gate allowed %d concurrent entries, want at most 5", maxSeen)
	}
}
