package flight

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoSingleCaller(t *testing.T) {
	g := NewGroup[string, int]()
	v, err, shared := g.Do("k", func() (int, error) { return 42, nil })
	if err != nil || v != 42 || shared {
		t.Errorf("Do = (%d, %v, %v), want (42, nil, false)", v, err, shared)
	}
}

func TestDoPropagatesError(t *testing.T) {
	g := NewGroup[string, int]()
	want := errors.New("upstream down")
	_, err, _ := g.Do("k", func() (int, error) { return 0, want })
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

func TestDoCoalescesConcurrentCalls(t *testing.T) {
	g := NewGroup[string, string]()
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})

	fn := func() (string, error) {
		calls.Add(1)
		close(started)
		<-release
		return "result", nil
	}

	var wg sync.WaitGroup
	var sharedCount atomic.Int32
	wg.Add(1)
	go func() {
		defer wg.Done()
		v, err, _ := g.Do("chapter", fn)
		if err != nil || v != "result" {
			t.Errorf("leader Do = (%q, %v)", v, err)
		}
	}()
	<-started

	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err, shared := g.Do("chapter", func() (string, error) {
				t.Error("duplicate invocation for in-flight key")
				return "", nil
			})
			if err != nil || v != "result" {
				t.Errorf("follower Do = (%q, %v)", v, err)
			}
			if shared {
				sharedCount.Add(1)
			}
		}()
	}

	// Give the followers time to park on the in-flight call before it
	// completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("fn ran %d times, want 1", calls.Load())
	}
	if sharedCount.Load() != 5 {
		t.Errorf("shared reported by %d followers, want 5", sharedCount.Load())
	}
}

func TestDoDistinctKeysRunIndependently(t *testing.T) {
	g := NewGroup[int, int]()
	var calls atomic.Int32
	var wg sync.WaitGroup
	for k := range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err, _ := g.Do(k, func() (int, error) {
				calls.Add(1)
				return k * 10, nil
			})
			if err != nil || v != k*10 {
				t.Errorf("Do(%d) = (%d, %v)", k, v, err)
			}
		}()
	}
	wg.Wait()
	if calls.Load() != 3 {
		t.Errorf("fn ran %d times, want 3", calls.Load())
	}
}

func TestDoKeyReusableAfterCompletion(t *testing.T) {
	g := NewGroup[string, int]()
	g.Do("k", func() (int, error) { return 1, nil })
	v, _, shared := g.Do("k", func() (int, error) { return 2, nil })
	if v != 2 || shared {
		t.Errorf("second Do = (%d, shared=%v), want fresh invocation", v, shared)
	}
}
