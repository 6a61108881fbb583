package mailbox

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestQueueOrder(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		q.Send(i)
	}

	var got []int
	for {
		v, ok := q.TryRecv()
		if !ok {
			break
		}
		got = append(got, v)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4}, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestRecvTimeoutEmpty(t *testing.T) {
	q := New[string]()
	start := time.Now()
	if _, ok := q.RecvTimeout(20 * time.Millisecond); ok {
		t.Fatal("RecvTimeout on empty queue returned ok")
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("RecvTimeout returned before the timeout elapsed")
	}
}

func TestRecvTimeoutWakesOnSend(t *testing.T) {
	q := New[string]()
	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Send("hello")
	}()
	v, ok := q.RecvTimeout(time.Second)
	if !ok || v != "hello" {
		t.Errorf("RecvTimeout = %q, %v", v, ok)
	}
}

func TestDrain(t *testing.T) {
	q := New[int]()
	if got := q.Drain(time.Millisecond); got != nil {
		t.Errorf("Drain on empty queue = %v", got)
	}
	q.Send(1)
	q.Send(2)
	q.Send(3)
	if diff := cmp.Diff([]int{1, 2, 3}, q.Drain(time.Millisecond)); diff != "" {
		t.Errorf("Drain mismatch (-want +got):\n%s", diff)
	}
	if q.Len() != 0 {
		t.Errorf("Len after Drain = %d", q.Len())
	}
}

func TestConcurrentSenders(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for s := 0; s < 4; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				q.Send(i)
			}
		}()
	}
	wg.Wait()
	if q.Len() != 1000 {
		t.Errorf("Len = %d, want 1000", q.Len())
	}
}
