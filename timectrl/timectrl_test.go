package timectrl

import (
	"context"
	"testing"
	"time"
)

func TestFrameDriverSetTime(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	d := NewFrameDriver(start, time.Second, RealTime)

	newNow := start.Add(42 * time.Second)
	d.SetTime(newNow)

	if got := d.Now(); !got.Equal(newNow) {
		t.Fatalf("Now() = %v, want %v", got, newNow)
	}
}

func TestFrameDriverStartUpdatesNow(t *testing.T) {
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	d := NewFrameDriver(start, 5*time.Millisecond, Accelerated)

	done := d.Start(context.Background(), 15*time.Millisecond)
	<-done

	expected := start.Add(15 * time.Millisecond)
	if got := d.Now(); !got.Equal(expected) {
		t.Fatalf("Now() = %v, want %v", got, expected)
	}
	if got := d.Frames(); got != 3 {
		t.Fatalf("Frames() = %d, want 3", got)
	}
}

func TestFrameDriverStartStopsOnCancel(t *testing.T) {
	d := NewFrameDriver(time.Unix(0, 0), time.Millisecond, RealTime)
	ctx, cancel := context.WithCancel(context.Background())

	done := d.Start(ctx, 0)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("driver did not stop after cancel")
	}
}

func TestFrameDriverPassesVariableDelta(t *testing.T) {
	d := NewFrameDriver(time.Unix(0, 0), 16*time.Millisecond, Accelerated)

	var got []time.Duration
	d.AddListener(func(delta time.Duration) { got = append(got, delta) })

	d.Step(10 * time.Millisecond)
	d.Step(33 * time.Millisecond)
	d.Step(-time.Millisecond)

	want := []time.Duration{10 * time.Millisecond, 33 * time.Millisecond, 0}
	if len(got) != len(want) {
		t.Fatalf("listener calls = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delta[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRemovedListenerIsNotInvoked(t *testing.T) {
	d := NewFrameDriver(time.Unix(0, 0), time.Millisecond, Accelerated)

	calls := 0
	remove := d.AddListener(func(time.Duration) { calls++ })
	d.StepFrames(2)
	remove()
	remove()
	d.StepFrames(5)

	if calls != 2 {
		t.Fatalf("calls = %d, want 2 (stale listener kept running)", calls)
	}
	if n := d.ListenerCount(); n != 0 {
		t.Fatalf("ListenerCount() = %d, want 0", n)
	}
}

func TestListenerRemovedMidFrameIsSkipped(t *testing.T) {
	d := NewFrameDriver(time.Unix(0, 0), time.Millisecond, Accelerated)

	var removeSecond func()
	secondCalls := 0
	d.AddListener(func(time.Duration) { removeSecond() })
	removeSecond = d.AddListener(func(time.Duration) { secondCalls++ })

	d.StepFrames(3)
	if secondCalls != 0 {
		t.Fatalf("second listener ran %d times after removal in the same frame", secondCalls)
	}
}

func TestAfterFuncFiresOnSimTime(t *testing.T) {
	d := NewFrameDriver(time.Unix(0, 0), 500*time.Millisecond, Accelerated)

	fired := 0
	d.AfterFunc(2*time.Second, func() { fired++ })

	d.StepFrames(3)
	if fired != 0 {
		t.Fatalf("timer fired early at %v", d.Elapsed())
	}
	d.StepFrames(1)
	if fired != 1 {
		t.Fatalf("timer fired %d times at %v, want 1", fired, d.Elapsed())
	}
	d.StepFrames(4)
	if fired != 1 {
		t.Fatalf("timer fired again: %d", fired)
	}
	if n := d.PendingTimers(); n != 0 {
		t.Fatalf("PendingTimers() = %d, want 0", n)
	}
}

func TestAfterFuncCancel(t *testing.T) {
	d := NewFrameDriver(time.Unix(0, 0), time.Second, Accelerated)

	fired := false
	cancel := d.AfterFunc(time.Second, func() { fired = true })
	cancel()
	d.StepFrames(2)

	if fired {
		t.Fatalf("cancelled timer fired")
	}
}

func TestAfterFuncNeverRunsSynchronously(t *testing.T) {
	d := NewFrameDriver(time.Unix(0, 0), time.Second, Accelerated)

	fired := false
	d.AfterFunc(0, func() { fired = true })
	if fired {
		t.Fatalf("zero-delay timer ran synchronously")
	}
	d.Step(0)
	if !fired {
		t.Fatalf("zero-delay timer did not run on next frame")
	}
}

func TestAfterDeliversSimTime(t *testing.T) {
	start := time.Unix(0, 0)
	d := NewFrameDriver(start, time.Second, Accelerated)

	ch := d.After(2 * time.Second)
	d.StepFrames(2)

	select {
	case got := <-ch:
		if want := start.Add(2 * time.Second); !got.Equal(want) {
			t.Fatalf("After delivered %v, want %v", got, want)
		}
	default:
		t.Fatalf("After channel empty after 2s of sim time")
	}
}
