package realtime

import (
	"testing"
	"time"
)

func TestAgenda_PopDueInTimeOrder(t *testing.T) {
	now := time.Now().UTC()
	var a Agenda[string]
	a.Schedule(now.Add(2*time.Second), "late")
	a.Schedule(now.Add(time.Second), "early")
	a.Schedule(now.Add(time.Second), "early-second")

	if a.Len() != 3 {
		t.Fatalf("Len %d, want 3", a.Len())
	}
	next, ok := a.Next()
	if !ok || !next.Equal(now.Add(time.Second)) {
		t.Errorf("Next = %v, %v, want %v", next, ok, now.Add(time.Second))
	}
	if _, _, ok := a.PopDue(now); ok {
		t.Error("nothing should be due yet")
	}

	var got []string
	for {
		job, _, ok := a.PopDue(now.Add(5 * time.Second))
		if !ok {
			break
		}
		got = append(got, job)
	}
	want := []string{"early", "early-second", "late"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("job %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAgenda_Clear(t *testing.T) {
	now := time.Now().UTC()
	var a Agenda[int]
	a.Schedule(now, 1)
	a.Clear()
	if a.Len() != 0 {
		t.Errorf("Len %d after Clear, want 0", a.Len())
	}
	if _, ok := a.Next(); ok {
		t.Error("Next should report nothing after Clear")
	}
}
