package live

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
)

func TestOnce_StopsOnlyOnce(t *testing.T) {
	calls := 0
	sub := Once(func() { calls++ })
	sub.Stop()
	sub.Stop()
	if calls != 1 {
		t.Errorf("stop ran %d times, want 1", calls)
	}
}

func TestGroup_StopsAllAndLateAdds(t *testing.T) {
	var order []int
	var g Group
	g.Add(Func(func() { order = append(order, 1) }))
	g.Add(Func(func() { order = append(order, 2) }))
	g.Stop()

	if !reflect.DeepEqual(order, []int{2, 1}) {
		t.Errorf("stop order = %v, want [2 1]", order)
	}

	late := false
	g.Add(Func(func() { late = true }))
	if !late {
		t.Error("subscription added after Stop should be stopped immediately")
	}
	if !g.Stopped() {
		t.Error("Stopped() = false after Stop")
	}
}

func union(parts [][]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range parts {
		for _, s := range p {
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	sort.Strings(out)
	return out
}

func TestMerger_RecomputesFromLatestOfBothSides(t *testing.T) {
	var got []string
	m := NewMerger(2, union, func(v []string) { got = v })
	left, right := m.Source(0), m.Source(1)

	left([]string{"a", "b"})
	if got != nil {
		t.Fatalf("emitted %v before right delivered", got)
	}
	if m.Ready() {
		t.Error("Ready() before right delivered")
	}

	right([]string{"b", "c"})
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("after right: %v", got)
	}

	// Only the right side changes; the left snapshot must be kept.
	right([]string{"d"})
	if !reflect.DeepEqual(got, []string{"a", "b", "d"}) {
		t.Fatalf("after right-only update: %v", got)
	}
	if !m.Ready() {
		t.Error("Ready() = false after both sides delivered")
	}
}

func TestMerger_EmptySourceCountsAsDelivered(t *testing.T) {
	emits := 0
	m := NewMerger(2, union, func([]string) { emits++ })
	m.Source(1)(nil)
	if emits != 0 {
		t.Fatalf("emits = %d before left delivered", emits)
	}
	m.Source(0)(nil)
	if emits != 1 {
		t.Errorf("emits = %d, want 1 once both sides delivered empty snapshots", emits)
	}
}

func TestMerger_StopDropsUpdates(t *testing.T) {
	emits := 0
	m := NewMerger(1, union, func([]string) { emits++ })
	m.Source(0)([]string{"x"})
	m.Stop()
	m.Source(0)([]string{"y"})
	if emits != 1 {
		t.Errorf("emits = %d, want 1", emits)
	}
}

func TestReportError(t *testing.T) {
	var got []error
	ctx, cancel := context.WithCancel(WithErrorHandler(context.Background(), func(err error) { got = append(got, err) }))
	failure := errors.New("missing index")

	if ReportError(context.Background(), failure) {
		t.Error("reported without a handler")
	}
	if !ReportError(ctx, failure) || len(got) != 1 || got[0] != failure {
		t.Errorf("got = %v", got)
	}
	cancel()
	if ReportError(ctx, failure) || len(got) != 1 {
		t.Errorf("reported after cancel: %v", got)
	}
}
