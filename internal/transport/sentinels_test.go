package transport

import "testing"

func TestHigherPriorityOrdering(t *testing.T) {
	// spec.md §4.7: KILL > HALTED > STEPPED > DETACHED > RESUMED > NONE.
	order := []PollResult{PollNone, PollRESUMED, PollDETACHED, PollSTEPPED, PollHALTED, PollKILL}
	for i := 1; i < len(order); i++ {
		lower, higher := order[i-1], order[i]
		if got := higherPriority(lower, higher); got != higher {
			t.Fatalf("higherPriority(%v, %v) = %v, want %v", lower, higher, got, higher)
		}
		if got := higherPriority(higher, lower); got != higher {
			t.Fatalf("higherPriority(%v, %v) = %v, want %v", higher, lower, got, higher)
		}
	}
}

func TestHigherPriorityStableOnEqual(t *testing.T) {
	if got := higherPriority(PollSTEPPED, PollSTEPPED); got != PollSTEPPED {
		t.Fatalf("higherPriority(STEPPED, STEPPED) = %v, want STEPPED", got)
	}
}
