package models

import "testing"

func TestCanTransitionAllocation(t *testing.T) {
	tests := []struct {
		name string
		from AllocationStatus
		to   AllocationStatus
		want bool
	}{
		{"allocated to checked in", AllocationAllocated, AllocationCheckedIn, true},
		{"allocated to cancelled", AllocationAllocated, AllocationCancelled, true},
		{"checked in to checked out", AllocationCheckedIn, AllocationCheckedOut, true},
		{"checked in cannot cancel", AllocationCheckedIn, AllocationCancelled, false},
		{"checked out is terminal", AllocationCheckedOut, AllocationCheckedIn, false},
		{"cancelled is terminal", AllocationCancelled, AllocationAllocated, false},
		{"no skipping check in", AllocationAllocated, AllocationCheckedOut, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransitionAllocation(tc.from, tc.to); got != tc.want {
				t.Fatalf("CanTransitionAllocation(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestCanTransitionIDCard(t *testing.T) {
	tests := []struct {
		name string
		from IDCardStatus
		to   IDCardStatus
		want bool
	}{
		{"requested to approved", IDCardRequested, IDCardApproved, true},
		{"approved to printing", IDCardApproved, IDCardPrinting, true},
		{"printing to ready", IDCardPrinting, IDCardReady, true},
		{"ready to collected", IDCardReady, IDCardCollected, true},
		{"requested cancellable", IDCardRequested, IDCardCancelled, true},
		{"ready cancellable", IDCardReady, IDCardCancelled, true},
		{"collected cannot cancel", IDCardCollected, IDCardCancelled, false},
		{"cancelled cannot cancel again", IDCardCancelled, IDCardCancelled, false},
		{"no skipping production", IDCardRequested, IDCardReady, false},
		{"collected is terminal", IDCardCollected, IDCardApproved, false},
		{"no backwards transition", IDCardPrinting, IDCardApproved, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransitionIDCard(tc.from, tc.to); got != tc.want {
				t.Fatalf("CanTransitionIDCard(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}
