package tools

import "fmt"

// DefaultVenueCapacity is the venue size assumed when none is configured.
const DefaultVenueCapacity = 50

// GuestListResult is the outcome of CountGuests.
type GuestListResult struct {
	GuestCount     int    `json:"guest_count"`
	VenueCapacity  int    `json:"venue_capacity"`
	WithinCapacity bool   `json:"within_capacity"`
	Message        string `json:"message"`
}

// CountGuests counts the guest list and checks it against the venue capacity.
func CountGuests(guests []string, capacity int) GuestListResult {
	n := len(guests)
	within := n <= capacity
	verdict := "Exceeds"
	if within {
		verdict = "Within"
	}
	return GuestListResult{
		GuestCount:     n,
		VenueCapacity:  capacity,
		WithinCapacity: within,
		Message:        fmt.Sprintf("%d guests. %s capacity of %d.", n, verdict, capacity),
	}
}

// SampleGuests returns placeholder names "Guest 1".."Guest n".
func SampleGuests(n int) []string {
	if n < 0 {
		n = 0
	}
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Guest %d", i+1)
	}
	return out
}
