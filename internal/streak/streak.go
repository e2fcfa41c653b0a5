// Package streak computes the best run of consecutive on-diet meals.
package streak

// Record is anything that knows whether it was eaten within the diet.
type Record interface {
	OnDiet() bool
}

// Best returns the length of the longest contiguous run of on-diet records.
//
// Records must already be sorted by the time the meal was eaten, oldest first;
// Best does not sort. Gaps in time between records are invisible here, so days
// without meals never break a run. A nil or empty slice yields 0.
func Best[R Record](records []R) int {
	current, best := 0, 0
	for _, r := range records {
		if !r.OnDiet() {
			current = 0
			continue
		}
		current++
		// strict comparison keeps the earliest of several equally long runs
		if current > best {
			best = current
		}
	}
	return best
}

// Flag adapts a bare compliance flag to Record.
type Flag bool

// OnDiet implements Record.
func (f Flag) OnDiet() bool { return bool(f) }

// Flags converts a slice of booleans into Records.
func Flags(values []bool) []Flag {
	out := make([]Flag, len(values))
	for i, v := range values {
		out[i] = Flag(v)
	}
	return out
}
