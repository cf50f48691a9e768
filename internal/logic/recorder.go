package logic

import "fmt"

// Recorder is a fixed-capacity, append-only buffer of recorded cursor values.
// Once full it is frozen: further values are rejected.
type Recorder struct {
	buf [Capacity]int
	n   int
}

// Record appends value. It returns false, leaving the buffer untouched,
// when the buffer is already full.
func (r *Recorder) Record(value int) bool {
	if r.n == Capacity {
		return false
	}
	r.buf[r.n] = value
	r.n++
	return true
}

// Count returns the number of recorded values.
func (r *Recorder) Count() int {
	return r.n
}

// Full reports whether Capacity values have been recorded.
func (r *Recorder) Full() bool {
	return r.n == Capacity
}

// At returns the i-th recorded value. It panics if i is not in [0, Count()).
func (r *Recorder) At(i int) int {
	if i < 0 || i >= r.n {
		panic(fmt.Sprintf("logic: recorder index %d out of range [0,%d)", i, r.n))
	}
	return r.buf[i]
}

// Values returns a copy of the recorded values.
func (r *Recorder) Values() []int {
	out := make([]int, r.n)
	copy(out, r.buf[:r.n])
	return out
}
