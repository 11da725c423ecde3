package profiler

// Ring is a fixed-capacity buffer of float64 samples. Once full, each Push
// overwrites the oldest sample. The backing array is allocated once.
type Ring struct {
	buf  []float64
	head int // Index of the next write
	size int
	sum  float64 // Sum of the held samples
}

// NewRing creates a ring holding at most capacity samples (minimum 1).
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]float64, capacity)}
}

// Push appends a sample, evicting the oldest when full.
func (r *Ring) Push(v float64) {
	if r.size == len(r.buf) {
		r.sum -= r.buf[r.head]
	} else {
		r.size++
	}
	r.buf[r.head] = v
	r.sum += v
	r.head = (r.head + 1) % len(r.buf)
}

// Len returns the number of samples held.
func (r *Ring) Len() int {
	return r.size
}

// Mean returns the average of the held samples; ok is false when empty.
func (r *Ring) Mean() (mean float64, ok bool) {
	if r.size == 0 {
		return 0, false
	}
	return r.sum / float64(r.size), true
}

// values returns a copy of the samples, oldest first.
func (r *Ring) values() []float64 {
	out := make([]float64, 0, r.size)
	start := (r.head - r.size + len(r.buf)) % len(r.buf)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// Clear drops all samples without releasing the backing array.
func (r *Ring) Clear() {
	r.head = 0
	r.size = 0
	r.sum = 0
}
