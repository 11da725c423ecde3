package profiler

import (
	"reflect"
	"testing"
)

func TestRingPushAndEvict(t *testing.T) {
	r := NewRing(3)

	if _, ok := r.Mean(); ok {
		t.Error("Empty ring should report no mean")
	}

	for _, v := range []float64{1, 2, 3, 4, 5} {
		r.Push(v)
	}

	if r.Len() != 3 || len(r.buf) != 3 {
		t.Errorf("Len/Cap = %d/%d, expected 3/3", r.Len(), len(r.buf))
	}
	if got := r.values(); !reflect.DeepEqual(got, []float64{3, 4, 5}) {
		t.Errorf("Values() = %v, expected [3 4 5]", got)
	}
	if mean, _ := r.Mean(); mean != 4 {
		t.Errorf("Mean() = %v, expected 4", mean)
	}
}

func TestRingPartialFill(t *testing.T) {
	r := NewRing(5)
	r.Push(2)
	r.Push(4)

	if got := r.values(); !reflect.DeepEqual(got, []float64{2, 4}) {
		t.Errorf("Values() = %v, expected [2 4]", got)
	}
	if mean, _ := r.Mean(); mean != 3 {
		t.Errorf("Mean() = %v, expected 3", mean)
	}
}

func TestRingClear(t *testing.T) {
	r := NewRing(2)
	r.Push(1)
	r.Push(2)
	r.Clear()

	if r.Len() != 0 {
		t.Errorf("Len() = %d after Clear, expected 0", r.Len())
	}
	r.Push(9)
	if got := r.values(); !reflect.DeepEqual(got, []float64{9}) {
		t.Errorf("Values() = %v, expected [9]", got)
	}
}

func TestRingMinimumCapacity(t *testing.T) {
	r := NewRing(0)
	r.Push(1)
	r.Push(2)
	if len(r.buf) != 1 || r.values()[0] != 2 {
		t.Errorf("Zero-capacity ring should hold one sample, got %v", r.values())
	}
}
