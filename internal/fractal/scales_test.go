package fractal

import (
	"math"
	"testing"
)

func TestLogScales(t *testing.T) {
	scales := LogScales(5, 200, 20)

	if len(scales) == 0 || len(scales) > 20 {
		t.Fatalf("unexpected scale count %d", len(scales))
	}
	if scales[0] != 5 {
		t.Errorf("first scale = %d, want 5", scales[0])
	}
	if scales[len(scales)-1] != 200 {
		t.Errorf("last scale = %d, want 200", scales[len(scales)-1])
	}
	for i := 1; i < len(scales); i++ {
		if scales[i] <= scales[i-1] {
			t.Fatalf("scales not strictly increasing: %v", scales)
		}
	}
}

func TestLogScales_Degenerate(t *testing.T) {
	if got := LogScales(10, 5, 4); got != nil {
		t.Errorf("expected nil for inverted range, got %v", got)
	}
	if got := LogScales(7, 7, 4); len(got) != 1 || got[0] != 7 {
		t.Errorf("expected [7], got %v", got)
	}
	if got := LogScales(4, 4096, 0); got != nil {
		t.Errorf("expected nil for zero count, got %v", got)
	}
}

func TestLinearScales(t *testing.T) {
	got := LinearScales(4, 16, 4)
	want := []int{4, 8, 12, 16}
	if len(got) != len(want) {
		t.Fatalf("LinearScales() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("LinearScales() = %v, want %v", got, want)
		}
	}
}

func TestSortedUnique(t *testing.T) {
	got := SortedUnique([]int{8, 4, 8, 16, 4})
	want := []int{4, 8, 16}
	if len(got) != len(want) {
		t.Fatalf("SortedUnique() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedUnique() = %v, want %v", got, want)
		}
	}
}

func TestMomentRange(t *testing.T) {
	tests := []struct {
		name         string
		lo, hi, step float64
		wantLen      int
	}{
		{"tenths", -0.7, 0.7, 0.1, 15},
		{"fifths", -0.6, 0.6, 0.2, 7},
		{"integers", -5, 5, 1, 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := MomentRange(tt.lo, tt.hi, tt.step)
			if len(qs) != tt.wantLen {
				t.Fatalf("expected %d orders, got %d: %v", tt.wantLen, len(qs), qs)
			}
			zeros := 0
			for _, q := range qs {
				if q == 0 {
					zeros++
					if math.Signbit(q) {
						t.Errorf("zero order carries a sign bit")
					}
				}
			}
			if zeros != 1 {
				t.Errorf("expected exactly one q = 0 in %v", qs)
			}
			if qs[len(qs)-1] != tt.hi {
				t.Errorf("last order = %v, want %v", qs[len(qs)-1], tt.hi)
			}
		})
	}
}

func TestMomentRange_Degenerate(t *testing.T) {
	if got := MomentRange(1, 0, 0.5); got != nil {
		t.Errorf("expected nil for inverted range, got %v", got)
	}
	if got := MomentRange(0, 1, 0); got != nil {
		t.Errorf("expected nil for zero step, got %v", got)
	}
	if got := MomentRange(2, 2, 1); len(got) != 1 || got[0] != 2 {
		t.Errorf("expected [2], got %v", got)
	}
}
