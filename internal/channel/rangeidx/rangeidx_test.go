package rangeidx

import "testing"

func TestRangeSorted(t *testing.T) {
	r := New(300.0, 100.0, Decreasing)
	lo, hi := r.Sorted()
	if lo != 100 || hi != 300 {
		t.Fatalf("got lo=%v hi=%v", lo, hi)
	}
}

func TestRangeContainsClosedVsOpen(t *testing.T) {
	r := New(0.0, 1000.0, Increasing)
	if !r.Contains(1000, true) {
		t.Fatal("closed range should contain its end boundary")
	}
	if r.Contains(1000, false) {
		t.Fatal("open range must not contain its end boundary")
	}
	if !r.Contains(999.999, false) {
		t.Fatal("open range should contain values just under the end")
	}
	if r.Contains(-1, true) {
		t.Fatal("range must not contain values below start")
	}
}

func TestRangeStartsAfterEndsBefore(t *testing.T) {
	inc := New(100.0, 200.0, Increasing)
	if !inc.StartsAfter(50) {
		t.Fatal("increasing range starting at 100 starts after 50")
	}
	if inc.StartsAfter(150) {
		t.Fatal("increasing range starting at 100 does not start after 150")
	}
	if !inc.EndsBefore(250) {
		t.Fatal("increasing range ending at 200 ends before 250")
	}

	dec := New(200.0, 100.0, Decreasing)
	if !dec.StartsAfter(250) {
		t.Fatal("decreasing range starting at 200 starts after (below) 250")
	}
	if !dec.EndsBefore(50) {
		t.Fatal("decreasing range ending at 100 ends before (above) 50")
	}
}

func TestComputeAlignedExtent(t *testing.T) {
	cases := []struct {
		v, size    float64
		wantStart  float64
		wantEnd    float64
	}{
		{100, 1000, 0, 1000},
		{0, 1000, 0, 1000},
		{999.999, 1000, 0, 1000},
		{1000, 1000, 1000, 2000}, // boundary belongs to the next extent
		{1500, 1000, 1000, 2000},
		{2999, 1000, 2000, 3000},
		{-1, 1000, -1000, 0},
	}
	for _, c := range cases {
		ext := ComputeAlignedExtent(c.v, c.size, Increasing)
		if ext.Start != c.wantStart || ext.End != c.wantEnd {
			t.Fatalf("ComputeAlignedExtent(%v, %v) = [%v,%v), want [%v,%v)",
				c.v, c.size, ext.Start, ext.End, c.wantStart, c.wantEnd)
		}
		if !ext.Contains(c.v) {
			t.Fatalf("extent [%v,%v) must contain its own defining value %v", ext.Start, ext.End, c.v)
		}
	}
}

func TestExtentsTileDisjointly(t *testing.T) {
	a := ComputeAlignedExtent(999, 1000, Increasing)
	b := ComputeAlignedExtent(1000, 1000, Increasing)
	if a.End != b.Start {
		t.Fatalf("adjacent extents must tile exactly: a.End=%v b.Start=%v", a.End, b.Start)
	}
}
