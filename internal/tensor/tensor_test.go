package tensor

import "testing"

func TestNewIsZeroFilled(t *testing.T) {
	ts := New(3, 4, 2)
	if len(ts.Data) != 24 {
		t.Fatalf("Expected 24 elements, got %d", len(ts.Data))
	}
	for i, v := range ts.Data {
		if v != 0 {
			t.Fatalf("Element %d not zero: %v", i, v)
		}
	}
}

func TestFromSlice(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}
	ts, err := FromSlice(1, 2, 3, data)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if ts.At(0, 1, 2) != 6 {
		t.Errorf("At(0,1,2) = %v, want 6", ts.At(0, 1, 2))
	}

	if _, err := FromSlice(2, 2, 3, data); err == nil {
		t.Error("Expected error for mismatched length")
	}
}

func TestIndexing(t *testing.T) {
	ts := New(2, 3, 2)
	ts.Set(1, 2, 1, 7)
	if ts.At(1, 2, 1) != 7 {
		t.Errorf("At(1,2,1) = %v, want 7", ts.At(1, 2, 1))
	}
	// Row-major H×W×C: (1,2,1) is the last element.
	if ts.Data[11] != 7 {
		t.Errorf("Data[11] = %v, want 7", ts.Data[11])
	}

	ts.Add(1, 2, 1, 3)
	if ts.At(1, 2, 1) != 10 {
		t.Errorf("At(1,2,1) after Add = %v, want 10", ts.At(1, 2, 1))
	}
}

func TestCloneIsDeep(t *testing.T) {
	ts := New(2, 2, 1)
	ts.Fill(5)
	cp := ts.Clone()
	cp.Set(0, 0, 0, 9)
	if ts.At(0, 0, 0) != 5 {
		t.Error("Clone shares backing storage with the original")
	}
	if !ts.SameShape(cp) {
		t.Error("Clone changed shape")
	}
}

func TestMax(t *testing.T) {
	ts := New(2, 2, 1)
	copy(ts.Data, []float32{-3, -1, -7, -2})
	if got := ts.Max(); got != -1 {
		t.Errorf("Max = %v, want -1", got)
	}

	empty := New(0, 0, 0)
	if got := empty.Max(); got != 0 {
		t.Errorf("Max of empty = %v, want 0", got)
	}
}

func TestSameShape(t *testing.T) {
	a := New(2, 3, 4)
	if !a.SameShape(New(2, 3, 4)) {
		t.Error("Identical shapes reported as different")
	}
	if a.SameShape(New(3, 2, 4)) {
		t.Error("Different shapes reported as same")
	}
}
