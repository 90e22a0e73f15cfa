package tensor

import "fmt"

// Tensor is a dense float32 array in row-major H×W×C order. A single image
// is one tensor; the batch axis is implicit and always 1.
type Tensor struct {
	H, W, C int
	Data    []float32
}

// New allocates a zero-filled tensor of the given shape.
func New(h, w, c int) *Tensor {
	return &Tensor{H: h, W: w, C: c, Data: make([]float32, h*w*c)}
}

// FromSlice wraps an existing slice. The slice length must match h*w*c.
func FromSlice(h, w, c int, data []float32) (*Tensor, error) {
	if len(data) != h*w*c {
		return nil, fmt.Errorf("tensor: slice length %d does not match shape %dx%dx%d", len(data), h, w, c)
	}
	return &Tensor{H: h, W: w, C: c, Data: data}, nil
}

func (t *Tensor) At(y, x, c int) float32 {
	return t.Data[(y*t.W+x)*t.C+c]
}

func (t *Tensor) Set(y, x, c int, v float32) {
	t.Data[(y*t.W+x)*t.C+c] = v
}

func (t *Tensor) Add(y, x, c int, v float32) {
	t.Data[(y*t.W+x)*t.C+c] += v
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	out := New(t.H, t.W, t.C)
	copy(out.Data, t.Data)
	return out
}

// Fill sets every element to v.
func (t *Tensor) Fill(v float32) {
	for i := range t.Data {
		t.Data[i] = v
	}
}

// Max returns the largest element. Zero for an empty tensor.
func (t *Tensor) Max() float32 {
	if len(t.Data) == 0 {
		return 0
	}
	max := t.Data[0]
	for _, v := range t.Data[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// SameShape reports whether both tensors have identical dimensions.
func (t *Tensor) SameShape(o *Tensor) bool {
	return t.H == o.H && t.W == o.W && t.C == o.C
}

func (t *Tensor) String() string {
	return fmt.Sprintf("tensor(%dx%dx%d)", t.H, t.W, t.C)
}
