package native

import (
	"fmt"
	"math"

	"github.com/ivlev/retinareport/internal/tensor"
)

// layer is one step of the sequential network. Forward caches whatever the
// matching Backward needs, so a model instance must not be shared between
// goroutines during a pass.
type layer interface {
	Name() string
	// OutputRank counts the implicit batch axis: 4 for spatial outputs,
	// 2 for flattened vectors.
	OutputRank() int
	Forward(in *tensor.Tensor) (*tensor.Tensor, error)
	// Backward maps the gradient at this layer's output to the gradient at
	// its input, using state cached by the last Forward call.
	Backward(dout *tensor.Tensor) (*tensor.Tensor, error)
}

// convLayer is a stride-1 2D convolution with "same" zero padding.
// Weights are stored flattened in (ky, kx, inC, outC) order.
type convLayer struct {
	name    string
	kernel  int
	inCh    int
	filters int
	weights []float32
	bias    []float32
}

func (l *convLayer) Name() string    { return l.name }
func (l *convLayer) OutputRank() int { return 4 }

func (l *convLayer) w(ky, kx, ic, oc int) float32 {
	return l.weights[((ky*l.kernel+kx)*l.inCh+ic)*l.filters+oc]
}

func (l *convLayer) Forward(in *tensor.Tensor) (*tensor.Tensor, error) {
	if in.C != l.inCh {
		return nil, fmt.Errorf("conv %s: input has %d channels, want %d", l.name, in.C, l.inCh)
	}
	pad := l.kernel / 2
	out := tensor.New(in.H, in.W, l.filters)
	for y := 0; y < in.H; y++ {
		for x := 0; x < in.W; x++ {
			for oc := 0; oc < l.filters; oc++ {
				sum := l.bias[oc]
				for ky := 0; ky < l.kernel; ky++ {
					sy := y + ky - pad
					if sy < 0 || sy >= in.H {
						continue
					}
					for kx := 0; kx < l.kernel; kx++ {
						sx := x + kx - pad
						if sx < 0 || sx >= in.W {
							continue
						}
						for ic := 0; ic < l.inCh; ic++ {
							sum += in.At(sy, sx, ic) * l.w(ky, kx, ic, oc)
						}
					}
				}
				out.Set(y, x, oc, sum)
			}
		}
	}
	return out, nil
}

func (l *convLayer) Backward(dout *tensor.Tensor) (*tensor.Tensor, error) {
	pad := l.kernel / 2
	din := tensor.New(dout.H, dout.W, l.inCh)
	for y := 0; y < dout.H; y++ {
		for x := 0; x < dout.W; x++ {
			for oc := 0; oc < l.filters; oc++ {
				g := dout.At(y, x, oc)
				if g == 0 {
					continue
				}
				for ky := 0; ky < l.kernel; ky++ {
					sy := y + ky - pad
					if sy < 0 || sy >= dout.H {
						continue
					}
					for kx := 0; kx < l.kernel; kx++ {
						sx := x + kx - pad
						if sx < 0 || sx >= dout.W {
							continue
						}
						for ic := 0; ic < l.inCh; ic++ {
							din.Add(sy, sx, ic, g*l.w(ky, kx, ic, oc))
						}
					}
				}
			}
		}
	}
	return din, nil
}

type reluLayer struct {
	name string
	rank int
	in   *tensor.Tensor
}

func (l *reluLayer) Name() string    { return l.name }
func (l *reluLayer) OutputRank() int { return l.rank }

func (l *reluLayer) Forward(in *tensor.Tensor) (*tensor.Tensor, error) {
	l.in = in
	out := in.Clone()
	for i, v := range out.Data {
		if v < 0 {
			out.Data[i] = 0
		}
	}
	return out, nil
}

func (l *reluLayer) Backward(dout *tensor.Tensor) (*tensor.Tensor, error) {
	if l.in == nil {
		return nil, fmt.Errorf("relu %s: backward before forward", l.name)
	}
	din := dout.Clone()
	for i, v := range l.in.Data {
		if v <= 0 {
			din.Data[i] = 0
		}
	}
	return din, nil
}

// maxPoolLayer pools non-overlapping size×size windows. The winning position
// of each window is remembered for the backward scatter.
type maxPoolLayer struct {
	name string
	size int
	inH  int
	inW  int
	mask []int // flat input index of the max per output element
}

func (l *maxPoolLayer) Name() string    { return l.name }
func (l *maxPoolLayer) OutputRank() int { return 4 }

func (l *maxPoolLayer) Forward(in *tensor.Tensor) (*tensor.Tensor, error) {
	if in.H%l.size != 0 || in.W%l.size != 0 {
		return nil, fmt.Errorf("maxpool %s: input %dx%d not divisible by %d", l.name, in.H, in.W, l.size)
	}
	l.inH, l.inW = in.H, in.W
	outH, outW := in.H/l.size, in.W/l.size
	out := tensor.New(outH, outW, in.C)
	l.mask = make([]int, outH*outW*in.C)
	for oy := 0; oy < outH; oy++ {
		for ox := 0; ox < outW; ox++ {
			for c := 0; c < in.C; c++ {
				best := float32(math.Inf(-1))
				bestIdx := 0
				for py := oy * l.size; py < (oy+1)*l.size; py++ {
					for px := ox * l.size; px < (ox+1)*l.size; px++ {
						v := in.At(py, px, c)
						if v > best {
							best = v
							bestIdx = (py*in.W+px)*in.C + c
						}
					}
				}
				out.Set(oy, ox, c, best)
				l.mask[(oy*outW+ox)*in.C+c] = bestIdx
			}
		}
	}
	return out, nil
}

func (l *maxPoolLayer) Backward(dout *tensor.Tensor) (*tensor.Tensor, error) {
	if l.mask == nil {
		return nil, fmt.Errorf("maxpool %s: backward before forward", l.name)
	}
	din := tensor.New(l.inH, l.inW, dout.C)
	for i, srcIdx := range l.mask {
		din.Data[srcIdx] += dout.Data[i]
	}
	return din, nil
}

// flattenLayer reshapes H×W×C into 1×1×(H*W*C).
type flattenLayer struct {
	name string
	inH  int
	inW  int
	inC  int
}

func (l *flattenLayer) Name() string    { return l.name }
func (l *flattenLayer) OutputRank() int { return 2 }

func (l *flattenLayer) Forward(in *tensor.Tensor) (*tensor.Tensor, error) {
	l.inH, l.inW, l.inC = in.H, in.W, in.C
	out, err := tensor.FromSlice(1, 1, in.H*in.W*in.C, in.Data)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (l *flattenLayer) Backward(dout *tensor.Tensor) (*tensor.Tensor, error) {
	if l.inH == 0 {
		return nil, fmt.Errorf("flatten %s: backward before forward", l.name)
	}
	return tensor.FromSlice(l.inH, l.inW, l.inC, dout.Data)
}

// denseLayer is a fully connected layer over a flattened input.
// Weights are stored flattened in (input, unit) order.
type denseLayer struct {
	name    string
	inputs  int
	units   int
	weights []float32
	bias    []float32
}

func (l *denseLayer) Name() string    { return l.name }
func (l *denseLayer) OutputRank() int { return 2 }

func (l *denseLayer) Forward(in *tensor.Tensor) (*tensor.Tensor, error) {
	if len(in.Data) != l.inputs {
		return nil, fmt.Errorf("dense %s: input has %d values, want %d", l.name, len(in.Data), l.inputs)
	}
	out := tensor.New(1, 1, l.units)
	for u := 0; u < l.units; u++ {
		sum := l.bias[u]
		for i, v := range in.Data {
			sum += v * l.weights[i*l.units+u]
		}
		out.Data[u] = sum
	}
	return out, nil
}

func (l *denseLayer) Backward(dout *tensor.Tensor) (*tensor.Tensor, error) {
	din := tensor.New(1, 1, l.inputs)
	for i := 0; i < l.inputs; i++ {
		var sum float32
		for u := 0; u < l.units; u++ {
			sum += l.weights[i*l.units+u] * dout.Data[u]
		}
		din.Data[i] = sum
	}
	return din, nil
}

type softmaxLayer struct {
	name string
	out  *tensor.Tensor
}

func (l *softmaxLayer) Name() string    { return l.name }
func (l *softmaxLayer) OutputRank() int { return 2 }

func (l *softmaxLayer) Forward(in *tensor.Tensor) (*tensor.Tensor, error) {
	out := in.Clone()
	max := in.Max()
	var sum float64
	for i, v := range in.Data {
		e := math.Exp(float64(v - max))
		out.Data[i] = float32(e)
		sum += e
	}
	for i := range out.Data {
		out.Data[i] = float32(float64(out.Data[i]) / sum)
	}
	l.out = out
	return out, nil
}

// Backward uses the Jacobian of softmax: ds_k/dz_j = s_k*(δ_kj - s_j).
func (l *softmaxLayer) Backward(dout *tensor.Tensor) (*tensor.Tensor, error) {
	if l.out == nil {
		return nil, fmt.Errorf("softmax %s: backward before forward", l.name)
	}
	s := l.out.Data
	din := tensor.New(1, 1, len(s))
	var dot float32
	for k := range s {
		dot += dout.Data[k] * s[k]
	}
	for j := range s {
		din.Data[j] = s[j] * (dout.Data[j] - dot)
	}
	return din, nil
}
