package nn

// Dense is a fully connected affine layer.
type Dense struct {
	In, Out int
	W       []float64 // row-major Out x In
	B       []float64

	gw, gb []float64
}

func NewDense(in, out int) *Dense {
	return &Dense{
		In:  in,
		Out: out,
		W:   make([]float64, in*out),
		B:   make([]float64, out),
		gw:  make([]float64, in*out),
		gb:  make([]float64, out),
	}
}

func (d *Dense) InputSize() int  { return d.In }
func (d *Dense) OutputSize() int { return d.Out }

func (d *Dense) Forward(x []float64) []float64 {
	y := make([]float64, d.Out)
	for o := 0; o < d.Out; o++ {
		row := d.W[o*d.In : (o+1)*d.In]
		s := d.B[o]
		for i, w := range row {
			s += w * x[i]
		}
		y[o] = s
	}
	return y
}

func (d *Dense) Backward(x, _, grad []float64) []float64 {
	dx := make([]float64, d.In)
	for o, g := range grad {
		if g == 0 {
			continue
		}
		d.gb[o] += g
		row := d.W[o*d.In : (o+1)*d.In]
		grow := d.gw[o*d.In : (o+1)*d.In]
		for i := range row {
			grow[i] += g * x[i]
			dx[i] += row[i] * g
		}
	}
	return dx
}

func (d *Dense) Update(rate float64) {
	for i, g := range d.gw {
		d.W[i] -= rate * g
		d.gw[i] = 0
	}
	for i, g := range d.gb {
		d.B[i] -= rate * g
		d.gb[i] = 0
	}
}
