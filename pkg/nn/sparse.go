package nn

// Connection feeds input In into output Out through weight slot Slot.
type Connection struct {
	Out, In, Slot int
}

// Sparse is an affine layer whose connections are listed explicitly. Several
// connections may share a slot; their gradients are summed into the slot
// before an update. Frozen slots are never updated.
type Sparse struct {
	In, Out     int
	Connections []Connection
	Weights     []float64
	Frozen      []bool
	B           []float64

	gw, gb []float64
}

// NewSparse returns an empty layer; add slots with Slot and wire them with
// Connect.
func NewSparse(in, out int) *Sparse {
	return &Sparse{In: in, Out: out, B: make([]float64, out), gb: make([]float64, out)}
}

// Slot allocates a weight slot with an initial value.
func (s *Sparse) Slot(w float64, frozen bool) int {
	s.Weights = append(s.Weights, w)
	s.Frozen = append(s.Frozen, frozen)
	s.gw = append(s.gw, 0)
	return len(s.Weights) - 1
}

// Connect adds a connection using an existing slot.
func (s *Sparse) Connect(out, in, slot int) {
	s.Connections = append(s.Connections, Connection{Out: out, In: in, Slot: slot})
}

func (s *Sparse) InputSize() int  { return s.In }
func (s *Sparse) OutputSize() int { return s.Out }

func (s *Sparse) Forward(x []float64) []float64 {
	y := make([]float64, s.Out)
	copy(y, s.B)
	for _, c := range s.Connections {
		y[c.Out] += s.Weights[c.Slot] * x[c.In]
	}
	return y
}

func (s *Sparse) Backward(x, _, grad []float64) []float64 {
	dx := make([]float64, s.In)
	for o, g := range grad {
		s.gb[o] += g
	}
	for _, c := range s.Connections {
		g := grad[c.Out]
		s.gw[c.Slot] += g * x[c.In]
		dx[c.In] += s.Weights[c.Slot] * g
	}
	return dx
}

func (s *Sparse) Update(rate float64) {
	for i, g := range s.gw {
		if !s.Frozen[i] {
			s.Weights[i] -= rate * g
		}
		s.gw[i] = 0
	}
	for i, g := range s.gb {
		s.B[i] -= rate * g
		s.gb[i] = 0
	}
}
