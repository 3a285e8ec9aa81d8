package nn

import "math"

// Activation applies f elementwise. Its backward pass multiplies the incoming
// gradient by the derivative vector.
type Activation struct {
	Size int
	F    func(x float64) float64
	// Derivative takes the input and output of F.
	Derivative func(x, y float64) float64
}

func Tanh(size int) *Activation {
	return &Activation{
		Size:       size,
		F:          math.Tanh,
		Derivative: func(_, y float64) float64 { return 1 - y*y },
	}
}

func ReLU(size int) *Activation {
	return &Activation{
		Size: size,
		F:    func(x float64) float64 { return max(x, 0) },
		Derivative: func(x, _ float64) float64 {
			if x > 0 {
				return 1
			}
			return 0
		},
	}
}

func (a *Activation) InputSize() int  { return a.Size }
func (a *Activation) OutputSize() int { return a.Size }

func (a *Activation) Forward(x []float64) []float64 {
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = a.F(v)
	}
	return y
}

func (a *Activation) Backward(x, y, grad []float64) []float64 {
	dx := make([]float64, len(grad))
	for i, g := range grad {
		dx[i] = g * a.Derivative(x[i], y[i])
	}
	return dx
}

func (a *Activation) Update(float64) {}
