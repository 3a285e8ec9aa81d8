// Package nn is a small runtime-composed network used for move policies.
// A network is an ordered list of layers; a layer computes its output from
// its input alone, so inference is safe for concurrent use while training
// (Backward, Update) is not.
package nn

// Layer is one stage of a Network.
type Layer interface {
	InputSize() int
	OutputSize() int
	// Forward maps x to a new output vector.
	Forward(x []float64) []float64
	// Backward takes the input and output of a Forward call and the loss
	// gradient with respect to that output. It accumulates parameter
	// gradients and returns the gradient with respect to x.
	Backward(x, y, grad []float64) []float64
	// Update applies the accumulated gradients and clears them.
	Update(rate float64)
}

// Network runs its layers in order.
type Network struct {
	Layers []Layer
}

func NewNetwork(layers ...Layer) *Network {
	return &Network{Layers: layers}
}

// Forward returns the network output.
func (n *Network) Forward(x []float64) []float64 {
	for _, l := range n.Layers {
		x = l.Forward(x)
	}
	return x
}

// Trace returns every intermediate vector: trace[0] is x, trace[i+1] the
// output of layer i.
func (n *Network) Trace(x []float64) [][]float64 {
	trace := make([][]float64, 0, len(n.Layers)+1)
	trace = append(trace, x)
	for _, l := range n.Layers {
		x = l.Forward(x)
		trace = append(trace, x)
	}
	return trace
}

// Backward propagates the output gradient through a trace and returns the
// gradient with respect to the network input.
func (n *Network) Backward(trace [][]float64, grad []float64) []float64 {
	for i := len(n.Layers) - 1; i >= 0; i-- {
		grad = n.Layers[i].Backward(trace[i], trace[i+1], grad)
	}
	return grad
}

// Update applies and clears the accumulated gradients of every layer.
func (n *Network) Update(rate float64) {
	for _, l := range n.Layers {
		l.Update(rate)
	}
}

// Learn does one squared-error gradient step towards target and returns the
// loss before the step. Entries of mask that are false do not contribute.
func (n *Network) Learn(x, target []float64, mask []bool, rate float64) float64 {
	trace := n.Trace(x)
	out := trace[len(trace)-1]
	grad := make([]float64, len(out))
	loss := 0.0
	for i := range out {
		if mask != nil && !mask[i] {
			continue
		}
		d := out[i] - target[i]
		loss += d * d / 2
		grad[i] = d
	}
	n.Backward(trace, grad)
	n.Update(rate)
	return loss
}
