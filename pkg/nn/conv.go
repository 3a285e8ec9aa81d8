package nn

// Conv builds a Sparse layer over depth-major planes of width x height cells
// followed by extra scalar inputs. Every (outDepth, inDepth, offset) triple
// shares one slot across all cells. Extra inputs pass through unchanged.
// init supplies the starting value of each shared slot.
func Conv(width, height, inDepth, outDepth, radius, extra int, init func() float64) *Sparse {
	plane := width * height
	s := NewSparse(inDepth*plane+extra, outDepth*plane+extra)
	side := 2*radius + 1
	slots := make([]int, outDepth*inDepth*side*side)
	for i := range slots {
		slots[i] = s.Slot(init(), false)
	}
	for od := 0; od < outDepth; od++ {
		for id := 0; id < inDepth; id++ {
			for row := 0; row < height; row++ {
				for col := 0; col < width; col++ {
					for dr := -radius; dr <= radius; dr++ {
						for dc := -radius; dc <= radius; dc++ {
							r, c := row+dr, col+dc
							if r < 0 || r >= height || c < 0 || c >= width {
								continue
							}
							k := ((od*inDepth+id)*side+dr+radius)*side + dc + radius
							s.Connect(od*plane+row*width+col, id*plane+r*width+c, slots[k])
						}
					}
				}
			}
		}
	}
	passThrough(s, inDepth*plane, outDepth*plane, extra)
	return s
}

// Internalizer folds extra scalar inputs into every cell: out = x + 0.1*extra.
// Its weights are frozen and it drops the extras from its output.
func Internalizer(size, extra int) *Sparse {
	s := NewSparse(size+extra, size)
	one := s.Slot(1, true)
	tenth := s.Slot(0.1, true)
	for i := 0; i < size; i++ {
		s.Connect(i, i, one)
		for e := 0; e < extra; e++ {
			s.Connect(i, size+e, tenth)
		}
	}
	return s
}

func passThrough(s *Sparse, in, out, extra int) {
	if extra == 0 {
		return
	}
	one := s.Slot(1, true)
	for e := 0; e < extra; e++ {
		s.Connect(out+e, in+e, one)
	}
}
