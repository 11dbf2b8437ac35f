package buttons

// Preview is the bounded thumbnail size. Shrink only applies while Size is
// above Min and Grow only while Size is below Max; requests at a bound are
// silently ignored.
type Preview struct {
	Size int
	Min  int
	Max  int
	Step int
}

// DefaultPreview matches the gallery's stock sizing
func DefaultPreview() Preview {
	return Preview{Size: 100, Min: 50, Max: 200, Step: 25}
}

// Shrink decreases Size by one step
func (p *Preview) Shrink() bool {
	if p.Size > p.Min {
		p.Size -= p.Step
		if p.Size < p.Min {
			p.Size = p.Min
		}
		return true
	}
	return false
}

// Grow increases Size by one step
func (p *Preview) Grow() bool {
	if p.Size < p.Max {
		p.Size += p.Step
		if p.Size > p.Max {
			p.Size = p.Max
		}
		return true
	}
	return false
}
