package engine

// normalizeValues rescales a batch of raw values onto [0, 1] with min-max
// normalization. A flat batch (max == min, which covers the single-value and
// all-zero cases) maps every value to 0.5 so the field neither dominates nor
// vanishes from the composite. Callers guarantee a non-empty slice.
func normalizeValues(values []float64) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]float64, len(values))
	if hi == lo {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}

	span := hi - lo
	for i, v := range values {
		out[i] = (v - lo) / span
	}
	return out
}
