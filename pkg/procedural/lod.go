package procedural

import "math"

// Precision is the numeric precision a zoom level needs to stay artifact free
type Precision int

const (
	PrecisionStandard Precision = iota
	PrecisionDouble
	PrecisionArbitrary
)

func (p Precision) String() string {
	switch p {
	case PrecisionDouble:
		return "double"
	case PrecisionArbitrary:
		return "arbitrary"
	default:
		return "standard"
	}
}

// MarshalText encodes the precision by name
func (p Precision) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// LOD is advisory detail information for a zoom level. Generators never read
// it; hosts use it to size buffers and to warn when float32 runs out.
type LOD struct {
	Zoom       float64   `json:"zoom"`
	Iterations int       `json:"iterations"`
	Precision  Precision `json:"precision"`
}

// LODForZoom derives the detail level: 4 iterations at 1x plus 3 per decade,
// capped at 20
func LODForZoom(zoom float64) LOD {
	extra := 0
	if decades := math.Log10(zoom); decades > 0 {
		extra = int(math.Min(decades*3, 16))
	}

	precision := PrecisionStandard
	switch {
	case zoom > 1e6:
		precision = PrecisionArbitrary
	case zoom > 1e4:
		precision = PrecisionDouble
	}

	return LOD{
		Zoom:       zoom,
		Iterations: min(4+extra, 20),
		Precision:  precision,
	}
}

// RecommendedResolution scales a base resolution with sqrt(zoom), clamped to
// [64, 8192]
func (l LOD) RecommendedResolution(base int) int {
	scaled := int(float64(base) * math.Sqrt(math.Max(l.Zoom, 0)))
	return max(64, min(scaled, 8192))
}

// PrecisionExhausted reports whether float32 generators will show
// quantization at this zoom
func (l LOD) PrecisionExhausted() bool {
	return l.Precision != PrecisionStandard
}
