package xray

// LegendEntry pairs a swatch color (sRGB 0-255) with its meaning
type LegendEntry struct {
	Color [3]uint8 `json:"color"`
	Label string   `json:"label"`
}

// Info is the display metadata for an overlay
type Info struct {
	Type        Type          `json:"type"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Equation    string        `json:"equation"`
	Note        string        `json:"note"`
	Legend      []LegendEntry `json:"legend,omitempty"`
}

var infos = [TypeCount]Info{
	{
		Type:        MotionVectors,
		Name:        "MOTION VECTORS",
		Description: "Visualizing flow field (Green=H, Red=V)",
		Equation:    "v(x,y) = grad f(x,y)",
		Note:        "Gradient of noise field",
		Legend: []LegendEntry{
			{[3]uint8{0, 255, 0}, "Horizontal"},
			{[3]uint8{255, 0, 0}, "Vertical"},
		},
	},
	{
		Type:        FrequencyHeatmap,
		Name:        "FFT HEATMAP",
		Description: "Frequency domain intensity (High=Bright)",
		Equation:    "F(w) = sum noise(2^i x) / 2^i",
		Note:        "Weighted octave energy",
		Legend: []LegendEntry{
			{[3]uint8{0, 0, 139}, "Low freq"},
			{[3]uint8{255, 255, 0}, "High freq"},
		},
	},
	{
		Type:        EquationOverlay,
		Name:        "MATH OVERLAY",
		Description: "Underlying parametric equations",
		Equation:    "f(x,y) = sum A*noise(f*x, f*y)",
		Note:        "Fractal Brownian Motion",
	},
	{
		Type:        Wireframe,
		Name:        "WIREFRAME",
		Description: "Procedural mesh tessellation",
		Equation:    "mesh(u,v) -> (x,y,z)",
		Note:        "Parametric surface",
	},
}

// Describe returns the metadata for t; unknown types get a placeholder
func Describe(t Type) Info {
	if t < TypeCount {
		return infos[t]
	}
	return Info{Type: t, Name: "UNKNOWN", Description: "Unknown overlay, neutral fallback"}
}

// All returns the metadata of every overlay in type order
func All() []Info {
	out := make([]Info, len(infos))
	copy(out, infos[:])
	return out
}
