package locator

// ClassMatch grades how well a window's class name matched.
type ClassMatch int

// Class match grades.
const (
	ClassNone ClassMatch = iota
	ClassSecondary
	ClassPrimary
)

// Factor weights in hundredths. They sum to 100.
const (
	weightClassPrimary   = 40
	weightClassSecondary = 30
	weightForeground     = 30
	weightGeometry       = 20
	weightVisible        = 10
)

// OpenThreshold is the minimum confidence for reporting the start menu open.
const OpenThreshold = 0.6

// Factors are the independent observations behind a confidence score.
type Factors struct {
	Class      ClassMatch
	Foreground bool // foreground process is the start experience host
	Geometry   bool // ValidStartGeometry passed
	Visible    bool
}

// Score sums the weighted factors. The sum is taken in integer hundredths so
// thresholds compare exactly.
func Score(f Factors) float64 {
	total := 0
	switch f.Class {
	case ClassPrimary:
		total += weightClassPrimary
	case ClassSecondary:
		total += weightClassSecondary
	}
	if f.Foreground {
		total += weightForeground
	}
	if f.Geometry {
		total += weightGeometry
	}
	if f.Visible {
		total += weightVisible
	}
	if total > 100 {
		total = 100
	}
	return float64(total) / 100
}
