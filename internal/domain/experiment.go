package domain

// Variant is one of the two arms of an experiment.
type Variant string

const (
	VariantA Variant = "A"
	VariantB Variant = "B"

	// DefaultVariant is served when no alternate is drawn.
	DefaultVariant = VariantA
	// AlternateVariant is drawn with the caller-supplied percentage.
	AlternateVariant = VariantB
)

// DefaultAlternatePercentage is the chance of drawing the alternate variant
// when a caller has no opinion.
const DefaultAlternatePercentage float64 = 50

// ParseVariant accepts only the literal labels "A" and "B".
func ParseVariant(s string) (Variant, bool) {
	switch Variant(s) {
	case VariantA, VariantB:
		return Variant(s), true
	}
	return "", false
}

func (v Variant) String() string {
	return string(v)
}

// Experiment is a named test declared by a caller. The percentage is
// supplied fresh on every declaration and never persisted.
type Experiment struct {
	Name                string
	AlternatePercentage float64
}

// Assignment is a persisted experiment name to variant mapping.
type Assignment struct {
	Experiment string
	Variant    Variant
}
