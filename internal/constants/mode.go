package constants

// Mode selects how two files are compared.
type Mode string

const (
	// ModeDirectional aligns the first file against the second only.
	ModeDirectional Mode = "directional"

	// ModeSymmetric aligns in both directions and averages the two ratios.
	ModeSymmetric Mode = "symmetric"
)

// ModeFor returns the mode matching the symmetric flag.
func ModeFor(symmetric bool) Mode {
	if symmetric {
		return ModeSymmetric
	}
	return ModeDirectional
}

// Valid returns true if the mode is a recognized value.
func (m Mode) Valid() bool {
	switch m {
	case ModeDirectional, ModeSymmetric:
		return true
	}
	return false
}

// Symmetric reports whether the mode compares in both directions.
func (m Mode) Symmetric() bool {
	return m == ModeSymmetric
}

// String returns the string representation of the mode.
func (m Mode) String() string {
	return string(m)
}
