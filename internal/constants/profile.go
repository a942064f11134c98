package constants

// Profile selects how the y0 field of an input record is interpreted.
type Profile string

const (
	// ProfileReal parses y0 as a floating point value.
	ProfileReal Profile = "real"

	// ProfileCount parses y0 as an unsigned 32-bit integer count.
	// Sums are still accumulated in float64, exact up to 2^53.
	ProfileCount Profile = "count"
)

// Valid returns true if the profile is a recognized value.
func (p Profile) Valid() bool {
	switch p {
	case ProfileReal, ProfileCount:
		return true
	}
	return false
}

// String returns the string representation of the profile.
func (p Profile) String() string {
	return string(p)
}
