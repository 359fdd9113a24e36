package encaps

import "fmt"

// Version is an encoding version pair (major, minor). Only Encoding10 and
// Encoding11 are recognized by this decoder.
type Version struct {
	Major byte
	Minor byte
}

// Encoding10 and Encoding11 are the only two encoding versions this decoder
// understands. Encoding10 disables tagged members and class/exception
// decoding.
var (
	Encoding10 = Version{Major: 1, Minor: 0}
	Encoding11 = Version{Major: 1, Minor: 1}
)

// Supported reports whether v is a recognized encoding version.
func (v Version) Supported() bool {
	return v == Encoding10 || v == Encoding11
}

// SupportsClasses reports whether this encoding version can decode
// class/exception instances and tagged members. Only 1.0 disables them.
func (v Version) SupportsClasses() bool {
	return v == Encoding11
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
