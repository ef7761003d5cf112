package fp3

// MaxPoints is the maximum number of minutiae retained per print. Payloads
// that advertise more are silently truncated, matching the source NBIS
// bozorth3 bound (MAX_BOZORTH_MINUTIAE).
const MaxPoints = 200

// PrintType enumerates the feature-point encodings Decode accepts.
type PrintType int32

const (
	PrintTypeNBIS    PrintType = 1
	PrintTypeURU4000 PrintType = 2
)

// MinutiaSet is three parallel, equal-length coordinate/angle sequences
// decoded from one print tuple. Owned exclusively by the enclosing
// Template; never mutated after Decode returns.
type MinutiaSet struct {
	X     []int32
	Y     []int32
	Theta []int32
}

// N returns the number of minutiae in the set (the common length of X, Y,
// and Theta).
func (m MinutiaSet) N() int {
	return len(m.X)
}

// Template is the decoded form of an FP3 container.
type Template struct {
	PrintType     PrintType
	DriverID      string
	DeviceID      string
	DeviceStored  bool
	FingerCode    byte
	Username      string
	HasUsername   bool
	Description   string
	HasDescription bool
	JulianDate    int32
	Metadata      map[string][]byte
	Prints        []MinutiaSet
}
