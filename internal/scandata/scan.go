package scandata

import "fmt"

// Axis identifies which coordinate row of a scan block a column holds.
type Axis int

const (
	// AxisX is the horizontal coordinate row of a scan block.
	AxisX Axis = iota
	// AxisY is the vertical coordinate row of a scan block.
	AxisY
)

// String returns the lowercase axis label used in column names.
func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// ScanBlock is one measurement event: the scalar metadata line plus the
// X and Y coordinate rows that follow it. Timestamp is kept as the raw
// instrument string; it is validated against the timestamp pattern but
// deliberately not parsed into a time.Time at this layer.
type ScanBlock struct {
	Timestamp        string
	Height           float64
	Gap              float64
	Angle            float64
	FixedPointHeight float64
	X                []float64
	Y                []float64
}
