package domain

import "fmt"

// DurationClass is the nominal length of a segment in minutes. Segments are
// cut into a fixed set of classes during library construction.
type DurationClass int

const (
	Duration1Min  DurationClass = 1
	Duration3Min  DurationClass = 3
	Duration5Min  DurationClass = 5
	Duration10Min DurationClass = 10
	Duration20Min DurationClass = 20
	Duration30Min DurationClass = 30
)

// DurationClasses lists the supported classes in ascending order.
func DurationClasses() []DurationClass {
	return []DurationClass{
		Duration1Min, Duration3Min, Duration5Min,
		Duration10Min, Duration20Min, Duration30Min,
	}
}

func (d DurationClass) Seconds() float64 { return float64(d) * 60 }

func (d DurationClass) String() string { return fmt.Sprintf("%dmin", int(d)) }

// Segment is one candidate unit of therapy material. Segments are created
// once during library construction and read-only afterward.
type Segment struct {
	SourceID      string
	SourcePath    string
	OffsetSeconds float64
	DurationClass DurationClass
	// IntroRatio is the fraction of the clip drawn from the front of its
	// source. Only leading segments carry a non-zero value; it gates
	// match-stage eligibility.
	IntroRatio float64
	Vector     FeatureVector
}

// ID identifies a segment by source and offset within its duration class.
func (s Segment) ID() string {
	return fmt.Sprintf("%s@%.0fs/%s", s.SourceID, s.OffsetSeconds, s.DurationClass)
}
