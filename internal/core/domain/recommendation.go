package domain

// Stage is one step of the ISO three-stage principle: synchronize with the
// current affect, transition, reach the target affect.
type Stage string

const (
	StageMatch  Stage = "MATCH"
	StageGuide  Stage = "GUIDE"
	StageTarget Stage = "TARGET"
)

// ScoredSegment pairs a candidate with its similarity score in [0,1].
type ScoredSegment struct {
	Segment Segment
	Score   float64
}

// StageSequence is the ordered match/guide/target triple produced by the
// sequencer. CrossSourceFallback is set when guide or target material had to
// be taken from a different source than the match segment.
type StageSequence struct {
	Match               Segment
	Guide               Segment
	Target              Segment
	CrossSourceFallback bool
}

// Recommendation is the end-to-end answer for one query. A recommendation is
// either complete, with its degradation flags filled in honestly, or the
// query fails with a typed error; there is no silently empty success.
type Recommendation struct {
	Emotion              EmotionVector
	Segment              Segment
	Score                float64
	Sequence             StageSequence
	UsedFallbackStrategy bool
}
