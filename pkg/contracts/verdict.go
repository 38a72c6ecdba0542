package contracts

// Verdict labels shown to users. LabelUnverified is the terminal state for a
// claim with no verifications at all.
const (
	LabelMostlyTrue  = "Mostly True"
	LabelMostlyFalse = "Mostly False"
	LabelUnclear     = "Unclear"
	LabelUnverified  = "Unverified"
)

// Verdict is the aggregate judgment on a claim at a point in time: a
// reputation-weighted majority label plus a confidence share in [0, 1].
type Verdict struct {
	Label        string  `json:"label"`
	Confidence   float64 `json:"confidence"`
	SupportCount int     `json:"support"`
	RefuteCount  int     `json:"refute"`
	UnclearCount int     `json:"unclear"`
}

// TotalCount returns the number of verifications behind the verdict.
func (v Verdict) TotalCount() int {
	return v.SupportCount + v.RefuteCount + v.UnclearCount
}

// LabelForStance maps an internal stance to its user-facing label.
func LabelForStance(s Stance) string {
	switch s {
	case StanceSupport:
		return LabelMostlyTrue
	case StanceRefute:
		return LabelMostlyFalse
	default:
		return LabelUnclear
	}
}

// StanceForLabel maps a verdict label back to the stance it represents.
// Unknown labels (including LabelUnverified) map to StanceUnclear, matching
// how the feedback policy treats a verdict with no majority stance.
func StanceForLabel(label string) Stance {
	switch label {
	case LabelMostlyTrue:
		return StanceSupport
	case LabelMostlyFalse:
		return StanceRefute
	default:
		return StanceUnclear
	}
}
