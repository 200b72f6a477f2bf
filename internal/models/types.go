package models

import "fmt"

// QualityScore is a 5-level ordinal rating of a house's desirability,
// either supplied with the raw record or derived from age/size heuristics.
type QualityScore int

const (
	QualityUnset QualityScore = iota
	QualityPoor
	QualityFair
	QualityAverage
	QualityGood
	QualityExcellent
)

func (q QualityScore) String() string {
	switch q {
	case QualityPoor:
		return "poor"
	case QualityFair:
		return "fair"
	case QualityAverage:
		return "average"
	case QualityGood:
		return "good"
	case QualityExcellent:
		return "excellent"
	default:
		return "unset"
	}
}

// QualityFromOverall maps a raw 1-10 overall quality figure onto the
// 5-level scale.
func QualityFromOverall(overall int) QualityScore {
	switch {
	case overall <= 2:
		return QualityPoor
	case overall <= 4:
		return QualityFair
	case overall <= 6:
		return QualityAverage
	case overall <= 8:
		return QualityGood
	default:
		return QualityExcellent
	}
}

// QualityFromComposite maps a composite score in [0,1] onto the scale.
func QualityFromComposite(score float64) QualityScore {
	switch {
	case score >= 0.8:
		return QualityExcellent
	case score >= 0.6:
		return QualityGood
	case score >= 0.4:
		return QualityAverage
	case score >= 0.2:
		return QualityFair
	default:
		return QualityPoor
	}
}

// Segment is a consumer's house-shopping preference class. It determines
// which eligibility rule applies when the consumer queries the market.
type Segment string

const (
	// SegmentFancy wants new construction with the highest quality score.
	SegmentFancy Segment = "fancy"
	// SegmentOptimizer wants a price per square foot below the market's.
	SegmentOptimizer Segment = "optimizer"
	// SegmentAverage wants a price at or below the market average.
	SegmentAverage Segment = "average"
)

// Segments returns all segments in a fixed order.
func Segments() []Segment {
	return []Segment{SegmentFancy, SegmentOptimizer, SegmentAverage}
}

// IsValid checks if a segment is recognized.
func (s Segment) IsValid() bool {
	switch s {
	case SegmentFancy, SegmentOptimizer, SegmentAverage:
		return true
	}
	return false
}

// ClearingMechanism fixes the order consumers are processed in during
// market clearing.
type ClearingMechanism string

const (
	MechanismIncomeDescending ClearingMechanism = "income_descending"
	MechanismIncomeAscending  ClearingMechanism = "income_ascending"
	MechanismRandom           ClearingMechanism = "random"
)

// ParseClearingMechanism converts a configuration string into a
// ClearingMechanism.
func ParseClearingMechanism(value string) (ClearingMechanism, error) {
	m := ClearingMechanism(value)
	switch m {
	case MechanismIncomeDescending, MechanismIncomeAscending, MechanismRandom:
		return m, nil
	}
	return "", fmt.Errorf("unknown clearing mechanism: %q", value)
}
