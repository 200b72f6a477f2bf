package market

import "estatesim/server/internal/models"

// predicate is one segment's eligibility rule. Rules that cannot be
// computed (invalid year built, empty market, zero average area) report
// false so that ambiguity resolves to exclusion.
type predicate func(m *HousingMarket, h *House, referenceYear int) bool

func segmentPredicate(segment models.Segment) predicate {
	switch segment {
	case models.SegmentFancy:
		return matchesFancy
	case models.SegmentOptimizer:
		return matchesOptimizer
	case models.SegmentAverage:
		return matchesAverage
	default:
		return matchesNothing
	}
}

// matchesFancy wants new construction carrying the top quality score.
func matchesFancy(_ *HousingMarket, h *House, referenceYear int) bool {
	isNew, err := h.IsNewConstruction(referenceYear)
	if err != nil || !isNew {
		return false
	}
	return h.Quality == models.QualityExcellent
}

// matchesOptimizer wants a price per square foot strictly below the
// market's average price over average area.
func matchesOptimizer(m *HousingMarket, h *House, _ int) bool {
	perSqFt, err := h.PricePerSquareFoot()
	if err != nil {
		return false
	}
	avgPrice, err := m.AveragePrice()
	if err != nil {
		return false
	}
	avgArea, err := m.averageAvailableArea()
	if err != nil || avgArea == 0 {
		return false
	}
	return perSqFt < avgPrice/avgArea
}

// matchesAverage wants a price at or below the market average.
func matchesAverage(m *HousingMarket, h *House, _ int) bool {
	avgPrice, err := m.AveragePrice()
	if err != nil {
		return false
	}
	return h.Price <= avgPrice
}

func matchesNothing(*HousingMarket, *House, int) bool {
	return false
}
