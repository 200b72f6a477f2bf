package market

import (
	"errors"
	"math"

	"estatesim/server/internal/models"
)

const (
	minYearBuilt       = 1800
	newConstructionAge = 5

	// size heuristics used when deriving a quality score
	avgRoomSizeSqFt  = 200.0
	avgHouseSizeSqFt = 2000.0
)

var (
	ErrNonPositiveArea = errors.New("area must be greater than 0")
	ErrYearInFuture    = errors.New("year built cannot be in the future")
	ErrYearTooOld      = errors.New("year built cannot be before 1800")
)

// House is a single property on the market. Identity is fixed at
// construction; only the availability flag ever changes, and only
// from true to false.
type House struct {
	ID        int                 `json:"id"`
	Price     float64             `json:"price"`
	Area      float64             `json:"area"`
	Bedrooms  int                 `json:"bedrooms"`
	YearBuilt int                 `json:"year_built"`
	Quality   models.QualityScore `json:"quality_score"`
	Available bool                `json:"available"`
}

// PricePerSquareFoot returns price divided by area, rounded to 2 decimal
// places.
func (h *House) PricePerSquareFoot() (float64, error) {
	if h.Area <= 0 {
		return 0, ErrNonPositiveArea
	}
	return round2(h.Price / h.Area), nil
}

// IsNewConstruction reports whether the house is less than 5 years old
// relative to currentYear.
func (h *House) IsNewConstruction(currentYear int) (bool, error) {
	if h.YearBuilt > currentYear {
		return false, ErrYearInFuture
	}
	if h.YearBuilt < minYearBuilt {
		return false, ErrYearTooOld
	}
	return currentYear-h.YearBuilt < newConstructionAge, nil
}

// EnsureQualityScore derives a quality score from age and size heuristics
// when none was supplied with the record. Age counts for 30%, space per
// bedroom for 40% and overall size for 30%; the size factors are capped at
// twice their baseline.
func (h *House) EnsureQualityScore(currentYear int) {
	if h.Quality != models.QualityUnset {
		return
	}

	maxAge := float64(currentYear - minYearBuilt)
	age := float64(currentYear - h.YearBuilt)
	ageScore := 1 - age/maxAge

	bedrooms := h.Bedrooms
	if bedrooms < 1 {
		bedrooms = 1
	}
	sizeScore := math.Min(1, h.Area/float64(bedrooms)/(avgRoomSizeSqFt*2))
	baseSizeScore := math.Min(1, h.Area/(avgHouseSizeSqFt*2))

	composite := ageScore*0.3 + sizeScore*0.4 + baseSizeScore*0.3
	h.Quality = models.QualityFromComposite(composite)
}

// Sell marks the house as sold. Selling an already-sold house keeps it
// sold.
func (h *House) Sell() {
	h.Available = false
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
