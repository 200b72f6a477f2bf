package market

import (
	"errors"
	"fmt"

	"estatesim/server/internal/models"
)

var (
	ErrNegativeBedrooms    = errors.New("number of bedrooms cannot be negative")
	ErrNoMatchingHouses    = errors.New("no available houses match the criteria")
	ErrNonPositiveMaxPrice = errors.New("maximum price must be positive")
)

// HousingMarket holds every house in a run. The slice keeps original
// record order; the id index only points into it, it never owns a copy.
// Membership is fixed after construction — a sale flips a house's
// availability in place.
type HousingMarket struct {
	houses []*House
	byID   map[int]*House
}

// New builds a market over the given houses.
func New(houses []*House) *HousingMarket {
	m := &HousingMarket{
		houses: houses,
		byID:   make(map[int]*House, len(houses)),
	}
	for _, h := range houses {
		m.byID[h.ID] = h
	}
	return m
}

// Houses returns the market's houses in original order.
func (m *HousingMarket) Houses() []*House {
	return m.houses
}

// HouseByID returns the house with the given id, or nil when no such
// house exists.
func (m *HousingMarket) HouseByID(id int) *House {
	return m.byID[id]
}

// AveragePrice returns the mean price over available houses, optionally
// restricted to an exact bedroom count.
func (m *HousingMarket) AveragePrice(bedrooms ...int) (float64, error) {
	filter := -1
	if len(bedrooms) > 0 {
		filter = bedrooms[0]
		if filter < 0 {
			return 0, ErrNegativeBedrooms
		}
	}

	var sum float64
	var count int
	for _, h := range m.houses {
		if !h.Available {
			continue
		}
		if filter >= 0 && h.Bedrooms != filter {
			continue
		}
		sum += h.Price
		count++
	}
	if count == 0 {
		if filter >= 0 {
			return 0, fmt.Errorf("%w: %d bedrooms", ErrNoMatchingHouses, filter)
		}
		return 0, ErrNoMatchingHouses
	}
	return sum / float64(count), nil
}

// averageAvailableArea is the mean living area over available houses.
func (m *HousingMarket) averageAvailableArea() (float64, error) {
	var sum float64
	var count int
	for _, h := range m.houses {
		if !h.Available {
			continue
		}
		sum += h.Area
		count++
	}
	if count == 0 {
		return 0, ErrNoMatchingHouses
	}
	return sum / float64(count), nil
}

// EligibleHouses returns, in market order, every available house priced
// within maxPrice that also satisfies the segment rule for referenceYear.
// A house whose segment rule cannot be computed is excluded, never an
// error.
func (m *HousingMarket) EligibleHouses(maxPrice float64, segment models.Segment, referenceYear int) ([]*House, error) {
	if maxPrice <= 0 {
		return nil, ErrNonPositiveMaxPrice
	}

	matches := segmentPredicate(segment)
	var eligible []*House
	for _, h := range m.houses {
		if !h.Available || h.Price > maxPrice {
			continue
		}
		if !matches(m, h, referenceYear) {
			continue
		}
		eligible = append(eligible, h)
	}
	return eligible, nil
}
