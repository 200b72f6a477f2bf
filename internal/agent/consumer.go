// Package agent implements the consumer side of the housing market:
// savings accumulation over time and purchase attempts against a shared
// market.
package agent

import (
	"errors"
	"math"

	"estatesim/server/internal/market"
	"estatesim/server/internal/models"
)

var ErrNegativeYears = errors.New("years cannot be negative")

// Consumer is a single market participant. A purchased house is a
// reference into the market's collection, never a copy — availability
// stays single-sourced on the market side.
type Consumer struct {
	ID              int            `json:"id"`
	AnnualIncome    float64        `json:"annual_income"`
	Children        int            `json:"children"`
	Segment         models.Segment `json:"segment"`
	House           *market.House  `json:"house,omitempty"`
	Savings         float64        `json:"savings"`
	SavingRate      float64        `json:"saving_rate"`
	InterestRate    float64        `json:"interest_rate"`
	DownPaymentRate float64        `json:"down_payment_rate"`
}

// AccumulateSavings advances the consumer's savings by the given number
// of years. Each year the income contribution lands before that year's
// interest, so interest compounds on prior interest. The result is
// rounded to 2 decimal places.
func (c *Consumer) AccumulateSavings(years int) error {
	if years < 0 {
		return ErrNegativeYears
	}

	contribution := c.AnnualIncome * c.SavingRate
	for year := 0; year < years; year++ {
		c.Savings += contribution
		c.Savings *= 1 + c.InterestRate
	}
	c.Savings = math.Round(c.Savings*100) / 100
	return nil
}

// MaxAffordablePrice is the price ceiling implied by the down-payment
// rule: savings must cover the down-payment fraction of the price, so a
// 20% fraction makes savings of 40000 stretch to a 200000 house.
func (c *Consumer) MaxAffordablePrice() float64 {
	return c.Savings / c.DownPaymentRate
}

// AttemptPurchase buys the first house the market deems eligible for the
// consumer's budget and segment, deducting the down payment from savings.
// Consumers who already own, or who cannot afford anything, are left
// untouched. Returns the purchased house, or nil when no purchase
// happened.
func (c *Consumer) AttemptPurchase(m *market.HousingMarket, referenceYear int) (*market.House, error) {
	if c.House != nil {
		return nil, nil
	}
	maxPrice := c.MaxAffordablePrice()
	if maxPrice <= 0 {
		return nil, nil
	}

	eligible, err := m.EligibleHouses(maxPrice, c.Segment, referenceYear)
	if err != nil {
		return nil, err
	}
	if len(eligible) == 0 {
		return nil, nil
	}

	selected := eligible[0]
	selected.Sell()
	c.House = selected
	c.Savings -= selected.Price * c.DownPaymentRate
	return selected, nil
}
