package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"estatesim/server/internal/market"
	"estatesim/server/internal/models"
)

func newConsumer() *Consumer {
	return &Consumer{
		ID:              1,
		AnnualIncome:    100000,
		Children:        2,
		Segment:         models.SegmentAverage,
		SavingRate:      0.3,
		InterestRate:    0.05,
		DownPaymentRate: 0.2,
	}
}

func TestConsumer_AccumulateSavings(t *testing.T) {
	c := newConsumer()

	// One year: 30000 contribution, then 5% interest on the total
	err := c.AccumulateSavings(1)
	assert.NoError(t, err)
	assert.InDelta(t, 31500.00, c.Savings, 1e-9)

	// Second year compounds on the first year's interest
	err = c.AccumulateSavings(1)
	assert.NoError(t, err)
	assert.InDelta(t, 64575.00, c.Savings, 1e-9)
}

func TestConsumer_AccumulateSavingsZeroYears(t *testing.T) {
	c := newConsumer()
	c.Savings = 500

	err := c.AccumulateSavings(0)
	assert.NoError(t, err)
	assert.InDelta(t, 500.00, c.Savings, 1e-9)
}

func TestConsumer_AccumulateSavingsNegativeYears(t *testing.T) {
	c := newConsumer()

	err := c.AccumulateSavings(-1)
	assert.ErrorIs(t, err, ErrNegativeYears)
	assert.InDelta(t, 0, c.Savings, 1e-9)
}

func TestConsumer_AccumulateSavingsIsMonotonic(t *testing.T) {
	c := newConsumer()

	previous := c.Savings
	for year := 0; year < 15; year++ {
		err := c.AccumulateSavings(1)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, c.Savings, previous)
		previous = c.Savings
	}
}

func TestConsumer_MaxAffordablePrice(t *testing.T) {
	c := newConsumer()
	c.Savings = 40000

	assert.InDelta(t, 200000, c.MaxAffordablePrice(), 1e-9)
}

func TestConsumer_AttemptPurchase(t *testing.T) {
	m := market.New([]*market.House{
		{ID: 0, Price: 150000, Area: 1200, Bedrooms: 3, YearBuilt: 2000, Available: true},
	})
	c := newConsumer()
	c.Savings = 40000

	bought, err := c.AttemptPurchase(m, 2024)
	assert.NoError(t, err)
	assert.NotNil(t, bought)
	assert.Equal(t, 0, bought.ID)

	// Down payment of 150000 * 0.2 leaves 10000 in savings
	assert.InDelta(t, 10000.00, c.Savings, 1e-9)
	assert.Same(t, m.HouseByID(0), c.House)
	assert.False(t, m.HouseByID(0).Available)
}

func TestConsumer_AttemptPurchaseOwnerIsNoOp(t *testing.T) {
	m := market.New([]*market.House{
		{ID: 0, Price: 100000, Area: 1000, Available: true},
	})
	c := newConsumer()
	c.Savings = 50000
	owned := &market.House{ID: 99, Price: 120000, Area: 900}
	c.House = owned

	bought, err := c.AttemptPurchase(m, 2024)
	assert.NoError(t, err)
	assert.Nil(t, bought)
	assert.Same(t, owned, c.House)
	assert.InDelta(t, 50000, c.Savings, 1e-9)
	assert.True(t, m.HouseByID(0).Available)
}

func TestConsumer_AttemptPurchaseNothingEligible(t *testing.T) {
	m := market.New([]*market.House{
		{ID: 0, Price: 900000, Area: 3000, Available: true},
	})
	c := newConsumer()
	c.Savings = 10000

	bought, err := c.AttemptPurchase(m, 2024)
	assert.NoError(t, err)
	assert.Nil(t, bought)
	assert.Nil(t, c.House)
	assert.InDelta(t, 10000, c.Savings, 1e-9)
}

func TestConsumer_AttemptPurchaseWithoutSavings(t *testing.T) {
	m := market.New([]*market.House{
		{ID: 0, Price: 100000, Area: 1000, Available: true},
	})
	c := newConsumer()

	bought, err := c.AttemptPurchase(m, 2024)
	assert.NoError(t, err)
	assert.Nil(t, bought)
	assert.Nil(t, c.House)
}
