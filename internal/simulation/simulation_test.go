package simulation

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"estatesim/server/internal/models"
)

func testRecord(price, area, bedrooms, yearBuilt, quality string) models.RawRecord {
	record := models.RawRecord{}
	if price != "" {
		record[FieldSalePrice] = price
	}
	if area != "" {
		record[FieldLivingArea] = area
	}
	if bedrooms != "" {
		record[FieldBedrooms] = bedrooms
	}
	if yearBuilt != "" {
		record[FieldYearBuilt] = yearBuilt
	}
	if quality != "" {
		record[FieldOverallQuality] = quality
	}
	return record
}

func testParams(records []models.RawRecord) Params {
	return Params{
		Records:   records,
		Consumers: 20,
		Years:     10,
		Income: IncomeStatistics{
			Minimum: 30000,
			Average: 60000,
			StdDev:  15000,
			Maximum: 120000,
		},
		Children:        ChildrenRange{Minimum: 0, Maximum: 3},
		Mechanism:       models.MechanismIncomeDescending,
		DownPaymentRate: 0.2,
		SavingRate:      0.3,
		InterestRate:    0.05,
		ReferenceYear:   2024,
		Seed:            42,
	}
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestSimulation_BuildMarketAllValid(t *testing.T) {
	records := []models.RawRecord{
		testRecord("150000", "1200", "3", "2005", "7"),
		testRecord("220000", "1800", "4", "2015", "9"),
		testRecord("90000", "800", "2", "1960", ""),
	}
	s := New(testParams(records), quietLogger())

	assert.NoError(t, s.BuildMarket())
	assert.Len(t, s.Market().Houses(), 3)
	assert.Equal(t, 0, s.SkippedRecords())

	// Raw overall quality maps onto the 5-level scale
	assert.Equal(t, models.QualityGood, s.Market().HouseByID(0).Quality)
	assert.Equal(t, models.QualityExcellent, s.Market().HouseByID(1).Quality)

	// A record without the quality field gets a derived score
	assert.NotEqual(t, models.QualityUnset, s.Market().HouseByID(2).Quality)
}

func TestSimulation_BuildMarketSkipsBadRecords(t *testing.T) {
	records := []models.RawRecord{
		testRecord("150000", "1200", "3", "2005", "7"),
		testRecord("", "1200", "3", "2005", "7"),        // missing price
		testRecord("180000", "abc", "3", "2005", "7"),   // bad area
		testRecord("180000", "1400", "3", "2005", "xx"), // bad quality
		testRecord("210000", "1500", "3", "2010", "8"),
	}
	s := New(testParams(records), quietLogger())

	assert.NoError(t, s.BuildMarket())
	assert.Len(t, s.Market().Houses(), 2)
	assert.Equal(t, 3, s.SkippedRecords())
}

func TestSimulation_GeneratePopulation(t *testing.T) {
	params := testParams(nil)
	s := New(params, quietLogger())

	assert.NoError(t, s.GeneratePopulation())
	assert.Len(t, s.Consumers(), params.Consumers)

	for _, c := range s.Consumers() {
		assert.GreaterOrEqual(t, c.AnnualIncome, params.Income.Minimum)
		assert.LessOrEqual(t, c.AnnualIncome, params.Income.Maximum)
		assert.GreaterOrEqual(t, c.Children, params.Children.Minimum)
		assert.LessOrEqual(t, c.Children, params.Children.Maximum)
		assert.True(t, c.Segment.IsValid())
		assert.Zero(t, c.Savings)
		assert.Nil(t, c.House)
	}
}

func TestSimulation_GeneratePopulationIsDeterministic(t *testing.T) {
	a := New(testParams(nil), quietLogger())
	b := New(testParams(nil), quietLogger())

	assert.NoError(t, a.GeneratePopulation())
	assert.NoError(t, b.GeneratePopulation())

	for i := range a.Consumers() {
		assert.Equal(t, a.Consumers()[i].AnnualIncome, b.Consumers()[i].AnnualIncome)
		assert.Equal(t, a.Consumers()[i].Segment, b.Consumers()[i].Segment)
		assert.Equal(t, a.Consumers()[i].Children, b.Consumers()[i].Children)
	}
}

func TestSimulation_Preconditions(t *testing.T) {
	s := New(testParams(nil), quietLogger())

	assert.ErrorIs(t, s.AccumulateAllSavings(), ErrNoPopulation)
	assert.ErrorIs(t, s.ClearMarket(), ErrNoPopulation)

	_, err := s.OwnershipRate()
	assert.ErrorIs(t, err, ErrNoPopulation)
	_, err = s.AvailabilityRate()
	assert.ErrorIs(t, err, ErrNoMarket)

	assert.NoError(t, s.GeneratePopulation())
	assert.ErrorIs(t, s.ClearMarket(), ErrNoMarket)
}

func TestSimulation_ClearMarketNeverDoubleSells(t *testing.T) {
	records := []models.RawRecord{
		testRecord("120000", "1100", "3", "2001", "6"),
		testRecord("140000", "1250", "3", "2003", "6"),
		testRecord("160000", "1400", "3", "2006", "7"),
		testRecord("500000", "3000", "5", "2020", "9"),
	}
	s := New(testParams(records), quietLogger())

	assert.NoError(t, s.BuildMarket())
	assert.NoError(t, s.GeneratePopulation())
	assert.NoError(t, s.AccumulateAllSavings())
	assert.NoError(t, s.ClearMarket())

	owners := make(map[int]int)
	for _, c := range s.Consumers() {
		if c.House != nil {
			owners[c.House.ID]++
		}
	}
	for houseID, count := range owners {
		assert.Equalf(t, 1, count, "house %d sold more than once", houseID)
	}

	sold := 0
	for _, h := range s.Market().Houses() {
		if !h.Available {
			sold++
		}
	}
	assert.Equal(t, len(owners), sold)
	assert.Equal(t, len(s.Sales()), sold)
	assert.LessOrEqual(t, sold, len(s.Market().Houses()))
}

func TestSimulation_RatesMatchCounts(t *testing.T) {
	records := []models.RawRecord{
		testRecord("120000", "1100", "3", "2001", "6"),
		testRecord("140000", "1250", "3", "2003", "6"),
		testRecord("800000", "4000", "6", "2022", "10"),
	}
	params := testParams(records)
	params.Consumers = 10
	s := New(params, quietLogger())

	_, err := s.Run()
	assert.NoError(t, err)

	owners := 0
	for _, c := range s.Consumers() {
		if c.House != nil {
			owners++
		}
	}
	ownership, err := s.OwnershipRate()
	assert.NoError(t, err)
	assert.InDelta(t, float64(owners)/10.0, ownership, 1e-9)
	assert.GreaterOrEqual(t, ownership, 0.0)
	assert.LessOrEqual(t, ownership, 1.0)

	available := 0
	for _, h := range s.Market().Houses() {
		if h.Available {
			available++
		}
	}
	availability, err := s.AvailabilityRate()
	assert.NoError(t, err)
	assert.InDelta(t, float64(available)/3.0, availability, 1e-9)
}

func TestSimulation_ClearMarketMechanisms(t *testing.T) {
	records := []models.RawRecord{
		testRecord("120000", "1100", "3", "2001", "6"),
		testRecord("140000", "1250", "3", "2003", "6"),
	}

	for _, mechanism := range []models.ClearingMechanism{
		models.MechanismIncomeDescending,
		models.MechanismIncomeAscending,
		models.MechanismRandom,
	} {
		params := testParams(records)
		params.Mechanism = mechanism
		s := New(params, quietLogger())

		_, err := s.Run()
		assert.NoErrorf(t, err, "mechanism %s", mechanism)
	}

	params := testParams(records)
	params.Mechanism = models.ClearingMechanism("bogus")
	s := New(params, quietLogger())
	assert.NoError(t, s.BuildMarket())
	assert.NoError(t, s.GeneratePopulation())
	assert.Error(t, s.ClearMarket())
}

func TestSimulation_MetricsAndSummary(t *testing.T) {
	records := []models.RawRecord{
		testRecord("120000", "1100", "3", "2001", "6"),
		testRecord("140000", "1250", "3", "2003", "6"),
	}
	s := New(testParams(records), quietLogger())

	metrics, err := s.Run()
	assert.NoError(t, err)
	assert.Equal(t, s.RunID(), metrics.RunID)
	assert.Equal(t, 20, metrics.Consumers)
	assert.Equal(t, 2, metrics.Houses)
	assert.Equal(t, len(s.Sales()), metrics.HousesSold)
	assert.InDelta(t, 1-float64(metrics.HousesSold)/2.0, metrics.AvailabilityRate, 1e-9)

	summary, err := s.Summary()
	assert.NoError(t, err)
	assert.Equal(t, metrics.RunID, summary.RunID)
	assert.Equal(t, metrics.HousesSold, summary.HousesSold)
}
