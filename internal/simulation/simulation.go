// Package simulation orchestrates a full housing-market run: market
// construction from raw records, population generation, savings
// accumulation and market clearing.
package simulation

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"estatesim/server/internal/agent"
	"estatesim/server/internal/market"
	"estatesim/server/internal/models"
)

// Field names expected on a cleaned market record.
const (
	FieldSalePrice      = "sale_price"
	FieldLivingArea     = "gr_liv_area"
	FieldBedrooms       = "bedroom_abv_gr"
	FieldYearBuilt      = "year_built"
	FieldOverallQuality = "overall_qual"
)

var (
	ErrNoPopulation = errors.New("consumers must be generated before this operation")
	ErrNoMarket     = errors.New("housing market must be built before this operation")
)

// incomeDrawLimit bounds the rejection-sampling loop for income draws.
// Pathological bounds fall back to clamping instead of spinning forever.
const incomeDrawLimit = 1000

// IncomeStatistics describes the truncated normal distribution annual
// incomes are drawn from.
type IncomeStatistics struct {
	Minimum float64
	Average float64
	StdDev  float64
	Maximum float64
}

// ChildrenRange is the inclusive integer range children counts are drawn
// from.
type ChildrenRange struct {
	Minimum int
	Maximum int
}

// Params fixes a run before any derived state exists. Params are read
// only once handed to New.
type Params struct {
	Records         []models.RawRecord
	Consumers       int
	Years           int
	Income          IncomeStatistics
	Children        ChildrenRange
	Mechanism       models.ClearingMechanism
	DownPaymentRate float64
	SavingRate      float64
	InterestRate    float64
	ReferenceYear   int
	Seed            int64
}

// Simulation owns the derived state of one run: the constructed market,
// the generated population and the sales produced by clearing.
type Simulation struct {
	params Params
	logger *logrus.Logger
	rng    *rand.Rand
	runID  string

	market    *market.HousingMarket
	consumers []*agent.Consumer
	skipped   int
	sales     []models.SaleRecord
}

// New creates a simulation for the given parameters. A fixed seed makes
// population generation and random-order clearing reproducible.
func New(params Params, logger *logrus.Logger) *Simulation {
	if logger == nil {
		logger = logrus.New()
	}
	return &Simulation{
		params: params,
		logger: logger,
		rng:    rand.New(rand.NewSource(params.Seed)),
		runID:  uuid.NewString(),
	}
}

// RunID identifies this run in persisted results.
func (s *Simulation) RunID() string {
	return s.runID
}

// Market returns the constructed housing market, or nil before BuildMarket.
func (s *Simulation) Market() *market.HousingMarket {
	return s.market
}

// Consumers returns the generated population, or nil before
// GeneratePopulation.
func (s *Simulation) Consumers() []*agent.Consumer {
	return s.consumers
}

// SkippedRecords is the number of raw records rejected during BuildMarket.
func (s *Simulation) SkippedRecords() int {
	return s.skipped
}

// Sales returns the sale records produced by ClearMarket.
func (s *Simulation) Sales() []models.SaleRecord {
	return s.sales
}

// BuildMarket converts the raw records into houses and indexes them. A
// record missing a required field or failing numeric conversion is
// logged and skipped; the rest of the batch goes through.
func (s *Simulation) BuildMarket() error {
	houses := make([]*market.House, 0, len(s.params.Records))
	s.skipped = 0
	for idx, record := range s.params.Records {
		house, err := s.houseFromRecord(idx, record)
		if err != nil {
			s.skipped++
			s.logger.WithError(err).WithField("record", idx).Warn("Skipping invalid market record")
			continue
		}
		houses = append(houses, house)
	}
	s.market = market.New(houses)
	s.logger.WithFields(logrus.Fields{
		"houses":  len(houses),
		"skipped": s.skipped,
	}).Info("Housing market built")
	return nil
}

func (s *Simulation) houseFromRecord(id int, record models.RawRecord) (*market.House, error) {
	price, err := record.Float(FieldSalePrice)
	if err != nil {
		return nil, err
	}
	area, err := record.Float(FieldLivingArea)
	if err != nil {
		return nil, err
	}
	bedrooms, err := record.Int(FieldBedrooms)
	if err != nil {
		return nil, err
	}
	yearBuilt, err := record.Int(FieldYearBuilt)
	if err != nil {
		return nil, err
	}

	quality := models.QualityUnset
	if record.Has(FieldOverallQuality) {
		overall, err := record.Int(FieldOverallQuality)
		if err != nil {
			return nil, err
		}
		quality = models.QualityFromOverall(overall)
	}

	house := &market.House{
		ID:        id,
		Price:     price,
		Area:      area,
		Bedrooms:  bedrooms,
		YearBuilt: yearBuilt,
		Quality:   quality,
		Available: true,
	}
	house.EnsureQualityScore(s.params.ReferenceYear)
	return house, nil
}

// GeneratePopulation creates the consumer population: income from the
// truncated normal distribution, children uniform over the configured
// range and segment uniform over the three segments. Savings start at 0.
func (s *Simulation) GeneratePopulation() error {
	segments := models.Segments()
	consumers := make([]*agent.Consumer, 0, s.params.Consumers)
	for i := 0; i < s.params.Consumers; i++ {
		span := s.params.Children.Maximum - s.params.Children.Minimum
		children := s.params.Children.Minimum
		if span > 0 {
			children += s.rng.Intn(span + 1)
		}
		consumers = append(consumers, &agent.Consumer{
			ID:              i,
			AnnualIncome:    s.drawIncome(),
			Children:        children,
			Segment:         segments[s.rng.Intn(len(segments))],
			Savings:         0,
			SavingRate:      s.params.SavingRate,
			InterestRate:    s.params.InterestRate,
			DownPaymentRate: s.params.DownPaymentRate,
		})
	}
	s.consumers = consumers
	return nil
}

// drawIncome samples the income distribution, redrawing until the value
// falls within bounds. The draw budget is bounded; exhausting it clamps
// the last draw into range and logs a warning.
func (s *Simulation) drawIncome() float64 {
	var income float64
	for attempt := 0; attempt < incomeDrawLimit; attempt++ {
		income = s.rng.NormFloat64()*s.params.Income.StdDev + s.params.Income.Average
		if income >= s.params.Income.Minimum && income <= s.params.Income.Maximum {
			return income
		}
	}
	s.logger.WithFields(logrus.Fields{
		"minimum": s.params.Income.Minimum,
		"maximum": s.params.Income.Maximum,
	}).Warn("Income bounds exhausted the draw budget, clamping")
	return math.Min(math.Max(income, s.params.Income.Minimum), s.params.Income.Maximum)
}

// AccumulateAllSavings advances every consumer's savings by the run's
// year count.
func (s *Simulation) AccumulateAllSavings() error {
	if s.consumers == nil {
		return ErrNoPopulation
	}
	for _, c := range s.consumers {
		if err := c.AccumulateSavings(s.params.Years); err != nil {
			return fmt.Errorf("consumer %d: %w", c.ID, err)
		}
	}
	return nil
}

// ClearMarket hands every consumer one purchase attempt against the
// shared market, in the order fixed by the clearing mechanism. Ordering
// works on a copy of the population; it decides who reaches scarce
// eligible houses first.
func (s *Simulation) ClearMarket() error {
	if s.consumers == nil {
		return ErrNoPopulation
	}
	if s.market == nil {
		return ErrNoMarket
	}

	order := make([]*agent.Consumer, len(s.consumers))
	copy(order, s.consumers)
	switch s.params.Mechanism {
	case models.MechanismIncomeDescending:
		sort.SliceStable(order, func(i, j int) bool { return order[i].AnnualIncome > order[j].AnnualIncome })
	case models.MechanismIncomeAscending:
		sort.SliceStable(order, func(i, j int) bool { return order[i].AnnualIncome < order[j].AnnualIncome })
	case models.MechanismRandom:
		s.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	default:
		return fmt.Errorf("unknown clearing mechanism: %q", s.params.Mechanism)
	}

	for _, c := range order {
		house, err := c.AttemptPurchase(s.market, s.params.ReferenceYear)
		if err != nil {
			return fmt.Errorf("consumer %d: %w", c.ID, err)
		}
		if house != nil {
			s.sales = append(s.sales, models.SaleRecord{
				RunID:       s.runID,
				HouseID:     house.ID,
				ConsumerID:  c.ID,
				Price:       house.Price,
				DownPayment: math.Round(house.Price*s.params.DownPaymentRate*100) / 100,
				Segment:     string(c.Segment),
			})
		}
	}
	s.logger.WithFields(logrus.Fields{
		"mechanism": s.params.Mechanism,
		"sold":      len(s.sales),
	}).Info("Market cleared")
	return nil
}

// OwnershipRate is the share of consumers who own a house.
func (s *Simulation) OwnershipRate() (float64, error) {
	if len(s.consumers) == 0 {
		return 0, ErrNoPopulation
	}
	owners := 0
	for _, c := range s.consumers {
		if c.House != nil {
			owners++
		}
	}
	return float64(owners) / float64(len(s.consumers)), nil
}

// AvailabilityRate is the share of houses still available.
func (s *Simulation) AvailabilityRate() (float64, error) {
	if s.market == nil || len(s.market.Houses()) == 0 {
		return 0, ErrNoMarket
	}
	available := 0
	for _, h := range s.market.Houses() {
		if h.Available {
			available++
		}
	}
	return float64(available) / float64(len(s.market.Houses())), nil
}

// Metrics summarizes a completed run.
func (s *Simulation) Metrics() (models.MarketMetrics, error) {
	ownership, err := s.OwnershipRate()
	if err != nil {
		return models.MarketMetrics{}, err
	}
	availability, err := s.AvailabilityRate()
	if err != nil {
		return models.MarketMetrics{}, err
	}
	return models.MarketMetrics{
		RunID:            s.runID,
		Mechanism:        string(s.params.Mechanism),
		Consumers:        len(s.consumers),
		Houses:           len(s.market.Houses()),
		HousesSold:       len(s.sales),
		SkippedRecords:   s.skipped,
		OwnershipRate:    ownership,
		AvailabilityRate: availability,
	}, nil
}

// Run executes every phase in order and returns the run's metrics.
func (s *Simulation) Run() (models.MarketMetrics, error) {
	if err := s.BuildMarket(); err != nil {
		return models.MarketMetrics{}, err
	}
	if err := s.GeneratePopulation(); err != nil {
		return models.MarketMetrics{}, err
	}
	if err := s.AccumulateAllSavings(); err != nil {
		return models.MarketMetrics{}, err
	}
	if err := s.ClearMarket(); err != nil {
		return models.MarketMetrics{}, err
	}
	return s.Metrics()
}

// Summary converts a completed run into its persistable form.
func (s *Simulation) Summary() (*models.RunSummary, error) {
	metrics, err := s.Metrics()
	if err != nil {
		return nil, err
	}
	return &models.RunSummary{
		RunID:            metrics.RunID,
		Mechanism:        metrics.Mechanism,
		Consumers:        metrics.Consumers,
		Houses:           metrics.Houses,
		HousesSold:       metrics.HousesSold,
		SkippedRecords:   metrics.SkippedRecords,
		OwnershipRate:    metrics.OwnershipRate,
		AvailabilityRate: metrics.AvailabilityRate,
	}, nil
}
