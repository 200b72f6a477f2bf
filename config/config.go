package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Server configuration
	Server struct {
		Port int `env:"SERVER_PORT" envDefault:"5250"`
	}

	// Data sources and sinks
	Data struct {
		// Path to the cleaned market dataset CSV
		CSVPath string `env:"DATA_CSV_PATH"`

		// Path to a sqlite dataset holding a properties table;
		// used when no CSV path is configured
		DatasetPath string `env:"DATA_DATASET_PATH"`

		// Path to the sqlite results database; empty disables persistence
		ResultsPath string `env:"DATA_RESULTS_PATH" envDefault:"database/results.db"`
	}

	// Simulation parameters
	Simulation struct {
		Consumers       int     `env:"SIM_CONSUMERS" envDefault:"200"`
		Years           int     `env:"SIM_YEARS" envDefault:"10"`
		IncomeMinimum   float64 `env:"SIM_INCOME_MIN" envDefault:"20000"`
		IncomeAverage   float64 `env:"SIM_INCOME_AVG" envDefault:"60000"`
		IncomeStdDev    float64 `env:"SIM_INCOME_STDDEV" envDefault:"20000"`
		IncomeMaximum   float64 `env:"SIM_INCOME_MAX" envDefault:"200000"`
		ChildrenMinimum int     `env:"SIM_CHILDREN_MIN" envDefault:"0"`
		ChildrenMaximum int     `env:"SIM_CHILDREN_MAX" envDefault:"5"`
		Mechanism       string  `env:"SIM_MECHANISM" envDefault:"income_descending"`
		DownPaymentRate float64 `env:"SIM_DOWN_PAYMENT_RATE" envDefault:"0.2"`
		SavingRate      float64 `env:"SIM_SAVING_RATE" envDefault:"0.3"`
		InterestRate    float64 `env:"SIM_INTEREST_RATE" envDefault:"0.05"`
		ReferenceYear   int     `env:"SIM_REFERENCE_YEAR" envDefault:"2024"`
		Seed            int64   `env:"SIM_SEED" envDefault:"42"`
	}

	// Sale-batch persistence configuration
	BatchPersistence struct {
		// Maximum number of sales per persisted batch
		BatchSize int `env:"BATCH_SIZE" envDefault:"100"`

		// Number of batches the queue may hold before Push fails
		BufferSize int `env:"BATCH_BUFFER_SIZE" envDefault:"50"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
