package generator

// Config drives the synthetic dataset generator.
type Config struct {
	NumUsers              int
	MaxTxPerUser          int
	LegacyTimestampChance float64
	StringAmountChance    float64
	BadAmountChance       float64
	InactiveUserChance    float64
	EmptyUserChance       float64
	Currencies            []string
	Seed                  int64
}

// DefaultConfig returns baseline settings producing a dataset small enough
// to seed a Firestore emulator quickly while still exercising every legacy
// field encoding the aggregator has to cope with.
func DefaultConfig() Config {
	return Config{
		NumUsers:              200,
		MaxTxPerUser:          25,
		LegacyTimestampChance: 0.3,
		StringAmountChance:    0.2,
		BadAmountChance:       0.02,
		InactiveUserChance:    0.4,
		EmptyUserChance:       0.1,
		Currencies:            []string{"USD", "EUR", "GBP", "NGN", "KES", "INR"},
		Seed:                  42,
	}
}
