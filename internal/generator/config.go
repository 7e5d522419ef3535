package generator

// Config drives the synthetic event log generator.
type Config struct {
	NumUsers        int
	NumBatchEvents  int
	NumStreamEvents int
	BefriendChance  float64 // probability an event is a befriend
	UnfriendChance  float64 // probability an event is an unfriend
	AnomalyChance   float64 // probability a purchase is an injected outlier
	BaseAmount      float64
	AmountJitter    float64 // uniform spread around BaseAmount
	AnomalyFactor   float64 // multiplier applied to outlier purchase amounts
	Degree          int     // D written to the batch log parameter line
	Window          int     // T written to the batch log parameter line
	Seed            int64
}

// DefaultConfig returns baseline settings that produce a connected network
// with a visible anomaly rate.
func DefaultConfig() Config {
	return Config{
		NumUsers:        500,
		NumBatchEvents:  10000,
		NumStreamEvents: 2000,
		BefriendChance:  0.15,
		UnfriendChance:  0.05,
		AnomalyChance:   0.01,
		BaseAmount:      50,
		AmountJitter:    30,
		AnomalyFactor:   25,
		Degree:          2,
		Window:          50,
		Seed:            42,
	}
}
