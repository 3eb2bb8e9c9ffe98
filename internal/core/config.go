package core

// PlayerID identifies a player inside a single level session.
type PlayerID string

// RuntimeConfig contains host-loop settings passed to a level session.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Host ticks per second (default 60)
	Seed     int64 // Seed for generated levels; 0 means derive from time
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     0,
	}
}

// TickMillis returns the duration of one host tick in milliseconds.
func (c RuntimeConfig) TickMillis() float64 {
	if c.TickRate <= 0 {
		return 1000.0 / 60
	}
	return 1000.0 / float64(c.TickRate)
}
