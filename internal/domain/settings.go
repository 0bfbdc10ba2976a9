package domain

import "fmt"

// DurationMode selects how Journey.Duration is measured.
type DurationMode string

const (
	DurationBasedOnPoints  DurationMode = "BASED_ON_POINTS"
	DurationBasedOnJourney DurationMode = "BASED_ON_JOURNEY"
)

// ParseDurationMode converts a stored or user supplied name into a DurationMode.
func ParseDurationMode(s string) (DurationMode, error) {
	switch m := DurationMode(s); m {
	case DurationBasedOnPoints, DurationBasedOnJourney:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown duration mode %q", ErrValidation, s)
}

// Setting defaults and bounds.
const (
	DefaultDarkMode     = false
	DefaultMaxPhotos    = 4
	DefaultDurationMode = DurationBasedOnJourney

	MinMaxPhotos = 1
	MaxMaxPhotos = 10
)

// Settings is the process-wide set of user preferences. The three values are
// stored and updated independently of each other.
type Settings struct {
	DarkMode     bool         `json:"dark_mode"`
	MaxPhotos    int          `json:"max_photos_per_poi"`
	DurationMode DurationMode `json:"duration_mode"`
}

// DefaultSettings returns the values used when nothing has been stored yet.
func DefaultSettings() Settings {
	return Settings{
		DarkMode:     DefaultDarkMode,
		MaxPhotos:    DefaultMaxPhotos,
		DurationMode: DefaultDurationMode,
	}
}
