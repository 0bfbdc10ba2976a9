package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/pkordes/journeylog/internal/domain"
	"github.com/pkordes/journeylog/internal/repo"
	"github.com/pkordes/journeylog/internal/state"
)

// Keys under which settings are stored.
const (
	KeyDarkMode     = "dark_mode"
	KeyMaxPhotos    = "max_photos_per_poi"
	KeyDurationMode = "duration_mode"
)

// SettingsState holds one observable per setting.
type SettingsState struct {
	DarkMode     *state.Observable[bool]
	MaxPhotos    *state.Observable[int]
	DurationMode *state.Observable[domain.DurationMode]
}

// SettingsService reads and writes the typed user settings.
// Range checks belong to the caller; the service stores what it is given.
type SettingsService struct {
	repo  repo.SettingsRepo
	log   *slog.Logger
	state *SettingsState
}

// NewSettingsService constructs a SettingsService. The observables start at
// the defaults until Load or a getter reads the stored values.
func NewSettingsService(r repo.SettingsRepo, log *slog.Logger) *SettingsService {
	d := domain.DefaultSettings()
	return &SettingsService{
		repo: r,
		log:  log,
		state: &SettingsState{
			DarkMode:     state.New(d.DarkMode),
			MaxPhotos:    state.New(d.MaxPhotos),
			DurationMode: state.New(d.DurationMode),
		},
	}
}

// State returns the observables published by the service.
func (s *SettingsService) State() *SettingsState { return s.state }

// Load reads every setting and publishes it.
func (s *SettingsService) Load(ctx context.Context) error {
	_, err := s.Settings(ctx)
	return err
}

// Settings returns all three settings.
func (s *SettingsService) Settings(ctx context.Context) (domain.Settings, error) {
	dark, err := s.DarkMode(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	maxPhotos, err := s.MaxPhotos(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	mode, err := s.DurationMode(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	return domain.Settings{DarkMode: dark, MaxPhotos: maxPhotos, DurationMode: mode}, nil
}

// DarkMode returns the dark mode flag, false when unset.
func (s *SettingsService) DarkMode(ctx context.Context) (bool, error) {
	v, err := read(ctx, s, KeyDarkMode, domain.DefaultDarkMode, strconv.ParseBool)
	if err != nil {
		return false, wrap("service.SettingsService.DarkMode", err)
	}
	s.state.DarkMode.Set(v)
	return v, nil
}

// MaxPhotos returns the maximum number of photos per point of interest, 4 when unset.
func (s *SettingsService) MaxPhotos(ctx context.Context) (int, error) {
	v, err := read(ctx, s, KeyMaxPhotos, domain.DefaultMaxPhotos, strconv.Atoi)
	if err != nil {
		return 0, wrap("service.SettingsService.MaxPhotos", err)
	}
	s.state.MaxPhotos.Set(v)
	return v, nil
}

// DurationMode returns how journey durations are measured, BASED_ON_JOURNEY when unset.
func (s *SettingsService) DurationMode(ctx context.Context) (domain.DurationMode, error) {
	v, err := read(ctx, s, KeyDurationMode, domain.DefaultDurationMode, domain.ParseDurationMode)
	if err != nil {
		return "", wrap("service.SettingsService.DurationMode", err)
	}
	s.state.DurationMode.Set(v)
	return v, nil
}

// SetDarkMode stores the dark mode flag.
func (s *SettingsService) SetDarkMode(ctx context.Context, on bool) error {
	if err := s.repo.Set(ctx, KeyDarkMode, strconv.FormatBool(on)); err != nil {
		return wrap("service.SettingsService.SetDarkMode", err)
	}
	s.state.DarkMode.Set(on)
	return nil
}

// SetMaxPhotos stores the maximum number of photos per point of interest.
func (s *SettingsService) SetMaxPhotos(ctx context.Context, n int) error {
	if err := s.repo.Set(ctx, KeyMaxPhotos, strconv.Itoa(n)); err != nil {
		return wrap("service.SettingsService.SetMaxPhotos", err)
	}
	s.state.MaxPhotos.Set(n)
	return nil
}

// SetDurationMode stores the duration mode.
func (s *SettingsService) SetDurationMode(ctx context.Context, mode domain.DurationMode) error {
	if err := s.repo.Set(ctx, KeyDurationMode, string(mode)); err != nil {
		return wrap("service.SettingsService.SetDurationMode", err)
	}
	s.state.DurationMode.Set(mode)
	return nil
}

// read loads key and parses it. An absent key yields def; a value that does
// not parse also yields def and is logged.
func read[T any](ctx context.Context, s *SettingsService, key string, def T, parse func(string) (T, error)) (T, error) {
	raw, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	v, err := parse(raw)
	if err != nil {
		s.log.WarnContext(ctx, "malformed stored setting, using default", "key", key, "value", raw)
		return def, nil
	}
	return v, nil
}
