package assets

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/facetrack/engine/math"
)

// Duration reads Go duration strings such as "500ms" from TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// RGBA colour with components in [0, 1].
type RGBA [4]float32

// Colour converts c, clamping every component into [0, 1].
func (c RGBA) Colour() math.Colour {
	return math.NewVec4Create(
		math.Clamp(c[0], 0, 1),
		math.Clamp(c[1], 0, 1),
		math.Clamp(c[2], 0, 1),
		math.Clamp(c[3], 0, 1),
	)
}

type Colors struct {
	Wireframe          RGBA `toml:"wireframe"`
	WireframeSpecial   RGBA `toml:"wireframe_special"`
	Pin                RGBA `toml:"pin"`
	SelectedPin        RGBA `toml:"selected_pin"`
	CurrentPin         RGBA `toml:"current_pin"`
	SurfacePoint       RGBA `toml:"surface_point"`
	SurfacePointActive RGBA `toml:"surface_point_active"`
	Residual           RGBA `toml:"residual"`
}

/**
 * @brief User preferences of the tracker. Every field has a default, so a
 * settings file only needs to list what it changes.
 */
type Settings struct {
	LogLevel string `toml:"log_level"`
	// PinSize is the on-screen pin radius in pixels.
	PinSize float32 `toml:"pin_size"`
	// PinSensitivity is the picking radius in pixels.
	PinSensitivity float32 `toml:"pin_sensitivity"`
	// WatchdogInterval is how often the session token is checked.
	WatchdogInterval Duration `toml:"watchdog_interval"`
	Colors           Colors   `toml:"colors"`
}

func DefaultSettings() *Settings {
	return &Settings{
		LogLevel:         "info",
		PinSize:          7.0,
		PinSensitivity:   16.0,
		WatchdogInterval: Duration(500 * time.Millisecond),
		Colors: Colors{
			Wireframe:          RGBA{0.0, 1.0, 0.0, 0.4},
			WireframeSpecial:   RGBA{1.0, 0.0, 0.0, 0.4},
			Pin:                RGBA{1.0, 0.0, 0.0, 1.0},
			SelectedPin:        RGBA{1.0, 1.0, 0.0, 1.0},
			CurrentPin:         RGBA{0.0, 1.0, 1.0, 1.0},
			SurfacePoint:       RGBA{0.0, 0.0, 1.0, 0.5},
			SurfacePointActive: RGBA{1.0, 0.0, 1.0, 1.0},
			Residual:           RGBA{0.0, 1.0, 1.0, 0.5},
		},
	}
}

// ToleranceDist2 is the squared picking radius in pixels.
func (s *Settings) ToleranceDist2() float32 {
	return s.PinSensitivity * s.PinSensitivity
}

func (s *Settings) Validate() error {
	if s.PinSize <= 0 {
		return fmt.Errorf("pin_size must be > 0, got %f", s.PinSize)
	}
	if s.PinSensitivity <= 0 {
		return fmt.Errorf("pin_sensitivity must be > 0, got %f", s.PinSensitivity)
	}
	if s.WatchdogInterval <= 0 {
		return errors.New("watchdog_interval must be > 0")
	}
	return nil
}

// ParseSettings decodes TOML on top of the defaults.
func ParseSettings(data []byte) (*Settings, error) {
	s := DefaultSettings()
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// LoadSettings reads path. A missing file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, err
	}
	return ParseSettings(data)
}

func (s *Settings) Marshal() ([]byte, error) {
	return toml.Marshal(s)
}
