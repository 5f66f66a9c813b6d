package emulator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds host-level configuration: window/video presentation, audio
// output, input mapping and emulation/debug toggles. The core itself is
// configured only by sample rate (passed to New). cmd/gones reads the window
// scale and fullscreen flag, VSync and the audio settings; the other fields
// are stored, validated and written back but not read by cmd/gones.
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Audio     AudioConfig     `json:"audio"`
	Input     InputConfig     `json:"input"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	configPath string
	loaded     bool
}

// WindowConfig controls the presentation window.
type WindowConfig struct {
	Scale      int  `json:"scale"`
	Fullscreen bool `json:"fullscreen"`
}

// VideoConfig controls frame presentation.
type VideoConfig struct {
	VSync  bool   `json:"vsync"`
	Filter string `json:"filter"` // "nearest" or "linear"
}

// AudioConfig controls host audio playback.
type AudioConfig struct {
	Enabled    bool    `json:"enabled"`
	SampleRate int     `json:"sample_rate"`
	Volume     float32 `json:"volume"`
}

// KeyMapping maps NES buttons to ebiten key names for one controller port.
type KeyMapping struct {
	Up     string `json:"up"`
	Down   string `json:"down"`
	Left   string `json:"left"`
	Right  string `json:"right"`
	A      string `json:"a"`
	B      string `json:"b"`
	Start  string `json:"start"`
	Select string `json:"select"`
}

// InputConfig maps host keys to the two controller ports.
type InputConfig struct {
	Player1Keys KeyMapping `json:"player1_keys"`
	Player2Keys KeyMapping `json:"player2_keys"`
}

// EmulationConfig controls core-adjacent behavior the host decides, such as
// pacing; NTSC timing and the supported mapper set are fixed by the core.
type EmulationConfig struct {
	FrameRate        float64 `json:"frame_rate"`
	PauseOnFocusLoss bool    `json:"pause_on_focus_loss"`
}

// DebugConfig toggles diagnostic output.
type DebugConfig struct {
	ShowFPS       bool   `json:"show_fps"`
	EnableLogging bool   `json:"enable_logging"`
	LogLevel      string `json:"log_level"`
}

// PathsConfig names directories the host reads ROMs from and writes
// screenshots/logs to.
type PathsConfig struct {
	ROMs        string `json:"roms"`
	Screenshots string `json:"screenshots"`
	Logs        string `json:"logs"`
}

// NewConfig returns a Config populated with the default host settings.
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{Scale: 3, Fullscreen: false},
		Video:  VideoConfig{VSync: true, Filter: "nearest"},
		Audio:  AudioConfig{Enabled: true, SampleRate: 44100, Volume: 0.8},
		Input: InputConfig{
			Player1Keys: KeyMapping{
				Up: "W", Down: "S", Left: "A", Right: "D",
				A: "J", B: "K", Start: "Enter", Select: "Space",
			},
			Player2Keys: KeyMapping{
				Up: "Up", Down: "Down", Left: "Left", Right: "Right",
				A: "N", B: "M", Start: "RightShift", Select: "RightControl",
			},
		},
		Emulation: EmulationConfig{FrameRate: 60.0, PauseOnFocusLoss: true},
		Debug:     DebugConfig{LogLevel: "INFO"},
		Paths:     PathsConfig{ROMs: "./roms", Screenshots: "./screenshots", Logs: "./logs"},
	}
}

// LoadFromFile loads configuration from a JSON file, writing out the default
// configuration if the file does not yet exist.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		*c = *NewConfig()
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile writes configuration to a JSON file, creating its directory if
// necessary.
func (c *Config) SaveToFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	c.configPath = path
	return nil
}

func (c *Config) validate() error {
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		c.Audio.Volume = 0.8
	}
	if c.Emulation.FrameRate <= 0 {
		c.Emulation.FrameRate = 60.0
	}
	return nil
}

// WindowResolution returns the host window size for the configured scale.
func (c *Config) WindowResolution() (int, int) {
	return 256 * c.Window.Scale, 240 * c.Window.Scale
}

// IsLoaded reports whether the configuration came from an existing file
// rather than in-memory defaults.
func (c *Config) IsLoaded() bool { return c.loaded }

// DefaultConfigPath is where the CLI looks for a configuration file absent
// an explicit --config flag.
func DefaultConfigPath() string { return "./config/gones.json" }
