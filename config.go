package vkframe

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

// Config is the engine configuration, usually decoded from a TOML file.
type Config struct {
	AppName        string     `toml:"app_name"`
	Width          int        `toml:"width"`
	Height         int        `toml:"height"`
	Debug          bool       `toml:"debug"`
	VertexShader   string     `toml:"vertex_shader"`
	FragmentShader string     `toml:"fragment_shader"`
	AdapterPolicy  string     `toml:"adapter_policy"`
	FramesInFlight int        `toml:"frames_in_flight"`
	ClearColor     [4]float32 `toml:"clear_color"`
	LogLevel       string     `toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		AppName:        "vkframe",
		Width:          800,
		Height:         600,
		VertexShader:   "shaders/vert.spv",
		FragmentShader: "shaders/frag.spv",
		AdapterPolicy:  "last",
		FramesInFlight: 1,
		ClearColor:     [4]float32{0, 0, 0, 1},
		LogLevel:       "info",
	}
}

// LoadConfig reads path and overlays its values on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, configError("read config", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML data over the defaults. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, configError("decode config", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return configError("validate config", errors.Errorf("invalid window size %dx%d", c.Width, c.Height))
	case c.FramesInFlight < 1:
		return configError("validate config", errors.Errorf("frames_in_flight must be at least 1, got %d", c.FramesInFlight))
	case c.VertexShader == "" || c.FragmentShader == "":
		return configError("validate config", errors.New("vertex_shader and fragment_shader are required"))
	}
	if _, err := ParseAdapterPolicy(c.AdapterPolicy); err != nil {
		return err
	}
	return nil
}
