package vkframe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.FramesInFlight)
	assert.Equal(t, "last", cfg.AdapterPolicy)
}

func TestParseConfigOverlaysDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
app_name = "triangle"
width = 1024
adapter_policy = "best"
frames_in_flight = 2
clear_color = [0.1, 0.2, 0.3, 1.0]
`))
	require.NoError(t, err)

	assert.Equal(t, "triangle", cfg.AppName)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.Equal(t, "best", cfg.AdapterPolicy)
	assert.Equal(t, 2, cfg.FramesInFlight)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1.0}, cfg.ClearColor)
	assert.Equal(t, "shaders/vert.spv", cfg.VertexShader)
	assert.False(t, cfg.Debug)
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		msg  string
	}{
		{"unknown key", `fullscreen = true`, "decode config"},
		{"malformed", `width = `, "decode config"},
		{"zero width", `width = 0`, "invalid window size"},
		{"negative height", `height = -5`, "invalid window size"},
		{"no sync sets", `frames_in_flight = 0`, "frames_in_flight"},
		{"missing shader", `vertex_shader = ""`, "vertex_shader"},
		{"bad policy", `adapter_policy = "fastest"`, "fastest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.data))
			require.Error(t, err)
			assert.Equal(t, Configuration, KindOf(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vkframe.toml")
	require.NoError(t, os.WriteFile(path, []byte("debug = true\nlog_level = \"debug\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "debug", cfg.LogLevel)

	_, err = LoadConfig(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.Equal(t, Configuration, KindOf(err))
}
