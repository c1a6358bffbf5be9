package app

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zachfi/adtsinfo/modules/inspector"
)

func TestRegisterFlagsAndApplyDefaults(t *testing.T) {
	cfg := Config{}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg.RegisterFlagsAndApplyDefaults("", fs)

	require.NoError(t, fs.Parse([]string{
		"-inspector.paths=a.aac,b.aac",
		"-inspector.strict",
		"-inspector.format=yaml",
		"-log.level=debug",
	}))

	assert.Equal(t, Inspector, cfg.Target)
	assert.Equal(t, 3030, cfg.Server.HTTPListenPort)
	assert.Equal(t, []string{"a.aac", "b.aac"}, []string(cfg.Inspector.Paths))
	assert.True(t, cfg.Inspector.Strict)
	assert.Equal(t, inspector.FormatYAML, cfg.Inspector.Format)
	assert.Equal(t, time.Duration(0), cfg.Inspector.Interval)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adtsinfo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
target: all
log:
  level: warn
inspector:
  paths: /srv/audio,http://radio.example.com/live.pls
  format: yaml
  interval: 1m
  list-offsets: true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, All, cfg.Target)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"/srv/audio", "http://radio.example.com/live.pls"}, []string(cfg.Inspector.Paths))
	assert.Equal(t, time.Minute, cfg.Inspector.Interval)
	assert.True(t, cfg.Inspector.ListOffsets)
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adtsinfo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("inspector:\n  colour: blue\n"), 0o644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "failed to load yaml file")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
