package inspector

import (
	"flag"
	"fmt"
	"time"

	"github.com/grafana/dskit/flagext"
	"github.com/zachfi/zkit/pkg/util"
)

// Sample sizing for stream URLs (sample-size):
// - ADTS frames are a few hundred bytes, so 256KiB covers several seconds of audio.
// - Upper bound: the sample is held in memory, clamped to 64MiB.
const (
	defaultSampleSize  = 256 * 1024 // 256 KiB
	maxSampleSize      = 64 * 1024 * 1024
	defaultMaxBodySize = 16 * 1024 * 1024 // 16 MiB
	defaultDialTimeout = 10 * time.Second
)

const (
	FormatText = "text"
	FormatYAML = "yaml"
)

type Config struct {
	Paths       flagext.StringSliceCSV `yaml:"paths,omitempty"`        // files, directories or ICY stream URLs
	Format      string                 `yaml:"format,omitempty"`       // text or yaml
	Strict      bool                   `yaml:"strict,omitempty"`       // stop a file at its first invalid header field
	ListOffsets bool                   `yaml:"list-offsets,omitempty"` // include every frame offset in the report
	Interval    time.Duration          `yaml:"interval,omitempty"`     // 0 inspects once and stops
	SampleSize  int                    `yaml:"sample-size,omitempty"`  // bytes captured from a stream URL
	DialTimeout time.Duration          `yaml:"dial-timeout,omitempty"`
	MaxBodySize int64                  `yaml:"max-body-size,omitempty"` // bytes accepted by POST /inspect
}

func (cfg *Config) RegisterFlagsAndApplyDefaults(prefix string, f *flag.FlagSet) {
	f.Var(&cfg.Paths, util.PrefixConfig(prefix, "paths"), "Comma separated files, directories or stream URLs to inspect. Positional arguments are appended.")
	f.StringVar(&cfg.Format, util.PrefixConfig(prefix, "format"), FormatText, "Report format: text or yaml.")
	f.BoolVar(&cfg.Strict, util.PrefixConfig(prefix, "strict"), false, "Stop inspecting a file at its first invalid header field and skip the frame count.")
	f.BoolVar(&cfg.ListOffsets, util.PrefixConfig(prefix, "list-offsets"), false, "Include the byte offset of every frame in the report.")
	f.DurationVar(&cfg.Interval, util.PrefixConfig(prefix, "interval"), 0, "Repeat the inspection on this interval. 0 inspects once and exits.")
	f.IntVar(&cfg.SampleSize, util.PrefixConfig(prefix, "sample-size"), defaultSampleSize, "Bytes of audio to capture from a stream URL.")
	f.DurationVar(&cfg.DialTimeout, util.PrefixConfig(prefix, "dial-timeout"), defaultDialTimeout, "Timeout for connecting to a stream URL and receiving its headers.")
	f.Int64Var(&cfg.MaxBodySize, util.PrefixConfig(prefix, "max-body-size"), defaultMaxBodySize, "Largest request body accepted by the inspect endpoint.")
}

func (cfg *Config) Validate() error {
	switch cfg.Format {
	case FormatText, FormatYAML:
	default:
		return fmt.Errorf("unknown format %q", cfg.Format)
	}
	if cfg.Interval < 0 {
		return fmt.Errorf("interval must not be negative")
	}
	return nil
}
