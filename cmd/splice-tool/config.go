package main

import (
	"io/ioutil"

	"github.com/gravitational/trace"
	"gopkg.in/yaml.v2"

	"github.com/simonhull/tagsplice"
)

// Config holds the settings shared by every command. It is read from a YAML
// file and then overridden by command line flags.
type Config struct {
	// BufferSize is the transfer buffer size in bytes
	BufferSize int `yaml:"buffer_size"`
	// Progress prints progress updates to stderr
	Progress bool `yaml:"progress"`
	// Debug enables debug logging
	Debug bool `yaml:"debug"`
	// BackupSuffix, when set, keeps a copy of each file before editing it
	BackupSuffix string `yaml:"backup_suffix"`
	// PreserveModTime keeps the original modification time of edited files
	PreserveModTime bool `yaml:"preserve_mod_time"`
	// NoSync skips fsync after each edit
	NoSync bool `yaml:"no_sync"`
}

// LoadConfigFromFile loads the configuration from the given YAML file.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, trace.ConvertSystemError(err)
	}
	cfg := &Config{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, trace.WrapWithMessage(err, "parse config %v", path)
	}
	return cfg, nil
}

// NewDefaultConfig returns the configuration used without a config file.
func NewDefaultConfig() *Config {
	return &Config{
		BufferSize: 64 * 1024,
	}
}

// Merge overrides fields set in other.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.BufferSize != 0 {
		c.BufferSize = other.BufferSize
	}
	if other.BackupSuffix != "" {
		c.BackupSuffix = other.BackupSuffix
	}
	c.Progress = c.Progress || other.Progress
	c.Debug = c.Debug || other.Debug
	c.PreserveModTime = c.PreserveModTime || other.PreserveModTime
	c.NoSync = c.NoSync || other.NoSync
}

// Check returns an error if the configuration is unusable.
func (c *Config) Check() error {
	if c.BufferSize <= 0 {
		return trace.BadParameter("invalid buffer_size=%v: must be > 0", c.BufferSize)
	}
	if c.BufferSize > 1<<30 {
		return trace.BadParameter("invalid buffer_size=%v: must be at most 1GiB", c.BufferSize)
	}
	return nil
}

// editOptions translates the configuration for tagsplice.ReplaceFile.
func (c *Config) editOptions(opts ...tagsplice.Option) []tagsplice.EditOption {
	edit := []tagsplice.EditOption{tagsplice.WithSpliceOptions(opts...)}
	if c.BackupSuffix != "" {
		edit = append(edit, tagsplice.WithBackup(c.BackupSuffix))
	}
	if c.PreserveModTime {
		edit = append(edit, tagsplice.WithPreserveModTime())
	}
	if c.NoSync {
		edit = append(edit, tagsplice.WithoutSync())
	}
	return edit
}
