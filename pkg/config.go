package dirauditor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-ini/ini"
)

// Config represents the dirauditor configuration file
type Config struct {
	configPath string
	ini        *ini.File
}

// SignatureConfig represents fingerprint signature configuration
type SignatureConfig struct {
	Length int // Bytes sampled from the middle of each file (default: 4)
}

// OutputConfig represents output format configuration
type OutputConfig struct {
	Format string // human or json
	Color  string // auto, always or never
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // 0=quiet, 1=basic, 2=detailed, 3=trace
	Debug string // Comma-separated debug flags
}

// ScanConfig represents scan filter configuration
type ScanConfig struct {
	Exclude []string // Regular expressions, one per exclude key
}

// SnapshotConfig represents how an unreadable previous snapshot is handled
type SnapshotConfig struct {
	OnCorrupt string // abort or rebaseline
}

// AllConfig represents all configuration options
type AllConfig struct {
	Signature *SignatureConfig
	Output    *OutputConfig
	Verbose   *VerboseConfig
	Scan      *ScanConfig
	Snapshot  *SnapshotConfig
}

// Values accepted for snapshot.on_corrupt
const (
	OnCorruptAbort      = "abort"
	OnCorruptRebaseline = "rebaseline"
)

// Exclude patterns may contain ; and # so inline comments are not recognised
var loadOptions = ini.LoadOptions{AllowShadows: true, IgnoreInlineComment: true}

// DefaultConfigDir returns the per-user configuration directory
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, "dirauditor"), nil
}

// LoadConfig loads configuration from configDir/config, creating the file
// with defaults if it does not exist
func LoadConfig(configDir string) (*Config, error) {
	configPath := filepath.Join(configDir, "config")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := &Config{configPath: configPath, ini: ini.Empty(loadOptions)}
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		return cfg, nil
	}

	return LoadConfigFile(configPath)
}

// LoadConfigFile loads an existing configuration file without creating it
func LoadConfigFile(configPath string) (*Config, error) {
	iniFile, err := ini.LoadSources(loadOptions, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}
	return &Config{configPath: configPath, ini: iniFile}, nil
}

// DefaultConfig returns an in-memory configuration holding the defaults
func DefaultConfig() *Config {
	cfg := &Config{ini: ini.Empty(loadOptions)}
	// Creating sections and keys on an empty file cannot fail
	_ = cfg.setDefaults()
	return cfg
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	defaults := []struct {
		section, key, value string
	}{
		{"signature", "length", strconv.Itoa(DefaultSignatureLength)},
		{"output", "format", "human"},
		{"output", "color", "auto"},
		{"verbose", "level", "0"},
		{"verbose", "debug", ""},
		{"scan", "exclude", ""},
		{"snapshot", "on_corrupt", OnCorruptAbort},
	}

	for _, d := range defaults {
		section, err := c.ini.NewSection(d.section)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", d.section, err)
		}
		if _, err := section.NewKey(d.key, d.value); err != nil {
			return fmt.Errorf("failed to set default %s.%s: %w", d.section, d.key, err)
		}
	}
	return nil
}

// GetSignatureConfig returns the signature configuration
func (c *Config) GetSignatureConfig() *SignatureConfig {
	signatureConfig := &SignatureConfig{
		Length: DefaultSignatureLength,
	}

	if c.ini.HasSection("signature") {
		section := c.ini.Section("signature")
		if section.HasKey("length") {
			if length, err := section.Key("length").Int(); err == nil {
				signatureConfig.Length = length
			}
		}
	}

	return signatureConfig
}

// GetOutputConfig returns the output configuration
func (c *Config) GetOutputConfig() *OutputConfig {
	outputConfig := &OutputConfig{
		Format: "human",
		Color:  "auto",
	}

	if c.ini.HasSection("output") {
		section := c.ini.Section("output")
		if section.HasKey("format") {
			outputConfig.Format = section.Key("format").String()
		}
		if section.HasKey("color") {
			outputConfig.Color = section.Key("color").String()
		}
	}

	return outputConfig
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// GetScanConfig returns the scan configuration. Every exclude key,
// including repeated ones, contributes one pattern.
func (c *Config) GetScanConfig() *ScanConfig {
	scanConfig := &ScanConfig{
		Exclude: make([]string, 0),
	}

	if c.ini.HasSection("scan") {
		section := c.ini.Section("scan")
		if section.HasKey("exclude") {
			for _, pattern := range section.Key("exclude").ValueWithShadows() {
				if pattern = strings.TrimSpace(pattern); pattern != "" {
					scanConfig.Exclude = append(scanConfig.Exclude, pattern)
				}
			}
		}
	}

	return scanConfig
}

// GetSnapshotConfig returns the snapshot configuration
func (c *Config) GetSnapshotConfig() *SnapshotConfig {
	snapshotConfig := &SnapshotConfig{
		OnCorrupt: OnCorruptAbort,
	}

	if c.ini.HasSection("snapshot") {
		section := c.ini.Section("snapshot")
		if section.HasKey("on_corrupt") {
			snapshotConfig.OnCorrupt = section.Key("on_corrupt").String()
		}
	}

	return snapshotConfig
}

// GetAllConfig returns all configuration options
func (c *Config) GetAllConfig() *AllConfig {
	return &AllConfig{
		Signature: c.GetSignatureConfig(),
		Output:    c.GetOutputConfig(),
		Verbose:   c.GetVerboseConfig(),
		Scan:      c.GetScanConfig(),
		Snapshot:  c.GetSnapshotConfig(),
	}
}

// Path returns the file the configuration is saved to, empty for in-memory configs
func (c *Config) Path() string {
	return c.configPath
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	if c.configPath == "" {
		return fmt.Errorf("configuration has no file path")
	}
	return c.ini.SaveTo(c.configPath)
}

// ApplyOverrides applies command-line overrides to the configuration.
// Accepts strings like "length:8", "format:json", "level:2", "exclude:\.git/".
// Exclude overrides add a pattern rather than replacing existing ones.
func (c *Config) ApplyOverrides(overrides []string) error {
	for _, override := range overrides {
		key, value, ok := strings.Cut(override, ":")
		if !ok {
			return fmt.Errorf("invalid override format '%s', expected 'key:value'", override)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "length":
			c.ini.Section("signature").Key("length").SetValue(value)
		case "format":
			c.ini.Section("output").Key("format").SetValue(value)
		case "color":
			c.ini.Section("output").Key("color").SetValue(value)
		case "level":
			c.ini.Section("verbose").Key("level").SetValue(value)
		case "debug":
			c.ini.Section("verbose").Key("debug").SetValue(value)
		case "exclude":
			if err := c.addExclude(value); err != nil {
				return err
			}
		case "on_corrupt":
			c.ini.Section("snapshot").Key("on_corrupt").SetValue(value)
		default:
			return fmt.Errorf("unsupported override key '%s' (supported: length, format, color, level, debug, exclude, on_corrupt)", key)
		}
	}

	return c.Validate()
}

// addExclude appends a pattern as a shadow of the exclude key
func (c *Config) addExclude(pattern string) error {
	section := c.ini.Section("scan")
	if !section.HasKey("exclude") || strings.TrimSpace(section.Key("exclude").String()) == "" {
		section.Key("exclude").SetValue(pattern)
		return nil
	}
	if err := section.Key("exclude").AddShadow(pattern); err != nil {
		return fmt.Errorf("failed to add exclude pattern: %w", err)
	}
	return nil
}

// Validate checks every configured value
func (c *Config) Validate() error {
	all := c.GetAllConfig()

	if c.ini.Section("signature").HasKey("length") {
		if _, err := c.ini.Section("signature").Key("length").Int(); err != nil {
			return fmt.Errorf("invalid signature length: %w", err)
		}
	}
	if c.ini.Section("verbose").HasKey("level") {
		if _, err := c.ini.Section("verbose").Key("level").Int(); err != nil {
			return fmt.Errorf("invalid verbose level: %w", err)
		}
	}
	if err := ValidateSignatureLength(all.Signature.Length); err != nil {
		return err
	}
	if err := ValidateOutputFormat(all.Output.Format); err != nil {
		return err
	}
	if err := ValidateColorMode(all.Output.Color); err != nil {
		return err
	}
	if err := ValidateVerboseLevel(all.Verbose.Level); err != nil {
		return err
	}
	for _, pattern := range all.Scan.Exclude {
		if err := ValidatePattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}
	return ValidateOnCorrupt(all.Snapshot.OnCorrupt)
}

// ValidateSignatureLength validates the number of signature bytes
func ValidateSignatureLength(length int) error {
	if length < 1 || length > 4096 {
		return fmt.Errorf("invalid signature length: %d (supported: 1-4096)", length)
	}
	return nil
}

// ValidateOutputFormat validates that an output format is supported
func ValidateOutputFormat(format string) error {
	switch strings.ToLower(format) {
	case "human", "json":
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s (supported: human, json)", format)
	}
}

// ValidateColorMode validates that a colour mode is supported
func ValidateColorMode(mode string) error {
	switch strings.ToLower(mode) {
	case "auto", "always", "never":
		return nil
	default:
		return fmt.Errorf("unsupported color mode: %s (supported: auto, always, never)", mode)
	}
}

// ValidateVerboseLevel validates that a verbose level is valid
func ValidateVerboseLevel(level int) error {
	if level < 0 || level > 3 {
		return fmt.Errorf("invalid verbose level: %d (supported: 0-3)", level)
	}
	return nil
}

// ValidateOnCorrupt validates the corrupt snapshot policy
func ValidateOnCorrupt(policy string) error {
	switch strings.ToLower(policy) {
	case OnCorruptAbort, OnCorruptRebaseline:
		return nil
	default:
		return fmt.Errorf("unsupported on_corrupt policy: %s (supported: abort, rebaseline)", policy)
	}
}
