// Package config provides configuration management for the gfaes CLI tool
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration structure
type Config struct {
	Version  int            `yaml:"version" json:"version"`
	Cipher   CipherConfig   `yaml:"cipher" json:"cipher"`
	Files    FilesConfig    `yaml:"files" json:"files"`
	Security SecurityConfig `yaml:"security" json:"security"`
	UI       UIConfig       `yaml:"ui" json:"ui"`
}

// CipherConfig selects the field and key size
type CipherConfig struct {
	Polynomial string `yaml:"polynomial" json:"polynomial"` // Default: 0x11B
	KeySize    int    `yaml:"key_size" json:"key_size"`     // Default: 32
	Workers    int    `yaml:"workers" json:"workers"`       // Parallel decrypt workers, 1 = sequential
}

// FilesConfig controls output file naming
type FilesConfig struct {
	EncryptedSuffix string `yaml:"encrypted_suffix" json:"encrypted_suffix"`
	DecryptedSuffix string `yaml:"decrypted_suffix" json:"decrypted_suffix"`
}

// SecurityConfig contains key derivation settings
type SecurityConfig struct {
	KDFIterations       int `yaml:"kdf_iterations" json:"kdf_iterations"`
	MinPassphraseLength int `yaml:"min_passphrase_length" json:"min_passphrase_length"`
}

// UIConfig contains user interface settings
type UIConfig struct {
	Format   string `yaml:"format" json:"format"` // hex, bin, dec
	UseColor bool   `yaml:"use_color" json:"use_color"`
}

// ConfigManager manages configuration loading and saving
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager loads the configuration at path, or at the default
// location when path is empty. A missing file yields the defaults.
func NewConfigManager(path string) (*ConfigManager, error) {
	path, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}

	cm := &ConfigManager{configPath: path}
	if err := cm.LoadConfig(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cm.config = DefaultConfig()
	}

	return cm, nil
}

// NewDefaultManager returns a manager for path holding the default
// configuration, without reading the file.
func NewDefaultManager(path string) (*ConfigManager, error) {
	path, err := ResolvePath(path)
	if err != nil {
		return nil, err
	}
	return &ConfigManager{configPath: path, config: DefaultConfig()}, nil
}

// ResolvePath returns path, or the default config location when it is empty.
func ResolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	return getConfigPath()
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Cipher: CipherConfig{
			Polynomial: "0x11B",
			KeySize:    32,
			Workers:    1,
		},
		Files: FilesConfig{
			EncryptedSuffix: ".enc",
			DecryptedSuffix: ".dec",
		},
		Security: SecurityConfig{
			KDFIterations:       100000,
			MinPassphraseLength: 8,
		},
		UI: UIConfig{
			Format:   "hex",
			UseColor: true,
		},
	}
}

// Path returns the file the manager reads and writes
func (cm *ConfigManager) Path() string {
	return cm.configPath
}

// LoadConfig loads the configuration from disk. Fields absent from the
// file keep their default values.
func (cm *ConfigManager) LoadConfig() error {
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return err
	}

	config := DefaultConfig()
	if isJSON(cm.configPath) {
		err = json.Unmarshal(data, config)
	} else {
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", cm.configPath, err)
	}

	cm.config = config
	return nil
}

// SaveConfig saves the configuration to disk
func (cm *ConfigManager) SaveConfig() error {
	configDir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := cm.Marshal()
	if err != nil {
		return err
	}

	if err := os.WriteFile(cm.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Marshal encodes the configuration in the format of the config path
func (cm *ConfigManager) Marshal() ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if isJSON(cm.configPath) {
		data, err = json.MarshalIndent(cm.config, "", "  ")
	} else {
		data, err = yaml.Marshal(cm.config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// Poly parses the configured irreducible polynomial
func (c *Config) Poly() (uint16, error) {
	return ParsePolynomial(c.Cipher.Polynomial)
}

// ParsePolynomial accepts hex (0x11B), binary (0b100011011) or decimal (283).
func ParsePolynomial(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid polynomial %q: %w", s, err)
	}
	if v < 0x100 || v > 0x1FF {
		return 0, fmt.Errorf("polynomial %#x is not of degree 8", v)
	}
	return uint16(v), nil
}

// Validate rejects settings the CLI cannot act on
func (c *Config) Validate() error {
	if _, err := c.Poly(); err != nil {
		return err
	}

	switch c.Cipher.KeySize {
	case 16, 24, 32:
	default:
		return fmt.Errorf("key_size must be 16, 24 or 32, got %d", c.Cipher.KeySize)
	}

	if c.Cipher.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Cipher.Workers)
	}

	if c.Files.EncryptedSuffix == "" || c.Files.DecryptedSuffix == "" {
		return fmt.Errorf("file suffixes cannot be empty")
	}
	if c.Files.EncryptedSuffix == c.Files.DecryptedSuffix {
		return fmt.Errorf("encrypted and decrypted suffixes must differ")
	}

	if c.Security.KDFIterations < 1000 {
		return fmt.Errorf("kdf_iterations must be at least 1000, got %d", c.Security.KDFIterations)
	}
	if c.Security.MinPassphraseLength < 0 {
		return fmt.Errorf("min_passphrase_length cannot be negative")
	}

	switch c.UI.Format {
	case "hex", "bin", "dec":
	default:
		return fmt.Errorf("format must be hex, bin or dec, got %q", c.UI.Format)
	}

	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// getConfigPath returns the configuration file path
func getConfigPath() (string, error) {
	// Check for custom config path
	if customPath := os.Getenv("GFAES_CONFIG"); customPath != "" {
		return customPath, nil
	}

	// Use XDG_CONFIG_HOME if set
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "gfaes", "config.yaml"), nil
	}

	// Default to ~/.config/gfaes/config.yaml
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "gfaes", "config.yaml"), nil
}
