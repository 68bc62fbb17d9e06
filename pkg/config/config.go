package config

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	dirName  = "ssh_ip_tunnel"
	fileName = "config.toml"
)

// Config is read once at startup. MaxRetries is reported but not enforced;
// tunnel creation is bounded by TunnelTimeoutSecs.
type Config struct {
	DefaultKeyPath     string `toml:"default_key_path"`
	DefaultPort        uint16 `toml:"default_port"`
	TunnelTimeoutSecs  uint64 `toml:"tunnel_timeout_secs"`
	MaxRetries         uint32 `toml:"max_retries"`
	SkipArchValidation bool   `toml:"skip_arch_validation"`
}

func Default() Config {
	return Config{
		DefaultKeyPath:     "~/.ssh/id_rsa.pub",
		DefaultPort:        2222,
		TunnelTimeoutSecs:  30,
		MaxRetries:         3,
		SkipArchValidation: false,
	}
}

func (c Config) TunnelTimeout() time.Duration {
	return time.Duration(c.TunnelTimeoutSecs) * time.Second
}

// DefaultPath is where Load looks when no explicit file is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, dirName, fileName), nil
}

// Load reads the config at path. With an empty path the default location is
// tried and built-in defaults are used when nothing is there. Fields missing
// from the file keep their defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		if _, err := os.Stat(defaultPath); err != nil {
			return Default(), nil
		}
		path = defaultPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "Failed to read config file %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config file %s", path)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, errors.Wrap(err, "Failed to parse config file")
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.TunnelTimeoutSecs == 0 {
		return errors.New("tunnel_timeout_secs must be greater than zero")
	}
	return nil
}

// Encode renders cfg as TOML, suitable for writing to DefaultPath.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
