package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/arko-chat/nativetoolkit/internal/credentials"
	"github.com/arko-chat/nativetoolkit/internal/dialogs"
)

const (
	appName    = "nativetoolkit"
	configFile = "config.json"

	simulatorSecretKey = "simulator_secret"
)

type Config struct {
	LogLevel      string   `json:"log_level"`
	DialogTimeout Duration `json:"dialog_timeout"`
	SimulatorAddr string   `json:"simulator_addr"`
	Locale        string   `json:"locale"`

	// SimulatorSecret signs simulator pairing tokens. It lives in the OS
	// keyring, never in the file.
	SimulatorSecret string `json:"-"`

	Path string `json:"-"`
}

// Duration is a time.Duration stored as a string such as "5m".
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func Defaults() Config {
	return Config{
		LogLevel:      "info",
		DialogTimeout: Duration(dialogs.DefaultTimeout),
		SimulatorAddr: "127.0.0.1:0",
	}
}

// Load reads the config file from the user config directory, writing one
// with defaults on first run.
func Load(logger *slog.Logger) (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(configDir, appName, configFile), credentials.Keyring{}, logger)
}

// LoadFrom is Load with an explicit file path and secret store.
func LoadFrom(path string, secrets credentials.Store, logger *slog.Logger) (*Config, error) {
	cfg := Defaults()
	cfg.Path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
		out, _ := json.MarshalIndent(cfg, "", "  ")
		if err := os.WriteFile(path, out, 0o600); err != nil {
			return nil, fmt.Errorf("config: write %s: %w", path, err)
		}
		logger.Info("generated new config", "path", path)
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.SimulatorSecret, err = secrets.Load(simulatorSecretKey)
	if err != nil {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
		cfg.SimulatorSecret = base64.StdEncoding.EncodeToString(secret)
		if err := secrets.Store(simulatorSecretKey, cfg.SimulatorSecret); err != nil {
			logger.Warn("simulator secret not persisted", "err", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("NATIVE_TOOLKIT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("NATIVE_TOOLKIT_DIALOG_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: NATIVE_TOOLKIT_DIALOG_TIMEOUT: %w", err)
		}
		cfg.DialogTimeout = Duration(d)
	}
	if v := os.Getenv("NATIVE_TOOLKIT_SIMULATOR_ADDR"); v != "" {
		cfg.SimulatorAddr = v
	}
	if v := os.Getenv("NATIVE_TOOLKIT_LOCALE"); v != "" {
		cfg.Locale = v
	}
	if v := os.Getenv("NATIVE_TOOLKIT_SIMULATOR_SECRET"); v != "" {
		cfg.SimulatorSecret = v
	}
	return nil
}

// HashKey decodes the simulator secret for token signing. A secret that is
// not base64 is used as raw bytes.
func (c *Config) HashKey() []byte {
	if key, err := base64.StdEncoding.DecodeString(c.SimulatorSecret); err == nil && len(key) > 0 {
		return key
	}
	return []byte(c.SimulatorSecret)
}
