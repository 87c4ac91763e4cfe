// Package config persists the Tenor API key and a few optional settings in
// a per-user YAML file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/gifgrab/internal/logging"
	"github.com/erazemk/gifgrab/internal/model"
)

const (
	KeyAPIKey        = "api_key"
	KeySaveDir       = "save_dir"
	KeyContentFilter = "content_filter"
	KeyLocale        = "locale"
	KeyTimeout       = "timeout"
	KeyLogFile       = "log_file"
	KeyLogLevel      = "log_level"
)

const (
	DefaultContentFilter = "low"
	DefaultLocale        = "en_US"
	DefaultTimeout       = 10 * time.Second
)

// EnvPrefix is prepended to upper-cased keys, e.g. GIFGRAB_API_KEY.
const EnvPrefix = "GIFGRAB"

type Store struct {
	v    *viper.Viper
	path string
}

// Load reads the config file at path. A missing file is not an error; it
// is created by the first SetAPIKey.
func Load(path string) (*Store, error) {
	store := Blank(path)
	if err := readIfExists(store.v); err != nil {
		return nil, model.Errorf(model.KindConfig, "read config %s: %w", path, err)
	}
	return store, nil
}

// Blank returns a store for path that only sees defaults and the
// environment. It is used to rewrite a config file that no longer parses.
func Blank(path string) *Store {
	v := newViper(path)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault(KeyContentFilter, DefaultContentFilter)
	v.SetDefault(KeyLocale, DefaultLocale)
	v.SetDefault(KeyTimeout, DefaultTimeout.String())
	return &Store{v: v, path: path}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetConfigPermissions(0o600)
	return v
}

func readIfExists(v *viper.Viper) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
		return nil
	}
	return err
}

func (s *Store) Path() string {
	return s.path
}

// SetAPIKey writes key to the config file, keeping any other keys already
// stored there. A file that does not parse is replaced. Environment
// overrides and defaults are not persisted.
func (s *Store) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.Errorf(model.KindUsage, "api key must not be empty")
	}

	file := newViper(s.path)
	if err := readIfExists(file); err != nil {
		log := logging.New("config")
		log.Warn().Err(err).Str("path", s.path).Msg("existing config unreadable, other settings will be dropped")
		file = newViper(s.path)
	}
	file.Set(KeyAPIKey, key)

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return model.Errorf(model.KindIO, "create config dir: %w", err)
	}
	if err := file.WriteConfigAs(s.path); err != nil {
		return model.Errorf(model.KindIO, "failed to save config: %w", err)
	}
	s.v.Set(KeyAPIKey, key)
	return nil
}

func (s *Store) APIKey() string {
	return strings.TrimSpace(s.v.GetString(KeyAPIKey))
}

// RequireAPIKey returns the key or a config error naming the fix.
func (s *Store) RequireAPIKey() (string, error) {
	key := s.APIKey()
	if key == "" {
		return "", model.Errorf(model.KindConfig,
			"no API key configured; run `%s --set-api-key <key>` or set %s_API_KEY", model.AppName, EnvPrefix)
	}
	return key, nil
}

// SaveDir returns save_dir when set, else the user's pictures directory.
func (s *Store) SaveDir() (string, error) {
	if dir := strings.TrimSpace(s.v.GetString(KeySaveDir)); dir != "" {
		return expandHome(dir)
	}
	return PicturesDir()
}

func (s *Store) ContentFilter() string {
	return strings.ToLower(strings.TrimSpace(s.v.GetString(KeyContentFilter)))
}

func (s *Store) Locale() string {
	return strings.TrimSpace(s.v.GetString(KeyLocale))
}

func (s *Store) Timeout() (time.Duration, error) {
	raw := strings.TrimSpace(s.v.GetString(KeyTimeout))
	if raw == "" {
		return DefaultTimeout, nil
	}
	d, err := ParseDuration(raw)
	if err != nil {
		return 0, model.Errorf(model.KindConfig, "%s: %w", KeyTimeout, err)
	}
	if d == 0 {
		return DefaultTimeout, nil
	}
	return d, nil
}

func (s *Store) LogFile() string {
	p := strings.TrimSpace(s.v.GetString(KeyLogFile))
	if p == "" {
		return ""
	}
	if expanded, err := expandHome(p); err == nil {
		return expanded
	}
	return p
}

func (s *Store) LogLevel() string {
	return s.v.GetString(KeyLogLevel)
}

// Dump writes the effective settings as YAML with the API key masked.
func (s *Store) Dump(w io.Writer) error {
	settings := map[string]any{
		KeyAPIKey:        MaskKey(s.APIKey()),
		KeySaveDir:       s.v.GetString(KeySaveDir),
		KeyContentFilter: s.ContentFilter(),
		KeyLocale:        s.Locale(),
		KeyTimeout:       s.v.GetString(KeyTimeout),
		KeyLogFile:       s.v.GetString(KeyLogFile),
		KeyLogLevel:      s.LogLevel(),
	}
	if _, err := fmt.Fprintf(w, "# %s\n", s.path); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return err
	}
	return enc.Close()
}

func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}

// ParseDuration accepts Go durations ("1.5s") and bare seconds ("10").
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("empty duration")
	}
	if parsed, err := time.ParseDuration(raw); err == nil {
		if parsed < 0 {
			return 0, errors.New("negative duration")
		}
		return parsed, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, errors.New("invalid duration")
	}
	if secs*float64(time.Second) > math.MaxInt64 {
		return 0, errors.New("duration out of range")
	}
	if secs < 0 {
		return 0, errors.New("negative duration")
	}
	return time.Duration(secs * float64(time.Second)), nil
}
