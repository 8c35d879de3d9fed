// Package env layers environment variables and a .env file over another
// config store.
//
// Every dotted key maps to a PAGEGEN_ variable: "llm.max_tokens" is read
// from PAGEGEN_LLM_MAX_TOKENS. The API key additionally falls back to the
// provider's conventional variable (GEMINI_API_KEY, OPENAI_API_KEY,
// ANTHROPIC_API_KEY). Precedence, highest first: process environment,
// .env file, wrapped store.
package env

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/ports/driven"
	"github.com/custodia-labs/pagegen/internal/logger"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// Prefix is prepended to every environment variable name.
const Prefix = "PAGEGEN_"

//nolint:gosec // G101: config key names, not credentials.
const (
	keyProvider = "llm.provider"
	keyAPIKey   = "llm.api_key"
)

// ConfigStore overlays environment values on a base store. Writes always go
// to the base store; an environment value keeps shadowing what was written.
type ConfigStore struct {
	base       driven.ConfigStore
	dotenvPath string
	lookupEnv  func(string) (string, bool)

	mu     sync.RWMutex
	dotenv map[string]string
}

// NewConfigStore wraps base. dotenvPath names an optional .env file; an
// empty path or a missing file is ignored.
func NewConfigStore(base driven.ConfigStore, dotenvPath string) (*ConfigStore, error) {
	s := &ConfigStore{
		base:       base,
		dotenvPath: dotenvPath,
		lookupEnv:  os.LookupEnv,
	}
	if err := s.loadDotenv(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) loadDotenv() error {
	values := map[string]string{}
	if s.dotenvPath != "" {
		read, err := godotenv.Read(s.dotenvPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Debug("No .env file at %s", s.dotenvPath)
		case err != nil:
			return err
		default:
			logger.Debug("Loaded %d values from %s", len(read), s.dotenvPath)
			values = read
		}
	}

	s.mu.Lock()
	s.dotenv = values
	s.mu.Unlock()
	return nil
}

// VarName returns the environment variable that overrides key.
func VarName(key string) string {
	return Prefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// lookup finds name in the process environment, then in the .env file.
func (s *ConfigStore) lookup(name string) (string, bool) {
	if v, ok := s.lookupEnv(name); ok {
		return v, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.dotenv[name]
	return v, ok
}

// Get returns the overriding environment string, or the base store's value.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := s.lookup(VarName(key)); ok {
		return v, true
	}
	if key == keyAPIKey {
		if v, ok := s.providerKey(); ok {
			return v, true
		}
	}
	return s.base.Get(key)
}

// providerKey reads the conventional API key variable of the effective provider.
func (s *ConfigStore) providerKey() (string, bool) {
	provider := domain.AIProvider(s.GetString(keyProvider))
	if provider == "" {
		provider = domain.DefaultSettings().LLM.Provider
	}
	name := provider.APIKeyEnv()
	if name == "" {
		return "", false
	}
	v, ok := s.lookup(name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, _ := s.Get(key)
	str, _ := val.(string)
	return str
}

// GetInt retrieves an integer configuration value. Environment strings are parsed.
func (s *ConfigStore) GetInt(key string) int {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// GetBool retrieves a boolean configuration value. Environment strings are parsed.
func (s *ConfigStore) GetBool(key string) bool {
	val, _ := s.Get(key)
	switch v := val.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	default:
		return false
	}
}

// GetStringSlice retrieves a string slice. Environment values are comma separated.
func (s *ConfigStore) GetStringSlice(key string) []string {
	if v, ok := s.lookup(VarName(key)); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return s.base.GetStringSlice(key)
}

// Set writes to the base store.
func (s *ConfigStore) Set(key string, value any) error {
	if _, ok := s.lookup(VarName(key)); ok {
		logger.Warn("%s is set in the environment and overrides the saved value", VarName(key))
	}
	return s.base.Set(key, value)
}

// Save persists the base store.
func (s *ConfigStore) Save() error {
	return s.base.Save()
}

// Load reloads the base store and the .env file.
func (s *ConfigStore) Load() error {
	if err := s.base.Load(); err != nil {
		return err
	}
	return s.loadDotenv()
}

// Path returns the base store's file path.
func (s *ConfigStore) Path() string {
	return s.base.Path()
}

// Overridden reports whether key currently comes from the environment.
func (s *ConfigStore) Overridden(key string) bool {
	if _, ok := s.lookup(VarName(key)); ok {
		return true
	}
	if key == keyAPIKey {
		_, ok := s.providerKey()
		return ok
	}
	return false
}
