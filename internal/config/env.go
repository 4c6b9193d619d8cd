package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "TEXTCORE_"

type envSetter func(c *Config, value string) error

func stringSetter(field func(*Config) *string) envSetter {
	return func(c *Config, value string) error {
		*field(c) = value
		return nil
	}
}

func intSetter(field func(*Config) *int) envSetter {
	return func(c *Config, value string) error {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func durationSetter(field func(*Config) *Duration) envSetter {
	return func(c *Config, value string) error {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return err
		}
		*field(c) = Duration(d)
		return nil
	}
}

// envMapping maps variable names, without the prefix, to settings.
var envMapping = map[string]envSetter{
	"BUFFER_LINE_ENDING":     stringSetter(func(c *Config) *string { return &c.Buffer.LineEnding }),
	"BUFFER_SEARCH_TIMEOUT":  durationSetter(func(c *Config) *Duration { return &c.Buffer.SearchTimeout }),
	"BUFFER_ENCODING":        stringSetter(func(c *Config) *string { return &c.Buffer.Encoding }),
	"BUFFER_FOLLOW_DEBOUNCE": durationSetter(func(c *Config) *Duration { return &c.Buffer.FollowDebounce }),

	"SEARCH_TOKENIZER":             stringSetter(func(c *Config) *string { return &c.Search.Tokenizer }),
	"SEARCH_EXTRA_WORD_CHARACTERS": stringSetter(func(c *Config) *string { return &c.Search.ExtraWordCharacters }),
	"SEARCH_MAX_RESULTS":           intSetter(func(c *Config) *int { return &c.Search.MaxResults }),
	"SEARCH_SCORER":                stringSetter(func(c *Config) *string { return &c.Search.Scorer }),
	"SEARCH_LUA_SCRIPT":            stringSetter(func(c *Config) *string { return &c.Search.LuaScript }),
	"SEARCH_LUA_TIMEOUT":           durationSetter(func(c *Config) *Duration { return &c.Search.LuaTimeout }),

	"SEARCH_WEIGHTS_BASE":             intSetter(func(c *Config) *int { return &c.Search.Weights.Base }),
	"SEARCH_WEIGHTS_CONSECUTIVE":      intSetter(func(c *Config) *int { return &c.Search.Weights.Consecutive }),
	"SEARCH_WEIGHTS_WORD_BOUNDARY":    intSetter(func(c *Config) *int { return &c.Search.Weights.WordBoundary }),
	"SEARCH_WEIGHTS_PREFIX":           intSetter(func(c *Config) *int { return &c.Search.Weights.Prefix }),
	"SEARCH_WEIGHTS_EXACT_PREFIX":     intSetter(func(c *Config) *int { return &c.Search.Weights.ExactPrefix }),
	"SEARCH_WEIGHTS_GAP":              intSetter(func(c *Config) *int { return &c.Search.Weights.Gap }),
	"SEARCH_WEIGHTS_LEADING":          intSetter(func(c *Config) *int { return &c.Search.Weights.Leading }),
	"SEARCH_WEIGHTS_LENGTH_BONUS_MAX": intSetter(func(c *Config) *int { return &c.Search.Weights.LengthBonusMax }),

	"LOGGING_LEVEL": stringSetter(func(c *Config) *string { return &c.Logging.Level }),
	"LOG_LEVEL":     stringSetter(func(c *Config) *string { return &c.Logging.Level }),
}

// ApplyEnv overlays TEXTCORE_* variables onto cfg and validates it.
//
// When envFile is not empty it is read as a dotenv file first; a missing
// file is ignored. Process environment variables override values from the
// file. Unknown TEXTCORE_ variables are reported as ErrUnknownKey.
func ApplyEnv(cfg *Config, envFile string) error {
	vars := make(map[string]string)
	if envFile != "" {
		fileVars, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", envFile, err)
		}
		for k, v := range fileVars {
			vars[k] = v
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}
	if err := applyVars(cfg, vars); err != nil {
		return err
	}
	return cfg.Validate()
}

// ApplyEnvString overlays variables from dotenv formatted content.
func ApplyEnvString(cfg *Config, content string) error {
	vars, err := godotenv.Unmarshal(content)
	if err != nil {
		return fmt.Errorf("parsing env: %w", err)
	}
	if err := applyVars(cfg, vars); err != nil {
		return err
	}
	return cfg.Validate()
}

func applyVars(cfg *Config, vars map[string]string) error {
	names := make([]string, 0, len(vars))
	for name := range vars {
		if strings.HasPrefix(name, EnvPrefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		set, ok := envMapping[strings.TrimPrefix(name, EnvPrefix)]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownKey, name))
			continue
		}
		if err := set(cfg, vars[name]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
