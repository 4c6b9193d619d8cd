package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/textcore/internal/logging"
)

// Config is the complete textcore configuration.
type Config struct {
	Buffer  BufferConfig  `toml:"buffer"`
	Search  SearchConfig  `toml:"search"`
	Logging LoggingConfig `toml:"logging"`
}

// BufferConfig holds text buffer settings.
type BufferConfig struct {
	// LineEnding is the ending assumed for text without one: "lf", "crlf" or "cr".
	LineEnding string `toml:"line_ending"`

	// SearchTimeout bounds a single regex evaluation. Zero disables it.
	SearchTimeout Duration `toml:"search_timeout"`

	// Encoding names the charset used to read and write files.
	Encoding string `toml:"encoding"`

	// FollowDebounce is the quiet period before a changed file is reloaded.
	FollowDebounce Duration `toml:"follow_debounce"`
}

// SearchConfig holds word search settings.
type SearchConfig struct {
	// Tokenizer selects word splitting: "class" or "segment".
	Tokenizer string `toml:"tokenizer"`

	// ExtraWordCharacters are treated as word characters in addition to
	// letters, digits and underscore.
	ExtraWordCharacters string `toml:"extra_word_characters"`

	// MaxResults caps word search results. Zero means no limit.
	MaxResults int `toml:"max_results"`

	// Scorer selects ranking: "weighted" or "lua".
	Scorer string `toml:"scorer"`

	// LuaScript is the path of the script used by the "lua" scorer.
	LuaScript string `toml:"lua_script"`

	// LuaTimeout bounds a single script call.
	LuaTimeout Duration `toml:"lua_timeout"`

	Weights Weights `toml:"weights"`
}

// Weights mirrors the weighted scorer's parameters.
type Weights struct {
	Base           int `toml:"base"`
	Consecutive    int `toml:"consecutive"`
	WordBoundary   int `toml:"word_boundary"`
	Prefix         int `toml:"prefix"`
	ExactPrefix    int `toml:"exact_prefix"`
	Gap            int `toml:"gap"`
	Leading        int `toml:"leading"`
	LengthBonusMax int `toml:"length_bonus_max"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level"`
}

// Duration is a time.Duration that decodes from strings like "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Buffer: BufferConfig{
			LineEnding:     "lf",
			SearchTimeout:  Duration(5 * time.Second),
			Encoding:       "UTF-8",
			FollowDebounce: Duration(100 * time.Millisecond),
		},
		Search: SearchConfig{
			Tokenizer:  "class",
			MaxResults: 100,
			Scorer:     "weighted",
			LuaTimeout: Duration(100 * time.Millisecond),
			Weights: Weights{
				Base:           100,
				Consecutive:    20,
				WordBoundary:   15,
				Prefix:         25,
				ExactPrefix:    50,
				Gap:            2,
				Leading:        1,
				LengthBonusMax: 20,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Clone returns a copy of c.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks every enumerated and bounded setting. All failures are
// joined into one error.
func (c *Config) Validate() error {
	var errs []error
	oneOf := func(key, value string, allowed ...string) {
		for _, a := range allowed {
			if strings.EqualFold(value, a) {
				return
			}
		}
		errs = append(errs, &ValidationError{
			Key:     key,
			Value:   fmt.Sprintf("%q", value),
			Message: "must be one of " + strings.Join(allowed, ", "),
		})
	}
	nonNegative := func(key string, v int64) {
		if v < 0 {
			errs = append(errs, &ValidationError{Key: key, Value: v, Message: "must not be negative"})
		}
	}

	oneOf("buffer.line_ending", c.Buffer.LineEnding, "lf", "crlf", "cr")
	nonNegative("buffer.search_timeout", int64(c.Buffer.SearchTimeout))
	nonNegative("buffer.follow_debounce", int64(c.Buffer.FollowDebounce))
	oneOf("search.tokenizer", c.Search.Tokenizer, "class", "segment")
	oneOf("search.scorer", c.Search.Scorer, "weighted", "lua")
	nonNegative("search.max_results", int64(c.Search.MaxResults))
	nonNegative("search.lua_timeout", int64(c.Search.LuaTimeout))
	if strings.EqualFold(c.Search.Scorer, "lua") && c.Search.LuaScript == "" {
		errs = append(errs, &ValidationError{
			Key:     "search.lua_script",
			Value:   `""`,
			Message: "required when search.scorer is lua",
		})
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		errs = append(errs, &ValidationError{
			Key:     "logging.level",
			Value:   fmt.Sprintf("%q", c.Logging.Level),
			Message: "must be one of debug, info, warn, error",
		})
	}
	return errors.Join(errs...)
}

// LogLevel returns the configured logging level.
func (c *Config) LogLevel() logging.Level {
	lvl, _ := logging.ParseLevel(c.Logging.Level)
	return lvl
}
