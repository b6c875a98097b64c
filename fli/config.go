package fli

import "fmt"

// Double-quote reading modes.
const (
	DoubleQuotesString = "string"
	DoubleQuotesCodes  = "codes"
	DoubleQuotesChars  = "chars"
)

// Unknown-predicate behaviors.
const (
	UnknownError = "error"
	UnknownFail  = "fail"
)

// Config tunes a machine. The zero value is usable: unlimited iterations,
// unlimited term refs, strings for double quotes, errors for unknown
// predicates, no debug trace.
type Config struct {
	// IterLimit bounds the number of solver steps per NextSolution call.
	// Zero means unlimited.
	IterLimit int `yaml:"iter_limit"`
	// MaxRefs caps the term-ref stack. Zero means unlimited.
	MaxRefs int `yaml:"max_refs"`
	// DoubleQuotes selects how "..." literals read: string, codes or chars.
	DoubleQuotes string `yaml:"double_quotes"`
	// Unknown selects what calling an undefined predicate does: error
	// raises existence_error, fail silently fails.
	Unknown string `yaml:"unknown"`
	// DebugFile receives a JSONL trace of solver ports when set.
	DebugFile string `yaml:"debug_file"`
}

func (cfg Config) withDefaults() Config {
	if cfg.DoubleQuotes == "" {
		cfg.DoubleQuotes = DoubleQuotesString
	}
	if cfg.Unknown == "" {
		cfg.Unknown = UnknownError
	}
	return cfg
}

// Validate reports the first invalid field, if any.
func (cfg Config) Validate() error {
	switch cfg.DoubleQuotes {
	case "", DoubleQuotesString, DoubleQuotesCodes, DoubleQuotesChars:
	default:
		return fmt.Errorf("config: invalid double_quotes %q", cfg.DoubleQuotes)
	}
	switch cfg.Unknown {
	case "", UnknownError, UnknownFail:
	default:
		return fmt.Errorf("config: invalid unknown %q", cfg.Unknown)
	}
	if cfg.IterLimit < 0 {
		return fmt.Errorf("config: negative iter_limit %d", cfg.IterLimit)
	}
	if cfg.MaxRefs < 0 {
		return fmt.Errorf("config: negative max_refs %d", cfg.MaxRefs)
	}
	return nil
}
