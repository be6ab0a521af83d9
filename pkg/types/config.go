package types

import (
	"fmt"
	"net/url"
	"strings"
)

// Supported interface languages.
const (
	LanguageThai    = "th"
	LanguageEnglish = "en"
)

// Client defaults.
const (
	DefaultAPIBaseURL = "http://127.0.0.1:8000"
	DefaultLanguage   = LanguageThai
	DefaultDebounceMS = 300
	DefaultPageSize   = 20
)

// Config holds the client settings resolved from config.yaml, the
// environment and flags.
type Config struct {
	APIBaseURL string `json:"api_base_url" yaml:"api_base_url"`
	Language   string `json:"language" yaml:"language"`
	DebounceMS int    `json:"debounce_ms" yaml:"debounce_ms"`
	PageSize   int    `json:"page_size" yaml:"page_size"`
}

// Validate checks that the Config is well-formed and returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return ErrAPIBaseURLEmpty
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrAPIBaseURLInvalid, c.APIBaseURL)
	}
	if !ValidLanguage(c.Language) {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, c.Language)
	}
	return nil
}

// ValidLanguage reports whether lang is a supported language code.
func ValidLanguage(lang string) bool {
	return lang == LanguageThai || lang == LanguageEnglish
}
