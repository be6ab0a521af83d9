package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty base url returns ErrAPIBaseURLEmpty",
			config:  Config{APIBaseURL: "  ", Language: LanguageThai},
			wantErr: ErrAPIBaseURLEmpty,
		},
		{
			name:    "relative url returns ErrAPIBaseURLInvalid",
			config:  Config{APIBaseURL: "/api", Language: LanguageThai},
			wantErr: ErrAPIBaseURLInvalid,
		},
		{
			name:    "ftp scheme returns ErrAPIBaseURLInvalid",
			config:  Config{APIBaseURL: "ftp://example.com", Language: LanguageThai},
			wantErr: ErrAPIBaseURLInvalid,
		},
		{
			name:    "unknown language returns ErrInvalidLanguage",
			config:  Config{APIBaseURL: DefaultAPIBaseURL, Language: "fr"},
			wantErr: ErrInvalidLanguage,
		},
		{
			name:   "valid defaults",
			config: Config{APIBaseURL: DefaultAPIBaseURL, Language: DefaultLanguage},
		},
		{
			name:   "https english",
			config: Config{APIBaseURL: "https://trees.example.com", Language: LanguageEnglish},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}
