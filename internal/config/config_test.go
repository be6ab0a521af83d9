package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/mytree/pkg/types"
)

// isolate clears every override so only the files under test apply.
func isolate(t *testing.T) string {
	t.Helper()
	for _, envs := range envBindings {
		for _, env := range envs {
			t.Setenv(env, "")
			os.Unsetenv(env)
		}
	}
	orig := DotEnvFile
	DotEnvFile = filepath.Join(t.TempDir(), ".env")
	t.Cleanup(func() { DotEnvFile = orig })
	return filepath.Join(t.TempDir(), "cfg")
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	dir := isolate(t)

	l, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultAPIBaseURL, l.APIBaseURL)
	assert.Equal(t, types.LanguageThai, l.Language)
	assert.Equal(t, types.DefaultDebounceMS, l.DebounceMS)
	assert.Equal(t, types.DefaultPageSize, l.PageSize)
	assert.Equal(t, Path(dir), l.Path)

	data, err := os.ReadFile(Path(dir))
	require.NoError(t, err)
	assert.Contains(t, string(data), "api_base_url: http://127.0.0.1:8000")
	assert.Contains(t, string(data), "# mytree client configuration")
}

func TestLoadKeepsExistingFile(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(Path(dir), []byte("api_base_url: https://trees.example.com/\nlanguage: en\npage_size: 50\n"), 0o644))

	l, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://trees.example.com", l.APIBaseURL, "trailing slash trimmed")
	assert.Equal(t, types.LanguageEnglish, l.Language)
	assert.Equal(t, 50, l.PageSize)
	assert.Equal(t, types.DefaultDebounceMS, l.DebounceMS)
}

func TestLoadEnvOverrides(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"native variable", map[string]string{"MYTREE_API_BASE_URL": "http://10.0.0.2:9000/"}, "http://10.0.0.2:9000"},
		{"legacy variable", map[string]string{"NEXT_PUBLIC_API_BASE_URL": "http://legacy:8000"}, "http://legacy:8000"},
		{"native wins", map[string]string{"MYTREE_API_BASE_URL": "http://a:1", "NEXT_PUBLIC_API_BASE_URL": "http://b:2"}, "http://a:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			l, err := Load(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, l.APIBaseURL)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(DotEnvFile, []byte("MYTREE_LANGUAGE=en\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MYTREE_LANGUAGE") })

	l, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, types.LanguageEnglish, l.Language)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := isolate(t)
	t.Setenv("MYTREE_LANGUAGE", "fr")
	_, err := Load(dir)
	assert.ErrorIs(t, err, types.ErrInvalidLanguage)

	dir = isolate(t)
	t.Setenv("MYTREE_API_BASE_URL", "ftp://nope")
	_, err = Load(dir)
	assert.ErrorIs(t, err, types.ErrAPIBaseURLInvalid)
}

func TestSetAndGet(t *testing.T) {
	dir := isolate(t)

	require.NoError(t, Set(dir, KeyLanguage, "en"))
	require.NoError(t, Set(dir, KeyPageSize, "40"))
	require.NoError(t, Set(dir, KeyAPIBaseURL, "https://api.example.com/"))

	l, err := Load(dir)
	require.NoError(t, err)
	for key, want := range map[string]string{
		KeyLanguage:   "en",
		KeyPageSize:   "40",
		KeyAPIBaseURL: "https://api.example.com",
		KeyDebounceMS: "300",
	} {
		got, err := l.Get(key)
		require.NoError(t, err)
		assert.Equal(t, want, got, key)
	}

	_, err = l.Get("colour")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestSetRejects(t *testing.T) {
	dir := isolate(t)
	assert.ErrorIs(t, Set(dir, "colour", "red"), ErrUnknownKey)
	assert.ErrorIs(t, Set(dir, KeyLanguage, "fr"), types.ErrInvalidLanguage)
	assert.ErrorIs(t, Set(dir, KeyPageSize, "0"), types.ErrValidation)
	assert.ErrorIs(t, Set(dir, KeyDebounceMS, "soon"), types.ErrValidation)
	assert.ErrorIs(t, Set(dir, KeyAPIBaseURL, ""), types.ErrAPIBaseURLEmpty)
}
