package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucolog/glucolog/internal/domain"
)

func writeLocale(t *testing.T, dir, lang, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lang+".json"), []byte(content), 0644))
}

func loadBundle(t *testing.T) *Bundle {
	t.Helper()
	dir := t.TempDir()
	writeLocale(t, dir, "en", `{
		"login": {"title": "Sign in", "button": "Go"},
		"dashboard": {"greeting": "Hello"}
	}`)
	writeLocale(t, dir, "fr", `{
		"login": {"title": "Connexion"}
	}`)

	b, err := Load(dir)
	require.NoError(t, err)
	return b
}

func TestLookupDottedPath(t *testing.T) {
	b := loadBundle(t)
	assert.Equal(t, "Sign in", b.T(domain.LangEnglish, "login.title"))
	assert.Equal(t, "Connexion", b.T(domain.LangFrench, "login.title"))
}

func TestMissingPathReturnsPath(t *testing.T) {
	b := loadBundle(t)
	assert.Equal(t, "login.subtitle", b.T(domain.LangEnglish, "login.subtitle"))
	assert.Equal(t, "settings.theme", b.T(domain.LangEnglish, "settings.theme"))
	// Path through a leaf string also falls back.
	assert.Equal(t, "login.title.x", b.T(domain.LangEnglish, "login.title.x"))
}

func TestMissingLocaleFallsBackToEnglish(t *testing.T) {
	b := loadBundle(t)
	// ar.json was never written; fr.json lacks dashboard keys.
	assert.Equal(t, "Hello", b.T(domain.LangArabic, "dashboard.greeting"))
	assert.Equal(t, "Hello", b.T(domain.LangFrench, "dashboard.greeting"))
}

func TestLoadRequiresEnglish(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "fr", `{}`)
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en", `{not json`)
	_, err := Load(dir)
	assert.Error(t, err)
}
