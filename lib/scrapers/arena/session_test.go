package arena

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeCookieFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.json")
	err := os.WriteFile(path, []byte(contents), 0o600)
	require.NoError(t, err)
	return path
}

var testCredentialOptions = CredentialOptions{
	AppHost: "arena.colosseum.org",
	ApiHost: "api.colosseum.org",
}

func TestLoadCredentials(t *testing.T) {
	path := writeCookieFile(t, `[
		{"name": "session-token", "value": "abc", "domain": ".colosseum.org", "path": "/"},
		{"name": "csrf", "value": "def", "domain": "arena.colosseum.org"},
		{"name": "unrelated", "value": "zzz", "domain": "example.com"}
	]`)

	creds, err := LoadCredentials(path, testCredentialOptions)
	require.NoError(t, err)

	// each platform cookie is mirrored onto the api host
	require.Len(t, creds.Cookies, 4)
	domains := map[string]int{}
	for _, c := range creds.Cookies {
		domains[c.Domain]++
		require.NotEmpty(t, c.Path)
	}
	require.Equal(t, 2, domains["arena.colosseum.org"])
	require.Equal(t, 2, domains["api.colosseum.org"])
}

func TestLoadCredentialsMissingFile(t *testing.T) {
	_, err := LoadCredentials(filepath.Join(t.TempDir(), "nope.json"), testCredentialOptions)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestLoadCredentialsMalformed(t *testing.T) {
	path := writeCookieFile(t, `{"not": "a list"}`)
	_, err := LoadCredentials(path, testCredentialOptions)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestLoadCredentialsWrongDomain(t *testing.T) {
	path := writeCookieFile(t, `[
		{"name": "session-token", "value": "abc", "domain": "example.com"}
	]`)
	_, err := LoadCredentials(path, testCredentialOptions)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestLoadCredentialsRejectsLookAlikeDomain(t *testing.T) {
	path := writeCookieFile(t, `[
		{"name": "session-token", "value": "abc", "domain": "evilcolosseum.org"}
	]`)
	_, err := LoadCredentials(path, testCredentialOptions)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestLoadCredentialsRequiredCookie(t *testing.T) {
	path := writeCookieFile(t, `[
		{"name": "csrf", "value": "def", "domain": ".colosseum.org"}
	]`)

	opts := testCredentialOptions
	opts.Required = []string{"session-token"}
	_, err := LoadCredentials(path, opts)
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestLoadCredentialsSkipsExpired(t *testing.T) {
	expired := float64(time.Now().Add(-time.Hour).Unix())
	path := writeCookieFile(t, `[
		{"name": "stale", "value": "old", "domain": ".colosseum.org", "expirationDate": `+
		formatFloat(expired)+`},
		{"name": "fresh", "value": "new", "domain": ".colosseum.org"}
	]`)

	creds, err := LoadCredentials(path, testCredentialOptions)
	require.NoError(t, err)
	for _, c := range creds.Cookies {
		require.NotEqual(t, "stale", c.Name)
	}
	require.Len(t, creds.Cookies, 2)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 0, 64)
}
