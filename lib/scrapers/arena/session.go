package arena

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// browserCookie is the shape produced by browser cookie-export extensions.
type browserCookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path"`
	ExpirationDate float64 `json:"expirationDate"`
	HttpOnly       bool    `json:"httpOnly"`
	Secure         bool    `json:"secure"`
}

// CredentialSet holds the session cookies for both the application host
// and the api host. It is a plain value so the pipeline can be tested
// without touching the filesystem.
type CredentialSet struct {
	AppHost string
	ApiHost string
	Cookies []*http.Cookie
}

type CredentialOptions struct {
	AppHost string
	ApiHost string
	// cookie names that must be present for the session to be usable
	Required []string
}

// LoadCredentials reads a browser-exported cookie file and filters it down
// to cookies scoped to the platform. Cookies are mirrored onto the api
// host since the browser export only carries the application domain.
func LoadCredentials(path string, opts CredentialOptions) (CredentialSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return CredentialSet{}, &AuthError{Reason: fmt.Sprintf("read cookie file: %s", err)}
	}

	var exported []browserCookie
	err = json.Unmarshal(raw, &exported)
	if err != nil {
		return CredentialSet{}, &AuthError{Reason: fmt.Sprintf("malformed cookie file: %s", err)}
	}

	base := baseDomain(opts.AppHost)
	now := time.Now()

	var cookies []*http.Cookie
	names := map[string]bool{}
	for _, c := range exported {
		// exact match or a subdomain, never a look-alike suffix
		domain := strings.TrimPrefix(c.Domain, ".")
		if domain != base && !strings.HasSuffix(domain, "."+base) {
			continue
		}
		if c.ExpirationDate > 0 {
			expires := time.Unix(int64(c.ExpirationDate), 0)
			if expires.Before(now) {
				slog.Warn("skipping expired cookie", "name", c.Name, "expired", expires)
				continue
			}
		}

		path := c.Path
		if path == "" {
			path = "/"
		}
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   opts.AppHost,
			Path:     path,
			HttpOnly: c.HttpOnly,
			Secure:   c.Secure,
		})
		// mirror onto the api host, the same session backs both
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   opts.ApiHost,
			Path:     path,
			HttpOnly: c.HttpOnly,
			Secure:   c.Secure,
		})
		names[c.Name] = true
	}

	if len(cookies) == 0 {
		return CredentialSet{}, &AuthError{
			Reason: fmt.Sprintf("no cookies in %s cover %s", path, base),
		}
	}
	for _, required := range opts.Required {
		if !names[required] {
			return CredentialSet{}, &AuthError{
				Reason: fmt.Sprintf("required cookie %q is missing", required),
			}
		}
	}

	slog.Info("loaded session cookies", "count", len(names), "domain", base)

	return CredentialSet{
		AppHost: opts.AppHost,
		ApiHost: opts.ApiHost,
		Cookies: cookies,
	}, nil
}

// baseDomain lops subdomains off a hostname, "arena.colosseum.org"
// becomes "colosseum.org".
func baseDomain(host string) string {
	parts := strings.Split(host, ".")
	if len(parts) <= 2 {
		return host
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
