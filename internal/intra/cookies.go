package intra

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"intracookie/internal/store"
)

// JarFromCookies loads cookies into a jar keyed by their own domain.
// fallbackHost is used for host-only cookies that carry no domain.
func JarFromCookies(cookies []store.Cookie, fallbackHost string) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	for _, c := range cookies {
		domain := strings.TrimPrefix(c.Domain, ".")
		if domain == "" {
			domain = fallbackHost
		}
		if domain == "" {
			continue
		}
		u, err := url.Parse("https://" + domain)
		if err != nil {
			continue
		}
		path := c.Path
		if path == "" {
			path = "/"
		}
		cookie := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			cookie.Expires = time.Unix(c.Expires, 0)
		}
		jar.SetCookies(u, []*http.Cookie{cookie})
	}
	return jar, nil
}
