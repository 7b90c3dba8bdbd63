package cookiestore

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"mybest-backend/lib/timezone"
)

// Jar adapts Store to http.CookieJar so the http client transparently
// persists every Set-Cookie it sees. Mutation is serialized so
// concurrent reads can share the one client safely.
//
// The scheme is deliberately ignored when matching cookies: the portal
// flips between http and https for the same host and the session must
// survive the flip.
type Jar struct {
	store Store
	mu    sync.Mutex
}

func NewJar(store Store) *Jar {
	return &Jar{store: store}
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	stored := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c.MaxAge < 0 {
			continue
		}
		var expiresAt int64
		if c.MaxAge > 0 {
			expiresAt = timezone.Now().Unix() + int64(c.MaxAge)
		} else if !c.Expires.IsZero() {
			expiresAt = c.Expires.Unix()
		}
		stored = append(stored, Cookie{
			Name:      c.Name,
			Value:     c.Value,
			ExpiresAt: expiresAt,
			Domain:    c.Domain,
			Path:      c.Path,
			Secure:    c.Secure,
			HttpOnly:  c.HttpOnly,
			HostOnly:  c.Domain == "",
		})
	}

	err := j.store.SaveCookies(context.Background(), u.Hostname(), stored)
	if err != nil {
		slog.Error("failed to persist cookies", "host", u.Hostname(), "err", err)
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	stored, err := j.store.CookiesFor(context.Background(), u.Hostname())
	if err != nil {
		slog.Error("failed to load cookies", "host", u.Hostname(), "err", err)
		return nil
	}

	out := make([]*http.Cookie, len(stored))
	for i, c := range stored {
		out[i] = &http.Cookie{Name: c.Name, Value: c.Value}
	}
	return out
}
