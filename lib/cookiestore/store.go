package cookiestore

import (
	"context"
	"database/sql"

	"mybest-backend/lib/timezone"

	_ "modernc.org/sqlite"
)

// SessionCookieName is the cookie the portal issues for an
// authenticated session.
const SessionCookieName = "mybest_session"

const Schema = `
CREATE TABLE IF NOT EXISTS cookies (
	host TEXT NOT NULL,
	name TEXT NOT NULL,
	value TEXT NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0,
	domain TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL DEFAULT '/',
	secure INTEGER NOT NULL DEFAULT 0,
	http_only INTEGER NOT NULL DEFAULT 0,
	host_only INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (host, name)
);
`

type Cookie struct {
	Name  string
	Value string
	// unix seconds, 0 means no expiry
	ExpiresAt int64
	Domain    string
	Path      string
	Secure    bool
	HttpOnly  bool
	HostOnly  bool
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// SaveCookies upserts the given cookies for a host, last write wins
// per cookie name. Cookies for other hosts are untouched.
func (s Store) SaveCookies(ctx context.Context, host string, cookies []Cookie) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, c := range cookies {
		_, err := tx.ExecContext(
			ctx,
			`INSERT INTO cookies (host, name, value, expires_at, domain, path, secure, http_only, host_only)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (host, name) DO UPDATE SET
				value = excluded.value,
				expires_at = excluded.expires_at,
				domain = excluded.domain,
				path = excluded.path,
				secure = excluded.secure,
				http_only = excluded.http_only,
				host_only = excluded.host_only`,
			host, c.Name, c.Value, c.ExpiresAt, c.Domain, c.Path,
			c.Secure, c.HttpOnly, c.HostOnly,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// CookiesFor returns the unexpired cookies for a host. Expired rows are
// deleted on the way out so persisted state never outlives the session
// it belongs to.
func (s Store) CookiesFor(ctx context.Context, host string) ([]Cookie, error) {
	now := timezone.Now().Unix()

	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM cookies WHERE host = ? AND expires_at != 0 AND expires_at <= ?`,
		host, now,
	)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT name, value, expires_at, domain, path, secure, http_only, host_only
		FROM cookies WHERE host = ? ORDER BY name`,
		host,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Cookie
	for rows.Next() {
		var c Cookie
		err := rows.Scan(
			&c.Name, &c.Value, &c.ExpiresAt, &c.Domain, &c.Path,
			&c.Secure, &c.HttpOnly, &c.HostOnly,
		)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// HasSession reports whether an unexpired portal session cookie exists
// for the host.
func (s Store) HasSession(ctx context.Context, host string) (bool, error) {
	now := timezone.Now().Unix()

	var count int
	err := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM cookies
		WHERE host = ? AND name = ? AND (expires_at = 0 OR expires_at > ?)`,
		host, SessionCookieName, now,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Clear drops every stored cookie, used on logout.
func (s Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cookies`)
	return err
}
