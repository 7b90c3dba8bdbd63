// Package prefstore persists login preferences. Whether remembering
// the password is wise is the user's call; auto login only works when
// they opt in.
package prefstore

import (
	"context"
	"database/sql"

	_ "modernc.org/sqlite"
)

const Schema = `
CREATE TABLE IF NOT EXISTS credentials (
    id          INTEGER NOT NULL PRIMARY KEY CHECK (id = 1),
    username    TEXT NOT NULL,
    password    TEXT NOT NULL,
    remember_me INTEGER NOT NULL,
    auto_login  INTEGER NOT NULL
);
`

type Credentials struct {
	Username   string
	Password   string
	RememberMe bool
	AutoLogin  bool
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// SetCredentials stores the last used login. The password is only
// written when RememberMe is set.
func (s Store) SetCredentials(ctx context.Context, creds Credentials) error {
	password := creds.Password
	if !creds.RememberMe {
		password = ""
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO credentials (id, username, password, remember_me, auto_login)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    username = excluded.username,
    password = excluded.password,
    remember_me = excluded.remember_me,
    auto_login = excluded.auto_login`,
		creds.Username, password, creds.RememberMe, creds.AutoLogin,
	)
	return err
}

func (s Store) Credentials(ctx context.Context) (Credentials, bool, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT username, password, remember_me, auto_login
FROM credentials WHERE id = 1`)

	var creds Credentials
	err := row.Scan(&creds.Username, &creds.Password, &creds.RememberMe, &creds.AutoLogin)
	if err == sql.ErrNoRows {
		return Credentials{}, false, nil
	}
	if err != nil {
		return Credentials{}, false, err
	}
	return creds, true, nil
}

func (s Store) SetAutoLogin(ctx context.Context, enabled bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE credentials SET auto_login = ? WHERE id = 1`, enabled)
	return err
}

func (s Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM credentials`)
	return err
}
