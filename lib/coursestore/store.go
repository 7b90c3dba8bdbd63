// Package coursestore is the local cache of scraped portal data. The
// app renders from here first and refreshes from the portal in the
// background.
package coursestore

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"

	"mybest-backend/lib/scrapers/elearning/parse"
	"mybest-backend/lib/timezone"
)

const Schema = `
CREATE TABLE IF NOT EXISTS courses (
    identity        TEXT NOT NULL PRIMARY KEY,
    encrypted_id    TEXT NOT NULL,
    name            TEXT NOT NULL,
    day             TEXT NOT NULL,
    start_time      TEXT NOT NULL,
    end_time        TEXT NOT NULL,
    lecturer_code   TEXT NOT NULL,
    course_code     TEXT NOT NULL,
    credits         INTEGER NOT NULL,
    room            TEXT NOT NULL,
    practice_group  TEXT NOT NULL,
    merged_code     TEXT NOT NULL,
    classroom_link  TEXT NOT NULL,
    discussion_link TEXT NOT NULL,
    material_link   TEXT NOT NULL,
    assignment_link TEXT NOT NULL,
    sort_order      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS profile (
    id    INTEGER NOT NULL PRIMARY KEY CHECK (id = 1),
    name  TEXT NOT NULL,
    email TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS notifications (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    title      TEXT NOT NULL,
    body       TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`

type Notification struct {
	Id        int64
	Title     string
	Body      string
	CreatedAt time.Time
}

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// ReplaceAllCourses swaps the cached schedule for a fresh scrape in
// one transaction, so readers never observe a half-written schedule.
func (s Store) ReplaceAllCourses(ctx context.Context, courses []parse.Course) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM courses`)
	if err != nil {
		return err
	}

	for i, c := range courses {
		_, err := tx.ExecContext(ctx, `
INSERT INTO courses (
    identity, encrypted_id, name, day, start_time, end_time,
    lecturer_code, course_code, credits, room, practice_group,
    merged_code, classroom_link, discussion_link, material_link,
    assignment_link, sort_order
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (identity) DO NOTHING`,
			c.Identity(), c.EncryptedId, c.Name, c.Day, c.StartTime, c.EndTime,
			c.LecturerCode, c.CourseCode, c.Credits, c.Room, c.PracticeGroup,
			c.MergedCode, c.ClassroomLink, c.DiscussionLink, c.MaterialLink,
			c.AssignmentLink, i,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s Store) Courses(ctx context.Context) ([]parse.Course, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT encrypted_id, name, day, start_time, end_time, lecturer_code,
       course_code, credits, room, practice_group, merged_code,
       classroom_link, discussion_link, material_link, assignment_link
FROM courses
ORDER BY sort_order ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []parse.Course
	for rows.Next() {
		var c parse.Course
		err := rows.Scan(
			&c.EncryptedId, &c.Name, &c.Day, &c.StartTime, &c.EndTime,
			&c.LecturerCode, &c.CourseCode, &c.Credits, &c.Room,
			&c.PracticeGroup, &c.MergedCode, &c.ClassroomLink,
			&c.DiscussionLink, &c.MaterialLink, &c.AssignmentLink,
		)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (s Store) UpsertProfile(ctx context.Context, profile parse.Profile) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO profile (id, name, email)
VALUES (1, ?, ?)
ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email`,
		profile.Name, profile.Email,
	)
	return err
}

func (s Store) Profile(ctx context.Context) (parse.Profile, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT name, email FROM profile WHERE id = 1`)

	var p parse.Profile
	err := row.Scan(&p.Name, &p.Email)
	if err == sql.ErrNoRows {
		return parse.Profile{}, false, nil
	}
	if err != nil {
		return parse.Profile{}, false, err
	}
	return p, true, nil
}

func (s Store) AppendNotification(ctx context.Context, title string, body string) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO notifications (title, body, created_at)
VALUES (?, ?, ?)`,
		title, body, timezone.Now().Unix(),
	)
	return err
}

// Notifications returns newest first.
func (s Store) Notifications(ctx context.Context, limit int) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, body, created_at
FROM notifications
ORDER BY created_at DESC, id DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		var createdAt int64
		err := rows.Scan(&n.Id, &n.Title, &n.Body, &createdAt)
		if err != nil {
			return nil, err
		}
		n.CreatedAt = time.Unix(createdAt, 0).In(timezone.Location)
		out = append(out, n)
	}
	return out, rows.Err()
}
