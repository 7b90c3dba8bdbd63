// Package elearning scrapes the BSI e-learning portal. The portal has
// no api: every operation fetches server-rendered html (or the odd
// DataTables json endpoint) and extracts data with the parse package.
package elearning

import (
	"context"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"mybest-backend/lib/scrapers/elearning/core"
	"mybest-backend/lib/scrapers/elearning/parse"
	"mybest-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("mybest.lib.scrapers.elearning")

type Client struct {
	Core *core.Client
}

func NewClient(coreClient *core.Client) *Client {
	return &Client{Core: coreClient}
}

func (c *Client) host() string {
	u, err := url.Parse(c.Core.BaseUrl())
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// authedPage fetches a page that only renders when logged in. The
// portal answers expired sessions with a 200 login page instead of a
// 401, so that is what gets detected here.
func (c *Client) authedPage(ctx context.Context, path string) (string, error) {
	html, err := c.Core.PageWithFallback(ctx, path)
	if err != nil {
		return "", err
	}
	if parse.IsLoginPage(html) {
		return "", ErrSessionExpired
	}
	return html, nil
}

// Schedule scrapes the current class schedule, sorted by day of week.
func (c *Client) Schedule(ctx context.Context) ([]parse.Course, error) {
	ctx, span := tracer.Start(ctx, "Schedule")
	defer span.End()

	html, err := c.authedPage(ctx, "/sch")
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return nil, err
	}
	courses := parse.ParseSchedule(html)
	span.SetAttributes(attribute.Int("courses", len(courses)))
	return courses, nil
}

// ReplacementClasses scrapes one-off replacement sessions. The page
// uses the same card markup as the regular schedule.
func (c *Client) ReplacementClasses(ctx context.Context) ([]parse.Course, error) {
	ctx, span := tracer.Start(ctx, "ReplacementClasses")
	defer span.End()

	html, err := c.authedPage(ctx, "/kuliah-pengganti")
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return nil, err
	}
	return parse.ParseSchedule(html), nil
}

// AttendancePage is the state of a course's attendance screen. When no
// meeting is open for attendance the portal renders the page without
// the submission form.
type AttendancePage struct {
	Form      parse.AttendanceForm
	CanAttend bool
}

func (c *Client) AttendancePage(ctx context.Context, encryptedId string) (AttendancePage, error) {
	ctx, span := tracer.Start(ctx, "AttendancePage")
	defer span.End()

	html, err := c.authedPage(ctx, "/absen-mhs/"+url.PathEscape(encryptedId))
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return AttendancePage{}, err
	}

	form, ok := parse.ExtractAttendanceForm(html)
	if !ok {
		return AttendancePage{}, nil
	}
	return AttendancePage{Form: form, CanAttend: true}, nil
}

// AttendanceRecords fetches the attendance recap, a DataTables json
// endpoint rather than an html page.
func (c *Client) AttendanceRecords(ctx context.Context, encryptedId string) ([]parse.AttendanceRecord, error) {
	ctx, span := tracer.Start(ctx, "AttendanceRecords")
	defer span.End()

	path := fmt.Sprintf(
		"/rekap-side/%s?draw=1&start=0&length=100",
		url.PathEscape(encryptedId),
	)
	res, err := c.Core.Get(ctx, path, map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Accept":           "application/json, text/javascript, */*; q=0.01",
	})
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return nil, err
	}
	if parse.IsLoginPage(res.String()) {
		return nil, ErrSessionExpired
	}

	records := parse.ParseAttendanceRecords(res.Body())
	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

// Assignments scrapes the task list for a course.
func (c *Client) Assignments(ctx context.Context, encryptedId string) ([]parse.Assignment, error) {
	ctx, span := tracer.Start(ctx, "Assignments")
	defer span.End()

	html, err := c.authedPage(ctx, "/tugas/"+url.PathEscape(encryptedId))
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return nil, err
	}
	return parse.ParseAssignments(html), nil
}

// AssignmentGrades scrapes the grade table that shares the task page.
func (c *Client) AssignmentGrades(ctx context.Context, encryptedId string) ([]parse.AssignmentGrade, error) {
	ctx, span := tracer.Start(ctx, "AssignmentGrades")
	defer span.End()

	html, err := c.authedPage(ctx, "/tugas/"+url.PathEscape(encryptedId))
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return nil, err
	}
	return parse.ParseAssignmentGrades(html), nil
}

// AssignmentForm loads the hidden submission form for one assignment.
// submitRef is the href scraped off the task list.
func (c *Client) AssignmentForm(ctx context.Context, submitRef string) (parse.AssignmentForm, error) {
	ctx, span := tracer.Start(ctx, "AssignmentForm")
	defer span.End()

	html, err := c.authedPage(ctx, submitRef)
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return parse.AssignmentForm{}, err
	}

	form, ok := parse.ExtractAssignmentForm(html)
	if !ok {
		err := &ParseError{Op: "assignment form", Field: "hidden submission fields"}
		span.SetStatus(codes.Error, err.Error())
		return parse.AssignmentForm{}, err
	}
	return form, nil
}

// Profile scrapes the account settings page.
func (c *Client) Profile(ctx context.Context) (parse.Profile, error) {
	ctx, span := tracer.Start(ctx, "Profile")
	defer span.End()

	html, err := c.authedPage(ctx, "/profil")
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return parse.Profile{}, err
	}

	profile, ok := parse.ParseProfile(html)
	if !ok {
		err := &ParseError{Op: "profile", Field: "name"}
		span.SetStatus(codes.Error, err.Error())
		return parse.Profile{}, err
	}
	return profile, nil
}
