// Package sync keeps the local cache in step with the portal. It owns
// the session lifecycle: logging in, noticing an expired session mid
// operation and re-logging in once when the user opted into that.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"mybest-backend/lib/coursestore"
	"mybest-backend/lib/prefstore"
	"mybest-backend/lib/scrapers/elearning"
	"mybest-backend/lib/scrapers/elearning/parse"
)

var tracer = otel.Tracer("services/sync")

// ErrReauthRequired means the session died and could not be revived
// automatically: either no credentials are stored or auto login is off.
var ErrReauthRequired = errors.New("session ended, please log in again")

type Service struct {
	client  *elearning.Client
	courses coursestore.Store
	prefs   prefstore.Store
}

func NewService(client *elearning.Client, courses coursestore.Store, prefs prefstore.Store) Service {
	return Service{
		client:  client,
		courses: courses,
		prefs:   prefs,
	}
}

// Login authenticates and remembers the credentials per the given
// preferences. The profile and schedule are refreshed eagerly so the
// cache is warm right after login.
func (s Service) Login(ctx context.Context, creds prefstore.Credentials) error {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	err := s.client.Login(ctx, creds.Username, creds.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "login failed")
		return err
	}

	err = s.prefs.SetCredentials(ctx, creds)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to store credentials")
		return err
	}

	// warm the cache; a failure here is not a failed login
	go func() {
		ctx := context.WithoutCancel(ctx)
		_, err := s.SyncProfile(ctx)
		if err != nil {
			slog.WarnContext(ctx, "post-login profile sync failed", "err", err)
		}
		_, err = s.SyncSchedule(ctx)
		if err != nil {
			slog.WarnContext(ctx, "post-login schedule sync failed", "err", err)
		}
	}()
	return nil
}

func (s Service) Logout(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Logout")
	defer span.End()

	err := s.client.Logout(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "logout failed")
		return err
	}
	return s.prefs.SetAutoLogin(ctx, false)
}

func (s Service) CheckSession(ctx context.Context) (bool, error) {
	return s.client.CheckSession(ctx)
}

// withRelogin runs op and, when the session expired underneath it,
// tries one silent re-login with the stored credentials before giving
// the operation a second and final shot.
func (s Service) withRelogin(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	if !errors.Is(err, elearning.ErrSessionExpired) {
		return err
	}

	creds, ok, credsErr := s.prefs.Credentials(ctx)
	if credsErr != nil {
		return credsErr
	}
	if !ok || !canAutoLogin(creds) {
		return ErrReauthRequired
	}

	slog.InfoContext(ctx, "session expired, attempting silent re-login",
		"username", creds.Username)
	loginErr := s.client.Login(ctx, creds.Username, creds.Password)
	if loginErr != nil {
		if errors.Is(loginErr, elearning.ErrCredentialRejected) {
			return fmt.Errorf("%w: stored credentials no longer work", ErrReauthRequired)
		}
		return loginErr
	}
	return op(ctx)
}

func canAutoLogin(creds prefstore.Credentials) bool {
	return creds.AutoLogin && creds.Password != ""
}

// SyncSchedule scrapes the schedule plus any replacement classes and
// replaces the cache. The cache is only touched on a clean scrape.
func (s Service) SyncSchedule(ctx context.Context) ([]parse.Course, error) {
	ctx, span := tracer.Start(ctx, "SyncSchedule")
	defer span.End()

	var courses []parse.Course
	err := s.withRelogin(ctx, func(ctx context.Context) error {
		scraped, err := s.client.Schedule(ctx)
		if err != nil {
			return err
		}
		replacements, err := s.client.ReplacementClasses(ctx)
		if err != nil {
			// replacement classes are a bonus, the page 404s outside
			// replacement periods
			slog.DebugContext(ctx, "replacement classes unavailable", "err", err)
		}
		courses = append(scraped, replacements...)
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape failed")
		return nil, err
	}

	err = s.courses.ReplaceAllCourses(ctx, courses)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache write failed")
		return nil, err
	}
	return courses, nil
}

// SyncProfile scrapes the account profile into the cache.
func (s Service) SyncProfile(ctx context.Context) (parse.Profile, error) {
	ctx, span := tracer.Start(ctx, "SyncProfile")
	defer span.End()

	var profile parse.Profile
	err := s.withRelogin(ctx, func(ctx context.Context) error {
		var err error
		profile, err = s.client.Profile(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scrape failed")
		return parse.Profile{}, err
	}

	err = s.courses.UpsertProfile(ctx, profile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "cache write failed")
		return parse.Profile{}, err
	}
	return profile, nil
}

// Attendance fetches the attendance screen state for a course.
func (s Service) Attendance(ctx context.Context, encryptedId string) (elearning.AttendancePage, error) {
	var page elearning.AttendancePage
	err := s.withRelogin(ctx, func(ctx context.Context) error {
		var err error
		page, err = s.client.AttendancePage(ctx, encryptedId)
		return err
	})
	return page, err
}

// AttendanceRecords fetches the recap for a course.
func (s Service) AttendanceRecords(ctx context.Context, encryptedId string) ([]parse.AttendanceRecord, error) {
	var records []parse.AttendanceRecord
	err := s.withRelogin(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.client.AttendanceRecords(ctx, encryptedId)
		return err
	})
	return records, err
}

// SubmitAttendance marks attendance and drops a notification into the
// cache so the outcome survives the session.
func (s Service) SubmitAttendance(ctx context.Context, encryptedId string) (elearning.AttendanceResult, error) {
	ctx, span := tracer.Start(ctx, "SubmitAttendance")
	defer span.End()

	var result elearning.AttendanceResult
	err := s.withRelogin(ctx, func(ctx context.Context) error {
		page, err := s.client.AttendancePage(ctx, encryptedId)
		if err != nil {
			return err
		}
		if !page.CanAttend {
			result = elearning.AttendanceResult{
				Status:  elearning.AttendanceNotStarted,
				Message: "Kelas belum dimulai",
			}
			return nil
		}
		result, err = s.client.SubmitAttendance(ctx, encryptedId, page.Form)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		return elearning.AttendanceResult{}, err
	}

	notifErr := s.courses.AppendNotification(ctx, "Absensi", result.Message)
	if notifErr != nil {
		slog.WarnContext(ctx, "failed to record attendance notification", "err", notifErr)
	}
	return result, nil
}

// Assignments fetches the task list for a course.
func (s Service) Assignments(ctx context.Context, encryptedId string) ([]parse.Assignment, error) {
	var assignments []parse.Assignment
	err := s.withRelogin(ctx, func(ctx context.Context) error {
		var err error
		assignments, err = s.client.Assignments(ctx, encryptedId)
		return err
	})
	return assignments, err
}

// AssignmentGrades fetches the grade table for a course.
func (s Service) AssignmentGrades(ctx context.Context, encryptedId string) ([]parse.AssignmentGrade, error) {
	var grades []parse.AssignmentGrade
	err := s.withRelogin(ctx, func(ctx context.Context) error {
		var err error
		grades, err = s.client.AssignmentGrades(ctx, encryptedId)
		return err
	})
	return grades, err
}

// SubmitAssignment loads the hidden form behind submitRef and posts
// the link in one go.
func (s Service) SubmitAssignment(ctx context.Context, submitRef string, link string) error {
	ctx, span := tracer.Start(ctx, "SubmitAssignment")
	defer span.End()

	err := s.withRelogin(ctx, func(ctx context.Context) error {
		form, err := s.client.AssignmentForm(ctx, submitRef)
		if err != nil {
			return err
		}
		return s.client.SubmitAssignment(ctx, form, link)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submission failed")
		return err
	}
	return nil
}

// DownloadAssignmentFile fetches a task attachment.
func (s Service) DownloadAssignmentFile(ctx context.Context, ref string) (string, []byte, error) {
	var name string
	var data []byte
	err := s.withRelogin(ctx, func(ctx context.Context) error {
		var err error
		name, data, err = s.client.DownloadAssignmentFile(ctx, ref)
		return err
	})
	return name, data, err
}
