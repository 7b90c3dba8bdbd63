package elearning

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"mybest-backend/lib/scrapers/elearning/parse"
)

type AttendanceStatus string

const (
	AttendanceOk           AttendanceStatus = "ok"
	AttendanceAlreadyTaken AttendanceStatus = "already_taken"
	AttendanceNotStarted   AttendanceStatus = "not_started"
	AttendanceClosed       AttendanceStatus = "closed"
	AttendanceFailed       AttendanceStatus = "failed"
)

// AttendanceResult is the portal's verdict on a submission. The portal
// answers every outcome with a 200 page, so the verdict comes from
// body markers rather than status codes.
type AttendanceResult struct {
	Status  AttendanceStatus
	Message string
}

// SubmitAttendance marks attendance for the open meeting of a course.
// The form must come from a fresh AttendancePage call since its tokens
// are single-use.
func (c *Client) SubmitAttendance(ctx context.Context, encryptedId string, form parse.AttendanceForm) (AttendanceResult, error) {
	ctx, span := tracer.Start(ctx, "SubmitAttendance")
	defer span.End()

	res, err := c.Core.PostForm(ctx, "/mhs-absen", map[string]string{
		"_token":    form.CsrfToken,
		"pertemuan": form.MeetingToken,
		"id":        encryptedId,
	}, map[string]string{
		"Referer":      c.Core.Resolve("/absen-mhs/" + url.PathEscape(encryptedId)),
		"X-CSRF-TOKEN": form.CsrfToken,
	})
	if err != nil {
		span.SetStatus(codes.Error, "post failed")
		span.RecordError(err)
		return AttendanceResult{}, err
	}

	body := res.String()
	if parse.IsLoginPage(body) {
		return AttendanceResult{}, ErrSessionExpired
	}
	return classifyAttendance(res.StatusCode(), body), nil
}

// classifyAttendance reads the portal's indonesian body markers in
// priority order; "already attended" pages also say "berhasil" further
// down, so the specific markers must win over the generic one.
func classifyAttendance(status int, body string) AttendanceResult {
	lower := strings.ToLower(body)
	switch {
	case strings.Contains(lower, "sudah absen"):
		return AttendanceResult{
			Status:  AttendanceAlreadyTaken,
			Message: "Kamu sudah absen untuk pertemuan ini",
		}
	case strings.Contains(lower, "belum dimulai"):
		return AttendanceResult{
			Status:  AttendanceNotStarted,
			Message: "Kelas belum dimulai",
		}
	case strings.Contains(lower, "berakhir"):
		return AttendanceResult{
			Status:  AttendanceClosed,
			Message: "Waktu absensi sudah berakhir",
		}
	case strings.Contains(lower, "berhasil") || (status >= 300 && status < 400):
		return AttendanceResult{
			Status:  AttendanceOk,
			Message: "Berhasil absen!",
		}
	default:
		return AttendanceResult{
			Status:  AttendanceFailed,
			Message: parse.ExtractErrorMessage(body, "Gagal absen"),
		}
	}
}

// SubmitAssignment turns in a link (google drive, docs, whatever the
// lecturer asked for) for an assignment.
func (c *Client) SubmitAssignment(ctx context.Context, form parse.AssignmentForm, link string) error {
	ctx, span := tracer.Start(ctx, "SubmitAssignment")
	defer span.End()

	res, err := c.Core.PostForm(ctx, "/assignment", map[string]string{
		"_token":   form.CsrfToken,
		"kd_mtk":   form.CourseCode,
		"id_tugas": form.AssignmentId,
		"nim":      form.StudentId,
		"kd_lokal": form.LocalClassCode,
		"isi":      link,
	}, map[string]string{
		"X-CSRF-TOKEN": form.CsrfToken,
	})
	if err != nil {
		span.SetStatus(codes.Error, "post failed")
		span.RecordError(err)
		return err
	}

	body := res.String()
	if parse.IsLoginPage(body) {
		return ErrSessionExpired
	}
	if res.StatusCode() >= 300 && res.StatusCode() < 400 {
		return nil
	}
	if parse.ExtractSuccessMessage(body) != "" {
		return nil
	}
	return fmt.Errorf("assignment submission rejected: %s",
		parse.ExtractErrorMessage(body, "unknown response"))
}

// DownloadAssignmentFile fetches an attached task file. ref is the
// DownloadRef scraped off the task list; the returned name is the
// filename the lecturer uploaded.
func (c *Client) DownloadAssignmentFile(ctx context.Context, ref string) (string, []byte, error) {
	ctx, span := tracer.Start(ctx, "DownloadAssignmentFile")
	defer span.End()

	token, id, filename, ok := parse.DecodeDownloadRef(ref)
	if !ok {
		return "", nil, fmt.Errorf("malformed download ref %q", ref)
	}

	res, err := c.Core.PostForm(ctx, "/download-file-tugas", map[string]string{
		"_token": token,
		"id":     id,
		"file":   filename,
	}, nil)
	if err != nil {
		span.SetStatus(codes.Error, "post failed")
		span.RecordError(err)
		return "", nil, err
	}

	if parse.IsLoginPage(res.String()) {
		return "", nil, ErrSessionExpired
	}
	if res.StatusCode() != 200 {
		return "", nil, fmt.Errorf("download failed with status %d", res.StatusCode())
	}
	return filename, res.Body(), nil
}

// UpdateProfile changes the display name and email on the account
// settings page.
func (c *Client) UpdateProfile(ctx context.Context, name string, email string) error {
	ctx, span := tracer.Start(ctx, "UpdateProfile")
	defer span.End()

	html, err := c.authedPage(ctx, "/profil")
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return err
	}
	token := parse.ExtractCsrfToken(html)
	if token == "" {
		return &ParseError{Op: "profile update", Field: "csrf token"}
	}

	res, err := c.Core.PostForm(ctx, "/foto-profil/update", map[string]string{
		"_token":  token,
		"_method": "patch",
		"name":    name,
		"email":   email,
	}, map[string]string{
		"Referer":      c.Core.Resolve("/profil"),
		"X-CSRF-TOKEN": token,
	})
	if err != nil {
		span.SetStatus(codes.Error, "post failed")
		span.RecordError(err)
		return err
	}

	if res.StatusCode() >= 400 {
		return fmt.Errorf("profile update rejected: %s",
			parse.ExtractErrorMessage(res.String(), fmt.Sprintf("status %d", res.StatusCode())))
	}
	return nil
}

// ChangePassword rotates the account password. The portal re-renders
// the settings page with an error banner when the current password is
// wrong or the new one fails validation.
func (c *Client) ChangePassword(ctx context.Context, currentPassword string, newPassword string) error {
	ctx, span := tracer.Start(ctx, "ChangePassword")
	defer span.End()

	html, err := c.authedPage(ctx, "/profil")
	if err != nil {
		span.SetStatus(codes.Error, "fetch failed")
		span.RecordError(err)
		return err
	}
	token := parse.ExtractCsrfToken(html)
	if token == "" {
		return &ParseError{Op: "password change", Field: "csrf token"}
	}

	res, err := c.Core.PostForm(ctx, "/profil/update", map[string]string{
		"_token":                token,
		"_method":               "patch",
		"current_password":      currentPassword,
		"password":              newPassword,
		"password_confirmation": newPassword,
	}, map[string]string{
		"Referer":      c.Core.Resolve("/profil"),
		"X-CSRF-TOKEN": token,
	})
	if err != nil {
		span.SetStatus(codes.Error, "post failed")
		span.RecordError(err)
		return err
	}

	body := res.String()
	if message := parse.ExtractErrorMessage(body, ""); message != "" {
		return fmt.Errorf("password change rejected: %s", message)
	}
	if res.StatusCode() >= 400 {
		return fmt.Errorf("password change rejected with status %d", res.StatusCode())
	}
	return nil
}
