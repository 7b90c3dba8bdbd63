package elearning

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"mybest-backend/lib/scrapers/elearning/parse"
)

func TestSubmitAttendance(t *testing.T) {
	var gotForm map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /mhs-absen", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"_token":    r.PostForm.Get("_token"),
			"pertemuan": r.PostForm.Get("pertemuan"),
			"id":        r.PostForm.Get("id"),
		}
		fmt.Fprint(w, `<html><body><div class="alert-success">Berhasil absen!</div></body></html>`)
	})
	client := setupTestClient(t, mux)

	result, err := client.SubmitAttendance(context.Background(), "ENCBASISDATA", parse.AttendanceForm{
		CsrfToken:    "csrf-1",
		MeetingToken: "presensi-token-1",
	})
	require.NoError(t, err)
	require.Equal(t, AttendanceOk, result.Status)
	require.Equal(t, map[string]string{
		"_token":    "csrf-1",
		"pertemuan": "presensi-token-1",
		"id":        "ENCBASISDATA",
	}, gotForm)
}

func TestSubmitAttendanceMarkers(t *testing.T) {
	for _, tc := range []struct {
		body    string
		status  AttendanceStatus
		message string
	}{
		{
			// the "already attended" page still says "berhasil" in its
			// footer, the specific marker has to win
			body:    "<html><body>Anda sudah absen. Semoga berhasil!</body></html>",
			status:  AttendanceAlreadyTaken,
			message: "Kamu sudah absen untuk pertemuan ini",
		},
		{
			body:    "<html><body>Perkuliahan belum dimulai</body></html>",
			status:  AttendanceNotStarted,
			message: "Kelas belum dimulai",
		},
		{
			body:    "<html><body>Waktu absen telah berakhir</body></html>",
			status:  AttendanceClosed,
			message: "Waktu absensi sudah berakhir",
		},
		{
			body:   "<html><body>Absen berhasil dicatat</body></html>",
			status: AttendanceOk,
		},
		{
			body:    `<html><body><div class="alert-danger">Terjadi kesalahan</div></body></html>`,
			status:  AttendanceFailed,
			message: "Terjadi kesalahan",
		},
	} {
		result := classifyAttendance(200, tc.body)
		require.Equal(t, tc.status, result.Status, tc.body)
		if tc.message != "" {
			require.Equal(t, tc.message, result.Message, tc.body)
		}
	}
}

func TestSubmitAttendanceRedirectCountsAsSuccess(t *testing.T) {
	result := classifyAttendance(302, "")
	require.Equal(t, AttendanceOk, result.Status)
}

func TestAttendanceRecords(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rekap-side/ENCBASISDATA", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))
		require.Equal(t, "1", r.URL.Query().Get("draw"))
		require.Equal(t, "100", r.URL.Query().Get("length"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"draw": 1,
			"recordsTotal": 1,
			"recordsFiltered": 1,
			"data": [["1", "Hadir", "2026-03-04", "Basis Data", "3", "Normalisasi", "Bentuk normal 1-3"]]
		}`)
	})
	client := setupTestClient(t, mux)

	records, err := client.AttendanceRecords(context.Background(), "ENCBASISDATA")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Hadir", records[0].Status)
	require.Equal(t, "Basis Data", records[0].SubjectLabel)
}

func TestDownloadAssignmentFile(t *testing.T) {
	contents := []byte("%PDF-1.4 isi soal")
	mux := http.NewServeMux()
	mux.HandleFunc("POST /download-file-tugas", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "dl-token-1", r.PostForm.Get("_token"))
		require.Equal(t, "55", r.PostForm.Get("id"))
		require.Equal(t, "soal-pertemuan-3.pdf", r.PostForm.Get("file"))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(contents)
	})
	client := setupTestClient(t, mux)

	name, data, err := client.DownloadAssignmentFile(
		context.Background(),
		"dl-token-1|55|soal-pertemuan-3.pdf",
	)
	require.NoError(t, err)
	require.Equal(t, "soal-pertemuan-3.pdf", name)
	require.Equal(t, contents, data)
}

func TestDownloadAssignmentFileMalformedRef(t *testing.T) {
	client := setupTestClient(t, http.NewServeMux())

	_, _, err := client.DownloadAssignmentFile(context.Background(), "only-a-token")
	require.Error(t, err)
}

func TestSubmitAssignment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /assignment", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "tok", r.PostForm.Get("_token"))
		require.Equal(t, "MK001", r.PostForm.Get("kd_mtk"))
		require.Equal(t, "55", r.PostForm.Get("id_tugas"))
		require.Equal(t, "https://drive.google.com/file/d/xyz", r.PostForm.Get("isi"))
		http.Redirect(w, r, "/tugas/ENCBASISDATA", http.StatusFound)
	})
	client := setupTestClient(t, mux)

	err := client.SubmitAssignment(context.Background(), parse.AssignmentForm{
		CsrfToken:    "tok",
		CourseCode:   "MK001",
		AssignmentId: "55",
		StudentId:    "12345678",
	}, "https://drive.google.com/file/d/xyz")
	require.NoError(t, err)
}

func TestChangePasswordRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /profil", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>
<head><meta name="csrf-token" content="tok"></head>
<body><input type="text" name="name" value="Budi Santoso"></body></html>`)
	})
	mux.HandleFunc("POST /profil/update", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><div class="alert-danger">Password lama salah</div></body></html>`)
	})
	client := setupTestClient(t, mux)

	err := client.ChangePassword(context.Background(), "lama", "baru12345")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Password lama salah")
}
