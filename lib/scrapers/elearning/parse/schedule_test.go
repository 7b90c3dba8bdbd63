package parse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/schedule.html
var scheduleFixture string

func TestParseMeetingTimeFormatInvariance(t *testing.T) {
	// both historical shapes of the schedule text must produce the
	// identical (day, start, end) triple
	cases := []string{
		"Senin, 08:00 - 10:30",
		"Senin - 08:00-10:30",
	}
	for _, c := range cases {
		day, start, end := parseMeetingTime(c)
		require.Equal(t, "Senin", day, c)
		require.Equal(t, "08:00", start, c)
		require.Equal(t, "10:30", end, c)
	}
}

func TestParseMeetingTimeSplitFallback(t *testing.T) {
	day, start, end := parseMeetingTime("Kamis - 8:00-9:40")
	require.Equal(t, "Kamis", day)
	require.Equal(t, "8:00", start)
	require.Equal(t, "9:40", end)
}

func TestParseSchedule(t *testing.T) {
	courses := ParseSchedule(scheduleFixture)

	// the nameless third card is dropped, the valid two survive
	require.Len(t, courses, 2)

	// sorted by weekday: Senin before Rabu even though the markup
	// renders Rabu first
	require.Equal(t, "Senin", courses[0].Day)
	require.Equal(t, "Rabu", courses[1].Day)

	want := Course{
		EncryptedId:    "ENCPEMWEB",
		Name:           "Pemrograman Web",
		Day:            "Senin",
		StartTime:      "08:00",
		EndTime:        "10:30",
		LecturerCode:   "DSN007",
		CourseCode:     "115",
		Credits:        4,
		Room:           "R-301",
		PracticeGroup:  "A1",
		MergedCode:     "G-77",
		ClassroomLink:  "/absen-mhs/ENCPEMWEB",
		DiscussionLink: "/ruang-diskusi/ENCPEMWEB",
		MaterialLink:   "/ruang-materi/ENCPEMWEB",
		AssignmentLink: "/tugas/ENCPEMWEB",
	}
	if diff := cmp.Diff(want, courses[0]); diff != "" {
		t.Fatalf("course mismatch (-want +got):\n%s", diff)
	}
}

func TestParseScheduleLinkTextFallback(t *testing.T) {
	// the first card has no title attributes on its footer anchors, the
	// visible-text fallback has to resolve them
	courses := ParseSchedule(scheduleFixture)
	basisData := courses[1]

	require.Equal(t, "Sistem Basis Data", basisData.Name)
	require.Equal(t, "/ruang-diskusi/ENCBASISDATA", basisData.DiscussionLink)
	require.Equal(t, "/ruang-materi/ENCBASISDATA", basisData.MaterialLink)
	require.Equal(t, "/tugas/ENCBASISDATA", basisData.AssignmentLink)
	require.Equal(t, "ENCBASISDATA", basisData.EncryptedId)
}

func TestCourseIdentity(t *testing.T) {
	withId := Course{EncryptedId: "ENC1", Name: "A", Day: "Senin", StartTime: "08:00"}
	require.Equal(t, "ENC1", withId.Identity())

	withoutId := Course{Name: "A", Day: "Senin", StartTime: "08:00"}
	require.Equal(t, "A|Senin|08:00", withoutId.Identity())
}

func TestDayWeightUnknownSortsLast(t *testing.T) {
	require.Greater(t, dayWeight("Someday"), dayWeight("Minggu"))
}
