package parse

import "fmt"

// Course is one card on the schedule page. EncryptedId is the opaque
// token the server mints into action links; when the card carries no
// usable link the (name, day, start) tuple is the best identity we get.
type Course struct {
	EncryptedId    string
	Name           string
	Day            string
	StartTime      string
	EndTime        string
	LecturerCode   string
	CourseCode     string
	Credits        int
	Room           string
	PracticeGroup  string
	MergedCode     string
	ClassroomLink  string
	DiscussionLink string
	MaterialLink   string
	AssignmentLink string
}

func (c Course) Identity() string {
	if c.EncryptedId != "" {
		return c.EncryptedId
	}
	return fmt.Sprintf("%s|%s|%s", c.Name, c.Day, c.StartTime)
}

// AttendanceForm is the single-use token pair required to mark
// attendance. It must be re-extracted per attempt.
type AttendanceForm struct {
	CsrfToken    string
	MeetingToken string
}

type AttendanceRecord struct {
	SequenceNo       int
	Status           string
	Date             string
	SubjectLabel     string
	MeetingNo        string
	MinutesText      string
	NarrativeSummary string
}

type Assignment struct {
	SequenceNo  int
	CourseCode  string
	ClassName   string
	Title       string
	Description string
	MeetingNo   string
	OpensAt     string
	ClosesAt    string
	CreatedAt   string
	// "TOKEN|ID|FILENAME", the server only hands files out via a POST
	// form so there is no plain URL to keep
	DownloadRef  string
	SubmitRef    string
	SubmittedRef string
}

type AssignmentForm struct {
	CsrfToken      string
	CourseCode     string
	AssignmentId   string
	StudentId      string
	LocalClassCode string
}

type AssignmentGrade struct {
	SequenceNo      int
	CourseCode      string
	Title           string
	SubmissionLink  string
	LecturerComment string
	Score           string
	CreatedAt       string
	UpdatedAt       string
}

type Profile struct {
	Name  string
	Email string
}
