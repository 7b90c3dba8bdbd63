package parse

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mybest-backend/lib/htmlutil"
)

// DownloadRefSeparator joins the three hidden form fields that the
// download action needs; files are only served via POST so there is no
// URL to store.
const DownloadRefSeparator = "|"

func EncodeDownloadRef(token, id, filename string) string {
	return strings.Join([]string{token, id, filename}, DownloadRefSeparator)
}

func DecodeDownloadRef(ref string) (token, id, filename string, ok bool) {
	parts := strings.SplitN(ref, DownloadRefSeparator, 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

func cellText(cells *goquery.Selection, i int) string {
	if i >= cells.Length() {
		return ""
	}
	return htmlutil.CleanText(cells.Eq(i).Text())
}

// findTable picks the table whose header mentions every marker; the
// assignment page renders the task table and the grade table side by
// side so a single marker is ambiguous.
func findTable(doc *goquery.Document, markers ...string) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		header := strings.ToLower(table.Find("thead th").Text())
		for _, m := range markers {
			if !strings.Contains(header, m) {
				return true
			}
		}
		found = table
		return false
	})
	return found
}

// ParseAssignments scrapes the task table ("judul" + "mulai" headers).
// Rows with fewer than 8 cells or no title are dropped; the trailing
// action cell is mined for the submit link, the download form and the
// already-submitted external link.
func ParseAssignments(htmlText string) []Assignment {
	doc := document(htmlText)
	table := findTable(doc, "judul", "mulai")
	if table == nil {
		return nil
	}

	var assignments []Assignment
	table.Find("tbody tr").Each(func(index int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 8 {
			return
		}

		title := cellText(cells, 3)
		if title == "" {
			return
		}

		actionCell := cells.Last()

		submitRef := actionCell.Find(`a[href*='/assignment/send/']`).AttrOr("href", "")

		downloadRef := ""
		form := actionCell.Find(`form[action*='download-file-tugas']`).First()
		if form.Length() > 0 {
			token := form.Find("input[name=_token]").AttrOr("value", "")
			id := form.Find("input[name=id]").AttrOr("value", "")
			file := form.Find("input[name=file]").AttrOr("value", "")
			if token != "" && id != "" && file != "" {
				downloadRef = EncodeDownloadRef(token, id, file)
			}
		}

		submittedRef := actionCell.
			Find(`a[href*='drive.google'], a[href*='docs.google'], a[target='_blank']`).
			First().AttrOr("href", "")

		no, err := strconv.Atoi(cellText(cells, 0))
		if err != nil {
			no = index + 1
		}

		meeting := FirstMatch(
			func() string { return cells.Eq(5).Find("center").Text() },
			func() string { return cellText(cells, 5) },
		)

		assignments = append(assignments, Assignment{
			SequenceNo:   no,
			CourseCode:   cellText(cells, 1),
			ClassName:    cellText(cells, 2),
			Title:        title,
			Description:  cellText(cells, 4),
			MeetingNo:    strings.TrimSpace(meeting),
			OpensAt:      cellText(cells, 6),
			ClosesAt:     cellText(cells, 7),
			CreatedAt:    cellText(cells, 8),
			DownloadRef:  downloadRef,
			SubmitRef:    submitRef,
			SubmittedRef: submittedRef,
		})
	})
	return assignments
}

// ParseAssignmentGrades scrapes the grade table ("nilai" + "komentar"
// headers), needing at least 6 cells per row.
func ParseAssignmentGrades(htmlText string) []AssignmentGrade {
	doc := document(htmlText)
	table := findTable(doc, "nilai", "komentar")
	if table == nil {
		return nil
	}

	var grades []AssignmentGrade
	table.Find("tbody tr").Each(func(index int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 6 {
			return
		}

		no, err := strconv.Atoi(cellText(cells, 0))
		if err != nil {
			no = index + 1
		}

		score := cellText(cells, 5)
		if score == "" {
			score = "0"
		}

		grades = append(grades, AssignmentGrade{
			SequenceNo:      no,
			CourseCode:      cellText(cells, 1),
			Title:           cellText(cells, 2),
			SubmissionLink:  cellText(cells, 3),
			LecturerComment: cellText(cells, 4),
			Score:           score,
			CreatedAt:       cellText(cells, 6),
			UpdatedAt:       cellText(cells, 7),
		})
	})
	return grades
}

// ExtractAssignmentForm pulls the hidden submission form off the
// assignment send page. Token, course code and assignment id are
// structurally required; the rest defaults to empty.
func ExtractAssignmentForm(htmlText string) (AssignmentForm, bool) {
	token := ExtractCsrfToken(htmlText)
	if token == "" {
		return AssignmentForm{}, false
	}

	doc := document(htmlText)
	courseCode := doc.Find("input[name=kd_mtk]").AttrOr("value", "")
	assignmentId := doc.Find("input[name=id_tugas]").AttrOr("value", "")
	if courseCode == "" || assignmentId == "" {
		return AssignmentForm{}, false
	}

	return AssignmentForm{
		CsrfToken:      token,
		CourseCode:     courseCode,
		AssignmentId:   assignmentId,
		StudentId:      doc.Find("input[name=nim]").AttrOr("value", ""),
		LocalClassCode: doc.Find("input[name=kd_lokal]").AttrOr("value", ""),
	}, true
}
