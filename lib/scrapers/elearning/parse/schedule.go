package parse

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"mybest-backend/lib/htmlutil"
)

// the portal renders each course as a "pricing card", the schedule text
// inside has shipped in two shapes over time:
//
//	"Senin, 08:00 - 10:30"
//	"Senin - 08:00-10:30"
var commaSchedulePattern = regexp.MustCompile(`(\w+),\s*(\d{2}:\d{2})\s*-\s*(\d{2}:\d{2})`)
var dashSchedulePattern = regexp.MustCompile(`(\w+)\s*-\s*(\d{2}:\d{2})-(\d{2}:\d{2})`)

func parseMeetingTime(text string) (day, start, end string) {
	if groups := commaSchedulePattern.FindStringSubmatch(text); len(groups) == 4 {
		return groups[1], groups[2], groups[3]
	}
	if groups := dashSchedulePattern.FindStringSubmatch(text); len(groups) == 4 {
		return groups[1], groups[2], groups[3]
	}

	// naive split as the last resort
	parts := strings.SplitN(text, " - ", 2)
	day = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		times := strings.SplitN(parts[1], "-", 2)
		start = strings.TrimSpace(times[0])
		if len(times) > 1 {
			end = strings.TrimSpace(times[1])
		}
	}
	return day, start, end
}

func ownText(sel *goquery.Selection) string {
	var out strings.Builder
	for _, n := range sel.Nodes {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				out.WriteString(child.Data)
			}
		}
	}
	return out.String()
}

// courseField digs a labeled "Label : value" detail out of the card
// body: labeled element first, then the flattened body text, then a
// scan over every element's own text.
func courseField(cardBody *goquery.Selection, label string) string {
	labeled := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*:\s*(.+)`)
	compact := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label) + `\s*:\s*(\S+)`)

	return FirstMatch(
		func() string {
			text := cardBody.Find(fmt.Sprintf(`.styled:contains("%s")`, label)).Text()
			if groups := labeled.FindStringSubmatch(text); len(groups) == 2 {
				return groups[1]
			}
			return ""
		},
		func() string {
			if groups := compact.FindStringSubmatch(cardBody.Text()); len(groups) == 2 {
				return groups[1]
			}
			return ""
		},
		func() string {
			var value string
			cardBody.Find("*").EachWithBreak(func(_ int, el *goquery.Selection) bool {
				if groups := labeled.FindStringSubmatch(strings.TrimSpace(ownText(el))); len(groups) == 2 {
					value = groups[1]
					return false
				}
				return true
			})
			return value
		},
	)
}

// actionLink resolves a footer button by its title attribute, falling
// back to any anchor whose visible text mentions the label.
func actionLink(footer *goquery.Selection, title, textHint string) string {
	return FirstMatch(
		func() string {
			return footer.Find(fmt.Sprintf(`a[title='%s']`, title)).AttrOr("href", "")
		},
		func() string {
			return footer.Find(fmt.Sprintf(`a:contains("%s")`, textHint)).AttrOr("href", "")
		},
	)
}

var dayOrder = map[string]int{
	"Senin": 1, "Selasa": 2, "Rabu": 3,
	"Kamis": 4, "Jumat": 5, "Sabtu": 6, "Minggu": 7,
}

func dayWeight(day string) int {
	if w, ok := dayOrder[day]; ok {
		return w
	}
	// unrecognized days sort after the whole week
	return 99
}

// ParseSchedule scrapes every course card on the schedule page. Cards
// that yield no course name are dropped; one mangled card never aborts
// the rest.
func ParseSchedule(htmlText string) []Course {
	doc := document(htmlText)
	var courses []Course

	doc.Find(".pricing-plan").Each(func(_ int, card *goquery.Selection) {
		course, ok := parseCourseCard(card)
		if !ok {
			return
		}
		courses = append(courses, course)
	})

	slices.SortStableFunc(courses, func(a, b Course) int {
		return dayWeight(a.Day) - dayWeight(b.Day)
	})
	return courses
}

func parseCourseCard(card *goquery.Selection) (Course, bool) {
	name := htmlutil.CleanText(card.Find(".pricing-title").Text())
	if name == "" {
		return Course{}, false
	}

	day, start, end := parseMeetingTime(strings.TrimSpace(card.Find(".pricing-save").Text()))

	cardBody := card.Find(".card-body")
	credits, _ := strconv.Atoi(courseField(cardBody, "SKS"))

	footer := card.Find(".pricing-footer")
	classroomLink := FirstMatch(
		func() string { return footer.Find("a.btn-primary").AttrOr("href", "") },
		func() string { return footer.Find(`a[href*='absen-mhs']`).AttrOr("href", "") },
	)

	encryptedId := ""
	if idx := strings.LastIndex(classroomLink, "/"); idx >= 0 {
		encryptedId = classroomLink[idx+1:]
	}

	return Course{
		EncryptedId:    encryptedId,
		Name:           name,
		Day:            day,
		StartTime:      start,
		EndTime:        end,
		LecturerCode:   courseField(cardBody, "Kode Dosen"),
		CourseCode:     courseField(cardBody, "Kode MTK"),
		Credits:        credits,
		Room:           courseField(cardBody, "No Ruang"),
		PracticeGroup:  courseField(cardBody, "Kel Praktek"),
		MergedCode:     courseField(cardBody, "Kode Gabung"),
		ClassroomLink:  classroomLink,
		DiscussionLink: actionLink(footer, "Ruang Diskusi", "Diskusi"),
		MaterialLink:   actionLink(footer, "Ruang Materi", "Materi"),
		AssignmentLink: actionLink(footer, "Ruang Tugas", "Tugas"),
	}, true
}
