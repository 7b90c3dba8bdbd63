package parse

import (
	"encoding/json"
	"regexp"
	"strconv"
)

var meetingTokenPattern = regexp.MustCompile(`name="pertemuan"[^>]*value="([^"]+)"`)

// ExtractAttendanceForm pulls the csrf token and the encrypted meeting
// token out of the attendance page. Both are single-use, callers must
// re-fetch per submission attempt.
func ExtractAttendanceForm(html string) (AttendanceForm, bool) {
	token := ExtractCsrfToken(html)
	if token == "" {
		return AttendanceForm{}, false
	}

	meeting := FirstMatch(
		func() string {
			return document(html).Find("input[name=pertemuan]").AttrOr("value", "")
		},
		func() string {
			if groups := meetingTokenPattern.FindStringSubmatch(html); len(groups) == 2 {
				return groups[1]
			}
			return ""
		},
	)
	if meeting == "" {
		return AttendanceForm{}, false
	}

	return AttendanceForm{CsrfToken: token, MeetingToken: meeting}, true
}

type dataTablesPayload struct {
	Draw            int               `json:"draw"`
	RecordsTotal    int               `json:"recordsTotal"`
	RecordsFiltered int               `json:"recordsFiltered"`
	Data            []json.RawMessage `json:"data"`
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func rawInt(raw json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.Atoi(s); err == nil {
			return v, true
		}
	}
	return 0, false
}

func pick(fields map[string]json.RawMessage, key, positional string) json.RawMessage {
	if v, ok := fields[key]; ok {
		return v
	}
	// older payloads keyed object rows by column index
	return fields[positional]
}

// ParseAttendanceRecords decodes the DataTables listing. The server has
// shipped rows both as positional arrays and as keyed objects, so the
// shape is detected per row; a malformed row is skipped, not fatal.
func ParseAttendanceRecords(data []byte) []AttendanceRecord {
	var payload dataTablesPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}

	var records []AttendanceRecord
	for i, row := range payload.Data {
		var cells []json.RawMessage
		if err := json.Unmarshal(row, &cells); err == nil {
			records = append(records, recordFromCells(cells, i))
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(row, &fields); err == nil {
			records = append(records, recordFromFields(fields, i))
			continue
		}
		// neither shape, skip the row
	}
	return records
}

func recordFromCells(cells []json.RawMessage, index int) AttendanceRecord {
	cell := func(i int) json.RawMessage {
		if i < len(cells) {
			return cells[i]
		}
		return nil
	}

	no, ok := rawInt(cell(0))
	if !ok {
		no = index + 1
	}
	return AttendanceRecord{
		SequenceNo:       no,
		Status:           rawString(cell(1)),
		Date:             rawString(cell(2)),
		SubjectLabel:     rawString(cell(3)),
		MeetingNo:        rawString(cell(4)),
		MinutesText:      rawString(cell(5)),
		NarrativeSummary: rawString(cell(6)),
	}
}

func recordFromFields(fields map[string]json.RawMessage, index int) AttendanceRecord {
	no, ok := rawInt(pick(fields, "nomer", "0"))
	if !ok {
		no = index + 1
	}
	return AttendanceRecord{
		SequenceNo:       no,
		Status:           rawString(pick(fields, "status_hadir", "1")),
		Date:             rawString(pick(fields, "tgl_ajar_masuk", "2")),
		SubjectLabel:     rawString(pick(fields, "nm_mtk", "3")),
		MeetingNo:        rawString(pick(fields, "pertemuan", "4")),
		MinutesText:      rawString(pick(fields, "berita_acara", "5")),
		NarrativeSummary: rawString(pick(fields, "rangkuman", "6")),
	}
}
