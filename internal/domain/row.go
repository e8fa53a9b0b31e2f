package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// QueueRow is one pending email job: the four adjacent cells of the sheet's
// first row. Delay holds the raw cell text; DelaySeconds interprets it.
type QueueRow struct {
	Recipient string
	Subject   string
	Body      string // HTML
	Delay     string
}

// RowFromCells builds a QueueRow from a sheet values row. Missing trailing
// cells default to the empty string.
func RowFromCells(cells []any) QueueRow {
	cell := func(i int) string {
		if i >= len(cells) || cells[i] == nil {
			return ""
		}
		if s, ok := cells[i].(string); ok {
			return s
		}
		return fmt.Sprint(cells[i])
	}
	return QueueRow{
		Recipient: cell(0),
		Subject:   cell(1),
		Body:      cell(2),
		Delay:     cell(3),
	}
}

// IsEmpty reports whether the row counts as "queue empty": the range was
// absent entirely, or every cell is the empty string.
func (r QueueRow) IsEmpty() bool {
	return r.Recipient == "" && r.Subject == "" && r.Body == "" && r.Delay == ""
}

// DelaySeconds parses the raw delay cell. Malformed or negative values mean
// no delay; a parse failure is never surfaced to the user.
func (r QueueRow) DelaySeconds() int {
	n, err := strconv.Atoi(strings.TrimSpace(r.Delay))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
