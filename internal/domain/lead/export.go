package lead

import (
	"io"
	"strconv"
	"strings"
	"time"
)

var exportHeader = []string{
	"First Name", "Last Name", "Email", "Phone", "City", "State", "Country",
	"Source", "Status", "Priority", "Lead Score", "AI Score",
	"Program Interest", "Tags",
	"Created At", "Updated At",
	"Assigned To", "Assignment Method",
}

const listSeparator = "; "

// WriteCSV writes a header and one row per lead. Every field is quoted and
// embedded quotes are doubled, whether or not the value needs it.
func WriteCSV(w io.Writer, leads []Lead) error {
	if err := writeRecord(w, exportHeader); err != nil {
		return err
	}
	for i := range leads {
		if err := writeRecord(w, exportRow(&leads[i])); err != nil {
			return err
		}
	}
	return nil
}

func exportRow(l *Lead) []string {
	return []string{
		l.FirstName,
		l.LastName,
		l.Email,
		l.Phone,
		l.City,
		l.State,
		l.Country,
		string(l.Source),
		string(l.Status),
		string(l.Priority),
		strconv.Itoa(l.LeadScore),
		strconv.FormatFloat(l.AIScore, 'f', -1, 64),
		strings.Join(l.ProgramInterest, listSeparator),
		strings.Join(l.Tags, listSeparator),
		formatTimestamp(l.CreatedAt),
		formatTimestamp(l.UpdatedAt),
		l.AssigneeID(),
		string(l.AssignmentMethod),
	}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeRecord(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}
