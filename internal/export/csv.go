// Package export renders the aggregated task list into the
// spreadsheet-compatible CSV layout and writes it out as UTF-16LE.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/glhours/glhours/internal/report"
	"github.com/glhours/glhours/internal/timeutil"
)

const headerLine = "Descrição Atuação;Data;Tempo Utilizado"

// Serialize renders the tasks as semicolon-delimited text: per task a
// name line, the fixed header, one line per entry, then a blank block
// separator; a final line totals every emitted entry. Entries are
// re-sorted by date here and not assumed pre-ordered.
func Serialize(tasks []report.Task) string {
	var b strings.Builder
	var totalSeconds int64

	for _, task := range tasks {
		b.WriteString(task.Name)
		b.WriteString("\n")
		b.WriteString(headerLine)
		b.WriteString("\n")

		entries := make([]report.Entry, len(task.Entries))
		copy(entries, task.Entries)
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].SpentAt.Before(entries[j].SpentAt)
		})

		for _, e := range entries {
			// Only the first embedded newline is removed, matching the
			// layout the existing spreadsheet workflow was built around.
			desc := strings.Replace(e.Description, "\n", "", 1)
			b.WriteString(fmt.Sprintf("%s;%s;%s\n",
				desc,
				e.SpentAt.Format("02/01/2006"),
				timeutil.FormatDuration(e.Seconds),
			))
			totalSeconds += e.Seconds
		}

		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("Tempo Total Utilizado;%s", timeutil.FormatDuration(totalSeconds)))
	return b.String()
}

// EncodeUTF16LE converts the serialized text to UTF-16LE bytes with a
// BOM. The downstream spreadsheet workflow expects this encoding.
func EncodeUTF16LE(s string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding CSV as UTF-16LE: %w", err)
	}
	return out, nil
}

// Filename derives the deterministic export name from the report's
// selected date (not the current date).
func Filename(selected time.Time) string {
	return fmt.Sprintf("horas-trabalhadas-%d-%d.csv", int(selected.Month()), selected.Day())
}

// WriteFile serializes the tasks and writes the encoded bytes to path
// atomically (tmp + rename).
func WriteFile(path string, tasks []report.Task) error {
	data, err := EncodeUTF16LE(Serialize(tasks))
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing temp export file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming export file: %w", err)
	}
	return nil
}
