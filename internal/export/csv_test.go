package export_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glhours/glhours/internal/export"
	"github.com/glhours/glhours/internal/report"
)

func entry(day string, seconds int64, desc string) report.Entry {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return report.Entry{Seconds: seconds, Description: desc, SpentAt: d, Day: day}
}

func TestSerializeLayout(t *testing.T) {
	tasks := []report.Task{
		{
			Name: "Fix login",
			Entries: []report.Entry{
				entry("2024-03-01", 1800, "pair session"),
				entry("2024-03-05", 3600, "debugging"),
			},
		},
	}

	got := export.Serialize(tasks)

	want := "Fix login\n" +
		"Descrição Atuação;Data;Tempo Utilizado\n" +
		"pair session;01/03/2024;0h 30m\n" +
		"debugging;05/03/2024;1h 0m\n" +
		"\n\n" +
		"Tempo Total Utilizado;1h 30m"
	assert.Equal(t, want, got)
}

func TestSerializeResortsEntries(t *testing.T) {
	tasks := []report.Task{
		{
			Name: "T",
			Entries: []report.Entry{
				entry("2024-03-10", 900, "third"),
				entry("2024-03-01", 1800, "first"),
				entry("2024-03-05", 3600, "second"),
			},
		},
	}

	lines := strings.Split(export.Serialize(tasks), "\n")
	assert.True(t, strings.HasPrefix(lines[2], "first;01/03/2024"))
	assert.True(t, strings.HasPrefix(lines[3], "second;05/03/2024"))
	assert.True(t, strings.HasPrefix(lines[4], "third;10/03/2024"))
}

func TestSerializeStripsOnlyFirstNewline(t *testing.T) {
	tasks := []report.Task{
		{Name: "T", Entries: []report.Entry{entry("2024-03-01", 60, "line1\nline2\nline3")}},
	}

	got := export.Serialize(tasks)
	assert.Contains(t, got, "line1line2\nline3;01/03/2024;0h 1m\n")
}

func TestSerializeTotalsAcrossTasks(t *testing.T) {
	tasks := []report.Task{
		{Name: "A", Entries: []report.Entry{entry("2024-03-01", 3600, "a"), entry("2024-03-05", 1800, "b")}},
		{Name: "B", Entries: []report.Entry{entry("2024-03-10", 900, "c")}},
	}

	got := export.Serialize(tasks)
	assert.True(t, strings.HasSuffix(got, "Tempo Total Utilizado;1h 45m"))
}

func TestSerializeEmpty(t *testing.T) {
	assert.Equal(t, "Tempo Total Utilizado;0h 0m", export.Serialize(nil))
}

// Parsing the serializer's own output recovers every entry.
func TestSerializeRoundTrip(t *testing.T) {
	tasks := []report.Task{
		{Name: "Fix login", Entries: []report.Entry{
			entry("2024-03-01", 1800, "first\nthing"),
			entry("2024-03-05", 3600, "second thing"),
		}},
		{Name: "Write docs", Entries: []report.Entry{
			entry("2024-03-07", 5400, "drafting"),
		}},
	}

	lines := strings.Split(export.Serialize(tasks), "\n")

	type parsed struct{ desc, date, dur string }
	var got []parsed
	for _, line := range lines {
		if !strings.Contains(line, ";") || strings.HasPrefix(line, "Descrição") || strings.HasPrefix(line, "Tempo Total") {
			continue
		}
		parts := strings.Split(line, ";")
		require.Len(t, parts, 3)
		got = append(got, parsed{parts[0], parts[1], parts[2]})
	}

	require.Len(t, got, 3)
	assert.Equal(t, parsed{"firstthing", "01/03/2024", "0h 30m"}, got[0])
	assert.Equal(t, parsed{"second thing", "05/03/2024", "1h 0m"}, got[1])
	assert.Equal(t, parsed{"drafting", "07/03/2024", "1h 30m"}, got[2])
}

func TestEncodeUTF16LE(t *testing.T) {
	data, err := export.EncodeUTF16LE("Aç")
	require.NoError(t, err)

	// BOM then little-endian code units.
	require.GreaterOrEqual(t, len(data), 6)
	assert.Equal(t, []byte{0xFF, 0xFE}, data[:2])

	units := make([]uint16, 0, (len(data)-2)/2)
	for i := 2; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])|uint16(data[i+1])<<8)
	}
	assert.Equal(t, "Aç", string(utf16.Decode(units)))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "horas-trabalhadas-3-15.csv",
		export.Filename(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "horas-trabalhadas-12-1.csv",
		export.Filename(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "report.csv")

	tasks := []report.Task{{Name: "T", Entries: []report.Entry{entry("2024-03-01", 60, "x")}}}
	require.NoError(t, export.WriteFile(path, tasks))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFE}, data[:2], "file starts with a UTF-16LE BOM")

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file is renamed away")
}
