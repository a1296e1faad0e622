package export

import (
	"bufio"
	"io"
	"strings"
)

// CSVFileName is the download name of the daily-needs CSV for date.
func CSVFileName(date string) string {
	return "necesidades_diarias_" + date + ".csv"
}

// WriteCSV writes the header and rows with every field double-quoted.
// encoding/csv only quotes when needed, so quoting is done here.
func WriteCSV(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writeRecord(bw, r.Fields()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(f, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}
