package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"pethotel/internal/logging"
	"pethotel/internal/models"

	"github.com/rs/zerolog"
)

// ActiveSource returns the hotel stays active on a date.
type ActiveSource interface {
	Active(ctx context.Context, date string) (models.Reservations, error)
}

// Exporter writes the daily-needs files of a date into a directory.
type Exporter struct {
	source ActiveSource
	dir    string
	logger *zerolog.Logger
}

func NewExporter(source ActiveSource, dir string, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		source: source,
		dir:    dir,
		logger: logging.Component(logger, "export"),
	}
}

func (e *Exporter) Rows(ctx context.Context, date string) ([]Row, error) {
	rs, err := e.source.Active(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("error getting active stays: %w", err)
	}
	return BuildRows(rs, date), nil
}

// WriteFiles stores the CSV and XLSX of date and returns their paths.
func (e *Exporter) WriteFiles(ctx context.Context, date string) ([]string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating export directory: %w", err)
	}
	rows, err := e.Rows(ctx, date)
	if err != nil {
		return nil, err
	}

	csvPath := filepath.Join(e.dir, CSVFileName(date))
	if err := writeFile(csvPath, func(f *os.File) error { return WriteCSV(f, rows) }); err != nil {
		return nil, err
	}
	xlsxPath := filepath.Join(e.dir, XLSXFileName(date))
	if err := writeFile(xlsxPath, func(f *os.File) error { return WriteXLSX(f, date, rows) }); err != nil {
		return nil, err
	}

	e.logger.Info().Str("date", date).Int("rows", len(rows)).Str("dir", e.dir).Msg("Daily needs exported")
	return []string{csvPath, xlsxPath}, nil
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return f.Close()
}
