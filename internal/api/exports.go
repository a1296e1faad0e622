package api

import (
	"bytes"
	"net/http"
	"strings"

	"pethotel/internal/export"
	"pethotel/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *HTTPServer) handleDailyNeeds(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = s.today()
	}
	if _, err := models.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	rows, err := s.svc.Exporter.Rows(r.Context(), date)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var (
		buf         bytes.Buffer
		contentType string
		fileName    string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		err = export.WriteCSV(&buf, rows)
		contentType, fileName = "text/csv; charset=utf-8", export.CSVFileName(date)
	case "xlsx":
		err = export.WriteXLSX(&buf, date, rows)
		contentType, fileName = xlsxContentType, export.XLSXFileName(date)
	case "json":
		writeJSON(w, http.StatusOK, map[string]any{"date": date, "rows": rows})
		return
	default:
		writeError(w, http.StatusBadRequest, "format must be csv, xlsx or json")
		return
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
