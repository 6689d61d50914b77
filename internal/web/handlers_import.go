package web

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hokuro/spotd/internal/importer"
	"github.com/hokuro/spotd/internal/spot"
)

// handleImport accepts a multipart CSV upload and runs the bulk import.
// The response is the full per-row accounting, whether or not any row
// succeeded; only a malformed request or an unrecognized header row is an
// error at the HTTP level.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Import.MaxFileSize); err != nil {
		respondError(w, r, fmt.Errorf("upload too large or malformed: %w", err), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf(`missing "file" form field: %w`, err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusBadRequest)
		return
	}

	actor := r.FormValue("submitted_by")
	if actor == "" {
		actor = "admin"
	}

	result, err := s.importer.Run(r.Context(), string(raw), actor)
	if errors.Is(err, importer.ErrUnknownHeader) {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	if result.SuccessCount > 0 {
		s.listCache.Invalidate()
	}
	writeJSON(w, result)
}

// handleImportTemplate serves a header-only CSV in the requested locale's
// convention, for uploaders to fill in. Locale defaults to ja.
func (s *Server) handleImportTemplate(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.schemaFromQuery(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="spots_template_%s.csv"`, schema.Locale))

	cw := csv.NewWriter(w)
	cw.Write(schema.Columns())
	cw.Flush()
}

// handleExport streams the full directory as CSV in the requested locale's
// convention. The output round-trips through the importer unchanged.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	schema, ok := s.schemaFromQuery(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="spots_export_%s.csv"`, schema.Locale))

	cw := csv.NewWriter(w)
	if err := cw.Write(schema.Columns()); err != nil {
		return
	}

	const pageSize = 500
	for offset := 0; ; offset += pageSize {
		spots, _, err := s.repo.List(r.Context(), spot.ListFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			// Headers are already out; stop mid-stream.
			return
		}
		for i := range spots {
			if err := cw.Write(schema.FormatRow(&spots[i])); err != nil {
				return
			}
		}
		if len(spots) < pageSize {
			break
		}
	}
	cw.Flush()
}

// schemaFromQuery resolves the optional ?locale= parameter.
func (s *Server) schemaFromQuery(w http.ResponseWriter, r *http.Request) (*importer.Schema, bool) {
	locale := importer.Locale(r.URL.Query().Get("locale"))
	if locale == "" {
		locale = importer.LocaleJA
	}
	schema, ok := importer.SchemaFor(locale)
	if !ok {
		respondError(w, r, fmt.Errorf("unknown locale %q, expected ja or en", locale), http.StatusBadRequest)
		return nil, false
	}
	return schema, true
}
