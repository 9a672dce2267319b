package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/ahrav/go-signalhunt/infrastructure/ingest"
	"github.com/ahrav/go-signalhunt/internal/domain"
	"github.com/ahrav/go-signalhunt/internal/scoring"
)

// MaxBodyBytes caps the size of a scoring request body.
const MaxBodyBytes = 16 << 20

// ScoreRequest is the JSON body of POST /v1/score. Each row is a positional
// array of cells in measurement column order.
type ScoreRequest struct {
	Rows []domain.RawRow `json:"rows"`
}

// CategoryResponse is one entry of GET /v1/categories.
type CategoryResponse struct {
	Name       string  `json:"name"`
	Points     float64 `json:"points"`
	Structural bool    `json:"structural"`
}

// ScoreHandler scores rows posted as JSON or, with a text/csv content type,
// as CSV. The response is the full scoring report.
func ScoreHandler(scorer *scoring.Scorer, maxRows int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

		rows, err := decodeRows(r, maxRows)
		if err != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || errors.Is(err, ingest.ErrTooManyRecords) {
				status = http.StatusRequestEntityTooLarge
			}
			respondError(w, status, err)
			return
		}

		report, err := scorer.Report(r.Context(), rows)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, domain.ErrUnresolvedField) ||
				errors.Is(err, domain.ErrMalformedNumber) ||
				errors.Is(err, domain.ErrUnknownTag) {
				status = http.StatusUnprocessableEntity
			}
			respondError(w, status, err)
			return
		}

		respondJSON(w, http.StatusOK, report)
	}
}

// CategoriesHandler lists the point table the scorer uses.
func CategoriesHandler(rules scoring.Rules) http.HandlerFunc {
	structural := make(map[string]bool, len(domain.StructuralCategories))
	for _, name := range domain.StructuralCategories {
		structural[name] = true
	}
	table := rules.Categories
	resp := make([]CategoryResponse, 0, table.Len())
	for _, name := range table.Names() {
		resp = append(resp, CategoryResponse{
			Name:       name,
			Points:     table.Points(name),
			Structural: structural[name],
		})
	}

	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, resp)
	}
}

func decodeRows(r *http.Request, maxRows int) ([]domain.RawRow, error) {
	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, fmt.Errorf("invalid content type: %w", err)
		}
		mediaType = mt
	}

	switch mediaType {
	case "text/csv":
		return ingest.Reader{MaxRecords: maxRows}.ReadRows(r.Body)
	case "application/json":
		var req ScoreRequest
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid JSON body: %w", err)
		}
		if maxRows > 0 && len(req.Rows) > maxRows {
			return nil, fmt.Errorf("%w: limit is %d", ingest.ErrTooManyRecords, maxRows)
		}
		return req.Rows, nil
	default:
		return nil, fmt.Errorf("unsupported content type %q", mediaType)
	}
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, code int, err error) {
	respondJSON(w, code, map[string]string{"error": err.Error()})
}
