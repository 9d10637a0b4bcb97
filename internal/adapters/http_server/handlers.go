package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"hotel_bookings/internal/adapters/geo"
	"hotel_bookings/internal/app"
	"hotel_bookings/internal/domain"
)

const (
	defaultPredictionsLimit = 20
	maxPredictionsLimit     = 500
	maxFormBytes            = 1 << 20
)

type Handlers struct {
	Q *app.QueryService
	P *app.PredictionService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1/bookings", func(r chi.Router) {
		r.Get("/summary", h.summary)
		r.Get("/price-bands", h.priceBands)
		r.Get("/monthly-adr", h.monthlyADR)
		r.Get("/monthly-bookings", h.monthlyBookings)
		r.Get("/lead-times", h.leadTimes)
		r.Get("/countries", h.countries)
	})
	s.mux.Get("/v1/model/metrics", h.modelMetrics)
	s.mux.Get("/v1/model/options", h.modelOptions)
	s.mux.Post("/v1/predictions", h.predict)
	s.mux.Get("/v1/predictions", h.listPredictions)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain and adapter errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSchemaMismatch):
		writeProblem(w, http.StatusUnprocessableEntity, "Schema Mismatch", err.Error())
	case errors.Is(err, domain.ErrMalformedValue):
		writeProblem(w, http.StatusUnprocessableEntity, "Malformed Value", err.Error())
	case errors.Is(err, domain.ErrUnknownCategory):
		writeProblem(w, http.StatusUnprocessableEntity, "Unknown Category", err.Error())
	case errors.Is(err, domain.ErrMissingFeature):
		writeProblem(w, http.StatusUnprocessableEntity, "Missing Feature", err.Error())
	case errors.Is(err, domain.ErrArtifactNotFound):
		writeProblem(w, http.StatusNotFound, "Model Not Trained", err.Error())
	case errors.Is(err, app.ErrGeoUnavailable):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, geo.ErrRemote), errors.Is(err, gobreaker.ErrOpenState):
		writeProblem(w, http.StatusBadGateway, "Bad Gateway", "geographic reference unavailable")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	return etagOf(body), body
}

func etagOf(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// writeCached writes body with an ETag and answers 304 for a matching
// If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, contentType string, body []byte) {
	etag := etagOf(body)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if etag == "" {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	writeCached(w, r, "application/json", body)
}

func (h *Handlers) summary(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Summary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) priceBands(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.PriceBands(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) monthlyADR(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.MonthlyADR(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"items": out})
}

func (h *Handlers) monthlyBookings(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.MonthlyBookings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"items": out})
}

func (h *Handlers) leadTimes(w http.ResponseWriter, r *http.Request) {
	width := app.DefaultLeadTimeBin
	if bs := r.URL.Query().Get("bin"); bs != "" {
		b, err := strconv.Atoi(bs)
		if err != nil || b <= 0 || b > 365 {
			writeProblem(w, http.StatusBadRequest, "Invalid bin", "bin must be an integer between 1 and 365")
			return
		}
		width = b
	}
	out, err := h.Q.LeadTimes(r.Context(), width)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, map[string]any{"bin": width, "items": out})
}

func (h *Handlers) countries(w http.ResponseWriter, r *http.Request) {
	switch f := r.URL.Query().Get("format"); f {
	case "", "json":
		out, err := h.Q.Countries(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, map[string]any{"items": out})
	case "geojson":
		body, err := h.Q.CountriesGeoJSON(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeCached(w, r, "application/geo+json", body)
	default:
		writeProblem(w, http.StatusBadRequest, "Invalid format", "format must be json or geojson")
	}
}

func (h *Handlers) modelMetrics(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ModelMetrics(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) modelOptions(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ModelOptions(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) predict(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	p, err := h.P.Predict(r.Context(), form)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("failed to write prediction")
	}
}

// readForm accepts a JSON object or an urlencoded form.
func readForm(w http.ResponseWriter, r *http.Request) (map[string]any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		out := make(map[string]any, len(r.PostForm))
		for k, vs := range r.PostForm {
			out[k] = vs
		}
		return out, nil
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.New("body must be a JSON object")
	}
	return out, nil
}

func (h *Handlers) listPredictions(w http.ResponseWriter, r *http.Request) {
	limit := defaultPredictionsLimit
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > maxPredictionsLimit {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 500")
			return
		}
		limit = l
	}
	out, err := h.P.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(out); err != nil {
		log.Error().Err(err).Msg("failed to write predictions")
	}
}
