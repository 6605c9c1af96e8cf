package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bullet/pkg/buildinfo"
	"github.com/matzehuels/bullet/pkg/bullet"
	"github.com/matzehuels/bullet/pkg/errors"
	bulletio "github.com/matzehuels/bullet/pkg/io"
	"github.com/matzehuels/bullet/pkg/observability"
	"github.com/matzehuels/bullet/pkg/pipeline"
)

// CacheHeader reports whether the response came from cache ("HIT" or "MISS").
const CacheHeader = "X-Cache"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	in, ok := s.readInput(w, r)
	if !ok {
		return
	}
	if in == nil {
		writeError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "request body is empty")
		return
	}

	opts := s.defaults
	opts.Refresh = queryBool(r, "refresh")
	l, hit, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), *in, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set(CacheHeader, cacheStatus(hit))
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	opts, err := s.renderOptions(r, format)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	in, ok := s.readInput(w, r)
	if !ok {
		return
	}

	var data []byte
	switch {
	case in == nil && format == pipeline.FormatHTML && !opts.IsTable():
		data, err = pipeline.RenderEmpty(opts)
		w.Header().Set(CacheHeader, cacheStatus(false))
	case in == nil:
		writeError(w, r, http.StatusBadRequest, string(errors.ErrCodeInvalidInput), "request body is empty")
		return
	default:
		var res *pipeline.Result
		res, err = s.runner.Execute(r.Context(), *in, opts)
		if err == nil {
			data = res.Artifacts[format]
			w.Header().Set(CacheHeader, cacheStatus(res.CacheInfo.RenderHit))
		}
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// renderOptions builds pipeline options from the query string over the
// server defaults.
func (s *Server) renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.defaults
	opts.Formats = []string{format}
	opts.Document = false
	opts.WrapperClass = ""

	if v := q.Get("viz_type"); v != "" {
		opts.VizType = v
	}
	if v := q.Get("theme"); v != "" {
		opts.Theme = v
	}
	if q.Has("reveal") {
		reveal, err := pipeline.ParseReveal(q.Get("reveal"))
		if err != nil {
			return opts, err
		}
		opts.Reveal = reveal
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"width", &opts.Width}, {"height", &opts.Height}, {"columns", &opts.Columns}} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", p.name, v)
			}
			*p.dst = n
		}
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid scale: %q", v)
		}
		opts.Scale = f
	}
	opts.WrapperClass = q.Get("wrapper_class")
	opts.Document = queryBool(r, "document")
	opts.Refresh = queryBool(r, "refresh")

	if err := opts.ValidateForRender(); err != nil {
		return opts, err
	}
	return opts, nil
}

// readInput decodes the request body. A nil input with ok set means the
// body was empty. On failure the error response has been written.
func (s *Server) readInput(w http.ResponseWriter, r *http.Request) (*bullet.Input, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusRequestEntityTooLarge, string(errors.ErrCodeInvalidInput),
			fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes))
		return nil, false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, true
	}

	in, err := pipeline.Parse(data, inputFormat(r.Header.Get("Content-Type")))
	if err != nil {
		observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusBadRequest, string(errors.GetCode(err)), errors.UserMessage(err))
		return nil, false
	}
	return &in, true
}

// inputFormat picks the body decoder from the content type.
func inputFormat(contentType string) string {
	mt, _, _ := mime.ParseMediaType(contentType)
	switch mt {
	case "application/toml":
		return bulletio.FormatTOML
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "application/vnd.ms-excel":
		return bulletio.FormatXLSX
	}
	return bulletio.FormatJSON
}

// fail writes err with the status its code maps to.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestIDFrom(r.Context()))
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if code == errors.ErrCodeInternal {
		msg = "internal error"
	}
	writeError(w, r, status, string(code), msg)
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch code := errors.GetCode(err); {
	case code == errors.ErrCodeInvalidFormat:
		return http.StatusNotFound
	case errors.IsValidation(err):
		return http.StatusUnprocessableEntity
	case code == errors.ErrCodeNotFound, code == errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case code == errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case code == errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func cacheStatus(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}

func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:     msg,
		Code:      code,
		RequestID: RequestIDFrom(r.Context()),
	})
}
