package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"text2phenotype.com/itn/logger"
	"text2phenotype.com/itn/pipeline"
)

const RequestInfoFieldsKey = "request_info"

var defaultLogger = logger.NewLogger("API")

type requestInfo struct {
	Method    string `json:"method"`
	Url       string `json:"url"`
	Language  string `json:"language,omitempty"`
	Direction string `json:"direction,omitempty"`
}

// Request serves tagging over HTTP. The grammar is chosen with the
// language and direction query parameters.
type Request struct {
	Router *pipeline.Router
}

func makeRequestLogger(r *http.Request) zerolog.Logger {
	query := r.URL.Query()
	return defaultLogger.With().Interface(RequestInfoFieldsKey, requestInfo{
		Method:    r.Method,
		Url:       r.URL.String(),
		Language:  query.Get("language"),
		Direction: query.Get("direction"),
	}).Logger()
}

// ProcessData tags the POSTed text body. The caller may name the document
// with the tid query parameter; otherwise a random id is assigned.
func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	reqLogger := makeRequestLogger(r)

	if r.Method != http.MethodPost {
		reqLogger.Error().Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	ppln, key, err := req.Router.Route(query.Get("language"), query.Get("direction"))
	var unsupported *pipeline.UnsupportedError
	if errors.As(err, &unsupported) {
		reqLogger.Err(err).Int("status", http.StatusBadRequest).Msg("No grammar for request")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := io.ReadAll(r.Body)
	if err != nil {
		reqLogger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	tid := query.Get("tid")
	if tid == "" {
		tid = uuid.New().String()
	}
	reqLogger = reqLogger.With().Str("tid", tid).Str("grammar", key.String()).Logger()
	reqLogger.Info().Msg("Starting pipeline for request from API")
	resp := <-ppln(pipeline.Request{Tid: tid, Text: string(msg)})
	_, _ = w.Write([]byte(resp))
	reqLogger.Info().Int("status", http.StatusOK).Msg("Finished processing request")
}

// Handler serves ProcessData on / with CORS enabled.
func (req *Request) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", req.ProcessData)
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodPost},
	}).Handler(mux)
}
