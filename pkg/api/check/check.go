package check

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nicholas-fedor/container-check/pkg/types"
)

// Path is the endpoint the handler is registered on.
const Path = "/v1/check"

// apiVersion is reported in every response body.
const apiVersion = "v1"

// RunFunc performs a check of images, or of the whole inventory when images is empty.
type RunFunc func(images []string) (types.Summary, error)

// Handler triggers checks over HTTP.
//
// It shares its lock with the scheduler so that at most one check runs at a time.
type Handler struct {
	fn   RunFunc
	Path string
	lock chan bool
}

// Response is the body of a completed check.
type Response struct {
	RunID              string   `json:"run_id"`
	Audited            int      `json:"audited"`
	Stale              []string `json:"stale"`
	Updated            []string `json:"updated"`
	FailedUpdates      []string `json:"failed_updates"`
	InspectionFailures []string `json:"inspection_failures"`
	Succeeded          bool     `json:"succeeded"`
	DurationMS         int64    `json:"duration_ms"`
	Timestamp          string   `json:"timestamp"`
	APIVersion         string   `json:"api_version"`
}

// errorResponse is the body of a rejected or failed check.
type errorResponse struct {
	Error      string `json:"error"`
	Timestamp  string `json:"timestamp"`
	APIVersion string `json:"api_version"`
}

// New creates a Handler.
//
// Parameters:
//   - fn: Function performing the check.
//   - lock: Lock shared with the scheduler; a new one is created when nil.
//
// Returns:
//   - *Handler: Handler for Path.
func New(fn RunFunc, lock chan bool) *Handler {
	if lock == nil {
		lock = make(chan bool, 1)
		lock <- true

		logrus.Debug("Initialized new check lock channel")
	}

	return &Handler{
		fn:   fn,
		Path: Path,
		lock: lock,
	}
}

// Handle runs a check and answers with its summary.
//
// Only POST is accepted. Repeated "image" query parameters, each possibly comma separated, limit the
// check to those inventory entries. A targeted check waits for a running check to finish; a full check
// is rejected with 429 Too Many Requests instead, since a second full check would find the same state.
// A check whose inputs cannot be loaded answers 500 Internal Server Error.
//
// Parameters:
//   - w: Response writer.
//   - r: Request.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	logrus.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Info("Received HTTP API check request")

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, newError("method not allowed"))

		return
	}

	if _, err := io.Copy(io.Discard, r.Body); err != nil {
		logrus.WithError(err).Debug("Failed to read request body")
		writeJSON(w, http.StatusInternalServerError, newError("failed to read request body"))

		return
	}

	images := imagesOf(r)

	if len(images) > 0 {
		select {
		case value := <-h.lock:
			defer func() { h.lock <- value }()
		case <-r.Context().Done():
			logrus.Debug("Check request cancelled while waiting for lock")
			writeJSON(w, http.StatusServiceUnavailable, newError("request cancelled"))

			return
		}

		logrus.WithField("images", images).Info("Executing targeted check")
	} else {
		select {
		case value := <-h.lock:
			defer func() { h.lock <- value }()
		default:
			logrus.Debug("Skipped check, another check already in progress")
			w.Header().Set("Retry-After", "30")
			writeJSON(w, http.StatusTooManyRequests, newError("another check is already running"))

			return
		}

		logrus.Info("Executing full check")
	}

	started := time.Now()

	summary, err := h.fn(images)
	if err != nil {
		logrus.WithError(err).Error("HTTP API check failed")
		writeJSON(w, http.StatusInternalServerError, newError(err.Error()))

		return
	}

	writeJSON(w, http.StatusOK, newResponse(summary, time.Since(started)))
}

// imagesOf collects the image query parameters.
func imagesOf(r *http.Request) []string {
	var images []string

	for _, value := range r.URL.Query()["image"] {
		for image := range strings.SplitSeq(value, ",") {
			if image = strings.TrimSpace(image); image != "" {
				images = append(images, image)
			}
		}
	}

	return images
}

func newResponse(summary types.Summary, duration time.Duration) Response {
	stale := make([]string, 0, len(summary.StaleContainers()))
	for container := range summary.StaleContainers() {
		stale = append(stale, container)
	}

	slices.Sort(stale)

	return Response{
		RunID:              summary.RunID(),
		Audited:            summary.Audited(),
		Stale:              stale,
		Updated:            summary.UpdatedContainers(),
		FailedUpdates:      summary.FailedUpdates(),
		InspectionFailures: summary.InspectionFailures(),
		Succeeded:          summary.Succeeded(),
		DurationMS:         duration.Milliseconds(),
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
		APIVersion:         apiVersion,
	}
}

func newError(message string) errorResponse {
	return errorResponse{
		Error:      message,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIVersion: apiVersion,
	}
}

// writeJSON encodes body before writing the status so encoding failures still produce a 500.
func writeJSON(w http.ResponseWriter, status int, body any) {
	payload, err := json.Marshal(body)
	if err != nil {
		logrus.WithError(err).Error("Failed to encode HTTP API response")
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(append(payload, '\n')); err != nil {
		logrus.WithError(err).Debug("Failed to write HTTP API response")
	}
}
