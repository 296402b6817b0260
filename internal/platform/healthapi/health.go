package healthapi

import (
	"log/slog"
	"net/http"

	"github.com/taibuivan/filmsync/internal/platform/constants"
	"github.com/taibuivan/filmsync/internal/platform/respond"
)

// Dependencies are the liveness checks the readiness handler pings before
// reporting itself healthy. CheckCache is nil when no distributed run
// lock is configured, in which case it is skipped entirely.
type Dependencies struct {
	CheckDatabase func() error
	CheckCache    func() error
}

// RunStatus is the run state and watermark persisted in the main state
// store: State is START while a run is in flight and FINISH or ERROR
// after one ends; Watermark is the last advanced watermark.
type RunStatus struct {
	State     string `json:"state"`
	Watermark string `json:"watermark,omitempty"`
}

// StatusReader reports the last known run status. It is implemented by
// the main state store wrapper so the handler never touches storage
// internals directly.
type StatusReader func() (RunStatus, error)

type checkResult struct {
	Name  string `json:"name"`
	IsOK  bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type healthHandler struct {
	dependencies Dependencies
	status       StatusReader
	logger       *slog.Logger
}

// NewHealthHandlers builds the liveness and readiness handlers.
func NewHealthHandlers(deps Dependencies, status StatusReader, logger *slog.Logger) (liveness, readiness http.HandlerFunc) {
	h := &healthHandler{dependencies: deps, status: status, logger: logger}
	return h.liveness, h.readiness
}

func (h *healthHandler) liveness(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{
		constants.FieldStatus:  "ok",
		constants.FieldApp:     constants.AppName,
		constants.FieldVersion: constants.AppVersion,
	})
}

func (h *healthHandler) readiness(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	checks := []checkResult{runCheck("postgres", h.dependencies.CheckDatabase)}
	if h.dependencies.CheckCache != nil {
		checks = append(checks, runCheck("redis", h.dependencies.CheckCache))
	}

	allOK := true
	for _, c := range checks {
		if !c.IsOK {
			allOK = false
		}
	}

	run, err := h.status()
	if err != nil {
		h.logger.ErrorContext(ctx, "readiness_status_read_failed", slog.String("error", err.Error()))
	}

	payload := map[string]any{
		constants.FieldChecks: checks,
		"last_run":            run,
	}

	if !allOK {
		payload[constants.FieldStatus] = "degraded"
		respond.JSON(writer, http.StatusServiceUnavailable, payload)
		return
	}

	payload[constants.FieldStatus] = "ready"
	respond.JSON(writer, http.StatusOK, payload)
}

func runCheck(name string, check func() error) checkResult {
	if err := check(); err != nil {
		return checkResult{Name: name, IsOK: false, Error: err.Error()}
	}
	return checkResult{Name: name, IsOK: true}
}
