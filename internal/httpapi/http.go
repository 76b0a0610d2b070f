package httpapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"gradeaudit/internal/audit"
)

type Handler struct {
	runner *audit.Runner
}

func NewHandler(runner *audit.Runner) *Handler {
	return &Handler{
		runner: runner,
	}
}

type createAuditRequest struct {
	CourseIDs string `json:"course_ids"`
}

type courseResponse struct {
	Summary audit.CourseSummary `json:"summary"`
	Report  *audit.CourseReport `json:"report,omitempty"`
}

type auditResponse struct {
	ID             string                `json:"id"`
	StartedAt      string                `json:"started_at"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`
	Summaries      []audit.CourseSummary `json:"summaries"`
	Courses        []courseResponse      `json:"courses"`
}

func (h *Handler) CreateAudit(w http.ResponseWriter, r *http.Request) {
	var req createAuditRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		slog.Error("failed to decode request", "err", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	ids := audit.ParseCourseIDs(req.CourseIDs)
	if len(ids) == 0 {
		http.Error(w, "course_ids is required", http.StatusBadRequest)
		return
	}

	batch := h.runner.Run(r.Context(), ids)

	response := &auditResponse{
		ID:             batch.ID.String(),
		StartedAt:      batch.StartedAt.Format(time.RFC3339),
		ElapsedSeconds: batch.Elapsed.Seconds(),
		Summaries:      batch.Summaries(),
		Courses:        make([]courseResponse, 0, len(batch.Results)),
	}
	for _, res := range batch.Results {
		response.Courses = append(response.Courses, courseResponse{Summary: res.Summary, Report: res.Report})
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, response)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := strings.TrimSpace(chi.URLParam(r, "courseID"))
	if courseID == "" {
		http.Error(w, "courseID is required", http.StatusBadRequest)
		return
	}

	res := h.runner.Audit(r.Context(), courseID)

	status := http.StatusOK
	switch res.Summary.Rollup {
	case audit.RollupNotFound:
		status = http.StatusNotFound
	case audit.RollupError:
		status = http.StatusBadGateway
	}
	render.Status(r, status)
	render.JSON(w, r, courseResponse{Summary: res.Summary, Report: res.Report})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, map[string]string{"status": "ok"})
}
