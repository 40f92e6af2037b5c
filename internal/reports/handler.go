package reports

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profile-report/internal/shared/server/middleware"
	"profile-report/internal/shared/server/respond"
	"profile-report/internal/templates"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
	// GenerateGuard runs before the generate endpoints, typically a rate limiter.
	GenerateGuard gin.HandlerFunc
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, generateGuard gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, GenerateGuard: generateGuard}
}

// RegisterRoutes attaches the JSON report routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/report", h.view)
	rg.GET("/report/prerequisites", h.prerequisites)
	rg.POST("/report/generate", h.guarded(h.generate)...)
	rg.POST("/report/finalize", h.finalize)
	rg.POST("/report/regenerate", h.regenerate)
}

func (h *Handler) guarded(fn gin.HandlerFunc) []gin.HandlerFunc {
	if h.GenerateGuard == nil {
		return []gin.HandlerFunc{fn}
	}
	return []gin.HandlerFunc{h.GenerateGuard, fn}
}

func (h *Handler) view(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	v, err := h.Svc.View(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	annotate(c, v.Report, v.State)
	respond.OK(c, toViewResponse(v))
}

func (h *Handler) prerequisites(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	p, err := h.Svc.CheckPrerequisites(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{
		"prerequisites": p,
		"allReady":      p.AllReady(),
		"unmet":         nonNil(p.Unmet()),
	})
}

func (h *Handler) generate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if respond.WantsEventStream(c) {
		h.generateStream(c, userID)
		return
	}

	rep, err := h.Svc.Generate(c.Request.Context(), userID, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	annotate(c, &rep, StateDraft)
	respond.JSON(c, http.StatusCreated, toReportResponse(rep))
}

// generateStream reports section progress as server-sent events and ends with
// either a "report" or an "error" event.
func (h *Handler) generateStream(c *gin.Context, userID string) {
	respond.StartEventStream(c)

	rep, err := h.Svc.Generate(c.Request.Context(), userID, func(p Progress) {
		respond.Event(c, "progress", p)
	})
	if err != nil {
		p := classify(err)
		respond.ErrorEvent(c, p.Status, p.Code, p.Message, err)
		return
	}
	annotate(c, &rep, StateDraft)
	respond.Event(c, "report", toReportResponse(rep))
}

func (h *Handler) finalize(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	req.ReportID = strings.TrimSpace(req.ReportID)
	if req.ReportID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "reportId is required", nil)
		return
	}

	rep, err := h.Svc.Finalize(c.Request.Context(), userID, req.ReportID)
	if err != nil {
		writeError(c, err)
		return
	}
	annotate(c, &rep, StateFinal)
	respond.OK(c, toReportResponse(rep))
}

func (h *Handler) regenerate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Regenerate(c.Request.Context(), userID); err != nil {
		writeError(c, err)
		return
	}
	v, err := h.Svc.View(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	annotate(c, v.Report, v.State)
	respond.OK(c, toViewResponse(v))
}

// problem is the HTTP rendering of a service error.
type problem struct {
	Status  int
	Code    string
	Message string
}

func classify(err error) problem {
	switch {
	case errors.Is(err, ErrReportNotFound):
		return problem{http.StatusNotFound, "not_found", "Report not found."}
	case errors.Is(err, templates.ErrNoActiveTemplate):
		return problem{http.StatusConflict, "no_active_template", "No active profile template found."}
	case errors.Is(err, ErrPrerequisitesUnmet):
		return problem{http.StatusConflict, "prerequisites_unmet", "Please complete all prerequisites before generating your profile."}
	case errors.Is(err, ErrReportFinal):
		return problem{http.StatusConflict, "report_final", "Your profile is final and can no longer be changed."}
	case errors.Is(err, ErrDraftPending):
		return problem{http.StatusConflict, "draft_pending", "A draft profile already exists. Finalize or regenerate it first."}
	case errors.Is(err, ErrGenerationInProgress):
		return problem{http.StatusConflict, "generation_in_progress", "Your profile is already being generated. Please wait for it to finish."}
	case errors.Is(err, ErrIncompleteGeneration):
		return problem{http.StatusBadGateway, "generation_incomplete", "Some sections could not be generated. Nothing was saved; please try again."}
	}

	switch KindOf(err) {
	case KindPrecondition:
		msg := "Error saving report."
		var e *Error
		if errors.As(err, &e) && e.Err != nil {
			msg = "Error saving report: " + e.Err.Error()
		}
		return problem{http.StatusUnprocessableEntity, "precondition_failed", msg}
	case KindCompletion:
		return problem{http.StatusBadGateway, "generation_failed", "Error generating profile. Please try again."}
	case KindMalformed:
		return problem{http.StatusBadGateway, "malformed_record", "Stored profile data could not be read."}
	case KindDatastore:
		return problem{http.StatusBadGateway, "datastore_error", "Error loading profile data. Please try again."}
	}
	return problem{http.StatusInternalServerError, "internal_error", "Something went wrong."}
}

func writeError(c *gin.Context, err error) {
	p := classify(err)
	respond.Fail(c, p.Status, p.Code, p.Message, nil, err)
}

func annotate(c *gin.Context, rep *Report, state State) {
	if rep != nil {
		c.Set(middleware.ReportIDKey, rep.ID)
	}
	c.Set(middleware.ReportStateKey, string(state))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
