package reports

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profile-report/internal/shared/server/middleware"
	"profile-report/internal/shared/server/respond"
)

//go:embed web/report.html
var pageFS embed.FS

const pagePath = "/report"

// PageTemplate returns the parsed HTML templates for the report page. The
// router installs it with gin's SetHTMLTemplate.
func PageTemplate() *template.Template {
	return template.Must(template.New("report").Funcs(template.FuncMap{
		"check": func(ok bool) string {
			if ok {
				return "✅"
			}
			return "❌"
		},
	}).ParseFS(pageFS, "web/report.html"))
}

type pageData struct {
	State         State
	Report        *Report
	Prerequisites *Prerequisites
	Blocked       string
	CanGenerate   bool
	Flash         *Flash
	Error         string
}

// RegisterPageRoutes attaches the server-rendered page and its form posts.
func (h *Handler) RegisterPageRoutes(rg *gin.RouterGroup) {
	rg.GET(pagePath, h.page)
	rg.POST(pagePath+"/generate", h.guarded(h.pageGenerate)...)
	rg.POST(pagePath+"/finalize", h.pageFinalize)
	rg.POST(pagePath+"/regenerate", h.pageRegenerate)
}

func (h *Handler) page(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	data := pageData{Flash: h.Svc.Sessions.PopFlash(userID)}

	v, err := h.Svc.View(c.Request.Context(), userID)
	if err != nil {
		p := classify(err)
		respond.LogProblem(c, p.Status, p.Code, err)
		data.Error = p.Message
		c.HTML(p.Status, "report.html", data)
		return
	}

	annotate(c, v.Report, v.State)
	data.State = v.State
	data.Report = v.Report
	data.Prerequisites = v.Prerequisites
	data.Blocked = v.Blocked
	data.CanGenerate = v.CanGenerate
	c.HTML(http.StatusOK, "report.html", data)
}

func (h *Handler) pageGenerate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	rep, err := h.Svc.Generate(c.Request.Context(), userID, nil)
	if err != nil {
		h.flashProblem(c, userID, err)
	} else {
		annotate(c, &rep, StateDraft)
		h.flashCurrent(userID, "Profile generated successfully!")
	}
	c.Redirect(http.StatusSeeOther, pagePath)
}

func (h *Handler) pageFinalize(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	reportID := strings.TrimSpace(c.PostForm("report_id"))
	if reportID == "" {
		h.Svc.Sessions.SetFlash(userID, "error", "Missing report id.")
		c.Redirect(http.StatusSeeOther, pagePath)
		return
	}

	rep, err := h.Svc.Finalize(c.Request.Context(), userID, reportID)
	if err != nil {
		h.flashProblem(c, userID, err)
	} else {
		annotate(c, &rep, StateFinal)
		h.flashCurrent(userID, "Profile saved!")
	}
	c.Redirect(http.StatusSeeOther, pagePath)
}

func (h *Handler) pageRegenerate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Regenerate(c.Request.Context(), userID); err != nil {
		h.flashProblem(c, userID, err)
	}
	c.Redirect(http.StatusSeeOther, pagePath)
}

// flashCurrent flashes message with a short description of the session's
// current report.
func (h *Handler) flashCurrent(userID, message string) {
	if cur := h.Svc.Sessions.Get(userID).CurrentReport; cur != nil {
		message = fmt.Sprintf("%s (%d sections, template v%d)", message, len(cur.Content.Sections), cur.TemplateVersion)
	}
	h.Svc.Sessions.SetFlash(userID, "success", message)
}

func (h *Handler) flashProblem(c *gin.Context, userID string, err error) {
	p := classify(err)
	respond.LogProblem(c, p.Status, p.Code, err)
	h.Svc.Sessions.SetFlash(userID, "error", p.Message)
}
