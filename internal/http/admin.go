package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

// AdminController serves the admin dashboard, the admin's own books and
// the audit trail. Every route is restricted to admins by the router.
type AdminController struct {
	dashboard *services.DashboardService
	catalog   *services.CatalogService
	auditor   *audit.Service
}

func NewAdminController(dashboard *services.DashboardService, catalog *services.CatalogService, auditor *audit.Service) *AdminController {
	return &AdminController{dashboard: dashboard, catalog: catalog, auditor: auditor}
}

func (ac *AdminController) Dashboard(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	data, err := ac.dashboard.Dashboard(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "", gin.H{"data": data})
}

// Books lists the books uploaded by the calling admin, newest first.
func (ac *AdminController) Books(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	books, err := ac.catalog.ListAdminBooks(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	if books == nil {
		books = []entities.Book{}
	}

	respondOK(c, "Books fetched successfully", gin.H{"books": books})
}

// AuditEvents pages through the audit trail, newest first.
func (ac *AdminController) AuditEvents(c *gin.Context) {
	var query auditQuery
	if !bindQuery(c, &query, auditRules) {
		return
	}

	filter := entities.AuditEventFilter{
		UserID:    query.UserID,
		EventType: entities.AuditEventType(query.EventType),
		Limit:     query.Limit,
		Offset:    query.Offset,
	}.Normalize()

	events, total, err := ac.auditor.GetEvents(c.Request.Context(), filter)
	if err != nil {
		respondError(c, apperr.Unexpected("Failed to fetch audit events", err))
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Success: true,
		Data:    events,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
		HasMore: int64(filter.Offset+len(events)) < total,
	})
}
