package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worklens/dashgate/identity"
)

// HandleReportSummary returns per-department hour totals for a month
// (?month=2006-01, defaults to the current month).
func (s *Server) HandleReportSummary(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report store not configured"})
		return
	}
	month := c.DefaultQuery("month", currentMonth())
	rows, err := s.reports.MonthlySummary(c.Request.Context(), month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "departments": rows})
}

// HandlePersonalEntries returns the caller's own entries. The job number
// comes from the stored identity, never from the query string, so one
// user cannot read another's sheet by editing the URL.
func (s *Server) HandlePersonalEntries(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report store not configured"})
		return
	}
	rec, ok := s.store.Read()
	if !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "no identity on record"})
		return
	}
	jobNo, ok := rec.String(identity.KeyJobNo)
	if !ok || jobNo == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "identity has no job number"})
		return
	}
	month := c.DefaultQuery("month", currentMonth())
	entries, err := s.reports.PersonalEntries(c.Request.Context(), jobNo, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "job_no": jobNo, "entries": entries})
}

// HandleListSettings returns config-page settings (?category= filters).
func (s *Server) HandleListSettings(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report store not configured"})
		return
	}
	settings, err := s.reports.ListSettings(c.Request.Context(), c.Query("category"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

// HandleSetSetting writes one setting. Gated on the super role: the
// config page is super-only and its API must not be weaker than its page.
func (s *Server) HandleSetSetting(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report store not configured"})
		return
	}
	if !s.resolver.IsSuperAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "requires super role"})
		return
	}
	var body struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.reports.SetSetting(c.Request.Context(), c.Param("key"), body.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": c.Param("key"), "value": body.Value})
}
