package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/worklens/dashgate/identity"
)

// HandlePersonalPage is the floor page: always reachable, surfaces any
// pending denial notice exactly once.
func (s *Server) HandlePersonalPage(c *gin.Context) {
	payload := gin.H{
		"page": "personal",
		"role": string(s.resolver.Resolve()),
	}
	if rec, ok := s.store.Read(); ok {
		if v, ok := rec.String(identity.KeyUserName); ok {
			payload["user_name"] = v
		}
		if v, ok := rec.String(identity.KeyJobNo); ok {
			payload["job_no"] = v
		}
	}
	if notice := takeNotice(c); notice != "" {
		payload["notice"] = notice
	}
	c.JSON(http.StatusOK, payload)
}

// HandleReportPage serves the aggregate report page shell.
func (s *Server) HandleReportPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page":  "report",
		"role":  string(s.resolver.Resolve()),
		"month": currentMonth(),
	})
}

// HandleConfigPage serves the configuration page shell.
func (s *Server) HandleConfigPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"page": "config",
		"role": string(s.resolver.Resolve()),
	})
}

func currentMonth() string { return time.Now().UTC().Format("2006-01") }
