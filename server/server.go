// Package server exposes the gated dashboard over HTTP: page routes run
// the bootstrap and navigation guard, API routes serve report data behind
// the bearer-token contract.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worklens/dashgate/bootstrap"
	"github.com/worklens/dashgate/guard"
	"github.com/worklens/dashgate/reports"
	"github.com/worklens/dashgate/role"
	"github.com/worklens/dashgate/store"
)

// Server wires the gating core to a Gin engine.
type Server struct {
	cfg      *AppConfig
	store    store.IdentityStore
	resolver *role.Resolver
	policy   guard.Policy
	seq      *bootstrap.Sequencer
	reports  *reports.Store // nil when no database is configured
}

// NewServer builds a server over the given identity store and optional
// report store.
func NewServer(cfg *AppConfig, st store.IdentityStore, rs *reports.Store) *Server {
	bc := cfg.BootstrapConfig()
	return &Server{
		cfg:      cfg,
		store:    st,
		resolver: role.NewResolver(st, bc),
		policy:   guard.DefaultPolicy(),
		seq:      bootstrap.NewSequencer(st, bc),
		reports:  rs,
	}
}

// WithReports attaches the report data store.
func (s *Server) WithReports(rs *reports.Store) *Server {
	s.reports = rs
	return s
}

// Sequencer exposes the bootstrap sequencer for process-start capture.
func (s *Server) Sequencer() *bootstrap.Sequencer { return s.seq }

// Engine builds the Gin router with all routes registered.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())

	// Every page request may carry a fresh identity hand-off.
	pages := r.Group("/", s.BootstrapMiddleware())
	pages.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/"+string(guard.Report))
	})
	pages.GET("/personal", s.GuardMiddleware(guard.Personal), s.HandlePersonalPage)
	pages.GET("/report", s.GuardMiddleware(guard.Report), s.HandleReportPage)
	pages.GET("/config", s.GuardMiddleware(guard.Config), s.HandleConfigPage)

	pages.POST("/signout", s.HandleSignOut)

	// JSON API behind the bearer-token contract.
	api := r.Group("/api", s.TokenMiddleware())
	api.GET("/report/summary", s.HandleReportSummary)
	api.GET("/personal/entries", s.HandlePersonalEntries)
	api.GET("/config/settings", s.HandleListSettings)
	api.PUT("/config/settings/:key", s.HandleSetSetting)

	return r
}

// HandleSignOut clears the whole session: record, credential slots and
// timestamp, atomically from the caller's point of view.
func (s *Server) HandleSignOut(c *gin.Context) {
	s.store.Clear()
	c.JSON(http.StatusOK, gin.H{"signed_out": true})
}
