package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-session/session/v3"

	"github.com/worklens/dashgate/guard"
	"github.com/worklens/dashgate/identity"
)

const noticeSessionKey = "guard_notice"

// BootstrapMiddleware captures identity asserted by the request URL into
// the store before the guard runs. A request without identity parameters
// writes nothing; the first request of the process also drives the
// startup sequencer so assisted-mode seeding happens exactly once.
func (s *Server) BootstrapMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.seq.Run(c.Request.URL.String())
		if rec := identity.ParseURL(c.Request.URL.String()); !rec.Empty() {
			if s.store.Merge(rec) {
				log.Printf("server: identity re-bootstrapped from request url (%d fields)", len(rec))
			}
		}
		c.Next()
	}
}

// GuardMiddleware enforces the page's access rule. On denial it stashes
// the warning in the session and redirects to the personal page with 303
// See Other so the denied attempt does not land in browser history.
func (s *Server) GuardMiddleware(page guard.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := s.policy.Decide(page, s.resolver.Resolve())
		if d.Allowed {
			c.Next()
			return
		}

		log.Printf("guard: denied %s: %s", page, d.Warning)
		if sess, err := session.Start(c.Request.Context(), c.Writer, c.Request); err == nil {
			sess.Set(noticeSessionKey, d.Warning)
			if err := sess.Save(); err != nil {
				log.Printf("guard: cannot save denial notice: %v", err)
			}
		}
		c.Redirect(http.StatusSeeOther, "/"+string(d.RedirectTo))
		c.Abort()
	}
}

// takeNotice pops the pending denial notice, if any, so the personal page
// can surface it exactly once.
func takeNotice(c *gin.Context) string {
	sess, err := session.Start(c.Request.Context(), c.Writer, c.Request)
	if err != nil {
		return ""
	}
	v, ok := sess.Get(noticeSessionKey)
	if !ok {
		return ""
	}
	sess.Delete(noticeSessionKey)
	if err := sess.Save(); err != nil {
		log.Printf("guard: cannot clear denial notice: %v", err)
	}
	notice, _ := v.(string)
	return notice
}
