// Package bootstrap runs the identity capture sequence exactly once per
// process, before the first navigation is resolved.
package bootstrap

import (
	"log"
	"sync"

	"github.com/worklens/dashgate/identity"
	"github.com/worklens/dashgate/store"
)

// Config gates the non-production assists. It is an explicit value object
// handed to the sequencer and the role resolver at construction; deep
// logic never reads the process environment on its own.
type Config struct {
	// Assisted permits seeding a default identity and the admin job
	// number override. Must be off in production: authorization there
	// depends solely on server-asserted fields.
	Assisted bool
	// Seed is merged when assisted mode is on and the launch URL
	// asserts no identity.
	Seed identity.Record
	// AdminJobNo grants the admin role to a matching jobNo, assisted
	// mode only.
	AdminJobNo string
}

// Sequencer captures identity from the launch URL into the store.
type Sequencer struct {
	store store.IdentityStore
	cfg   Config
	once  sync.Once
}

// NewSequencer returns a sequencer writing through st.
func NewSequencer(st store.IdentityStore, cfg Config) *Sequencer {
	return &Sequencer{store: st, cfg: cfg}
}

// Run parses rawURL and merges any asserted identity into the store. When
// the URL is empty of identity and assisted mode is on, the configured
// seed is merged instead; outside assisted mode an empty URL writes
// nothing. Only the first call does work; later calls return the zero
// result. Returns the merged record and whether a write happened.
func (s *Sequencer) Run(rawURL string) (identity.Record, bool) {
	var (
		rec   identity.Record
		saved bool
	)
	s.once.Do(func() {
		parsed := identity.ParseURL(rawURL)
		if !parsed.Empty() {
			if s.store.Merge(parsed) {
				rec, saved = parsed, true
				log.Printf("bootstrap: identity captured from launch url (%d fields)", len(parsed))
			}
			return
		}
		if s.cfg.Assisted && !s.cfg.Seed.Empty() {
			seed := s.cfg.Seed.Clone()
			if s.store.Merge(seed) {
				rec, saved = seed, true
				log.Printf("bootstrap: assisted mode seeded identity (%d fields)", len(seed))
			}
		}
	})
	return rec, saved
}
