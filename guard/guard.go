// Package guard decides page access per navigation. The decision is a
// pure function of the destination page and the freshly resolved role;
// the presentation of a denial (redirect, notice) belongs to the caller.
package guard

import (
	"fmt"

	"github.com/worklens/dashgate/role"
)

// Page identifies a gated dashboard page.
type Page string

const (
	Personal Page = "personal"
	Report   Page = "report"
	Config   Page = "config"
)

// Requirement is the access rule a page carries.
type Requirement int

const (
	// RequireNone admits every role, including Unset.
	RequireNone Requirement = iota
	// RequireAdminOrSuper admits Admin and Super.
	RequireAdminOrSuper
	// RequireSuper admits only Super.
	RequireSuper
)

func (r Requirement) String() string {
	switch r {
	case RequireNone:
		return "none"
	case RequireAdminOrSuper:
		return "admin or super"
	case RequireSuper:
		return "super"
	default:
		return fmt.Sprintf("requirement(%d)", int(r))
	}
}

// Policy maps pages to their requirement. Pages missing from the policy
// are treated as RequireSuper: unknown destinations fail closed.
type Policy map[Page]Requirement

// DefaultPolicy gates Report at admin-or-super and Config at super-only.
// Personal is the floor page every role can reach, which also makes a
// redirect loop impossible.
func DefaultPolicy() Policy {
	return Policy{
		Personal: RequireNone,
		Report:   RequireAdminOrSuper,
		Config:   RequireSuper,
	}
}

// Decision is the outcome of a navigation check. A denial always carries
// the redirect target and a human-readable warning naming the required
// role; it is expected control flow, not an error.
type Decision struct {
	Allowed    bool
	RedirectTo Page
	Warning    string
}

// Decide checks whether current may enter page. It never panics; every
// outcome is Allow or Deny+redirect to Personal.
func (p Policy) Decide(page Page, current role.Role) Decision {
	req, known := p[page]
	if !known {
		req = RequireSuper
	}

	switch req {
	case RequireNone:
		return Decision{Allowed: true}
	case RequireAdminOrSuper:
		if current == role.Admin || current == role.Super {
			return Decision{Allowed: true}
		}
	case RequireSuper:
		if current == role.Super {
			return Decision{Allowed: true}
		}
	}

	return Decision{
		Allowed:    false,
		RedirectTo: Personal,
		Warning:    fmt.Sprintf("page %q requires role %s", page, req),
	}
}
