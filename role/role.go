// Package role derives the canonical dashboard role from the stored
// identity record. Resolution is pure over store state and configuration;
// nothing here caches across navigations.
package role

import (
	"strings"

	"github.com/worklens/dashgate/bootstrap"
	"github.com/worklens/dashgate/identity"
	"github.com/worklens/dashgate/store"
)

// Role is the canonical authorization level. Unrecognized role strings
// pass through verbatim as extension roles; they are not one of the
// canonical three but are not errors either.
type Role string

const (
	Super  Role = "super"
	Admin  Role = "admin"
	Common Role = "common"
	// Unset means no resolvable role: fail closed, personal-page only.
	Unset Role = ""
)

// Normalize maps a free-form role value to its canonical form. Matching
// is case-insensitive and accepts both the Latin tokens and the native
// labels the upstream systems emit.
func Normalize(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return Unset
	case "super", "超级管理员":
		return Super
	case "admin", "管理员", "administrator":
		return Admin
	case "common", "普通用户", "普通":
		return Common
	default:
		return Role(strings.ToLower(strings.TrimSpace(raw)))
	}
}

// Resolver reads the identity store and answers role queries.
type Resolver struct {
	store store.IdentityStore
	cfg   bootstrap.Config
}

// NewResolver returns a resolver over st. cfg gates the assisted-mode
// jobNo override; outside assisted mode that path is dead code so local
// configuration can never self-escalate privileges.
func NewResolver(st store.IdentityStore, cfg bootstrap.Config) *Resolver {
	return &Resolver{store: st, cfg: cfg}
}

// Resolve derives the current role:
//  1. no stored record: Unset
//  2. role field: normalized value
//  3. isAdmin / is_admin boolean: Admin
//  4. assisted mode + jobNo matching the configured admin job number: Admin
//  5. otherwise Unset
func (r *Resolver) Resolve() Role {
	rec, ok := r.store.Read()
	if !ok {
		return Unset
	}

	if raw, ok := rec.String(identity.KeyRole); ok && strings.TrimSpace(raw) != "" {
		return Normalize(raw)
	}

	if rec.Bool(identity.KeyIsAdmin) || rec.Bool(identity.KeyIsAdminSnake) {
		return Admin
	}

	if r.cfg.Assisted && r.cfg.AdminJobNo != "" {
		if jobNo, ok := rec.String(identity.KeyJobNo); ok && jobNo == r.cfg.AdminJobNo {
			return Admin
		}
	}

	return Unset
}

// IsSuperAdmin reports whether the current role is Super.
func (r *Resolver) IsSuperAdmin() bool { return r.Resolve() == Super }

// IsAdmin reports whether the current role is Admin or Super.
func (r *Resolver) IsAdmin() bool {
	role := r.Resolve()
	return role == Super || role == Admin
}
