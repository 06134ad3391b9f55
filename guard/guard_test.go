package guard

import (
	"testing"

	"github.com/worklens/dashgate/role"
)

func TestDecideDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()

	cases := []struct {
		page  Page
		role  role.Role
		allow bool
	}{
		{Personal, role.Unset, true},
		{Personal, role.Common, true},
		{Personal, role.Admin, true},
		{Personal, role.Super, true},

		{Report, role.Unset, false},
		{Report, role.Common, false},
		{Report, role.Admin, true},
		{Report, role.Super, true},

		{Config, role.Unset, false},
		{Config, role.Common, false},
		{Config, role.Admin, false},
		{Config, role.Super, true},

		{Report, role.Role("auditor"), false},
	}

	for _, c := range cases {
		d := p.Decide(c.page, c.role)
		if d.Allowed != c.allow {
			t.Errorf("Decide(%s, %q).Allowed = %v, want %v", c.page, c.role, d.Allowed, c.allow)
		}
		if !d.Allowed {
			if d.RedirectTo != Personal {
				t.Errorf("Decide(%s, %q) redirects to %q, want personal", c.page, c.role, d.RedirectTo)
			}
			if d.Warning == "" {
				t.Errorf("Decide(%s, %q) denial must carry a warning", c.page, c.role)
			}
		}
	}
}

func TestDecideUnknownPageFailsClosed(t *testing.T) {
	p := DefaultPolicy()
	d := p.Decide(Page("billing"), role.Admin)
	if d.Allowed {
		t.Error("unknown page must fail closed for non-super roles")
	}
	if d := p.Decide(Page("billing"), role.Super); !d.Allowed {
		t.Error("unknown page treated as super-only should admit super")
	}
}

func TestDecideSuperOnlyVariant(t *testing.T) {
	// The alternate deployment gates Report at super-only.
	p := Policy{Personal: RequireNone, Report: RequireSuper, Config: RequireSuper}
	if d := p.Decide(Report, role.Admin); d.Allowed {
		t.Error("admin must be denied under the super-only variant")
	}
	if d := p.Decide(Report, role.Super); !d.Allowed {
		t.Error("super must be allowed under the super-only variant")
	}
}

func TestNoRedirectLoop(t *testing.T) {
	p := DefaultPolicy()
	d := p.Decide(Report, role.Unset)
	if d.Allowed {
		t.Fatal("setup: expected denial")
	}
	// Following the redirect must terminate: Personal is unconditional.
	if next := p.Decide(d.RedirectTo, role.Unset); !next.Allowed {
		t.Error("redirect target must always be allowed")
	}
}
