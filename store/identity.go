// Package store persists the canonical identity record and its derived
// fields. It is the only stateful boundary of the gating core: codec,
// resolver and guard are pure, and every consumer takes a store handle
// instead of reaching into ambient storage.
package store

import "github.com/worklens/dashgate/identity"

// Storage keys. The record key and the legacy aliases mirror what the
// dashboard's earlier storage layout used, so side channels that read
// individual fields keep working.
const (
	KeyRecord      = "userInfo"
	KeyToken       = "token"
	KeyTokenAlt    = "accessToken"
	KeyTimestamp   = "userInfo_timestamp"
	KeyUserInfoRaw = "userInfoRaw"
	KeySessionID   = "bootstrapSession"
)

// fanoutFields are copied from the merged record to individually
// addressable entries for legacy direct reads.
var fanoutFields = []string{
	"username", "userId", "realName", "userType",
	"email", "jobNo", "role", "product", "lastLogin",
}

// IdentityStore is the persistence contract for the gating core.
//
// Merge is merge-on-write: fields already stored survive unless the new
// record carries a non-empty value for them. Read reports absent on a
// missing or unparsable record; in assisted mode it may substitute a
// configured fallback. All failures degrade to false/absent and a log
// line, never an error to the caller.
type IdentityStore interface {
	Merge(rec identity.Record) bool
	Read() (identity.Record, bool)
	Token() (string, bool)
	Clear()
	ClearToken()
}

// Options tunes store behavior shared by all backends.
type Options struct {
	// Assisted enables the local-iteration fallback: Read returns
	// Fallback when no record is stored. Must be off in production.
	Assisted bool
	Fallback identity.Record
}

// fallback returns the assisted-mode record, or absent when the mode is
// off or no fallback is configured.
func (o Options) fallback() (identity.Record, bool) {
	if o.Assisted && !o.Fallback.Empty() {
		return o.Fallback.Clone(), true
	}
	return nil, false
}
