package identity

import (
	"encoding/base64"
	"encoding/json"
	"log"
	"net/url"
)

// Launch URL parameter names outside the flat alias groups.
const (
	paramStorageData    = "storageData"
	paramUserInfo       = "userInfo"
	paramUserInfoBase64 = "userInfoBase64"
)

// aliasGroups maps each canonical record key to the query parameter names
// that may carry it. The first present, non-empty alias wins.
var aliasGroups = []struct {
	canonical string
	aliases   []string
}{
	{KeyUserID, []string{"userId", "user_id", "id"}},
	{KeyUserName, []string{"userName", "user_name", "name"}},
	{KeyToken, []string{"token", "access_token", "accessToken"}},
	{KeyEmail, []string{"email"}},
	{KeyDept, []string{"dept", "department"}},
	{KeyEmployeeID, []string{"employeeId", "employee_id"}},
	{KeyJobNo, []string{"jobNo", "job_no"}},
	{KeyRole, []string{"role"}},
	{KeyProduct, []string{"product"}},
}

// ParseURL extracts an identity record from a launch URL's query string.
// It never fails the caller: malformed input yields an empty or partial
// record and a log line, not an error.
//
// Evaluation order:
//  1. storageData snapshot — on success returns immediately, flat fields
//     are not merged in; on decode failure falls through.
//  2. flat alias groups.
//  3. userInfo inline JSON, overwriting flat fields on key collision.
//  4. userInfoBase64, overwriting userInfo on key collision.
//
// An empty result is meaningful: this URL asserts no identity.
func ParseURL(rawURL string) Record {
	u, err := url.Parse(rawURL)
	if err != nil {
		log.Printf("identity: unparsable launch url: %v", err)
		return Record{}
	}
	q := u.Query()

	if s := q.Get(paramStorageData); s != "" {
		if rec, ok := parseSnapshot(s); ok {
			return rec
		}
	}

	rec := Record{}
	for _, g := range aliasGroups {
		for _, a := range g.aliases {
			if v := q.Get(a); v != "" {
				rec[g.canonical] = v
				break
			}
		}
	}

	if s := q.Get(paramUserInfo); s != "" {
		var inline Record
		if err := json.Unmarshal([]byte(s), &inline); err != nil {
			log.Printf("identity: bad userInfo parameter: %v", err)
		} else {
			rec.MergeFrom(inline)
		}
	}

	if s := q.Get(paramUserInfoBase64); s != "" {
		if decoded, err := base64.StdEncoding.DecodeString(s); err != nil {
			log.Printf("identity: bad userInfoBase64 parameter: %v", err)
		} else {
			var inline Record
			if err := json.Unmarshal(decoded, &inline); err != nil {
				log.Printf("identity: bad userInfoBase64 payload: %v", err)
			} else {
				rec.MergeFrom(inline)
			}
		}
	}

	return rec
}

// parseSnapshot decodes the storageData parameter: a JSON object carrying
// a full prior storage state under a "localStorage" key, used to hand off
// a session between contexts. Reports false when the snapshot cannot be
// used, in which case the caller falls back to flat-field parsing.
func parseSnapshot(s string) (Record, bool) {
	var snapshot map[string]any
	if err := json.Unmarshal([]byte(s), &snapshot); err != nil {
		log.Printf("identity: bad storageData parameter: %v", err)
		return nil, false
	}

	inner, ok := snapshot["localStorage"].(map[string]any)
	if !ok {
		return nil, false
	}

	rec := make(Record, len(inner))
	for k, v := range inner {
		rec[k] = v
	}

	// Legacy convention: the inner userInfo entry is itself a serialized
	// object. Decode and lift its fields to the top level, keeping the
	// original string under userInfoRaw.
	if raw, ok := rec[paramUserInfo].(string); ok && raw != "" {
		var nested Record
		if err := json.Unmarshal([]byte(raw), &nested); err != nil {
			log.Printf("identity: bad nested userInfo in storageData: %v", err)
		} else {
			for k, v := range nested {
				rec[k] = v
			}
			rec[KeyUserInfoRaw] = raw
		}
	}

	if v, ok := snapshot[KeyToolInfo]; ok {
		rec[KeyToolInfo] = v
	}
	if v, ok := snapshot[KeyTimestamp]; ok {
		rec[KeyTimestamp] = v
	}

	return rec, true
}
