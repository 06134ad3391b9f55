package identity

import "fmt"

// Recognized record keys. A Record may carry arbitrary extra keys on top
// of these; only the ones below have meaning to the resolver and store.
const (
	KeyUserID       = "userId"
	KeyUserName     = "userName"
	KeyName         = "name"
	KeyEmail        = "email"
	KeyDept         = "dept"
	KeyEmployeeID   = "employeeId"
	KeyJobNo        = "jobNo"
	KeyProduct      = "product"
	KeyToken        = "token"
	KeyRole         = "role"
	KeyIsAdmin      = "isAdmin"
	KeyIsAdminSnake = "is_admin"
	KeyUserInfoRaw  = "userInfoRaw"
	KeyToolInfo     = "toolInfo"
	KeyTimestamp    = "timestamp"
)

// Record is a user identity handed off through a launch URL. Keys are not
// fixed in number; values are scalars or nested objects as decoded from JSON.
type Record map[string]any

// Empty reports whether the record asserts no identity at all.
func (r Record) Empty() bool { return len(r) == 0 }

// String returns the value for key rendered as a string. Booleans and
// numbers are formatted; nested objects report absent.
func (r Record) String(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case float64:
		return fmt.Sprintf("%v", t), true
	case int:
		return fmt.Sprintf("%d", t), true
	case int64:
		return fmt.Sprintf("%d", t), true
	default:
		return "", false
	}
}

// Bool returns the value for key interpreted as a boolean. Only a true
// boolean or the string "true" count; anything else is false.
func (r Record) Bool(key string) bool {
	v, ok := r[key]
	if !ok {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	default:
		return false
	}
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// MergeFrom overlays src onto r. A present, non-empty value in src always
// wins for its key; keys known only to r survive untouched. This is the
// append-only merge rule: a later launch URL can add or overwrite fields
// but can never silently drop what an earlier one established.
func (r Record) MergeFrom(src Record) {
	for k, v := range src {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		r[k] = v
	}
}
