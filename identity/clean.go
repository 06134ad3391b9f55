package identity

import (
	"log"
	"net/url"
)

// identityParams lists every query parameter ParseURL understands, in any
// alias spelling. Used when scrubbing a launch URL after bootstrap.
var identityParams = []string{
	paramStorageData,
	"userId", "user_id", "id",
	"userName", "user_name", "name",
	"token", "access_token", "accessToken",
	"email", "dept", "department",
	"employeeId", "employee_id",
	"jobNo", "job_no", "role", "product",
	paramUserInfo, paramUserInfoBase64,
}

// StripIdentityParams removes all recognized identity parameters from the
// URL and reports whether anything was removed. The caller is expected to
// apply the result with a history-replacing edit, never a new entry.
func StripIdentityParams(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		log.Printf("identity: cannot scrub unparsable url: %v", err)
		return rawURL, false
	}
	q := u.Query()
	changed := false
	for _, p := range identityParams {
		if q.Has(p) {
			q.Del(p)
			changed = true
		}
	}
	if !changed {
		return rawURL, false
	}
	u.RawQuery = q.Encode()
	return u.String(), true
}
