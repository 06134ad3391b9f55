package identity

import (
	"encoding/base64"
	"net/url"
	"testing"
)

func launchURL(params url.Values) string {
	return "https://dash.example.com/report?" + params.Encode()
}

func TestParseURLNoIdentityParams(t *testing.T) {
	rec := ParseURL("https://dash.example.com/report?foo=bar&page=2")
	if !rec.Empty() {
		t.Errorf("expected empty record, got %v", rec)
	}
}

func TestParseURLUnparsable(t *testing.T) {
	rec := ParseURL("://not a url")
	if !rec.Empty() {
		t.Errorf("expected empty record for unparsable url, got %v", rec)
	}
}

func TestParseURLFlatAliases(t *testing.T) {
	rec := ParseURL(launchURL(url.Values{
		"employee_id":  {"E100"},
		"name":         {"Li"},
		"department":   {"QA"},
		"access_token": {"tok-123"},
	}))

	if v, _ := rec.String(KeyEmployeeID); v != "E100" {
		t.Errorf("employeeId = %q, want E100", v)
	}
	if v, _ := rec.String(KeyUserName); v != "Li" {
		t.Errorf("userName = %q, want Li", v)
	}
	if v, _ := rec.String(KeyDept); v != "QA" {
		t.Errorf("dept = %q, want QA", v)
	}
	if v, _ := rec.String(KeyToken); v != "tok-123" {
		t.Errorf("token = %q, want tok-123", v)
	}
}

func TestParseURLFlatRoleAndJobNo(t *testing.T) {
	rec := ParseURL(launchURL(url.Values{
		"role":   {"admin"},
		"job_no": {"CD0097"},
	}))
	if v, _ := rec.String(KeyRole); v != "admin" {
		t.Errorf("role = %q, want admin", v)
	}
	if v, _ := rec.String(KeyJobNo); v != "CD0097" {
		t.Errorf("jobNo = %q, want CD0097", v)
	}
}

func TestParseURLFirstAliasWins(t *testing.T) {
	rec := ParseURL(launchURL(url.Values{
		"userId":  {"canonical"},
		"user_id": {"snake"},
		"id":      {"short"},
	}))
	if v, _ := rec.String(KeyUserID); v != "canonical" {
		t.Errorf("userId = %q, want canonical", v)
	}
}

func TestParseURLInlineJSONOverwritesFlat(t *testing.T) {
	rec := ParseURL(launchURL(url.Values{
		"userName": {"flat"},
		"userInfo": {`{"userName":"inline","role":"admin"}`},
	}))
	if v, _ := rec.String(KeyUserName); v != "inline" {
		t.Errorf("userName = %q, want inline", v)
	}
	if v, _ := rec.String(KeyRole); v != "admin" {
		t.Errorf("role = %q, want admin", v)
	}
}

func TestParseURLBase64OverwritesInline(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString([]byte(`{"userName":"b64"}`))
	rec := ParseURL(launchURL(url.Values{
		"userName":       {"flat"},
		"userInfo":       {`{"userName":"inline"}`},
		"userInfoBase64": {b64},
	}))
	if v, _ := rec.String(KeyUserName); v != "b64" {
		t.Errorf("userName = %q, want b64", v)
	}
}

func TestParseURLBadInlineJSONIgnored(t *testing.T) {
	rec := ParseURL(launchURL(url.Values{
		"userName": {"flat"},
		"userInfo": {"{not json"},
	}))
	if v, _ := rec.String(KeyUserName); v != "flat" {
		t.Errorf("userName = %q, want flat", v)
	}
}

func TestParseURLBadBase64Ignored(t *testing.T) {
	rec := ParseURL(launchURL(url.Values{
		"userName":       {"flat"},
		"userInfoBase64": {"!!!not-base64!!!"},
	}))
	if v, _ := rec.String(KeyUserName); v != "flat" {
		t.Errorf("userName = %q, want flat", v)
	}
}

func TestParseURLSnapshot(t *testing.T) {
	snapshot := `{
		"localStorage": {
			"token": "snap-token",
			"userInfo": "{\"userName\":\"Zhao\",\"role\":\"super\"}"
		},
		"toolInfo": {"version": "2.1"},
		"timestamp": 1700000000
	}`
	rec := ParseURL(launchURL(url.Values{"storageData": {snapshot}}))

	if v, _ := rec.String(KeyToken); v != "snap-token" {
		t.Errorf("token = %q, want snap-token", v)
	}
	if v, _ := rec.String(KeyUserName); v != "Zhao" {
		t.Errorf("userName = %q, want Zhao", v)
	}
	if v, _ := rec.String(KeyRole); v != "super" {
		t.Errorf("role = %q, want super", v)
	}
	if v, _ := rec.String(KeyUserInfoRaw); v != `{"userName":"Zhao","role":"super"}` {
		t.Errorf("userInfoRaw = %q, want original serialized string", v)
	}
	if _, ok := rec[KeyToolInfo]; !ok {
		t.Error("toolInfo should be copied through")
	}
	if _, ok := rec[KeyTimestamp]; !ok {
		t.Error("timestamp should be copied through")
	}
}

func TestParseURLSnapshotShortCircuitsFlatFields(t *testing.T) {
	snapshot := `{"localStorage":{"userName":"FromSnapshot"}}`
	rec := ParseURL(launchURL(url.Values{
		"storageData": {snapshot},
		"userName":    {"FromFlat"},
		"role":        {"admin"},
	}))
	if v, _ := rec.String(KeyUserName); v != "FromSnapshot" {
		t.Errorf("userName = %q, want FromSnapshot", v)
	}
	if _, ok := rec[KeyRole]; ok {
		t.Error("flat fields must not merge into a valid snapshot")
	}
}

func TestParseURLBadSnapshotFallsThrough(t *testing.T) {
	rec := ParseURL(launchURL(url.Values{
		"storageData": {"{broken"},
		"userName":    {"FromFlat"},
	}))
	if v, _ := rec.String(KeyUserName); v != "FromFlat" {
		t.Errorf("userName = %q, want FromFlat after snapshot fall-through", v)
	}
}

func TestParseURLSnapshotWithoutLocalStorageFallsThrough(t *testing.T) {
	rec := ParseURL(launchURL(url.Values{
		"storageData": {`{"sessionStorage":{"userName":"nope"}}`},
		"userName":    {"FromFlat"},
	}))
	if v, _ := rec.String(KeyUserName); v != "FromFlat" {
		t.Errorf("userName = %q, want FromFlat", v)
	}
}

func TestParseURLSnapshotBadNestedUserInfoKeepsOuterFields(t *testing.T) {
	snapshot := `{"localStorage":{"token":"tok","userInfo":"{broken"}}`
	rec := ParseURL(launchURL(url.Values{"storageData": {snapshot}}))
	if v, _ := rec.String(KeyToken); v != "tok" {
		t.Errorf("token = %q, want tok", v)
	}
	if _, ok := rec[KeyUserInfoRaw]; ok {
		t.Error("userInfoRaw must not be set when nested userInfo fails to decode")
	}
}

func TestStripIdentityParams(t *testing.T) {
	in := launchURL(url.Values{
		"employee_id": {"E100"},
		"token":       {"tok"},
		"page":        {"2"},
	})
	out, changed := StripIdentityParams(in)
	if !changed {
		t.Fatal("expected changed=true")
	}
	u, err := url.Parse(out)
	if err != nil {
		t.Fatalf("stripped url unparsable: %v", err)
	}
	q := u.Query()
	if q.Has("employee_id") || q.Has("token") {
		t.Errorf("identity params survived scrub: %s", out)
	}
	if q.Get("page") != "2" {
		t.Errorf("non-identity param lost: %s", out)
	}
}

func TestStripIdentityParamsNoChange(t *testing.T) {
	in := "https://dash.example.com/report?page=2"
	out, changed := StripIdentityParams(in)
	if changed {
		t.Error("expected changed=false")
	}
	if out != in {
		t.Errorf("url modified without identity params: %s", out)
	}
}
