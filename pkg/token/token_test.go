package token

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewTokenIsValid(t *testing.T) {
	tok := New(42)
	if !tok.IsValid() {
		t.Fatal("fresh token invalid")
	}
	if tok.Sub != 42 {
		t.Fatalf("sub = %d", tok.Sub)
	}
	if tok.Exp-tok.Iat != lifetimeSeconds {
		t.Fatalf("lifetime = %d; want %d", tok.Exp-tok.Iat, lifetimeSeconds)
	}
}

func TestValidityWindowSumsMargins(t *testing.T) {
	now := time.Now().Unix()

	// now is past the midpoint of iat..exp: invalid even though exp is
	// still ahead
	iat, exp := now-100, now+50
	tok := &Token{Sub: 1, Iat: iat, Exp: exp, sign: signature(1, iat, exp)}
	if tok.IsValid() {
		t.Fatal("token past midpoint validated")
	}

	// now is before the midpoint: valid even though exp has passed
	iat, exp = now+200, now-50
	tok = &Token{Sub: 1, Iat: iat, Exp: exp, sign: signature(1, iat, exp)}
	if !tok.IsValid() {
		t.Fatal("token before midpoint rejected")
	}
}

func TestTamperedTokenInvalid(t *testing.T) {
	tok := New(1)
	tok.sign[0] ^= 0xff
	if tok.IsValid() {
		t.Fatal("tampered signature validated")
	}

	tok = New(1)
	tok.Sub = 2
	if tok.IsValid() {
		t.Fatal("tampered subject validated")
	}
}

func TestSecretChangeInvalidates(t *testing.T) {
	tok := New(1)

	old := secret
	secret[0] ^= 0xff
	defer func() { secret = old }()

	if tok.IsValid() {
		t.Fatal("token validated under a different secret")
	}
}

func TestRenew(t *testing.T) {
	tok := New(7)
	tok.Iat -= 100
	tok.sign = signature(tok.Sub, tok.Iat, tok.Exp)

	renewed := tok.Renew()
	if renewed == nil {
		t.Fatal("renew of valid token = nil")
	}
	if renewed.Sub != tok.Sub || renewed.Exp != tok.Exp {
		t.Fatalf("renew changed sub/exp: %+v", renewed)
	}
	if renewed.Iat <= tok.Iat {
		t.Fatalf("iat not refreshed: %d <= %d", renewed.Iat, tok.Iat)
	}
	if !renewed.IsValid() {
		t.Fatal("renewed token invalid")
	}

	tok.sign[0] ^= 0xff
	if tok.Renew() != nil {
		t.Fatal("renew of invalid token != nil")
	}
}

func TestWireRoundTrip(t *testing.T) {
	tok := New(1<<63 + 5)
	got := Decode(tok.Encode())
	if got == nil {
		t.Fatal("decode failed")
	}
	if *got != *tok {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, tok)
	}
	if !got.IsValid() {
		t.Fatal("decoded token invalid")
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	for _, s := range []string{
		"",
		"not base64!!!",
		"AAAA", // valid base64, wrong length
		New(1).Encode() + "AAAA",
	} {
		if Decode(s) != nil {
			t.Fatalf("Decode(%q) != nil", s)
		}
	}
}

func TestFromAuthHeader(t *testing.T) {
	tok := New(9)
	if got := FromAuthHeader(tok.String()); got == nil || got.Sub != 9 {
		t.Fatalf("got %+v", got)
	}
	if FromAuthHeader(tok.Encode()) != nil {
		t.Fatal("accepted header without Bearer prefix")
	}
	if FromAuthHeader("Basic "+tok.Encode()) != nil {
		t.Fatal("accepted non-bearer scheme")
	}
	if FromAuthHeader("") != nil {
		t.Fatal("accepted empty header")
	}
}

func TestMiddlewareInjectsRenewedToken(t *testing.T) {
	var gotSub uint64
	var gotOK bool
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub, gotOK = Subject(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tok := New(11)
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", tok.String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !gotOK || gotSub != 11 {
		t.Fatalf("subject = %d, %v; want 11, true", gotSub, gotOK)
	}
	out := FromAuthHeader(rec.Header().Get("Authorization"))
	if out == nil {
		t.Fatal("no renewed token in response")
	}
	if out.Sub != 11 || !out.IsValid() {
		t.Fatalf("renewed token = %+v", out)
	}
}

func TestMiddlewareKeepsHandlerSetToken(t *testing.T) {
	issued := New(22)
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Authorization", issued.String())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/", nil)
	req.Header.Set("Authorization", New(11).String())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := FromAuthHeader(rec.Header().Get("Authorization"))
	if out == nil || out.Sub != 22 {
		t.Fatalf("response token = %+v; want sub 22", out)
	}
}

func TestMiddlewareIgnoresBadToken(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := Require(r.Context()); err == nil {
			t.Fatal("bad token authenticated")
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Header().Get("Authorization") != "" {
		t.Fatal("response carries a token for an unauthenticated request")
	}
}
