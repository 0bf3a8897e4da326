package token

import (
	"context"
	"net/http"

	"tagme/pkg/errs"
)

type holderCtxKey struct{}

type holder struct {
	tok *Token
}

// Middleware validates and slides the bearer token on the way in, and
// re-injects the renewed token as an Authorization response header on
// the way out, unless the handler already set one (e.g. login issuing
// a fresh token).
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tok *Token
		if t := FromAuthHeader(r.Header.Get("Authorization")); t != nil {
			tok = t.Renew()
		}
		h := &holder{tok: tok}
		ctx := context.WithValue(r.Context(), holderCtxKey{}, h)
		iw := &injectWriter{ResponseWriter: w, holder: h}
		next.ServeHTTP(iw, r.WithContext(ctx))
		iw.inject()
	})
}

// Subject returns the authenticated caller id, if any.
func Subject(ctx context.Context) (uint64, bool) {
	h, ok := ctx.Value(holderCtxKey{}).(*holder)
	if !ok || h.tok == nil {
		return 0, false
	}
	return h.tok.Sub, true
}

// Require returns the caller id or an Unauthenticated error.
func Require(ctx context.Context) (uint64, error) {
	sub, ok := Subject(ctx)
	if !ok {
		return 0, errs.Unauthorized("login required")
	}
	return sub, nil
}

// injectWriter writes the renewed Authorization header just before the
// response headers are committed.
type injectWriter struct {
	http.ResponseWriter
	holder *holder
	done   bool
}

func (w *injectWriter) inject() {
	if w.done {
		return
	}
	w.done = true
	if w.holder.tok == nil {
		return
	}
	if w.Header().Get("Authorization") == "" {
		w.Header().Set("Authorization", w.holder.tok.String())
	}
}

func (w *injectWriter) WriteHeader(code int) {
	w.inject()
	w.ResponseWriter.WriteHeader(code)
}

func (w *injectWriter) Write(b []byte) (int, error) {
	w.inject()
	return w.ResponseWriter.Write(b)
}
