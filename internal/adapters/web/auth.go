package web

import (
	"context"
	"net/http"

	"github.com/ogurasousui/colink-employee-service/internal/core/member"
)

type principalKey struct{}

func principalFromContext(ctx context.Context) *member.Principal {
	v, _ := ctx.Value(principalKey{}).(*member.Principal)
	return v
}

// RequireBasicAuth は HTTP Basic 認証を検証し Principal をコンテキストへ注入します。
// 認証情報が欠落・不正なら 401、Employee に紐づかないアカウントなら 403 です。
func (h *Handler) RequireBasicAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loginID, secret, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="colink"`)
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}

		principal, err := h.members.Authenticate(r.Context(), member.AuthenticateInput{LoginID: loginID, Secret: secret})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
