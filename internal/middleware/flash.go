// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hitoshi/schoolrecords/internal/flash"
)

// flashCookieName はブラウザごとのフラッシュ領域を識別するCookieの名前。
const flashCookieName = "flash_id"

// CookieConfig はミドルウェアが発行するCookieの属性。
type CookieConfig struct {
	Secure bool
	Domain string
}

// NewFlashMiddleware はflash_id Cookieからフラッシュセッションを組み立て、
// リクエストコンテキストに注入するミドルウェアを返す。
// Cookieが無いか値がUUIDでない場合は新しいIDを発行する。
func NewFlashMiddleware(store flash.Store, config CookieConfig) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if cookie, err := r.Cookie(flashCookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}

			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     flashCookieName,
					Value:    id,
					Path:     "/",
					Domain:   config.Domain,
					HttpOnly: true,
					Secure:   config.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := flash.NewContext(r.Context(), flash.NewSession(id, store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
