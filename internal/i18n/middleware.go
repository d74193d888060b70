package i18n

import (
	"context"
	"net/http"
	"strings"
)

type userLanguageContextKey struct{}

var userLanguageContextKeyInstance = userLanguageContextKey{}

// supported are the languages the intent service can answer in. Anything
// else degrades to English.
var supported = map[string]bool{
	"en": true,
	"ta": true,
	"hi": true,
}

func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			lng := r.Header.Get("Accept-Language")
			lng, _, _ = strings.Cut(lng, ",")
			lng = strings.TrimSpace(lng)
			lng = normalize(lng)

			if lng != "" {
				ctx = context.WithValue(ctx, userLanguageContextKeyInstance, lng)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithLanguage propagates lng into a context that does not descend
// from the request, such as a voice capture session.
func ContextWithLanguage(ctx context.Context, lng string) context.Context {
	if lng = normalize(lng); lng != "" {
		return context.WithValue(ctx, userLanguageContextKeyInstance, lng)
	}
	return ctx
}

func UserLanguage(ctx context.Context) string {
	if lng, ok := ctx.Value(userLanguageContextKeyInstance).(string); ok {
		return lng
	}
	return ""
}

func normalize(lng string) string {
	if lng == "" {
		return ""
	}
	base, _, _ := strings.Cut(strings.ToLower(lng), "-")
	if supported[base] {
		return base
	}
	return "en"
}
