package middleware

import (
	"net/http"
	"strings"
)

// CORS answers preflight requests and stamps responses for allowed origins.
// Origins from config are matched exactly after trailing-slash normalization;
// a configured "*" admits any origin, though the echoed header is always the
// caller's own origin because the API uses credentialed requests. Vary: Origin
// keeps shared caches from serving one origin's response to another.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			allowAll = true
		default:
			allowed[o] = struct{}{}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		ok := origin != "" && allowAll
		if !ok {
			_, ok = allowed[origin]
		}
		if ok {
			hdr := w.Header()
			hdr.Set("Access-Control-Allow-Origin", origin)
			hdr.Set("Access-Control-Allow-Credentials", "true")
			hdr.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			if ok {
				hdr := w.Header()
				hdr.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
				hdr.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept, X-Filename")
				hdr.Set("Access-Control-Max-Age", "86400")
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
