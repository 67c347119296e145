package middleware

import "net/http"

// MethodOverride lets plain HTML forms drive PATCH/PUT/DELETE routes by
// posting with a ?_method= query parameter.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch r.URL.Query().Get("_method") {
			case http.MethodPatch:
				r.Method = http.MethodPatch
			case http.MethodPut:
				r.Method = http.MethodPut
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}
