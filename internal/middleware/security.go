package middleware

import (
	"fmt"
	"net/http"
)

// SecureHeaders provides configurable security headers
type SecureHeaders struct {
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	ContentSecurityPolicy string
	XFrameOptions         string
	XContentTypeOptions   string
	ReferrerPolicy        string
}

// DefaultSecureHeaders returns headers suited to a JSON and file download API
func DefaultSecureHeaders() *SecureHeaders {
	return &SecureHeaders{
		HSTSMaxAge:            63072000, // 2 years
		HSTSIncludeSubdomains: true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		XFrameOptions:         "DENY",
		XContentTypeOptions:   "nosniff",
		ReferrerPolicy:        "no-referrer",
	}
}

// Handler returns the middleware handler
func (sh *SecureHeaders) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		if sh.HSTSMaxAge > 0 && r.TLS != nil {
			hsts := fmt.Sprintf("max-age=%d", sh.HSTSMaxAge)
			if sh.HSTSIncludeSubdomains {
				hsts += "; includeSubDomains"
			}
			h.Set("Strict-Transport-Security", hsts)
		}
		if sh.ContentSecurityPolicy != "" {
			h.Set("Content-Security-Policy", sh.ContentSecurityPolicy)
		}
		if sh.XFrameOptions != "" {
			h.Set("X-Frame-Options", sh.XFrameOptions)
		}
		if sh.XContentTypeOptions != "" {
			h.Set("X-Content-Type-Options", sh.XContentTypeOptions)
		}
		if sh.ReferrerPolicy != "" {
			h.Set("Referrer-Policy", sh.ReferrerPolicy)
		}

		next.ServeHTTP(w, r)
	})
}
