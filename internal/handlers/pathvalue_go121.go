//go:build !go1.22

package handlers

import "net/http"

// net/http gained Request.PathValue in Go 1.22; older toolchains have no
// path values to report.
func pathValue(r *http.Request, name string) string {
	return ""
}
