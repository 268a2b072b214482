package backend

import (
	"net/http"
	"strings"
)

// hopHeaders apply to a single connection and are never relayed.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// CopyHeaders copies the end-to-end headers of src into dst. Hop-by-hop
// headers, including those listed in src's Connection header, are skipped.
func CopyHeaders(dst, src http.Header) {
	skip := make(map[string]bool, len(hopHeaders))
	for _, key := range hopHeaders {
		skip[key] = true
	}
	for _, value := range src.Values("Connection") {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				skip[http.CanonicalHeaderKey(name)] = true
			}
		}
	}

	for key, values := range src {
		if skip[http.CanonicalHeaderKey(key)] {
			continue
		}
		dst.Del(key)
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
