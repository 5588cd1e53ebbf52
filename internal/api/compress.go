package api

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// brotliResponseWriter wraps an http.ResponseWriter, transparently
// compressing the body through a brotli.Writer. Close must be called by the
// caller once the handler returns.
type brotliResponseWriter struct {
	http.ResponseWriter
	bw *brotli.Writer
}

func (w *brotliResponseWriter) Write(p []byte) (int, error) {
	return w.bw.Write(p)
}

// compressJSON negotiates Brotli for everything except /stream, whose
// output is already-compressed media and must reach the client byte for
// byte as the subprocess produced it.
func compressJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/stream" || !strings.Contains(r.Header.Get("Accept-Encoding"), "br") {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Encoding", "br")
		w.Header().Add("Vary", "Accept-Encoding")
		bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
		defer bw.Close()
		next.ServeHTTP(&brotliResponseWriter{ResponseWriter: w, bw: bw}, r)
	})
}
