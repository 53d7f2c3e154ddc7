package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// sensitiveFields are JSON keys whose values never reach the logs.
var sensitiveFields = []string{
	"password",
	"currentpassword",
	"newpassword",
	"token",
	"accesstoken",
	"refreshtoken",
	"authorization",
	"otp",
	"secret",
	"apikey",
}

// LoggingMiddleware logs each request and its outcome. Request bodies are
// logged with credential fields masked; response bodies are not logged at
// all, they routinely carry tokens.
func LoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			var body []byte
			if r.Body != nil && r.ContentLength > 0 && r.ContentLength < 1<<16 {
				body, _ = io.ReadAll(r.Body)
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			ww := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(ww, r)

			status := ww.status
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_addr", r.RemoteAddr,
				"body", maskSensitive(body),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// maskSensitive replaces credential fields in a JSON body with a marker.
// Non-JSON bodies are dropped entirely rather than risk leaking.
func maskSensitive(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "[non-json body omitted]"
	}

	for key := range data {
		normalized := strings.ReplaceAll(strings.ToLower(key), "_", "")
		for _, field := range sensitiveFields {
			if strings.Contains(normalized, field) {
				data[key] = "[FILTERED]"
				break
			}
		}
	}

	masked, err := json.Marshal(data)
	if err != nil {
		return "[body omitted]"
	}
	return string(masked)
}
