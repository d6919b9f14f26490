package server

import (
	"log/slog"
	"net/http"
	"time"
)

type statusWriter struct {
	http.ResponseWriter
	status int
	length int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.length += n
	return n, err
}

// HTTPLog logs one line per request
func HTTPLog(logger *slog.Logger, handle http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, request *http.Request) {
		start := time.Now()
		writer := statusWriter{ResponseWriter: w}
		handle.ServeHTTP(&writer, request)

		level := slog.LevelDebug
		if writer.status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		logger.Log(request.Context(), level, "request",
			"remote", request.RemoteAddr,
			"method", request.Method,
			"path", request.URL.Path,
			"status", writer.status,
			"bytes", writer.length,
			"user_agent", request.Header.Get("User-Agent"),
			"latency_ms", time.Since(start).Milliseconds())
	}
}
