package router

import (
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Router wraps a gorilla/mux router with access logging, panic recovery and CORS
type Router struct {
	mux            *mux.Router
	logger         *zap.SugaredLogger
	allowedOrigins []string
}

// New creates a router. With no allowed origins every origin is allowed.
func New(logger *zap.SugaredLogger, allowedOrigins ...string) *Router {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	r := &Router{
		mux:            mux.NewRouter(),
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
	r.mux.Use(r.loggingMiddleware)
	r.mux.NotFoundHandler = r.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	}))
	r.mux.MethodNotAllowedHandler = r.loggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}))
	return r
}

// --- Register paths ---
func (r *Router) register(method, path string, handler http.HandlerFunc) {
	r.mux.HandleFunc(path, handler).Methods(method)
}

func (r *Router) GET(path string, handler http.HandlerFunc)  { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler http.HandlerFunc) { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler http.HandlerFunc)  { r.register(http.MethodPut, path, handler) }
func (r *Router) DELETE(path string, handler http.HandlerFunc) {
	r.register(http.MethodDelete, path, handler)
}

// Handle mounts handler for every path under prefix
func (r *Router) Handle(prefix string, handler http.Handler) {
	r.mux.PathPrefix(prefix).Handler(handler)
}

// Routes lists registered path templates, sorted
func (r *Router) Routes() []string {
	seen := make(map[string]bool)
	var routes []string
	r.mux.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tpl, err := route.GetPathTemplate()
		if err == nil && !seen[tpl] {
			seen[tpl] = true
			routes = append(routes, tpl)
		}
		return nil
	})
	sort.Strings(routes)
	return routes
}

// Handler returns the complete handler chain
func (r *Router) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(r.allowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{r.logger}),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(cors(r.mux))
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(lrw, req)

		r.logger.Desugar().Check(statusLevel(lrw.statusCode), "HTTP request").Write(
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", lrw.statusCode),
			zap.String("remote_addr", req.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func statusLevel(code int) zapcore.Level {
	switch {
	case code >= 500:
		return zapcore.ErrorLevel
	case code >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

type recoveryLogger struct {
	logger *zap.SugaredLogger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Errorw("Recovered from panic", "panic", v)
}
