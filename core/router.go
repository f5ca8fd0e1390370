package core

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HandlerFunc handles a matched route. Returning ErrPass hands the request
// to the next matching route; any other error is mapped to a response by
// the router.
type HandlerFunc func(w http.ResponseWriter, req *http.Request, params Params) error

type Route struct {
	Method     string
	Pattern    string
	URLPattern *regexp.Regexp
	ParamKeys  []string
	Handler    HandlerFunc
}

type Router struct {
	config Config
	logger *zap.SugaredLogger
	routes []Route

	NotFound http.Handler
}

func NewRouter(config Config, logger *zap.SugaredLogger) *Router {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Router{
		config:   config,
		logger:   logger,
		NotFound: http.NotFoundHandler(),
	}
}

func (r *Router) Handle(method, pattern string, h HandlerFunc) {
	regex, keys := compilePattern(pattern)
	r.routes = append(r.routes, Route{
		Method:     strings.ToUpper(method),
		Pattern:    pattern,
		URLPattern: regex,
		ParamKeys:  keys,
		Handler:    h,
	})
}

func (r *Router) Get(pattern string, h HandlerFunc)    { r.Handle(http.MethodGet, pattern, h) }
func (r *Router) Post(pattern string, h HandlerFunc)   { r.Handle(http.MethodPost, pattern, h) }
func (r *Router) Put(pattern string, h HandlerFunc)    { r.Handle(http.MethodPut, pattern, h) }
func (r *Router) Delete(pattern string, h HandlerFunc) { r.Handle(http.MethodDelete, pattern, h) }

// Routes returns the registered routes in dispatch order.
func (r *Router) Routes() []Route {
	out := make([]Route, len(r.routes))
	copy(out, r.routes)
	return out
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()

	requestID := req.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", requestID)

	rec := &statusRecorder{ResponseWriter: w}
	r.dispatch(rec, req)

	if r.config.DebugLogs {
		r.logger.Debugw("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", rec.Status(),
			"duration", time.Since(start),
			"requestId", requestID,
		)
	}
}

func (r *Router) dispatch(w *statusRecorder, req *http.Request) {
	path := req.URL.Path
	if path == "" {
		path = "/"
	}

	for _, route := range r.routes {
		if !route.matchesMethod(req.Method) {
			continue
		}
		matches := route.URLPattern.FindStringSubmatch(path)
		if matches == nil {
			continue
		}

		if r.config.DebugHeaders {
			w.Header().Set("X-Backbone-Route", route.Pattern)
		}

		err := route.Handler(w, req, newParams(route.ParamKeys, matches[1:]))
		if err == nil {
			return
		}
		if IsPass(err) {
			w.Header().Del("X-Backbone-Route")
			continue
		}
		r.handleError(w, req, route, err)
		return
	}

	r.NotFound.ServeHTTP(w, req)
}

func (route Route) matchesMethod(method string) bool {
	if route.Method == method {
		return true
	}
	return method == http.MethodHead && route.Method == http.MethodGet
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Status() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}
