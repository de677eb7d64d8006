package mock

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gwportal/gwportal-cli/internal/api"
	"github.com/gwportal/gwportal-cli/internal/forms"
	"github.com/gwportal/gwportal-cli/internal/state"
)

const (
	correlationIDKey = "correlation_id"
	loggerKey        = "logger"

	// UserHeader names the acting user in history entries.
	UserHeader = "X-Portal-User"
)

// Server serves the gateway endpoints over a Store. Every request loads the
// state file and mutating requests save it back, so the file can be edited
// or reset while the server runs.
type Server struct {
	store    Store
	logger   *zap.Logger
	mu       sync.Mutex
	requests *prometheus.CounterVec
	registry *prometheus.Registry
}

func NewServer(store Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gwportal",
		Subsystem: "mock_gateway",
		Name:      "http_requests_total",
		Help:      "Requests served by the mock gateway.",
	}, []string{"method", "endpoint", "status"})
	reg.MustRegister(requests)
	return &Server{store: store, logger: logger, requests: requests, registry: reg}
}

// Handler builds the gin engine.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.correlationID(), s.accessLog(), s.countRequests())

	r.GET(api.PathAPIs, s.listAPIs)
	r.GET(api.PathHistory, s.listHistory)
	r.POST(api.PathCreate, s.createAPI)
	r.POST(api.PathCheckContext, s.checkContext)
	r.GET(api.PathAPIs+"/:id", s.getAPI)
	r.PUT(api.PathAPIs+"/:id/update", s.updateAPI)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return r
}

func (s *Server) correlationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(api.CorrelationIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(correlationIDKey, id)
		c.Set(loggerKey, s.logger.With(zap.String("correlation_id", id)))
		c.Header(api.CorrelationIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		requestLogger(c, s.logger).Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *Server) countRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		s.requests.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

func requestLogger(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return fallback
}

// withState runs fn under the server lock against freshly loaded state.
func (s *Server) withState(c *gin.Context, fn func(st *state.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.store.Ensure()
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	fn(st)
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	requestLogger(c, s.logger).Warn("request failed", zap.Int("status", status), zap.Error(err))
	if c.Writer.Written() {
		return
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func (s *Server) listAPIs(c *gin.Context) {
	s.withState(c, func(st *state.State) {
		c.JSON(http.StatusOK, s.store.ListAPIs(st))
	})
}

func (s *Server) listHistory(c *gin.Context) {
	s.withState(c, func(st *state.State) {
		c.JSON(http.StatusOK, s.store.ListHistory(st))
	})
}

func (s *Server) getAPI(c *gin.Context) {
	s.withState(c, func(st *state.State) {
		a, err := s.store.GetAPI(st, c.Param("id"))
		if err != nil {
			s.fail(c, http.StatusNotFound, err)
			return
		}
		c.JSON(http.StatusOK, a)
	})
}

func (s *Server) createAPI(c *gin.Context) {
	var p forms.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.withState(c, func(st *state.State) {
		a, err := s.store.CreateAPI(st, p, c.GetHeader(UserHeader))
		if err != nil {
			s.writeStoreError(c, err)
			return
		}
		if err := s.store.Save(st); err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, api.Confirmation{ID: a.ID, Message: api.MsgDeployed})
	})
}

func (s *Server) updateAPI(c *gin.Context) {
	var p forms.Payload
	if err := c.ShouldBindJSON(&p); err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	s.withState(c, func(st *state.State) {
		a, err := s.store.UpdateAPI(st, c.Param("id"), p, c.GetHeader(UserHeader))
		if err != nil {
			s.writeStoreError(c, err)
			return
		}
		if err := s.store.Save(st); err != nil {
			s.fail(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, api.Confirmation{ID: a.ID, Message: api.MsgDeployed})
	})
}

func (s *Server) checkContext(c *gin.Context) {
	var body struct {
		APIContext string `json:"apiContext"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.APIContext == "" {
		s.fail(c, http.StatusBadRequest, api.ErrEmptyContext)
		return
	}
	s.withState(c, func(st *state.State) {
		if s.store.ContextInUse(st, body.APIContext) {
			c.JSON(http.StatusConflict, gin.H{"message": MsgContextInUse})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": api.MsgContextAvailable})
	})
}

func (s *Server) writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		s.fail(c, http.StatusNotFound, err)
	case errors.Is(err, ErrContextInUse):
		requestLogger(c, s.logger).Warn("context conflict", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"message": MsgContextInUse})
	case errors.Is(err, ErrInvalidRecord):
		s.fail(c, http.StatusBadRequest, err)
	default:
		s.fail(c, http.StatusInternalServerError, err)
	}
}
