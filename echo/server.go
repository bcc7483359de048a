// Package echo serves the chat gateway and the refresh trigger over HTTP
// using labstack/echo.
package echo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ohmanagement/sitebot"
	"github.com/ohmanagement/sitebot/gateway"
)

// maxRequestBody limits chat request bodies.
const maxRequestBody = "64K"

const chatPath = "/chat"

// refreshFailed is the error label of a failed refresh response.
const refreshFailed = "Failed to refresh RAG index"

// Server is the HTTP transport for the chat gateway.
type Server struct {
	Gateway   *gateway.Gateway
	Refresher sitebot.Refresher
	Metrics   http.Handler
	Logger    *slog.Logger
	Now       func() time.Time

	echo *echo.Echo
}

// NewServer creates a Server and registers its routes. A nil refresher
// disables /refresh; a nil metrics handler disables /metrics.
func NewServer(gw *gateway.Gateway, refresher sitebot.Refresher, metrics http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		Gateway:   gw,
		Refresher: refresher,
		Metrics:   metrics,
		Logger:    logger,
		Now:       time.Now,
		echo:      echo.New(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(s.logRequests)
	e.Use(cors)

	e.POST(chatPath, s.handleChat, middleware.BodyLimit(maxRequestBody))
	e.OPTIONS(chatPath, func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if s.Refresher != nil {
		e.POST("/refresh", s.handleRefresh)
	}
	if s.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.Metrics))
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Serve accepts connections on ln until Shutdown is called.
func (s *Server) Serve(ln net.Listener) error {
	s.echo.Listener = ln
	err := s.echo.Start("")
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// cors allows the widget to call the chat endpoint from any origin. It
// runs for every request to the path, so error responses such as 405 and
// 413 stay readable by the browser.
func cors(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().URL.Path == chatPath {
			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, "*")
			h.Set(echo.HeaderAccessControlAllowMethods, "POST, OPTIONS")
			h.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)
		}
		return next(c)
	}
}

func (s *Server) handleChat(c echo.Context) error {
	ctx := c.Request().Context()
	site := s.Gateway.Site

	var req sitebot.ChatRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		s.Logger.Warn("bad chat request", "err", err)
		return c.JSON(http.StatusBadRequest, sitebot.ErrorPayload(site))
	}

	x, err := s.Gateway.Open(ctx, &req)
	if sitebot.ErrorCode(err) == sitebot.EINVALID {
		return c.JSON(http.StatusBadRequest, sitebot.ErrorPayload(site))
	} else if err != nil {
		return c.JSON(http.StatusInternalServerError, sitebot.ErrorPayload(site))
	}
	defer x.Close()

	if x.Handoff != nil {
		return c.JSON(http.StatusOK, x.Handoff)
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)

	for {
		f, ok := x.Next()
		if !ok {
			break
		}
		if err := sitebot.WriteFrame(resp, f); err != nil {
			s.Logger.Debug("client gone", "request", x.ID, "err", err)
			return nil
		}
		resp.Flush()
		if ctx.Err() != nil {
			return nil
		}
	}
	if err := sitebot.WriteDone(resp); err != nil {
		return nil
	}
	resp.Flush()
	return nil
}

type refreshResponse struct {
	Error     string    `json:"error,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleRefresh(c echo.Context) error {
	manual, _ := strconv.ParseBool(c.QueryParam("manual"))

	result, err := s.Refresher.Refresh(c.Request().Context(), manual)
	if err != nil {
		s.Logger.Error("refresh failed", "manual", manual, "err", err)
		return c.JSON(http.StatusInternalServerError, refreshResponse{
			Error:     refreshFailed,
			Message:   sitebot.ErrorMessage(err),
			Timestamp: s.Now().UTC(),
		})
	}

	return c.JSON(http.StatusOK, refreshResponse{
		Message:   result.Message,
		Timestamp: result.Timestamp,
	})
}

// handleError writes echo routing errors such as 404 and 405 as JSON.
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = http.StatusText(code)
	}
	if code >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "method", c.Request().Method, "path", c.Request().URL.Path, "err", err)
	}
	if !c.Response().Committed {
		_ = c.JSON(code, map[string]string{"error": msg})
	}
}

func (s *Server) logRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req := c.Request()
		s.Logger.Debug("http request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", c.Response().Status,
			"duration", time.Since(start),
		)
		return nil
	}
}
