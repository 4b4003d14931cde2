package server

import (
	"strings"

	"github.com/fasthttp/websocket"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/openboard/relay/config"
	"github.com/openboard/relay/src/hub"
)

// Server exposes the relay over HTTP: fiber routes for health and
// stats plus a raw fasthttp WebSocket upgrade at /ws, registered at
// the fasthttp level since fiber v3 does not expose *fasthttp.RequestCtx.
type Server struct {
	cfg      *config.Config
	app      *fiber.App
	hub      *hub.Hub
	limiter  *ipLimiter
	upgrader websocket.FastHTTPUpgrader
	srv      *fasthttp.Server
	logger   zerolog.Logger
}

// New creates the HTTP server around the given hub.
func New(cfg *config.Config, h *hub.Hub, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		hub:     h,
		limiter: newIPLimiter(cfg.ConnRatePerIP),
		upgrader: websocket.FastHTTPUpgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin:     func(ctx *fasthttp.RequestCtx) bool { return true },
		},
		logger: logger.With().Str("component", "server").Logger(),
	}

	app := fiber.New()
	app.Get("/health", s.handleHealth)
	app.Get("/ws/info", s.handleInfo)
	s.app = app

	s.srv = &fasthttp.Server{
		Handler: s.handler(),
		Name:    "openboard-relay",
	}
	return s
}

// ListenAndServe blocks serving HTTP on the configured address.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.cfg.Addr).Msg("listening")
	return s.srv.ListenAndServe(s.cfg.Addr)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.srv.Shutdown()
}

func (s *Server) handler() fasthttp.RequestHandler {
	appHandler := s.app.Handler()
	return func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) == "/ws" {
			s.handleWS(ctx)
			return
		}
		appHandler(ctx)
	}
}

func (s *Server) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleInfo(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"websocket": true,
		"endpoint":  "/ws",
		"clients":   s.hub.ClientCount(),
		"rooms":     s.hub.PublicGroups(),
	})
}

func (s *Server) handleWS(ctx *fasthttp.RequestCtx) {
	upgrade := string(ctx.Request.Header.Peek("Upgrade"))
	if !strings.EqualFold(upgrade, "websocket") {
		ctx.SetStatusCode(fasthttp.StatusUpgradeRequired)
		ctx.SetBodyString(`{"error":"upgrade_required","message":"WebSocket upgrade required"}`)
		return
	}

	if !s.limiter.Allow(clientIP(ctx)) {
		ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
		ctx.SetBodyString(`{"error":"rate_limited","message":"too many connection attempts"}`)
		return
	}

	connID := uuid.New().String()
	h := s.hub

	err := s.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		client := hub.NewClient(connID, &wsConn{conn}, h)
		h.Register(client)
		go client.WritePump()
		client.ReadPump()
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
	}
}

func clientIP(ctx *fasthttp.RequestCtx) string {
	if xff := string(ctx.Request.Header.Peek("X-Forwarded-For")); xff != "" {
		if i := strings.IndexByte(xff, ','); i >= 0 {
			return strings.TrimSpace(xff[:i])
		}
		return xff
	}
	return ctx.RemoteIP().String()
}

// wsConn wraps fasthttp/websocket.Conn to satisfy types.Conn.
type wsConn struct {
	conn *websocket.Conn
}

func (w *wsConn) WriteJSON(v any) error { return w.conn.WriteJSON(v) }
func (w *wsConn) ReadJSON(v any) error  { return w.conn.ReadJSON(v) }
func (w *wsConn) Close() error          { return w.conn.Close() }
