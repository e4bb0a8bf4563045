// Package httpapi serves the local guard-station API: the HTTP
// surface the gate UI drives. It binds to a loopback or LAN address
// and trusts the operating station; authentication against the remote
// backend is handled by the session manager underneath.
package httpapi

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"gatepass-client/internal/gateway"
	"gatepass-client/internal/session"
	"gatepass-client/internal/storage"
	syncpkg "gatepass-client/internal/sync"
	"gatepass-client/internal/verify"
)

type Server struct {
	sessions *session.Manager
	engine   *verify.Engine
	scanner  *verify.Scanner
	coord    *syncpkg.Coordinator
	store    storage.Provider
	gw       *gateway.Client
	logger   *slog.Logger
}

func NewServer(sessions *session.Manager, engine *verify.Engine, coord *syncpkg.Coordinator, store storage.Provider, gw *gateway.Client) *Server {
	return &Server{
		sessions: sessions,
		engine:   engine,
		scanner:  verify.NewScanner(engine),
		coord:    coord,
		store:    store,
		gw:       gw,
		logger:   slog.With("component", "httpapi"),
	}
}

// Router builds the gin engine with all guard-station routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandler())

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.POST("/login", s.login)
		api.POST("/logout", s.logout)
		api.GET("/session", s.currentSession)

		api.POST("/scan-session", s.startScanSession)
		api.DELETE("/scan-session", s.stopScanSession)
		api.POST("/scan", s.scan)
		api.POST("/vehicle-entry", s.vehicleEntry)

		api.GET("/day-scholars", s.dayScholars)
		api.POST("/day-scholars/:id/toggle", s.toggleDayScholar)

		api.GET("/logs", s.logs)
		api.GET("/stats", s.stats)
		api.GET("/pending", s.pending)
		api.POST("/sync", s.sync)
		api.POST("/pull", s.pull)
	}

	return r
}

// Run serves the API until the listener fails.
func (s *Server) Run(addr string) error {
	s.logger.Info("Guard station API listening", "addr", addr)
	return s.Router().Run(addr)
}

func ok(c *gin.Context, data any) {
	c.JSON(200, gin.H{"success": true, "data": data})
}

func (s *Server) health(c *gin.Context) {
	version, err := s.store.GetSchemaVersion(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(200, gin.H{"status": "ok", "schema_version": version})
}

func (s *Server) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, NewHTTPError(400, err, "email and password are required"))
		return
	}

	sess, err := s.sessions.Login(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, gin.H{"user": sess.User, "expires_at": sess.ExpiresAt})
}

func (s *Server) currentSession(c *gin.Context) {
	sess, err := s.sessions.Current(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if sess == nil {
		AbortWithError(c, verify.ErrNotAuthenticated)
		return
	}
	ok(c, gin.H{"user": sess.User, "expires_at": sess.ExpiresAt})
}

func (s *Server) logout(c *gin.Context) {
	s.sessions.Logout(c.Request.Context())
	ok(c, nil)
}

// startScanSession opens a fresh scan session for the kiosk camera,
// superseding any previous one so its in-flight results are dropped.
func (s *Server) startScanSession(c *gin.Context) {
	sess := s.scanner.Start()
	ok(c, gin.H{"session": sess.ID()})
}

func (s *Server) stopScanSession(c *gin.Context) {
	s.scanner.Stop()
	ok(c, nil)
}

// scan verifies one scanned payload through the live scan session. A
// submission from a superseded session answers 409 rather than a
// verdict.
func (s *Server) scan(c *gin.Context) {
	var body struct {
		QRData  string  `json:"qr_data" binding:"required"`
		Session *uint64 `json:"session"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, NewHTTPError(400, err, "qr_data is required"))
		return
	}

	sess := s.scanner.Active()
	if sess == nil {
		sess = s.scanner.Start()
	}
	if body.Session != nil && *body.Session != sess.ID() {
		AbortWithError(c, verify.ErrSessionClosed)
		return
	}

	decision, err := sess.Submit(c.Request.Context(), body.QRData)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, decision)
}

func (s *Server) vehicleEntry(c *gin.Context) {
	var body struct {
		PlateNumber string `json:"plate_number" binding:"required"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, NewHTTPError(400, err, "plate_number is required"))
		return
	}

	decision, err := s.engine.LogVehicleEntry(c.Request.Context(), body.PlateNumber, body.Notes)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, decision)
}

// dayScholars lists the roster from the remote API, falling back to
// the cached snapshots when the server is unreachable.
func (s *Server) dayScholars(c *gin.Context) {
	scholars, err := s.gw.DayScholars(c.Request.Context())
	if err == nil {
		ok(c, scholars)
		return
	}
	if !gateway.IsConnectivity(err) {
		AbortWithError(c, err)
		return
	}

	users, err := s.store.ListUsersByRole(c.Request.Context(), "day_scholar")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	cached := make([]gateway.DayScholar, 0, len(users))
	for _, u := range users {
		status := u.ScholarStatus
		if status == "" {
			status = "out"
		}
		cached = append(cached, gateway.DayScholar{
			UserID: u.ID,
			Name:   u.FullName(),
			Status: status,
		})
	}
	ok(c, cached)
}

func (s *Server) toggleDayScholar(c *gin.Context) {
	result, err := s.engine.ToggleDayScholar(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, result)
}

func (s *Server) logs(c *gin.Context) {
	if guard := c.Query("guard"); guard != "" {
		logs, err := s.store.ListGateLogsByGuard(c.Request.Context(), guard)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		ok(c, logs)
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			AbortWithError(c, NewHTTPError(400, err, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	logs, err := s.store.ListGateLogs(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, logs)
}

// stats proxies the server dashboard counters for the kiosk header.
func (s *Server) stats(c *gin.Context) {
	stats, err := s.gw.DashboardStats(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, stats)
}

func (s *Server) pending(c *gin.Context) {
	actions, err := s.coord.Pending(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, actions)
}

func (s *Server) sync(c *gin.Context) {
	result, err := s.coord.Drain(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, gin.H{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
		"remaining": result.Remaining,
	})
}

func (s *Server) pull(c *gin.Context) {
	stats, err := s.coord.Pull(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	ok(c, gin.H{
		"assets":   stats.Assets,
		"vehicles": stats.Vehicles,
		"scholars": stats.Scholars,
	})
}
