// Package web serves the mini-app shell and the REST API it reads from.
package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/config"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/repository"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/service"
)

// Dependencies holds everything the HTTP handlers read from.
type Dependencies struct {
	Config        *config.Config
	RoomService   *service.RoomService
	CouponService *service.CouponService
	RoomRepo      *repository.RoomRepository
	UserRepo      *repository.UserRepository
	BannerRepo    *repository.BannerRepository
	EventRepo     *repository.EventRepository
}

// Server is the mini-app HTTP server.
type Server struct {
	deps   *Dependencies
	router *gin.Engine
	http   *http.Server
}

// NewServer builds the router with CORS and all routes registered.
func NewServer(deps *Dependencies) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			deps.Config.WebApp.URL,
			"http://localhost",
			"http://localhost:8000",
			"http://127.0.0.1",
			"http://127.0.0.1:8000",
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{deps: deps, router: router}
	s.registerRoutes()
	return s
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request")
	}
}

func (s *Server) registerRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.GET("/rooms", s.handleListRooms)
		api.GET("/rooms/:id", s.handleGetRoom)
		api.POST("/rooms/:id/join", s.handleJoinRoom)
		api.GET("/banners", s.handleListBanners)
		api.GET("/users/:id", s.handleGetUser)
		api.GET("/coupons/:user_id", s.handleListCoupons)
		api.GET("/events", s.handleListEvents)
	}
}

// Router exposes the gin engine, used by the HTTP server and tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.router}
	log.Info().Str("addr", addr).Msg("Starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// The mini-app front end is hosted separately in production; this shell lets
// the bot's WebApp button open something useful against a bare deployment.
const indexHTML = `<!DOCTYPE html>
<html lang="ko">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>TTPOKER</title>
  <script src="https://telegram.org/js/telegram-web-app.js"></script>
</head>
<body>
  <h1>🎰 TTPOKER</h1>
  <p>활성 방 목록은 <a href="/api/rooms">/api/rooms</a> 에서 불러옵니다.</p>
</body>
</html>`

func (s *Server) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func roomJSON(r *model.Room) gin.H {
	return gin.H{
		"id":               r.ID,
		"room_name":        r.RoomName,
		"room_url":         r.RoomURL,
		"blinds":           r.Blinds,
		"min_buyin":        r.MinBuyin,
		"game_time":        r.GameTime,
		"description":      r.Description,
		"status":           r.Status,
		"current_players":  r.CurrentPlayers,
		"max_players":      r.MaxPlayers,
		"contact_telegram": r.ContactTG,
	}
}

func (s *Server) handleListRooms(c *gin.Context) {
	rooms, err := s.deps.RoomRepo.ListActive(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list rooms")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	out := make([]gin.H, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, roomJSON(r))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetRoom(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid room id"})
		return
	}
	room, err := s.deps.RoomService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Room not found"})
			return
		}
		log.Error().Err(err).Int64("room_id", id).Msg("Failed to get room")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, roomJSON(room))
}

func (s *Server) handleJoinRoom(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid room id"})
		return
	}
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "user_id is required"})
		return
	}

	var username, firstName *string
	if v := c.Query("username"); v != "" {
		username = &v
	}
	if v := c.Query("first_name"); v != "" {
		firstName = &v
	}

	err = s.deps.RoomService.Join(c.Request.Context(), roomID, userID, username, firstName)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Room not found"})
			return
		}
		log.Error().Err(err).Int64("room_id", roomID).Int64("user_id", userID).Msg("Failed to record join")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "join recorded"})
}

func (s *Server) handleListBanners(c *gin.Context) {
	banners, err := s.deps.BannerRepo.ListActive(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list banners")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	out := make([]gin.H, 0, len(banners))
	for _, b := range banners {
		out = append(out, gin.H{
			"id":          b.ID,
			"image_url":   b.ImageURL,
			"title":       b.Title,
			"description": b.Description,
			"link_url":    b.LinkURL,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user id"})
		return
	}
	user, err := s.deps.UserRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
			return
		}
		log.Error().Err(err).Int64("user_id", id).Msg("Failed to get user")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user_id":        user.UserID,
		"username":       user.Username,
		"first_name":     user.FirstName,
		"join_count":     user.JoinCount,
		"total_playtime": user.TotalPlaytime,
		"last_played":    user.LastPlayed,
		"created_at":     user.CreatedAt,
	})
}

func (s *Server) handleListCoupons(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid user id"})
		return
	}
	coupons, err := s.deps.CouponService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to list coupons")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	out := make([]gin.H, 0, len(coupons))
	for _, coupon := range coupons {
		out = append(out, gin.H{
			"id":          coupon.ID,
			"code":        coupon.CouponCode,
			"title":       coupon.Title,
			"description": coupon.Description,
			"amount":      coupon.DiscountAmount,
			"is_used":     coupon.IsUsed,
			"expires_at":  coupon.ExpiresAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleListEvents(c *gin.Context) {
	events, err := s.deps.EventRepo.ListActive(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list events")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		return
	}
	out := make([]gin.H, 0, len(events))
	for _, e := range events {
		out = append(out, gin.H{
			"id":         e.ID,
			"title":      e.Title,
			"content":    e.Content,
			"image_url":  e.ImageURL,
			"created_at": e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
