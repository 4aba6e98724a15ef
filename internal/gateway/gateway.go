package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/auth"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/logging"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// SessionQuery 单局记录查询，由 pkg/db.SessionRepository 实现
type SessionQuery interface {
	ListSessions(ctx context.Context, playerID string, limit int) ([]models.SessionRecord, error)
	PlayerSummary(ctx context.Context, playerID string) (*models.PlayerSummary, error)
	TopPlayers(ctx context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error)
}

// LeaderboardQuery 排行榜查询，由 models.RedisLeaderboard 实现
type LeaderboardQuery interface {
	GetLeaderboard(ctx context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error)
	GetPlayerRank(ctx context.Context, playerID string, scoreType models.LeaderboardType) (int, error)
}

// Gateway API网关
type Gateway struct {
	config     *config.Config
	httpServer *http.Server
	tokens     *auth.TokenIssuer
	sessions   SessionQuery
	board      LeaderboardQuery
	log        zerolog.Logger
	isRunning  bool
}

// NewGateway 创建新的网关，sessions 和 board 为 nil 时对应接口返回 503
func NewGateway(cfg *config.Config, sessions SessionQuery, board LeaderboardQuery) *Gateway {
	return &Gateway{
		config:   cfg,
		tokens:   auth.NewTokenIssuer(cfg.Auth),
		sessions: sessions,
		board:    board,
		log:      logging.With("gateway"),
	}
}

// Start 启动网关
func (g *Gateway) Start() error {
	if g.isRunning {
		return fmt.Errorf("网关已经在运行")
	}

	g.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", g.config.Server.GatewayPort),
		Handler: g.Handler(),
	}

	go func() {
		g.log.Info().Int("port", g.config.Server.GatewayPort).Msg("API网关启动")
		if err := g.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			g.log.Fatal().Err(err).Msg("HTTP服务器错误")
		}
	}()

	g.isRunning = true
	return nil
}

// Stop 停止网关
func (g *Gateway) Stop() error {
	if !g.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("网关关闭错误: %w", err)
	}

	g.isRunning = false
	g.log.Info().Msg("API网关已停止")
	return nil
}

// Handler 创建HTTP处理器
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	NewAuthHandler(g.tokens).RegisterHandlers(mux)
	NewStatsHandler(g.sessions, g.board).RegisterHandlers(mux)

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return g.applyMiddleware(mux)
}

// applyMiddleware 应用中间件
func (g *Gateway) applyMiddleware(handler http.Handler) http.Handler {
	loggingMiddleware := NewLoggingMiddleware(g.log)
	securityMiddleware := NewSecurityMiddleware()
	corsMiddleware := NewCORSMiddleware()
	rateLimiter := NewRateLimiter(60, 10) // 每分钟60次请求，突发10次
	cacheMiddleware := NewCacheMiddleware()

	// 按顺序应用中间件（从外到内）
	handler = cacheMiddleware.Middleware(handler)
	handler = rateLimiter.Middleware(handler)
	handler = corsMiddleware.Middleware(handler)
	handler = securityMiddleware.Middleware(handler)
	handler = loggingMiddleware.Middleware(handler)

	return handler
}
