// main.go

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/game"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/gateway"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/logging"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
	"github.com/jacl-coder/PlatformBrawl-Server/pkg/db"
)

// service 可启停的服务
type service interface {
	Start() error
	Stop() error
}

// storage 可选的存储后端，未启用的字段为 nil
type storage struct {
	sessions *db.SessionRepository
	board    *models.RedisLeaderboard
}

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	serviceType := flag.String("service", "all", "服务类型 (game, gateway, all)")
	flag.Parse()

	// 加载配置
	if err := config.LoadConfig(*configPath); err != nil {
		logging.Logger.Fatal().Err(err).Str("path", *configPath).Msg("加载配置失败")
	}
	cfg := &config.GlobalConfig
	logging.Init(cfg.Server.LogLevel, cfg.Server.Debug, os.Stdout)

	store := openStorage(cfg)
	defer db.Close()
	defer db.CloseRedis()

	recorder := newRecorder(store)

	var services []service
	switch *serviceType {
	case "game":
		services = append(services, game.NewGameServer(cfg, recorder))
	case "gateway":
		services = append(services, newGateway(cfg, store))
	case "all":
		services = append(services, game.NewGameServer(cfg, recorder), newGateway(cfg, store))
	default:
		logging.Logger.Fatal().Str("service", *serviceType).Msg("未知的服务类型")
	}

	for _, s := range services {
		if err := s.Start(); err != nil {
			logging.Logger.Fatal().Err(err).Msg("启动服务失败")
		}
	}
	logging.Logger.Info().Str("service", *serviceType).Msg("服务已启动")

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logging.Logger.Info().Msg("接收到关闭信号，正在关闭服务器...")
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(); err != nil {
			logging.Logger.Error().Err(err).Msg("关闭服务失败")
		}
	}
	recorder.Wait()
	logging.Logger.Info().Msg("服务器已安全关闭")
}

// openStorage 连接启用的存储，失败只记日志，游戏照常运行
func openStorage(cfg *config.Config) storage {
	var s storage

	if cfg.Database.Enabled {
		if err := db.InitPostgres(cfg.Database); err != nil {
			logging.Logger.Warn().Err(err).Msg("PostgreSQL不可用")
		} else {
			s.sessions = db.NewSessionRepository(db.Gorm)
		}
	}
	if s.sessions == nil && cfg.Database.SQLitePath != "" {
		gdb, err := db.OpenSQLite(cfg.Database.SQLitePath)
		if err != nil {
			logging.Logger.Warn().Err(err).Msg("SQLite不可用")
		} else {
			repo := db.NewSessionRepository(gdb)
			if err := repo.Migrate(); err != nil {
				logging.Logger.Warn().Err(err).Msg("SQLite建表失败")
			} else {
				s.sessions = repo
				logging.Logger.Info().Str("path", cfg.Database.SQLitePath).Msg("使用SQLite保存单局记录")
			}
		}
	}

	if cfg.Redis.Enabled {
		if err := db.InitRedis(cfg.Redis); err != nil {
			logging.Logger.Warn().Err(err).Msg("Redis不可用，排行榜关闭")
		} else {
			s.board = models.NewRedisLeaderboard(db.RedisClient)
		}
	}
	return s
}

// newRecorder 只把已连接的后端交给记录器
func newRecorder(s storage) *game.Recorder {
	var store game.SessionStore
	var board game.ScoreBoard
	if s.sessions != nil {
		store = s.sessions
	}
	if s.board != nil {
		board = s.board
	}
	return game.NewRecorder(store, board)
}

func newGateway(cfg *config.Config, s storage) *gateway.Gateway {
	var sessions gateway.SessionQuery
	var board gateway.LeaderboardQuery
	if s.sessions != nil {
		sessions = s.sessions
	}
	if s.board != nil {
		board = s.board
	}
	return gateway.NewGateway(cfg, sessions, board)
}
