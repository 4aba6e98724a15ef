// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/logging"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
	"github.com/jacl-coder/PlatformBrawl-Server/pkg/db"
)

func main() {
	// 解析命令行参数
	configPath := flag.String("config", "config/config.yaml", "配置文件路径")
	action := flag.String("action", "help", "操作类型: init, reset, seed, help")
	players := flag.Int("players", 5, "seed: 演示玩家数量")
	perPlayer := flag.Int("sessions", 10, "seed: 每个玩家的单局数量")
	flag.Parse()

	if *action == "help" {
		showHelp()
		return
	}

	if err := config.LoadConfig(*configPath); err != nil {
		logging.Logger.Fatal().Err(err).Msg("加载配置失败")
	}
	cfg := &config.GlobalConfig
	logging.Init(cfg.Server.LogLevel, true, os.Stdout)

	if err := db.InitPostgres(cfg.Database); err != nil {
		logging.Logger.Fatal().Err(err).Msg("初始化PostgreSQL失败")
	}
	defer db.Close()

	switch *action {
	case "init":
		if err := db.InitAllTables(db.DB); err != nil {
			logging.Logger.Fatal().Err(err).Msg("初始化数据库表失败")
		}
		logging.Logger.Info().Strs("tables", db.TableNames).Msg("数据库初始化完成")
	case "reset":
		logging.Logger.Warn().Msg("正在重置数据库，这将删除所有表和数据")
		if err := db.ResetAllTables(db.DB); err != nil {
			logging.Logger.Fatal().Err(err).Msg("重置数据库失败")
		}
		logging.Logger.Info().Msg("数据库重置完成")
	case "seed":
		if err := seed(cfg, *players, *perPlayer); err != nil {
			logging.Logger.Fatal().Err(err).Msg("写入演示数据失败")
		}
	default:
		logging.Logger.Fatal().Str("action", *action).Msg("未知操作")
	}
}

// seed 写入演示单局记录，Redis 启用时同步到排行榜
func seed(cfg *config.Config, players, perPlayer int) error {
	if err := db.InitAllTables(db.DB); err != nil {
		return fmt.Errorf("初始化数据库表失败: %w", err)
	}

	var board *models.RedisLeaderboard
	if cfg.Redis.Enabled {
		if err := db.InitRedis(cfg.Redis); err != nil {
			logging.Logger.Warn().Err(err).Msg("Redis不可用，跳过排行榜")
		} else {
			defer db.CloseRedis()
			board = models.NewRedisLeaderboard(db.RedisClient)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	repo := db.NewSessionRepository(db.Gorm)
	recs := db.DemoSessions(rand.New(rand.NewSource(time.Now().UnixNano())), players, perPlayer, time.Now())
	for _, rec := range recs {
		if err := repo.SaveSession(ctx, rec); err != nil {
			return err
		}
		if board != nil {
			if err := board.SubmitSession(ctx, rec); err != nil {
				return err
			}
		}
	}

	logging.Logger.Info().Int("sessions", len(recs)).Bool("leaderboard", board != nil).Msg("演示数据写入完成")
	return nil
}

// showHelp 显示帮助信息
func showHelp() {
	fmt.Println("PlatformBrawl 数据库管理工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  go run ./cmd/dbmanager -action=<操作> [-config=<配置文件>]")
	fmt.Println()
	fmt.Println("操作:")
	fmt.Println("  init   - 创建表结构")
	fmt.Println("  reset  - 删除所有表和数据")
	fmt.Println("  seed   - 写入演示单局记录 (-players, -sessions)")
	fmt.Println("  help   - 显示此帮助信息")
}
