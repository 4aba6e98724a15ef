package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/logging"
)

var (
	// DB 全局数据库连接实例
	DB *sql.DB
	// Gorm 基于 DB 的 ORM 句柄，会话记录使用
	Gorm *gorm.DB
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
}

// InitPostgres 初始化PostgreSQL连接
func InitPostgres(cfg config.DatabaseConfig) error {
	conn, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("数据库Ping失败: %w", err)
	}
	conn.SetMaxOpenConns(10)

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), gormConfig())
	if err != nil {
		conn.Close()
		return fmt.Errorf("初始化ORM失败: %w", err)
	}

	DB = conn
	Gorm = gdb
	logging.Logger.Info().Str("host", cfg.Host).Int("port", cfg.Port).Msg("成功连接到PostgreSQL数据库")
	return nil
}

// OpenSQLite 打开本地SQLite库，path 为空时使用内存库
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	gdb, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("打开SQLite失败: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// 内存库按连接隔离
	sqlDB.SetMaxOpenConns(1)
	return gdb, nil
}

// Close 关闭数据库连接
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
		Gorm = nil
		logging.Logger.Info().Msg("数据库连接已关闭")
	}
}
