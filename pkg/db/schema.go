// schema.go

package db

import (
	"database/sql"
)

// 统一的数据库表结构定义

// CreateAllTablesSQL 创建所有表的SQL语句
const CreateAllTablesSQL = `
-- 单局记录表
CREATE TABLE IF NOT EXISTS session_records (
    id VARCHAR(36) PRIMARY KEY,
    player_id VARCHAR(64) NOT NULL,
    started_at TIMESTAMP WITH TIME ZONE NOT NULL,
    ended_at TIMESTAMP WITH TIME ZONE NOT NULL,
    duration_ms BIGINT NOT NULL DEFAULT 0,
    frames BIGINT NOT NULL DEFAULT 0,
    eliminations INT NOT NULL DEFAULT 0,
    hits INT NOT NULL DEFAULT 0,
    shots INT NOT NULL DEFAULT 0,
    pushes INT NOT NULL DEFAULT 0,
    cause VARCHAR(16) NOT NULL
);

-- 玩家最好成绩视图
CREATE OR REPLACE VIEW player_bests AS
SELECT
    player_id,
    COUNT(*) AS sessions,
    MAX(eliminations) AS best_eliminations,
    MAX(duration_ms) AS longest_ms
FROM session_records
GROUP BY player_id;

-- 创建索引
CREATE INDEX IF NOT EXISTS idx_session_records_player_id ON session_records(player_id);
CREATE INDEX IF NOT EXISTS idx_session_records_ended_at ON session_records(ended_at);
`

// DropAllTablesSQL 删除所有表和视图
const DropAllTablesSQL = `
DROP VIEW IF EXISTS player_bests CASCADE;
DROP TABLE IF EXISTS session_records CASCADE;
`

// TableNames 由 CreateAllTablesSQL 创建的对象
var TableNames = []string{"session_records", "player_bests"}

// InitAllTables 初始化所有数据库表
func InitAllTables(conn *sql.DB) error {
	_, err := conn.Exec(CreateAllTablesSQL)
	return err
}

// ResetAllTables 删除所有表和数据
func ResetAllTables(conn *sql.DB) error {
	_, err := conn.Exec(DropAllTablesSQL)
	return err
}
