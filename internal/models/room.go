package models

import (
	"time"
)

// RoomStatus 房间状态
type RoomStatus string

const (
	// RoomWaiting 已创建，等待连接
	RoomWaiting RoomStatus = "waiting"
	// RoomPlaying 游戏中
	RoomPlaying RoomStatus = "playing"
	// RoomEnded 本局结束，等待重开
	RoomEnded RoomStatus = "ended"
	// RoomClosed 已关闭
	RoomClosed RoomStatus = "closed"
)

// RoomInfo 房间概要，用于房间列表接口
type RoomInfo struct {
	ID           string     `json:"id"`
	PlayerID     string     `json:"player_id"`
	Status       RoomStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
	Frame        int64      `json:"frame"`
	Enemies      int        `json:"enemies"`
	Eliminations int        `json:"eliminations"`
}

// 注意：表结构定义已移至 pkg/db/schema.go 统一管理
