// stats.go

package gateway

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jacl-coder/PlatformBrawl-Server/internal/logging"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

// StatsHandler 战绩处理器
type StatsHandler struct {
	sessions SessionQuery
	board    LeaderboardQuery
	log      zerolog.Logger
}

// NewStatsHandler 创建战绩处理器
func NewStatsHandler(sessions SessionQuery, board LeaderboardQuery) *StatsHandler {
	return &StatsHandler{
		sessions: sessions,
		board:    board,
		log:      logging.With("stats"),
	}
}

// RegisterHandlers 注册HTTP处理器
func (h *StatsHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/stats/player/", h.handlePlayerSummary)
	mux.HandleFunc("/stats/sessions", h.handleSessions)
	mux.HandleFunc("/stats/leaderboard", h.handleLeaderboard)
	mux.HandleFunc("/stats/rank", h.handleRank)
}

// StatsResponse 战绩响应
type StatsResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// RankData 玩家排名
type RankData struct {
	PlayerID string                 `json:"player_id"`
	Type     models.LeaderboardType `json:"type"`
	// 不在榜上为 -1
	Rank int `json:"rank"`
}

// handlePlayerSummary 处理玩家历史汇总查询
func (h *StatsHandler) handlePlayerSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	playerID := strings.TrimPrefix(r.URL.Path, "/stats/player/")
	if playerID == "" || strings.Contains(playerID, "/") {
		h.sendErrorResponse(w, "无效的玩家ID", http.StatusBadRequest)
		return
	}
	if h.sessions == nil {
		h.sendErrorResponse(w, "数据库未启用", http.StatusServiceUnavailable)
		return
	}

	summary, err := h.sessions.PlayerSummary(r.Context(), playerID)
	if err != nil {
		h.log.Error().Err(err).Str("player", playerID).Msg("查询玩家汇总失败")
		h.sendErrorResponse(w, "查询玩家汇总失败", http.StatusInternalServerError)
		return
	}
	if summary.Sessions == 0 {
		h.sendErrorResponse(w, "玩家不存在", http.StatusNotFound)
		return
	}

	h.sendSuccessResponse(w, "查询成功", summary)
}

// handleSessions 处理玩家最近单局查询
func (h *StatsHandler) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	playerID := query.Get("player")
	if playerID == "" {
		h.sendErrorResponse(w, "缺少player参数", http.StatusBadRequest)
		return
	}
	if h.sessions == nil {
		h.sendErrorResponse(w, "数据库未启用", http.StatusServiceUnavailable)
		return
	}

	sessions, err := h.sessions.ListSessions(r.Context(), playerID, parseLimit(query.Get("limit"), 20))
	if err != nil {
		h.log.Error().Err(err).Str("player", playerID).Msg("查询单局记录失败")
		h.sendErrorResponse(w, "查询单局记录失败", http.StatusInternalServerError)
		return
	}

	h.sendSuccessResponse(w, "查询成功", sessions)
}

// handleLeaderboard 处理排行榜查询
func (h *StatsHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	scoreType, ok := models.ParseLeaderboardType(query.Get("type"))
	if !ok {
		h.sendErrorResponse(w, "无效的排行榜类型", http.StatusBadRequest)
		return
	}
	limit := parseLimit(query.Get("limit"), 10)

	entries, err := h.getLeaderboard(r, scoreType, limit)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(scoreType)).Msg("查询排行榜失败")
		h.sendErrorResponse(w, "查询排行榜失败", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		h.sendErrorResponse(w, "排行榜不可用", http.StatusServiceUnavailable)
		return
	}

	h.log.Debug().Str("type", string(scoreType)).Int("count", len(entries)).Msg("排行榜查询")
	h.sendSuccessResponse(w, "查询成功", entries)
}

// getLeaderboard 优先读 Redis，失败时回退到数据库；两者都没有返回 nil
func (h *StatsHandler) getLeaderboard(r *http.Request, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	if h.board != nil {
		entries, err := h.board.GetLeaderboard(r.Context(), scoreType, limit)
		if err == nil {
			return entries, nil
		}
		if h.sessions == nil {
			return nil, err
		}
		h.log.Warn().Err(err).Msg("Redis排行榜查询失败，回退到数据库查询")
	}
	if h.sessions == nil {
		return nil, nil
	}
	return h.sessions.TopPlayers(r.Context(), scoreType, limit)
}

// handleRank 处理玩家排名查询
func (h *StatsHandler) handleRank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "仅支持GET方法", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	playerID := query.Get("player")
	if playerID == "" {
		h.sendErrorResponse(w, "缺少player参数", http.StatusBadRequest)
		return
	}
	scoreType, ok := models.ParseLeaderboardType(query.Get("type"))
	if !ok {
		h.sendErrorResponse(w, "无效的排行榜类型", http.StatusBadRequest)
		return
	}
	if h.board == nil {
		h.sendErrorResponse(w, "Redis未启用", http.StatusServiceUnavailable)
		return
	}

	rank, err := h.board.GetPlayerRank(r.Context(), playerID, scoreType)
	if err != nil {
		h.log.Error().Err(err).Str("player", playerID).Msg("查询排名失败")
		h.sendErrorResponse(w, "查询排名失败", http.StatusInternalServerError)
		return
	}

	h.sendSuccessResponse(w, "查询成功", RankData{PlayerID: playerID, Type: scoreType, Rank: rank})
}

// parseLimit 解析分页大小，超出 1..100 时取默认值
func parseLimit(s string, def int) int {
	if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= 100 {
		return l
	}
	return def
}

// sendSuccessResponse 发送成功响应
func (h *StatsHandler) sendSuccessResponse(w http.ResponseWriter, message string, data interface{}) {
	h.writeResponse(w, http.StatusOK, StatsResponse{Success: true, Message: message, Data: data})
}

// sendErrorResponse 发送错误响应
func (h *StatsHandler) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	h.writeResponse(w, statusCode, StatsResponse{Success: false, Message: message})
}

func (h *StatsHandler) writeResponse(w http.ResponseWriter, statusCode int, resp StatsResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.log.Warn().Err(err).Msg("编码响应失败")
	}
}
