// stats.go

package gateway

import (
	"net/http"
	"strconv"

	"github.com/jacl-coder/PixelStorm-RPG/internal/game"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// StatsHandler 战斗记录与排行榜
type StatsHandler struct {
	service *game.CombatService
}

// NewStatsHandler 创建战绩处理器
func NewStatsHandler(service *game.CombatService) *StatsHandler {
	return &StatsHandler{service: service}
}

// RegisterHandlers 注册HTTP处理器
func (h *StatsHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/players/{id}/encounters", h.handleEncounters)
	mux.HandleFunc("/leaderboard", h.handleLeaderboard)
}

// EncountersData 战斗记录响应数据
type EncountersData struct {
	Encounters []models.EncounterRecord `json:"encounters"`
	Stats      models.EncounterStats    `json:"stats"`
	WinRate    float64                  `json:"win_rate"`
	Limit      int                      `json:"limit"`
}

// handleEncounters 玩家最近的战斗及统计
func (h *StatsHandler) handleEncounters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "仅支持GET方法", "", http.StatusMethodNotAllowed)
		return
	}

	limit := parseLimit(r)
	records, stats, err := h.service.History(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	if records == nil {
		records = []models.EncounterRecord{}
	}
	sendSuccessResponse(w, "查询成功", EncountersData{
		Encounters: records,
		Stats:      stats,
		WinRate:    stats.WinRate(),
		Limit:      limit,
	})
}

// handleLeaderboard 排行榜，type 为 victories 或 gold
func (h *StatsHandler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "仅支持GET方法", "", http.StatusMethodNotAllowed)
		return
	}

	scoreType := models.LeaderboardType(r.URL.Query().Get("type"))
	switch scoreType {
	case "":
		scoreType = models.LeaderboardVictories
	case models.LeaderboardVictories, models.LeaderboardGold:
	default:
		sendErrorResponse(w, "无效的排行榜类型", game.CodeInvalidTarget, http.StatusBadRequest)
		return
	}

	entries, err := h.service.Leaderboard(r.Context(), scoreType, parseLimit(r))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendSuccessResponse(w, "查询成功", entries)
}

// parseLimit 解析 limit 参数，范围 1..100
func parseLimit(r *http.Request) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 && l <= maxPageLimit {
			return l
		}
	}
	return defaultPageLimit
}
