package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/jacl-coder/PixelStorm-RPG/internal/combat"
	"github.com/jacl-coder/PixelStorm-RPG/internal/game"
)

// CombatHandler 战斗命令
type CombatHandler struct {
	service *game.CombatService
}

// NewCombatHandler 创建战斗处理器
func NewCombatHandler(service *game.CombatService) *CombatHandler {
	return &CombatHandler{service: service}
}

// RegisterHandlers 注册HTTP处理器
func (h *CombatHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/combat/start", h.handleStart)
	mux.HandleFunc("/combat/action", h.handleAction)
	mux.HandleFunc("/combat/{channel}", h.handleSnapshot)
}

// StartCombatRequest 开始战斗请求
type StartCombatRequest struct {
	ChannelID string         `json:"channel_id"`
	MonsterID string         `json:"monster_id,omitempty"`
	Technique string         `json:"technique,omitempty"`
	Variant   combat.Variant `json:"variant,omitempty"`
}

// ActionRequest 行动请求
type ActionRequest struct {
	ChannelID string `json:"channel_id"`
	Kind      string `json:"kind"`
	Arg       string `json:"arg,omitempty"`
}

// handleStart 在频道中为令牌中的玩家开始战斗
func (h *CombatHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendErrorResponse(w, "仅支持POST方法", "", http.StatusMethodNotAllowed)
		return
	}

	var req StartCombatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "无效的请求格式", game.CodeInvalidTarget, http.StatusBadRequest)
		return
	}

	snap, err := h.service.StartEncounter(r.Context(), game.StartRequest{
		PlayerID:  playerIDFrom(r),
		ChannelID: req.ChannelID,
		MonsterID: req.MonsterID,
		Technique: req.Technique,
		Variant:   req.Variant,
	})
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendSuccessResponse(w, "战斗开始", snap)
}

// handleAction 提交行动
func (h *CombatHandler) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendErrorResponse(w, "仅支持POST方法", "", http.StatusMethodNotAllowed)
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "无效的请求格式", game.CodeInvalidTarget, http.StatusBadRequest)
		return
	}
	kind, err := combat.ParseActionKind(req.Kind)
	if err != nil {
		sendDomainError(w, err)
		return
	}

	out, err := h.service.SubmitAction(r.Context(), playerIDFrom(r), req.ChannelID, combat.Action{Kind: kind, Arg: req.Arg})
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendSuccessResponse(w, "行动完成", out)
}

// handleSnapshot 查询频道中的战斗
func (h *CombatHandler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "仅支持GET方法", "", http.StatusMethodNotAllowed)
		return
	}

	snap, err := h.service.Snapshot(r.PathValue("channel"))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendSuccessResponse(w, "查询成功", snap)
}
