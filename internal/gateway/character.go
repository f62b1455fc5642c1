package gateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jacl-coder/PixelStorm-RPG/internal/game"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

// CharacterHandler 角色创建、命途选择与玩家资料
type CharacterHandler struct {
	service *game.CombatService
}

// NewCharacterHandler 创建角色处理器
func NewCharacterHandler(service *game.CombatService) *CharacterHandler {
	return &CharacterHandler{service: service}
}

// RegisterHandlers 注册HTTP处理器
func (h *CharacterHandler) RegisterHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/characters", h.handleCreate)
	mux.HandleFunc("/characters/path", h.handleChoosePath)
	mux.HandleFunc("/players/{id}/profile", h.handleProfile)
}

// CreateCharacterRequest 创建角色请求
type CreateCharacterRequest struct {
	Name  string                `json:"name"`
	Class models.CharacterClass `json:"class"`
}

// ChoosePathRequest 选择命途请求
type ChoosePathRequest struct {
	Path models.Path `json:"path"`
}

// handleCreate 为令牌中的玩家创建角色
func (h *CharacterHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendErrorResponse(w, "仅支持POST方法", "", http.StatusMethodNotAllowed)
		return
	}

	var req CreateCharacterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "无效的请求格式", game.CodeInvalidTarget, http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	class := models.CharacterClass(strings.ToLower(string(req.Class)))

	p, err := h.service.CreateCharacter(r.Context(), playerIDFrom(r), req.Name, class)
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendSuccessResponse(w, "角色创建成功", p)
}

// handleChoosePath 选择命途，只能选择一次
func (h *CharacterHandler) handleChoosePath(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendErrorResponse(w, "仅支持POST方法", "", http.StatusMethodNotAllowed)
		return
	}

	var req ChoosePathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "无效的请求格式", game.CodeInvalidTarget, http.StatusBadRequest)
		return
	}

	p, err := h.service.ChoosePath(r.Context(), playerIDFrom(r), models.Path(strings.ToLower(string(req.Path))))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendSuccessResponse(w, "命途已选择", p)
}

// handleProfile 查询玩家资料
func (h *CharacterHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendErrorResponse(w, "仅支持GET方法", "", http.StatusMethodNotAllowed)
		return
	}

	p, err := h.service.Profile(r.Context(), r.PathValue("id"))
	if err != nil {
		sendDomainError(w, err)
		return
	}
	sendSuccessResponse(w, "查询成功", p)
}
