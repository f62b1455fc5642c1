package game

import (
	"errors"
	"fmt"

	"github.com/jacl-coder/PixelStorm-RPG/internal/combat"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
	"github.com/jacl-coder/PixelStorm-RPG/internal/store"
)

var (
	// ErrNoSession 频道中没有进行中的战斗
	ErrNoSession = fmt.Errorf("%w: 该频道没有进行中的战斗", combat.ErrSessionConflict)
	// ErrTooManySessions 达到同时进行的战斗上限
	ErrTooManySessions = errors.New("进行中的战斗过多，请稍后再试")
	// ErrNoCharacter 玩家尚未创建角色
	ErrNoCharacter = fmt.Errorf("%w: 尚未创建角色", store.ErrNotFound)
	// ErrCharacterExists 角色已存在
	ErrCharacterExists = errors.New("角色已存在")
	// ErrNoViewers 频道没有订阅者，推送被忽略
	ErrNoViewers = errors.New("没有订阅者")
)

// 错误码，供网关和WebSocket返回给前端
const (
	CodeInsufficientResource = "insufficient_resource"
	CodeNotReady             = "not_ready"
	CodeItemUnavailable      = "item_unavailable"
	CodeInvalidTarget        = "invalid_target"
	CodeSessionConflict      = "session_conflict"
	CodeSessionEnded         = "session_ended"
	CodeNotFound             = "not_found"
	CodeAlreadyExists        = "already_exists"
	CodeBusy                 = "busy"
	CodeInternal             = "internal_error"
)

// ErrorCode 将领域错误映射为错误码，顺序从具体到宽泛
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, combat.ErrNotReady):
		return CodeNotReady
	case errors.Is(err, combat.ErrItemUnavailable):
		return CodeItemUnavailable
	case errors.Is(err, combat.ErrInsufficientResource):
		return CodeInsufficientResource
	case errors.Is(err, combat.ErrInvalidTarget), errors.Is(err, models.ErrUnknownPath):
		return CodeInvalidTarget
	case errors.Is(err, combat.ErrSessionEnded):
		return CodeSessionEnded
	case errors.Is(err, combat.ErrSessionConflict), errors.Is(err, models.ErrPathAlreadyChosen):
		return CodeSessionConflict
	case errors.Is(err, store.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrCharacterExists):
		return CodeAlreadyExists
	case errors.Is(err, ErrTooManySessions):
		return CodeBusy
	default:
		return CodeInternal
	}
}
