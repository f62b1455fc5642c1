package combat

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientResource 技能点、终结技能量或物品不足，会话状态不变
	ErrInsufficientResource = errors.New("资源不足")
	// ErrNotReady 终结技能量未充满
	ErrNotReady = fmt.Errorf("%w: 终结技尚未就绪", ErrInsufficientResource)
	// ErrItemUnavailable 背包中没有该物品
	ErrItemUnavailable = fmt.Errorf("%w: 没有可用的物品", ErrInsufficientResource)
	// ErrInvalidTarget 未知的怪物、技能、秘技或物品ID
	ErrInvalidTarget = errors.New("无效的目标")
	// ErrSessionConflict 频道或玩家已有战斗，或操作者不是战斗所有者
	ErrSessionConflict = errors.New("战斗会话冲突")
	// ErrSessionEnded 会话已进入终止状态
	ErrSessionEnded = errors.New("战斗已结束")
)
