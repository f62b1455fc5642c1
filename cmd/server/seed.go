package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jacl-coder/PixelStorm-RPG/internal/game"
	"github.com/jacl-coder/PixelStorm-RPG/internal/models"
)

// demoCharacters 演示角色，每个职业一个
var demoCharacters = []struct {
	id    string
	name  string
	class models.CharacterClass
	path  models.Path
}{
	{"demo_warrior", "演示战士", models.ClassWarrior, models.PathDestruction},
	{"demo_mage", "演示法师", models.ClassMage, models.PathAbundance},
	{"demo_rogue", "演示盗贼", models.ClassRogue, models.PathHunt},
	{"demo_archer", "演示弓箭手", models.ClassArcher, ""},
	{"demo_healer", "演示治疗者", models.ClassHealer, models.PathPreservation},
	{"demo_chrono", "演示时织者", models.ClassChronoWeave, ""},
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "创建演示角色",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig()
			b, closeBackends, err := openBackends(cfg)
			if err != nil {
				log.Fatalf("%v", err)
			}
			defer closeBackends()

			return seedCharacters(cmd.Context(), newService(cfg, b))
		},
	}
}

// seedCharacters 创建演示角色，已存在的跳过
func seedCharacters(ctx context.Context, service *game.CombatService) error {
	created := 0
	for _, d := range demoCharacters {
		_, err := service.CreateCharacter(ctx, d.id, d.name, d.class)
		switch {
		case errors.Is(err, game.ErrCharacterExists):
			slog.Info("角色已存在，跳过", "player_id", d.id)
			continue
		case err != nil:
			return fmt.Errorf("创建演示角色 %s 失败: %w", d.id, err)
		}
		if d.path != "" {
			if _, err := service.ChoosePath(ctx, d.id, d.path); err != nil {
				return fmt.Errorf("设置命途 %s 失败: %w", d.id, err)
			}
		}
		created++
	}
	slog.Info("🎉 演示角色初始化完成", "created", created, "total", len(demoCharacters))
	return nil
}
