package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jacl-coder/PixelStorm-RPG/internal/gateway"
)

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <player_id>",
		Short: "为玩家签发访问令牌（开发调试用）",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			tok, expiresAt, err := gateway.NewTokenIssuer(cfg.Auth).Issue(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "过期时间: %s\n", expiresAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}
}
