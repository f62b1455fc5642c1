// main.go

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "pixelstorm-rpg",
		Short:         "PixelStorm RPG 战斗服务",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "配置文件路径")

	root.AddCommand(newServeCmd(), newDBCmd(), newSeedCmd(), newTokenCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
