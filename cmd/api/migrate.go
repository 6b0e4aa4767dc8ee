package main

import (
	"fmt"
	"todoTracker/internal/app"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Управление схемой хранилища (sqlite или postgres)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Накатить схему",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, *configPath, "up")
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "Откатить схему (удаляет все задачи)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return fmt.Errorf("откат удаляет все задачи; повторите с --yes")
			}
			return runMigration(cmd, *configPath, "down")
		},
	}
	down.Flags().Bool("yes", false, "подтвердить удаление данных")
	cmd.AddCommand(down)

	return cmd
}

func runMigration(cmd *cobra.Command, configPath, direction string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	defer logger.Sync()

	store, err := app.OpenMigrator(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if direction == "down" {
		err = store.Down(ctx)
	} else {
		err = store.Migrate(ctx)
	}
	if err != nil {
		return fmt.Errorf("миграция %s: %w", direction, err)
	}

	logger.Info("Migrate: Готово",
		zap.String("direction", direction),
		zap.String("repository", cfg.Repository.Type))
	fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: ok (%s)\n", direction, cfg.Repository.Type)
	return nil
}
