package main

import (
	"context"
	"encoding/json"
	"os"

	"leadintake/internal/config"
	"leadintake/internal/leads"
	"leadintake/pkg/domain"
	"leadintake/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// statsCommand prints lead statistics as seen by the given identity, so
// row-level security applies exactly as it does for the admin API.
func statsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Prints lead statistics for given user ID and role",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			subject, _ := cmd.Flags().GetString("subject")
			role, _ := cmd.Flags().GetString("role")

			session, closeSession := getPostgres(ctx, "session", cfg.Database.Session, cfg.Database.SessionRole)
			defer closeSession()

			// only the scoped handle is used, so no elevated connection is opened
			repo := leads.New(session, session)
			stats, err := repo.As(domain.Identity{Subject: subject, Role: role}).Stats(ctx)
			if err != nil {
				logger.Error(ctx, "could not compute lead stats", zap.Error(err))

				return
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(stats)
		},
	}

	cmd.Flags().String("subject", "", "User ID the query runs as")
	cmd.Flags().String("role", domain.RoleAdmin, "Role the query runs as")
	_ = cmd.MarkFlagRequired("subject")

	return cmd
}
