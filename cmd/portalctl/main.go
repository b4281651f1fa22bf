// Command portalctl performs operator tasks against the portal database.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/GTDGit/reseller_portal/internal/config"
	"github.com/GTDGit/reseller_portal/internal/database"
	"github.com/GTDGit/reseller_portal/internal/repository"
	"github.com/GTDGit/reseller_portal/internal/service"
	"github.com/GTDGit/reseller_portal/pkg/cbu"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portalctl",
		Short:        "Operator tooling for the reseller portal",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newPartnerCmd(), newRateCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	var source string
	var steps int

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&source, "source", database.DefaultMigrationsURL, "migrations source URL")

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Connect(&cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.MigrateUp(db.DB, source); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Connect(&cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := database.MigrateDown(db.DB, source, steps); err != nil {
				return err
			}
			log.Info().Int("steps", steps).Msg("migrations rolled back")
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func newPartnerCmd() *cobra.Command {
	var email, name, password string

	cmd := &cobra.Command{
		Use:   "partner",
		Short: "Manage partner accounts",
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Create an active partner account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := database.Connect(&cfg.DB)
			if err != nil {
				return err
			}
			defer db.Close()

			authSvc := service.NewAuthService(repository.NewPartnerRepo(db), nil, nil)
			p, err := authSvc.CreatePartner(cmd.Context(), email, name, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created partner %d <%s>\n", p.ID, p.Email)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "partner email")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&password, "password", "", "initial password")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("name")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}

func newRateCmd() *cobra.Command {
	var url string
	var proxies []string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Fetch the current USD to UZS rate",
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := cbu.NewClient(url, proxies, timeout).FetchUSDRate(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "1 USD = %s UZS (%s, via %s)\n", q.Rate.String(), q.Date, q.Source)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "https://cbu.uz/uz/arkhiv-kursov-valyut/json/USD/", "rate feed URL")
	cmd.Flags().StringSliceVar(&proxies, "proxy", nil, "proxy prefixes tried after a direct fetch fails")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}
