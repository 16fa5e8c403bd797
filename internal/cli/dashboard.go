package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tetraminz/estate_coach/internal/config"
	"github.com/tetraminz/estate_coach/internal/crm"
	"github.com/tetraminz/estate_coach/internal/dashboard"
	"github.com/tetraminz/estate_coach/internal/store"
)

// NewHomeCmd creates the 'home' command: quick stats and recent
// session summaries.
func NewHomeCmd() *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:     "home",
		Short:   "Show the dashboard home page",
		Example: `  estate_coach home --recent 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := store.OpenSQLiteStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := dashboard.BuildHomeStats(db, recent)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), dashboard.RenderHome(stats))
			return nil
		},
	}

	cmd.Flags().IntVarP(&recent, "recent", "r", 5, "How many recent sessions to show")
	return cmd
}

// NewPerfCmd creates the 'perf' command: the sales performance
// leaderboard.
func NewPerfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "perf",
		Short:   "Show the sales performance leaderboard",
		Example: `  estate_coach perf`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := store.OpenSQLiteStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := dashboard.BuildPerformance(db)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), dashboard.RenderPerformance(rows))
			return nil
		},
	}
	return cmd
}

// NewReportCmd creates the 'report' command: per-agent session
// analytics from the archive.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "report <username>",
		Short:   "Show session analytics for an agent",
		Example: `  estate_coach report alice`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			db, err := store.OpenSQLiteStore(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			report, err := dashboard.BuildUserReport(db, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), dashboard.RenderUserReport(report))
			return nil
		},
	}
	return cmd
}

// NewCRMCmd creates the 'crm' command: view and filter CRM records.
func NewCRMCmd() *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:   "crm",
		Short: "Show CRM records, optionally filtered by city",
		Example: `  estate_coach crm
  estate_coach crm --city "new york"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			table, err := crm.Load(cfg.CRMPath)
			if err != nil {
				return err
			}
			filtered := table.FilterCity(city)
			fmt.Fprint(cmd.OutOrStdout(), dashboard.RenderCRM(filtered.Columns, filtered.Rows))
			return nil
		},
	}

	cmd.Flags().StringVarP(&city, "city", "c", "", "Filter by city substring")
	return cmd
}

// NewTranscriptCmd creates the 'transcript' command: show an agent's
// accumulated transcript.
func NewTranscriptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transcript <username>",
		Short:   "Show the stored transcript for an agent",
		Example: `  estate_coach transcript alice`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			files := store.NewFileStore(cfg.OutputDir)
			rows, err := files.ReadTranscript(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), dashboard.RenderTranscriptTable(args[0], rows))
			return nil
		},
	}
	return cmd
}
