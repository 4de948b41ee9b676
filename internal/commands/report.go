package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"compsec/internal/compliance"
	"compsec/internal/database"
	"compsec/internal/models"
	"compsec/internal/scoring"
	"compsec/internal/ui"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print risk and assessment totals and upcoming reviews",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		spinner := ui.StartSpinner("Loading risks, assessments and frameworks...")
		snap, err := database.LoadSnapshot(ctx)
		if err != nil {
			spinner.Fail("Load failed")
			return err
		}
		spinner.Success("Loaded")

		ui.PrintDashboard(compliance.BuildDashboard(snap.Risks, snap.Assessments, snap.Frameworks, time.Now()))
		return nil
	},
}

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "List non-compliant controls of completed assessments, highest priority first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		frameworkID, _ := cmd.Flags().GetUint("framework")

		ctx, cancel, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cancel()

		assessments, err := database.AllAssessments(ctx, database.AssessmentFilter{
			FrameworkID: frameworkID,
			Status:      models.StatusCompleted,
		})
		if err != nil {
			return err
		}
		ui.PrintGaps(compliance.FindGaps(assessments))
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a risk from likelihood and impact (1-5 each)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		likelihood, _ := cmd.Flags().GetInt("likelihood")
		impact, _ := cmd.Flags().GetInt("impact")

		s, err := scoring.ScoreRisk(likelihood, impact)
		if err != nil {
			return err
		}
		ui.PrintScore(likelihood, impact, s)
		pterm.Println()
		return nil
	},
}

func init() {
	gapsCmd.Flags().Uint("framework", 0, "Only assessments of this framework id")

	scoreCmd.Flags().Int("likelihood", 0, "Likelihood score (1-5)")
	scoreCmd.Flags().Int("impact", 0, "Impact score (1-5)")
	_ = scoreCmd.MarkFlagRequired("likelihood")
	_ = scoreCmd.MarkFlagRequired("impact")

	rootCmd.AddCommand(dashboardCmd, gapsCmd, scoreCmd)
}
