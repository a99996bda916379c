package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"archcost/core/output"
	"archcost/core/scenario"
	"archcost/core/types"
)

var (
	growthModel string
	growthRate  float64
	months      int
	sequential  bool
)

// projectCmd projects cost month by month under a growth scenario
var projectCmd = &cobra.Command{
	Use:   "project FILE",
	Short: "Project monthly cost under usage growth",
	Long: `Re-price an architecture for each month of a growth scenario.
Flags override the growth block of the request file. Free tier savings
end after month 12.

Models: linear, exponential, seasonal, custom.
Amounts are quoted in USD.

Examples:
  archcost project web.yaml
  archcost project --model linear --rate 0.1 --months 36 web.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runProject,
}

func init() {
	projectCmd.Flags().StringVar(&growthModel, "model", "", "growth model (linear, exponential, seasonal, custom)")
	projectCmd.Flags().Float64Var(&growthRate, "rate", 0, "monthly growth rate (0.1 = 10%)")
	projectCmd.Flags().IntVar(&months, "months", 0, "projection horizon in months")
	projectCmd.Flags().BoolVar(&sequential, "sequential", false, "price months one at a time")
}

func runProject(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	req, err := a.loadRequest(args[0])
	if err != nil {
		return err
	}

	growth := req.Growth
	if growthModel != "" {
		growth.Model = types.GrowthModel(strings.ToLower(growthModel))
	}
	if cmd.Flags().Changed("rate") {
		growth.Rate = growthRate
	}
	horizon := req.Months
	if months > 0 {
		horizon = months
	}

	projector := scenario.New(a.engine, a.cfg.Estimation.Workers, nil)
	var steps []types.ScenarioProjection
	if sequential {
		steps, err = projector.Project(req.Architecture(), req.Base(), horizon, growth)
	} else {
		steps, err = projector.ProjectParallel(cmd.Context(), req.Architecture(), req.Base(), horizon, growth)
	}
	if err != nil {
		return err
	}

	summary := scenario.Summarize(steps)
	a.logger.Info("projection complete",
		zap.String("model", string(growth.Model)),
		zap.Int("months", summary.Months),
		zap.String("total", summary.TotalCost.StringFixed(2)))

	return a.render(cmd, &output.Report{
		Projection: steps,
		Summary:    &summary,
		Metadata:   a.metadata(req),
	})
}
