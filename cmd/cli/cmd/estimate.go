// Package cmd - estimate command
package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"archcost/core/confidence"
	"archcost/core/output"
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate FILE",
	Short: "Estimate the monthly cost of an architecture",
	Long: `Price every service in a request file and report gross cost,
free tier savings and net cost by service and category.

Unknown services and invalid configurations are reported as diagnostics
and lower the confidence score; they do not stop the estimate.

Examples:
  archcost estimate web.yaml
  archcost estimate --no-free-tier --region eu-west-1 web.hcl`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func runEstimate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	req, err := a.loadRequest(args[0])
	if err != nil {
		return err
	}

	arch := req.Architecture()
	result := a.engine.Calculate(arch, req.Usage, req.Region, req.FreeTier)
	tracker := confidence.ForResult(arch, result)

	a.logger.Info("estimate complete",
		zap.String("total", result.NetMonthlyCost.StringFixed(2)),
		zap.Int("diagnostics", len(result.Diagnostics)),
		zap.Float64("confidence", tracker.Current()))

	converted, err := a.convert(result, req.Currency)
	if err != nil {
		return err
	}

	report := &output.Report{Estimate: converted, Metadata: a.metadata(req)}
	if a.cfg.Output.ShowConfidence {
		report.Confidence = output.NewConfidence(tracker)
	}
	return a.render(cmd, report)
}
