package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"archcost/core/advisor"
	"archcost/core/output"
	"archcost/core/types"
)

var (
	faultTolerant bool
	steady        bool
)

// recommendCmd generates optimization recommendations
var recommendCmd = &cobra.Command{
	Use:   "recommend FILE",
	Short: "Recommend cost optimizations for an architecture",
	Long: `Price a request file and suggest rightsizing, reserved capacity,
spot capacity, storage lifecycle, CDN, free tier, serverless and
capacity mode changes, ranked by monthly savings.

Savings are quoted in USD.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func init() {
	recommendCmd.Flags().BoolVar(&faultTolerant, "fault-tolerant", true, "workload tolerates interruption (enables spot)")
	recommendCmd.Flags().BoolVar(&steady, "steady", true, "usage is predictable enough for commitments")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	req, err := a.loadRequest(args[0])
	if err != nil {
		return err
	}

	flags := req.Flags
	if cmd.Flags().Changed("fault-tolerant") {
		flags.FaultTolerant = types.BoolPtr(faultTolerant)
	}
	if cmd.Flags().Changed("steady") {
		flags.Steady = types.BoolPtr(steady)
	}

	arch := req.Architecture()
	result := a.engine.Calculate(arch, req.Usage, req.Region, req.FreeTier)
	recs := advisor.New(a.engine, a.cfg.Advisor, nil).Generate(arch, result, flags)

	a.logger.Info("recommendations generated", zap.Int("count", len(recs)))

	converted, err := a.convert(result, req.Currency)
	if err != nil {
		return err
	}
	return a.render(cmd, &output.Report{
		Estimate:        converted,
		Recommendations: recs,
		Metadata:        a.metadata(req),
	})
}
