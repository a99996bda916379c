package cmd

import (
	"github.com/spf13/cobra"

	"archcost/core/confidence"
	"archcost/core/diff"
	"archcost/core/output"
)

var changeThreshold float64

// diffCmd compares the cost of two request files
var diffCmd = &cobra.Command{
	Use:   "diff BASE HEAD",
	Short: "Compare the monthly cost of two architectures",
	Long: `Price two request files and report added, removed and changed services
with the component changes that explain each delta.

Both files are priced in the currency of HEAD.

Examples:
  archcost diff current.yaml proposed.yaml
  archcost diff --threshold 0.05 current.hcl proposed.hcl`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().Float64Var(&changeThreshold, "threshold", 0.001, "relative change below which a service counts as unchanged")
}

func runDiff(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	base, err := a.loadRequest(args[0])
	if err != nil {
		return err
	}
	head, err := a.loadRequest(args[1])
	if err != nil {
		return err
	}

	baseResult := a.engine.Calculate(base.Architecture(), base.Usage, base.Region, base.FreeTier)
	headResult := a.engine.Calculate(head.Architecture(), head.Usage, head.Region, head.FreeTier)

	before, err := a.convert(baseResult, head.Currency)
	if err != nil {
		return err
	}
	after, err := a.convert(headResult, head.Currency)
	if err != nil {
		return err
	}

	res, err := diff.NewDiffer(changeThreshold).Diff(before, after)
	if err != nil {
		return err
	}
	res.ConfidenceBefore = confidence.ForResult(base.Architecture(), baseResult).Current()
	res.ConfidenceAfter = confidence.ForResult(head.Architecture(), headResult).Current()

	return a.render(cmd, &output.Report{Diff: res, Metadata: a.metadata(head)})
}
