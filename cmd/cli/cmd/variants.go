package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"archcost/core/output"
	"archcost/core/variants"
)

// variantsCmd proposes alternative architectures
var variantsCmd = &cobra.Command{
	Use:   "variants FILE",
	Short: "Propose cost, performance, simplicity and scalability variants",
	Long: `Derive alternative architectures from a request file according to its
preferences and requirements, price each one and rank them by score.

Variants identical to the base architecture are omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: runVariants,
}

func runVariants(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	req, err := a.loadRequest(args[0])
	if err != nil {
		return err
	}

	vs, err := variants.New(a.engine, nil).Optimize(req.Pattern, req.Requirements, req.Preferences)
	if err != nil {
		return err
	}
	for i := range vs {
		if vs[i].Costs, err = a.convert(vs[i].Costs, req.Currency); err != nil {
			return err
		}
	}

	a.logger.Info("variants generated", zap.Int("count", len(vs)))

	return a.render(cmd, &output.Report{Variants: vs, Metadata: a.metadata(req)})
}
