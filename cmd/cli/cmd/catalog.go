package cmd

import (
	"github.com/spf13/cobra"

	"archcost/core/catalog"
	"archcost/core/output"
	"archcost/core/types"
)

// catalogCmd lists the pricing catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog [SERVICE]",
	Short: "Show the pricing catalog",
	Long: `List every priced service with its regions and currencies, or show the
components and free tier of one service.

Examples:
  archcost catalog
  archcost catalog s3
  archcost --config prod.json catalog rds`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalog,
}

func runCatalog(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	cat := a.engine.Catalog()

	listing := &output.CatalogListing{}
	if len(args) == 1 {
		def, err := cat.Lookup(types.ServiceID(args[0]))
		if err != nil {
			return err
		}
		listing.Services = []*catalog.ServiceDefinition{def}
	} else {
		for _, id := range cat.Services() {
			def, err := cat.Lookup(id)
			if err != nil {
				return err
			}
			listing.Services = append(listing.Services, def)
		}
		listing.Regions = cat.Regions()
		listing.Currencies = cat.Currencies()
	}

	return a.render(cmd, &output.Report{Catalog: listing, Metadata: a.metadata(nil)})
}
