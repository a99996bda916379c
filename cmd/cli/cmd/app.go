package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"archcost/adapters/request"
	"archcost/core/catalog"
	"archcost/core/cost"
	"archcost/core/output"
	"archcost/core/types"
	"archcost/internal/config"
	"archcost/internal/logging"
)

// app is the state every command shares
type app struct {
	cfg       *config.Config
	engine    *cost.Engine
	formatter output.Formatter
	logger    *zap.Logger
}

func newApp() (*app, error) {
	cfg := config.Get()

	f, err := output.ParseFormat(cfg.Output.DefaultFormat)
	if err != nil {
		return nil, err
	}
	formatter, ok := output.NewRegistry().Get(f)
	if !ok {
		return nil, fmt.Errorf("no formatter for %s", f)
	}

	cat, err := cfg.LoadCatalog()
	if err != nil {
		return nil, err
	}

	logger := logging.Named("cli", nil)
	logger.Debug("catalog loaded",
		zap.String("version", cat.Version()),
		zap.String("effective", cat.EffectiveDate().Format(catalog.DateLayout)))

	return &app{
		cfg:       cfg,
		engine:    cost.NewEngine(cat, cost.WithSettings(cfg.Settings())),
		formatter: formatter,
		logger:    logger,
	}, nil
}

// loadRequest reads a request file. Command-line flags override what the file says.
func (a *app) loadRequest(path string) (*request.Request, error) {
	req, err := request.LoadFile(path, a.cfg.RequestDefaults())
	if err != nil {
		return nil, err
	}

	if region != "" {
		req.Region = region
	}
	if currency != "" {
		req.Currency = a.cfg.Pricing.DefaultCurrency
	}
	if noFreeTier {
		req.FreeTier = false
	}
	req.Requirements.Region = req.Region
	req.Requirements.FreeTier = req.FreeTier

	a.logger.Debug("request loaded",
		zap.String("file", path),
		zap.String("hash", req.SourceHash),
		zap.Int("services", len(req.Architecture().Services)))
	return req, nil
}

// convert re-expresses a result in the request currency
func (a *app) convert(result *types.CostResult, cur types.Currency) (*types.CostResult, error) {
	if cur == "" || cur == types.CurrencyUSD {
		return result, nil
	}
	return a.engine.ConvertResult(result, cur)
}

func (a *app) metadata(req *request.Request) output.Metadata {
	cat := a.engine.Catalog()
	md := output.Metadata{
		CatalogVersion: cat.Version(),
		EffectiveDate:  cat.EffectiveDate().Format(catalog.DateLayout),
		Version:        Version,
	}
	if req != nil {
		md.InputHash = req.SourceHash
	}
	return md
}

func (a *app) render(cmd *cobra.Command, report *output.Report) error {
	return a.formatter.Render(cmd.OutOrStdout(), report)
}
