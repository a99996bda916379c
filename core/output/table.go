package output

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"archcost/core/confidence"
	"archcost/core/determinism"
	"archcost/core/types"
	"archcost/core/variants"
)

// TableFormatter renders a report as aligned text tables
type TableFormatter struct{}

// NewTableFormatter creates a table formatter
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Format returns FormatTable
func (f *TableFormatter) Format() Format { return FormatTable }

// Render writes every non-empty section of the report
func (f *TableFormatter) Render(w io.Writer, report *Report) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	sections := []func(io.Writer, *Report){
		renderEstimate,
		renderRecommendations,
		renderProjection,
		renderVariants,
		renderDiff,
		renderCatalog,
	}
	for _, s := range sections {
		s(tw, report)
	}

	if report.Metadata.CatalogVersion != "" {
		fmt.Fprintf(tw, "\nPricing catalog %s (effective %s)\n", report.Metadata.CatalogVersion, report.Metadata.EffectiveDate)
	}
	return tw.Flush()
}

// Money formats an amount with thousands separators and two decimals
func Money(d decimal.Decimal, currency types.Currency) string {
	if currency == "" {
		currency = types.CurrencyUSD
	}
	return fmt.Sprintf("%s %s", humanize.FormatFloat("#,###.##", d.InexactFloat64()), currency)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func renderEstimate(w io.Writer, r *Report) {
	res := r.Estimate
	if res == nil {
		return
	}
	cur := res.Currency

	fmt.Fprintf(w, "REGION\t%s (x%s)\tFREE TIER\t%s\n", res.Region, res.RegionMultiplier.StringFixed(2), onOff(res.FreeTierEnabled))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SERVICE\tPURPOSE\tCATEGORY\tMONTHLY\tFREE TIER\tCOVERAGE\tNET")
	for _, sc := range res.ServiceCosts {
		purpose := sc.Purpose
		if purpose == "" {
			purpose = "-"
		}
		category := string(sc.Category)
		if sc.Unpriced {
			category = "unpriced"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			sc.ServiceID, purpose, category,
			Money(sc.MonthlyCost, cur),
			Money(sc.FreeTierSavings, cur),
			sc.FreeTierCoverage,
			Money(sc.MonthlyCost.Sub(sc.FreeTierSavings), cur))
	}
	fmt.Fprintf(w, "TOTAL\t\t\t%s\t%s\t\t%s\n",
		Money(res.TotalMonthlyCost, cur), Money(res.FreeTierSavings, cur), Money(res.NetMonthlyCost, cur))

	if len(res.BreakdownByCategory) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "CATEGORY\tMONTHLY")
		determinism.RangeMapSorted(res.BreakdownByCategory, func(c types.Category, amount decimal.Decimal) bool {
			fmt.Fprintf(w, "%s\t%s\n", c, Money(amount, cur))
			return true
		})
	}

	if r.Confidence != nil {
		fmt.Fprintf(w, "\nConfidence: %.0f%% (%s)\n", r.Confidence.Value*100, r.Confidence.Level)
	}

	if len(res.Diagnostics) > 0 {
		fmt.Fprintln(w)
		for _, d := range res.Diagnostics {
			fmt.Fprintf(w, "! %s\n", d.Error())
		}
	}
}

func renderRecommendations(w io.Writer, r *Report) {
	if r.Recommendations == nil {
		return
	}
	if len(r.Recommendations) == 0 {
		fmt.Fprintln(w, "No recommendations.")
		return
	}
	if r.Estimate != nil {
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "#\tTYPE\tSERVICE\tSAVINGS/MO\tIMPACT\tEFFORT\tRISK\tTITLE")
	for i, rec := range r.Recommendations {
		target := string(rec.ServiceID)
		if rec.Purpose != "" {
			target += "/" + rec.Purpose
		}
		title := rec.Title
		if rec.IsAlternative() {
			title += " (alternative)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			i+1, rec.Type, target, Money(rec.PotentialSavings, types.CurrencyUSD),
			rec.Impact, rec.Effort, rec.RiskLevel, title)
	}

	for i, rec := range r.Recommendations {
		if len(rec.Options) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%d. %s options\n", i+1, rec.Title)
		fmt.Fprintln(w, "TERM\tPAYMENT\tDISCOUNT\tUPFRONT\tMONTHLY\tSAVINGS/MO\tPAYBACK\tROI")
		for _, o := range rec.Options {
			fmt.Fprintf(w, "%s\t%s\t%s%%\t%s\t%s\t%s\t%s\t%s\n",
				o.Term, o.Payment, o.Discount.Shift(2).StringFixed(0),
				Money(o.UpfrontCost, types.CurrencyUSD),
				Money(o.MonthlyRecurring, types.CurrencyUSD),
				Money(o.MonthlySavings, types.CurrencyUSD),
				payback(o.PaybackMonths), roi(o.ROI))
		}
	}
}

func payback(months float64) string {
	if months == 0 {
		return "immediate"
	}
	return fmt.Sprintf("%.1f mo", months)
}

func roi(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.0f%%", v*100)
}

func renderProjection(w io.Writer, r *Report) {
	if len(r.Projection) == 0 {
		return
	}

	fmt.Fprintln(w, "MONTH\tMULTIPLIER\tPAGE VIEWS\tREQUESTS\tNET\tGROWTH\tFREE TIER\tALERTS")
	for _, p := range r.Projection {
		alerts := make([]string, len(p.Alerts))
		for i, a := range p.Alerts {
			alerts[i] = string(a.Type)
		}
		fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\t%s\t%+.1f%%\t%s\t%s\n",
			p.Month, p.GrowthMultiplier,
			humanize.Comma(p.Usage.PageViews), humanize.Comma(p.Usage.APIRequests),
			Money(p.Costs.NetMonthlyCost, p.Costs.Currency),
			p.GrowthRatePercent, onOff(p.FreeTierApplied), strings.Join(alerts, ","))
	}

	if s := r.Summary; s != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Total over %d months:\t%s\n", s.Months, Money(s.TotalCost, types.CurrencyUSD))
		fmt.Fprintf(w, "Average monthly:\t%s\n", Money(s.AverageMonthly, types.CurrencyUSD))
		fmt.Fprintf(w, "Peak:\tmonth %d at %s\n", s.PeakMonth, Money(s.PeakCost, types.CurrencyUSD))
		if s.FreeTierEndMonth > 0 {
			fmt.Fprintf(w, "Free tier ends:\tmonth %d\n", s.FreeTierEndMonth)
		}
		if s.FirstAlertMonth > 0 {
			fmt.Fprintf(w, "First alert:\tmonth %d\n", s.FirstAlertMonth)
		}
	}
}

func renderVariants(w io.Writer, r *Report) {
	if len(r.Variants) == 0 {
		return
	}

	fmt.Fprintln(w, "RANK\tKIND\tSCORE\tCONFIDENCE\tMONTHLY\tNET\tSCALABILITY\tCOMPLEXITY\tSERVICES")
	for i, v := range r.Variants {
		ids := v.Architecture.ServiceIDs()
		names := make([]string, len(ids))
		for n, id := range ids {
			names[n] = string(id)
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\t%s\t%d/5\t%d/5\t%s\n",
			i+1, v.Kind, v.Score.Total, confidence.Level(v.Confidence),
			Money(v.Costs.TotalMonthlyCost, v.Costs.Currency),
			Money(v.Costs.NetMonthlyCost, v.Costs.Currency),
			v.Scalability, v.Complexity, strings.Join(names, ","))
	}

	for i, v := range r.Variants {
		if len(v.Changes) == 0 && len(v.Issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%d. %s\n", i+1, variantTitle(v))
		for _, c := range v.Changes {
			fmt.Fprintf(w, "  - %s\n", c)
		}
		for _, is := range v.Issues {
			fmt.Fprintf(w, "  ! %s\n", is.Message)
		}
	}
}

func renderDiff(w io.Writer, r *Report) {
	d := r.Diff
	if d == nil {
		return
	}

	// largest impact first
	ranked := d.TopChanges(len(d.Added) + len(d.Removed) + len(d.Changed))

	fmt.Fprintln(w, "CHANGE\tSERVICE\tBEFORE\tAFTER\tDELTA")
	for _, sd := range ranked {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			sd.ChangeType, sd.Key,
			Money(sd.Before, d.Currency), Money(sd.After, d.Currency), signed(sd.Delta, d.Currency))
	}
	fmt.Fprintf(w, "TOTAL\t\t%s\t%s\t%s\n",
		Money(d.TotalBefore, d.Currency), Money(d.TotalAfter, d.Currency), signed(d.TotalDelta, d.Currency))

	for _, sd := range ranked[:min(len(ranked), diffReasonLimit)] {
		if len(sd.Reasons) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", sd.Key)
		for _, reason := range sd.Reasons {
			fmt.Fprintf(w, "  - %s (%s)\n", reason.What, signed(reason.Impact, d.Currency))
		}
	}

	if d.ConfidenceBefore > 0 || d.ConfidenceAfter > 0 {
		fmt.Fprintf(w, "\nConfidence:\t%.2f -> %.2f\n", d.ConfidenceBefore, d.ConfidenceAfter)
	}
}

// diffReasonLimit bounds how many services get a reasons section
const diffReasonLimit = 5

func signed(amount decimal.Decimal, currency types.Currency) string {
	if amount.IsPositive() {
		return "+" + Money(amount, currency)
	}
	return Money(amount, currency)
}

func variantTitle(v variants.Variant) string {
	if v.Name != "" {
		return v.Name
	}
	return string(v.Kind)
}

func renderCatalog(w io.Writer, r *Report) {
	c := r.Catalog
	if c == nil {
		return
	}

	fmt.Fprintln(w, "SERVICE\tNAME\tCATEGORY\tCOMPONENTS\tFREE TIER")
	for _, def := range c.Services {
		components := make([]string, len(def.Components))
		for i, pc := range def.Components {
			components[i] = pc.Name
		}
		free := make([]string, len(def.FreeTier))
		for i, l := range def.FreeTier {
			free[i] = fmt.Sprintf("%s %s/%s", l.Dimension, limitAmount(l.Quantity, l.Allotment), l.Duration())
		}
		if len(free) == 0 {
			free = []string{"-"}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			def.ID, def.Name, def.Category, strings.Join(components, ","), strings.Join(free, "; "))
	}

	if len(c.Services) == 1 {
		renderComponents(w, r)
	}

	if len(c.Regions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "REGION\tNAME\tMULTIPLIER\tFREE TIER")
		for _, reg := range c.Regions {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", reg.Code, reg.Name, reg.Multiplier, onOff(reg.FreeTierEligible))
		}
	}
}

func limitAmount(quantity, allotment decimal.Decimal) string {
	if allotment.IsPositive() {
		return Money(allotment, types.CurrencyUSD)
	}
	return humanize.CommafWithDigits(quantity.InexactFloat64(), 2)
}

// renderComponents details the rates of a single service
func renderComponents(w io.Writer, r *Report) {
	def := r.Catalog.Services[0]
	fmt.Fprintln(w)
	fmt.Fprintln(w, "COMPONENT\tSHAPE\tUNIT\tRATE")
	for _, pc := range def.Components {
		switch {
		case len(pc.Classes) > 0:
			for _, class := range pc.ClassNames() {
				rate, _ := pc.ClassRate(class)
				fmt.Fprintf(w, "%s [%s]\t%s\t%s\t%s\n", pc.Name, class, pc.Shape, pc.Unit, rate)
			}
		case len(pc.Tiers) > 0:
			for _, t := range pc.Tiers {
				upTo := "∞"
				if t.UpTo.IsPositive() {
					upTo = humanize.FormatFloat("#,###.", t.UpTo.InexactFloat64())
				}
				fmt.Fprintf(w, "%s [≤ %s]\t%s\t%s\t%s\n", pc.Name, upTo, pc.Shape, pc.Unit, t.Rate)
			}
		default:
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", pc.Name, pc.Shape, pc.Unit, pc.UnitRate())
		}
	}
}
