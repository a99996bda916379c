package advisor

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"archcost/clouds/aws/database"
	"archcost/core/catalog"
	"archcost/core/pricing/primitives"
	"archcost/core/types"
)

const secondsPerMonth = primitives.HoursPerMonth * 3600

// criticalPurposes mark services that default to not fault tolerant
var criticalPurposes = []string{"db", "database", "primary", "stateful", "payment", "auth", "critical"}

func faultTolerant(flags types.UsagePatternFlags, su types.ServiceUsage) bool {
	if flags.FaultTolerant != nil {
		return *flags.FaultTolerant
	}
	purpose := strings.ToLower(su.Purpose)
	for _, p := range criticalPurposes {
		if strings.Contains(purpose, p) {
			return false
		}
	}
	return true
}

func steady(flags types.UsagePatternFlags) bool {
	return flags.Steady == nil || *flags.Steady
}

// capacityCost sums the service's capacity components less its free tier savings.
// Without a breakdown the whole net cost counts.
func capacityCost(sc types.ServiceCost, cs capacityService) decimal.Decimal {
	if len(sc.Breakdown) == 0 {
		return sc.NetCost()
	}
	sum := decimal.Zero
	for _, name := range cs.components {
		if c, ok := sc.Component(name); ok {
			sum = sum.Add(c.Cost)
		}
	}
	return primitives.NonNegative(sum.Sub(sc.FreeTierSavings))
}

// capacityClass returns the class the service was priced with
func capacityClass(sc types.ServiceCost, cs capacityService) string {
	if c, ok := sc.Component(cs.components[0]); ok {
		return c.Class
	}
	return ""
}

// reclassify suggests another class for classed capacity services
func reclassify(a *Advisor, in *input, t types.RecommendationType, pick func(pc *catalog.PriceComponent, current string) (string, bool)) []types.Recommendation {
	var recs []types.Recommendation
	for _, e := range in.entries() {
		cs, ok := capacityServices[e.su.ServiceID]
		if !ok || cs.withClass == nil {
			continue
		}
		if t == types.RecRightsizing {
			floor, ok := a.thresholds.RightsizingFloor[e.cost.Category]
			if !ok || e.cost.MonthlyCost.LessThan(floor) {
				continue
			}
		}
		current := capacityClass(e.cost, cs)
		def, err := a.engine.Catalog().Lookup(e.su.ServiceID)
		if current == "" || err != nil {
			continue
		}
		pc, ok := def.Component(cs.components[0])
		if !ok {
			continue
		}
		target, ok := pick(pc, current)
		if !ok {
			continue
		}

		index := e.index
		savings := a.whatIf(in, func(arch *types.Architecture) {
			arch.Services[index].Config = cs.withClass(arch.Services[index].Config, target)
		})

		var r types.Recommendation
		if t == types.RecRightsizing {
			r = a.recommendFor(t, e, savings, types.LevelLow, types.LevelMedium)
			r.Title = fmt.Sprintf("Downsize %s from %s to %s", label(e.su), current, target)
			r.Description = fmt.Sprintf("%s costs %s/month on %s; the next smaller size halves capacity at a lower rate.",
				label(e.su), primitives.Money(e.cost.MonthlyCost), current)
			r.Preconditions = []string{fmt.Sprintf("peak utilization on %s stays below 50%%", current)}
		} else {
			r = a.recommendFor(t, e, savings, types.LevelLow, types.LevelLow)
			r.Title = fmt.Sprintf("Upgrade %s from %s to %s", label(e.su), current, target)
			r.Description = fmt.Sprintf("%s is a newer generation with better price-performance than %s.", target, current)
		}
		recs = append(recs, r)
	}
	return recs
}

func rightsizing(a *Advisor, in *input) []types.Recommendation {
	return reclassify(a, in, types.RecRightsizing, smallerClass)
}

func generationUpgrade(a *Advisor, in *input) []types.Recommendation {
	return reclassify(a, in, types.RecGenerationUpgrade, successorClass)
}

func reservedCapacity(a *Advisor, in *input) []types.Recommendation {
	if !steady(in.flags) {
		return nil
	}
	var recs []types.Recommendation
	for _, e := range in.entries() {
		cs, ok := capacityServices[e.su.ServiceID]
		if !ok || !cs.reservable {
			continue
		}
		committable := capacityCost(e.cost, cs)
		if committable.LessThan(a.thresholds.CommitmentFloor) {
			continue
		}

		options := CommitmentOptions(committable, a.thresholds.Commitments)
		r := a.recommendFor(types.RecReservedInstance, e, headlineSavings(options), types.LevelLow, types.LevelMedium)
		r.Title = fmt.Sprintf("Reserve capacity for %s", label(e.su))
		r.Description = fmt.Sprintf("%s of on-demand capacity runs continuously; a 1-year all-upfront reservation saves %s/month.",
			primitives.Money(committable), primitives.Money(r.PotentialSavings))
		r.Preconditions = []string{"workload runs continuously for the full term"}
		r.Options = options
		recs = append(recs, r)
	}
	return recs
}

func spotCapacity(a *Advisor, in *input) []types.Recommendation {
	var recs []types.Recommendation
	for _, e := range in.entries() {
		cs, ok := capacityServices[e.su.ServiceID]
		if !ok || !cs.spot || !faultTolerant(in.flags, e.su) {
			continue
		}
		capacity := capacityCost(e.cost, cs)
		if capacity.LessThan(a.thresholds.SpotFloor) {
			continue
		}

		savings := capacity.Mul(a.thresholds.SpotDiscount)
		r := a.recommendFor(types.RecSpotInstance, e, savings, types.LevelMedium, types.LevelHigh)
		r.Title = fmt.Sprintf("Run %s on spot capacity", label(e.su))
		r.Description = fmt.Sprintf("Spot capacity is about %s%% cheaper than on-demand for interruptible work.",
			a.thresholds.SpotDiscount.Shift(2).String())
		r.Preconditions = []string{"workload tolerates two-minute interruption notices"}
		recs = append(recs, r)
	}
	return recs
}

func storageLifecycle(a *Advisor, in *input) []types.Recommendation {
	var recs []types.Recommendation
	for _, e := range in.entries() {
		if e.su.ServiceID != types.ServiceS3 {
			continue
		}
		standard, ok := e.cost.Component("storage")
		if !ok || standard.Quantity.LessThan(primitives.FromFloat(a.thresholds.LifecycleMinGB)) {
			continue
		}
		def, err := a.engine.Catalog().Lookup(types.ServiceS3)
		if err != nil {
			continue
		}
		ia, ok := def.Component("storage_standard_ia")
		if !ok {
			continue
		}

		iaRate := ia.UnitRate().Mul(in.result.RegionMultiplier)
		cold := standard.Quantity.Mul(a.thresholds.LifecycleColdShare)
		savings := primitives.NonNegative(cold.Mul(standard.Rate.Sub(iaRate)))

		r := a.recommendFor(types.RecStorageLifecycle, e, savings, types.LevelLow, types.LevelLow)
		r.Title = fmt.Sprintf("Add a lifecycle policy to %s", label(e.su))
		r.Description = fmt.Sprintf("Moving %s GB of rarely read objects to Standard-IA lowers their storage rate.",
			primitives.Money(cold))
		r.Preconditions = []string{"objects older than 30 days are read less than once a month"}
		recs = append(recs, r)
	}
	return recs
}

func cdnIntroduction(a *Advisor, in *input) []types.Recommendation {
	if in.arch.Has(types.ServiceCloudFront) || in.result.Usage.DataTransferGB < a.thresholds.CDNMinTransferGB {
		return nil
	}
	origin := -1
	for i, su := range in.arch.Services {
		if su.ServiceID == types.ServiceDataTransfer {
			origin = i
			break
		}
	}
	if origin < 0 {
		return nil
	}

	savings := a.whatIf(in, func(arch *types.Architecture) {
		arch.Services[origin] = types.ServiceUsage{ServiceID: types.ServiceCloudFront, Purpose: "cdn"}
	})

	r := a.recommend(types.RecCDNIntroduction, types.ServiceCloudFront, "cdn", savings, types.LevelMedium, types.LevelLow)
	r.Title = "Serve public traffic through CloudFront"
	r.Description = fmt.Sprintf("%.0f GB/month of egress leaves the origin directly; edge delivery is billed at CDN rates instead.",
		in.result.Usage.DataTransferGB)
	r.Preconditions = []string{"responses are cacheable at the edge"}
	return []types.Recommendation{r}
}

func freeTierEnablement(a *Advisor, in *input) []types.Recommendation {
	if in.result.FreeTierEnabled {
		return nil
	}
	region, ok := a.engine.Catalog().Region(in.result.Region)
	if !ok || !region.FreeTierEligible {
		return nil
	}

	savings := a.baselineFor(in, false).NetMonthlyCost.Sub(a.baselineFor(in, true).NetMonthlyCost)

	r := a.recommend(types.RecFreeTier, "", "", savings, types.LevelLow, types.LevelLow)
	r.Title = "Use the AWS free tier"
	r.Description = "Free tier allowances cover part of this architecture's usage."
	r.Preconditions = []string{"the account is within its first 12 months for 12-month allowances"}
	return []types.Recommendation{r}
}

func serverlessMigration(a *Advisor, in *input) []types.Recommendation {
	if !in.arch.HasAny(types.ServiceEC2, types.ServiceFargate) {
		return nil
	}
	requests := in.result.Usage.TotalRequests()
	if requests > a.thresholds.ServerlessMaxRequests {
		return nil
	}

	var first *types.ServiceUsage
	for i := range in.arch.Services {
		if id := in.arch.Services[i].ServiceID; id == types.ServiceEC2 || id == types.ServiceFargate {
			first = &in.arch.Services[i]
			break
		}
	}

	savings := a.whatIf(in, func(arch *types.Architecture) {
		services := make([]types.ServiceUsage, 0, len(arch.Services)+1)
		replaced := false
		for _, su := range arch.Services {
			if su.ServiceID != types.ServiceEC2 && su.ServiceID != types.ServiceFargate {
				services = append(services, su)
				continue
			}
			if !replaced {
				services = append(services, types.ServiceUsage{
					ServiceID: types.ServiceLambda,
					Purpose:   su.Purpose,
					Config:    types.ServerlessConfig{MemoryMB: 512, AvgDurationMs: 200, InvocationsPerMonth: requests},
				})
				replaced = true
			}
		}
		if !arch.HasAny(types.ServiceAPIGateway, types.ServiceALB) {
			services = append(services, types.ServiceUsage{
				ServiceID: types.ServiceAPIGateway,
				Purpose:   "api",
				Config:    types.NetworkingConfig{APIType: "http"},
			})
		}
		arch.Services = services
	})

	r := a.recommend(types.RecServerless, first.ServiceID, first.Purpose, savings, types.LevelHigh, types.LevelMedium)
	r.Title = "Move always-on compute to Lambda"
	r.Description = fmt.Sprintf("At %d requests/month, paying per invocation is cheaper than idle instances.", requests)
	r.Preconditions = []string{"request handling is stateless", "cold starts are acceptable"}
	return []types.Recommendation{r}
}

func capacityMode(a *Advisor, in *input) []types.Recommendation {
	var recs []types.Recommendation
	for _, e := range in.entries() {
		if e.su.ServiceID != types.ServiceDynamoDB {
			continue
		}
		cfg, _ := e.su.Config.(types.DatabaseConfig)
		index := e.index

		if cfg.BillingMode != database.BillingProvisioned {
			if !steady(in.flags) {
				continue
			}
			requestCost := decimal.Zero
			for _, name := range []string{"read_requests", "write_requests"} {
				if c, ok := e.cost.Component(name); ok {
					requestCost = requestCost.Add(c.Cost)
				}
			}
			if requestCost.LessThan(a.thresholds.CapacityModeFloor) {
				continue
			}

			ratio := a.engine.Settings().DynamoDBReadRatio
			if cfg.ReadRatio != nil {
				ratio = *cfg.ReadRatio
			}
			reads, writes := primitives.Split(in.result.Usage.APIRequests, ratio)
			provisioned := cfg
			provisioned.BillingMode = database.BillingProvisioned
			provisioned.ReadCapacityUnits = a.capacityUnits(reads)
			provisioned.WriteCapacityUnits = a.capacityUnits(writes)

			savings := a.whatIf(in, func(arch *types.Architecture) { arch.Services[index].Config = provisioned })
			r := a.recommendFor(types.RecCapacityMode, e, savings, types.LevelLow, types.LevelMedium)
			r.Title = fmt.Sprintf("Switch %s to provisioned capacity", label(e.su))
			r.Description = fmt.Sprintf("Steady traffic fits %d RCU / %d WCU at %.0f%% target utilization.",
				provisioned.ReadCapacityUnits, provisioned.WriteCapacityUnits, a.thresholds.TargetUtilization*100)
			r.Preconditions = []string{"traffic has no sharp bursts", "auto scaling is configured on the table"}
			recs = append(recs, r)
			continue
		}

		if steady(in.flags) {
			continue
		}
		onDemand := cfg
		onDemand.BillingMode = database.BillingOnDemand
		onDemand.ReadCapacityUnits = 0
		onDemand.WriteCapacityUnits = 0

		savings := a.whatIf(in, func(arch *types.Architecture) { arch.Services[index].Config = onDemand })
		r := a.recommendFor(types.RecCapacityMode, e, savings, types.LevelLow, types.LevelLow)
		r.Title = fmt.Sprintf("Switch %s to on-demand capacity", label(e.su))
		r.Description = "Irregular traffic leaves provisioned capacity idle; on-demand bills only what is used."
		recs = append(recs, r)
	}
	return recs
}

// capacityUnits sizes provisioned units for a monthly request count
func (a *Advisor) capacityUnits(requests int64) int {
	utilization := a.thresholds.TargetUtilization
	if utilization <= 0 || utilization > 1 {
		utilization = 1
	}
	units := int(math.Ceil(float64(requests) / secondsPerMonth / utilization))
	if units < 1 {
		units = 1
	}
	return units
}
