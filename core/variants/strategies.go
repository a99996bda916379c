package variants

import (
	"strings"

	"archcost/clouds"
	"archcost/clouds/aws/compute"
	"archcost/clouds/aws/database"
	"archcost/core/types"
)

// substitution replaces a service with a cheaper alternative when requirements allow
type substitution struct {
	from, to types.ServiceID

	// blockedBy returns why the requirements forbid the substitution, or ""
	blockedBy func(req types.Requirements) string

	// when restricts the substitution to architectures in a given shape
	when func(arch types.Architecture) bool

	convert func(su types.ServiceUsage) types.ServiceUsage
}

var substitutions = []substitution{
	{from: types.ServiceEC2, to: types.ServiceLambda, blockedBy: serverlessBlocker, convert: toFunction},
	{from: types.ServiceFargate, to: types.ServiceLambda, blockedBy: serverlessBlocker, convert: toFunction},
	{from: types.ServiceRDS, to: types.ServiceDynamoDB, blockedBy: keyValueBlocker, convert: toKeyValue},
	{
		from: types.ServiceALB,
		to:   types.ServiceAPIGateway,
		when: func(arch types.Architecture) bool {
			return arch.Has(types.ServiceLambda) && !arch.HasAny(types.ServiceEC2, types.ServiceFargate)
		},
		convert: func(su types.ServiceUsage) types.ServiceUsage {
			return types.ServiceUsage{ServiceID: types.ServiceAPIGateway, Purpose: su.Purpose, Config: types.NetworkingConfig{APIType: "http"}}
		},
	},
}

func serverlessBlocker(req types.Requirements) string {
	switch {
	case req.LongRunning:
		return "long-running work exceeds function time limits"
	case req.Stateful:
		return "stateful compute cannot run as functions"
	}
	return ""
}

func keyValueBlocker(req types.Requirements) string {
	if req.Relational {
		return "data model is relational"
	}
	return ""
}

func toFunction(su types.ServiceUsage) types.ServiceUsage {
	return types.ServiceUsage{
		ServiceID: types.ServiceLambda,
		Purpose:   su.Purpose,
		Config:    types.ServerlessConfig{MemoryMB: 512, AvgDurationMs: 200},
	}
}

func toKeyValue(su types.ServiceUsage) types.ServiceUsage {
	cfg, _ := clouds.ConfigAs[types.DatabaseConfig](su.Config)
	return types.ServiceUsage{
		ServiceID: types.ServiceDynamoDB,
		Purpose:   su.Purpose,
		Config:    types.DatabaseConfig{BillingMode: database.BillingOnDemand, StorageGB: cfg.StorageGB},
	}
}

func toContainer(su types.ServiceUsage) types.ServiceUsage {
	cfg, _ := clouds.ConfigAs[types.ComputeConfig](su.Config)
	return types.ServiceUsage{
		ServiceID: types.ServiceFargate,
		Purpose:   su.Purpose,
		Config:    types.ContainerConfig{VCPU: 1, MemoryGB: 2, Tasks: cfg.Instances(), Autoscaling: cfg.Autoscaling},
	}
}

// costBiased walks the substitution table in order
func costBiased(_ *Optimizer, d *draft, req types.Requirements) {
	for _, sub := range substitutions {
		if !d.arch.Has(sub.from) {
			continue
		}
		if sub.when != nil && !sub.when(d.arch) {
			continue
		}
		if sub.blockedBy != nil {
			if reason := sub.blockedBy(req); reason != "" {
				d.note("kept %s: %s", sub.from, reason)
				continue
			}
		}
		for i, su := range d.arch.Services {
			if su.ServiceID == sub.from {
				d.arch.Services[i] = sub.convert(su)
			}
		}
		d.note("replaced %s with %s", sub.from, sub.to)
		if sub.to == types.ServiceLambda || sub.to == types.ServiceDynamoDB {
			d.scalability++
		}
	}
}

// performanceBiased raises capacity classes, enables multi-zone and adds caching and a CDN
func performanceBiased(o *Optimizer, d *draft, _ types.Requirements) {
	for i, su := range d.arch.Services {
		switch su.ServiceID {
		case types.ServiceEC2:
			cfg, _ := clouds.ConfigAs[types.ComputeConfig](su.Config)
			cfg.InstanceType = o.raise(d, su.ServiceID, "compute", orDefault(cfg.InstanceType, compute.DefaultInstanceType))
			cfg.Count = max(cfg.Instances(), 2)
			cfg.MultiAZ = true
			d.arch.Services[i].Config = cfg
		case types.ServiceRDS:
			cfg, _ := clouds.ConfigAs[types.DatabaseConfig](su.Config)
			cfg.InstanceClass = o.raise(d, su.ServiceID, "instance", orDefault(cfg.InstanceClass, database.DefaultDBInstanceClass))
			if !cfg.MultiAZ {
				cfg.MultiAZ = true
				d.note("enabled multi-AZ for rds %q", su.Purpose)
			}
			d.arch.Services[i].Config = cfg
		case types.ServiceElastiCache:
			cfg, _ := clouds.ConfigAs[types.CacheConfig](su.Config)
			cfg.NodeType = o.raise(d, su.ServiceID, "nodes", orDefault(cfg.NodeType, database.DefaultCacheNodeType))
			d.arch.Services[i].Config = cfg
		}
	}

	if !d.arch.Has(types.ServiceElastiCache) && d.arch.HasAny(types.ServiceRDS, types.ServiceDynamoDB) {
		d.arch.Services = append(d.arch.Services, types.ServiceUsage{
			ServiceID: types.ServiceElastiCache,
			Purpose:   "cache",
			Config:    types.CacheConfig{NodeType: "cache.t3.small", Nodes: 1},
		})
		d.note("added elasticache in front of the database")
	}
	if !d.arch.Has(types.ServiceCloudFront) {
		d.arch.Services = append(d.arch.Services, types.ServiceUsage{ServiceID: types.ServiceCloudFront, Purpose: "cdn"})
		d.note("added cloudfront for edge delivery")
	}
	d.scalability++
}

// raise returns the next more expensive class of the same family, or current at the top
func (o *Optimizer) raise(d *draft, id types.ServiceID, component, current string) string {
	def, err := o.engine.Catalog().Lookup(id)
	if err != nil {
		return current
	}
	pc, ok := def.Component(component)
	if !ok {
		return current
	}
	rate, ok := pc.ClassRate(current)
	if !ok {
		return current
	}
	family := classFamily(current)
	for _, name := range pc.ClassNames() {
		r, _ := pc.ClassRate(name)
		if classFamily(name) == family && r.GreaterThan(rate) {
			d.note("raised %s from %s to %s", id, current, name)
			return name
		}
	}
	return current
}

func classFamily(class string) string {
	if i := strings.LastIndex(class, "."); i > 0 {
		return class[:i]
	}
	return class
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// optional services are dropped by the simplicity variant
var optional = []types.ServiceID{types.ServiceElastiCache, types.ServiceNATGateway, types.ServiceCloudWatch}

var computeServices = []types.ServiceID{types.ServiceEC2, types.ServiceFargate, types.ServiceLambda}

// simplicityBiased removes optional services and collapses compute to one managed option
func simplicityBiased(_ *Optimizer, d *draft, req types.Requirements) {
	services := make([]types.ServiceUsage, 0, len(d.arch.Services))
	for _, su := range d.arch.Services {
		if containsID(optional, su.ServiceID) {
			d.note("removed optional %s", su.ServiceID)
			continue
		}
		services = append(services, su)
	}
	d.arch.Services = services

	target := types.ServiceLambda
	if serverlessBlocker(req) != "" {
		target = types.ServiceFargate
	}

	var collapsed []types.ServiceUsage
	first := -1
	for i, su := range d.arch.Services {
		if containsID(computeServices, su.ServiceID) {
			collapsed = append(collapsed, su)
			if first < 0 {
				first = i
			}
		}
	}
	if len(collapsed) > 0 && !(len(collapsed) == 1 && collapsed[0].ServiceID == target) {
		var entry types.ServiceUsage
		switch {
		case collapsed[0].ServiceID == target:
			entry = collapsed[0]
		case target == types.ServiceLambda:
			entry = toFunction(collapsed[0])
		case collapsed[0].ServiceID == types.ServiceEC2:
			entry = toContainer(collapsed[0])
		default:
			entry = types.ServiceUsage{ServiceID: target, Purpose: collapsed[0].Purpose}
		}

		services = make([]types.ServiceUsage, 0, len(d.arch.Services))
		for i, su := range d.arch.Services {
			switch {
			case i == first:
				services = append(services, entry)
			case containsID(computeServices, su.ServiceID):
			default:
				services = append(services, su)
			}
		}
		d.arch.Services = services
		d.note("collapsed compute to %s", target)
	}

	for i, su := range d.arch.Services {
		if su.ServiceID != types.ServiceDynamoDB {
			continue
		}
		cfg, _ := clouds.ConfigAs[types.DatabaseConfig](su.Config)
		if cfg.BillingMode == database.BillingProvisioned {
			cfg.BillingMode = database.BillingOnDemand
			d.arch.Services[i].Config = cfg
			d.note("switched dynamodb %q to on-demand", su.Purpose)
		}
	}
}

// scalabilityBiased enables autoscaling and load balancing
func scalabilityBiased(_ *Optimizer, d *draft, _ types.Requirements) {
	for i, su := range d.arch.Services {
		switch su.ServiceID {
		case types.ServiceEC2:
			cfg, _ := clouds.ConfigAs[types.ComputeConfig](su.Config)
			if !cfg.Autoscaling {
				cfg.Autoscaling = true
				cfg.MaxCount = max(cfg.MaxCount, cfg.Instances()*3)
				d.arch.Services[i].Config = cfg
				d.note("enabled autoscaling for ec2 %q", su.Purpose)
			}
		case types.ServiceFargate:
			cfg, _ := clouds.ConfigAs[types.ContainerConfig](su.Config)
			if !cfg.Autoscaling {
				cfg.Autoscaling = true
				d.arch.Services[i].Config = cfg
				d.note("enabled autoscaling for fargate %q", su.Purpose)
			}
		case types.ServiceDynamoDB:
			cfg, _ := clouds.ConfigAs[types.DatabaseConfig](su.Config)
			if cfg.BillingMode == database.BillingProvisioned {
				cfg.BillingMode = database.BillingOnDemand
				d.arch.Services[i].Config = cfg
				d.note("switched dynamodb %q to on-demand", su.Purpose)
			}
		}
	}

	if d.arch.HasAny(types.ServiceEC2, types.ServiceFargate) && !d.arch.HasAny(types.ServiceALB, types.ServiceAPIGateway) {
		d.arch.Services = append(d.arch.Services, companions[types.ServiceALB])
		d.note("added alb for load balancing")
	}
	d.scalability = 5
}
