package advisor

import (
	"strings"

	"archcost/core/catalog"
	"archcost/core/types"
)

// sizes orders instance sizes from smallest to largest
var sizes = []string{"nano", "micro", "small", "medium", "large", "xlarge", "2xlarge", "4xlarge", "8xlarge", "12xlarge", "16xlarge", "24xlarge"}

// oversizedFrom is the first size considered a rightsizing candidate
const oversizedFrom = "large"

// generations maps a previous-generation family to its successor
var generations = map[string]string{
	"t2": "t3",
	"m4": "m5",
	"c4": "c5",
	"r4": "r5",
}

// instanceClass is a parsed class name such as db.m5.large
type instanceClass struct {
	prefix string
	family string
	size   string
}

func parseClass(name string) (instanceClass, bool) {
	parts := strings.Split(name, ".")
	if len(parts) < 2 {
		return instanceClass{}, false
	}
	n := len(parts)
	prefix := ""
	if n > 2 {
		prefix = strings.Join(parts[:n-2], ".") + "."
	}
	return instanceClass{prefix: prefix, family: parts[n-2], size: parts[n-1]}, true
}

func (c instanceClass) String() string {
	return c.prefix + c.family + "." + c.size
}

func sizeRank(size string) int {
	for i, s := range sizes {
		if s == size {
			return i
		}
	}
	return -1
}

// smallerClass returns the next smaller class of the same family that the component prices
func smallerClass(pc *catalog.PriceComponent, current string) (string, bool) {
	ic, ok := parseClass(current)
	if !ok {
		return "", false
	}
	rank := sizeRank(ic.size)
	if rank < sizeRank(oversizedFrom) {
		return "", false
	}
	currentRate, ok := pc.ClassRate(current)
	if !ok {
		return "", false
	}
	for r := rank - 1; r >= 0; r-- {
		candidate := instanceClass{prefix: ic.prefix, family: ic.family, size: sizes[r]}.String()
		if rate, ok := pc.ClassRate(candidate); ok && rate.LessThan(currentRate) {
			return candidate, true
		}
	}
	return "", false
}

// successorClass returns the same size in the next generation when it is priced and cheaper
func successorClass(pc *catalog.PriceComponent, current string) (string, bool) {
	ic, ok := parseClass(current)
	if !ok {
		return "", false
	}
	next, ok := generations[ic.family]
	if !ok {
		return "", false
	}
	currentRate, ok := pc.ClassRate(current)
	if !ok {
		return "", false
	}
	candidate := instanceClass{prefix: ic.prefix, family: next, size: ic.size}.String()
	if rate, ok := pc.ClassRate(candidate); ok && rate.LessThanOrEqual(currentRate) {
		return candidate, true
	}
	return "", false
}

// capacityService describes how the advisor treats a service billed by provisioned capacity
type capacityService struct {
	// components are the capacity components commitments and spot apply to
	components []string

	// withClass returns a copy of cfg running the given class; nil for services without classes
	withClass func(cfg types.Configuration, class string) types.Configuration

	reservable bool
	spot       bool
}

var capacityServices = map[types.ServiceID]capacityService{
	types.ServiceEC2: {
		components: []string{"compute"},
		withClass: func(cfg types.Configuration, class string) types.Configuration {
			c, _ := cfg.(types.ComputeConfig)
			c.InstanceType = class
			return c
		},
		reservable: true,
		spot:       true,
	},
	types.ServiceRDS: {
		components: []string{"instance"},
		withClass: func(cfg types.Configuration, class string) types.Configuration {
			c, _ := cfg.(types.DatabaseConfig)
			c.InstanceClass = class
			return c
		},
		reservable: true,
	},
	types.ServiceElastiCache: {
		components: []string{"nodes"},
		withClass: func(cfg types.Configuration, class string) types.Configuration {
			c, _ := cfg.(types.CacheConfig)
			c.NodeType = class
			return c
		},
		reservable: true,
	},
	types.ServiceFargate: {
		components: []string{"vcpu", "memory"},
		spot:       true,
	},
}
