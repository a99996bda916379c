// Package types defines the domain model shared by the pricing core:
// services, architectures, usage profiles, cost results, recommendations
// and projections.
package types

import "sort"

// ServiceID identifies a managed cloud service in the pricing catalog
type ServiceID string

// String returns the string representation
func (s ServiceID) String() string {
	return string(s)
}

// Known service identifiers
const (
	ServiceEC2          ServiceID = "ec2"
	ServiceLambda       ServiceID = "lambda"
	ServiceFargate      ServiceID = "fargate"
	ServiceS3           ServiceID = "s3"
	ServiceEBS          ServiceID = "ebs"
	ServiceRDS          ServiceID = "rds"
	ServiceDynamoDB     ServiceID = "dynamodb"
	ServiceElastiCache  ServiceID = "elasticache"
	ServiceCloudFront   ServiceID = "cloudfront"
	ServiceALB          ServiceID = "alb"
	ServiceAPIGateway   ServiceID = "apigateway"
	ServiceRoute53      ServiceID = "route53"
	ServiceCloudWatch   ServiceID = "cloudwatch"
	ServiceDataTransfer ServiceID = "datatransfer"
	ServiceNATGateway   ServiceID = "natgateway"
)

// Category classifies a service by the kind of resource it provides
type Category string

const (
	CategoryCompute    Category = "compute"
	CategoryStorage    Category = "storage"
	CategoryDatabase   Category = "database"
	CategoryNetworking Category = "networking"
	CategoryMonitoring Category = "monitoring"
)

// Valid reports whether the category is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryCompute, CategoryStorage, CategoryDatabase, CategoryNetworking, CategoryMonitoring:
		return true
	}
	return false
}

// ConfigKind identifies the configuration variant a service accepts
type ConfigKind string

const (
	KindCompute    ConfigKind = "compute"
	KindServerless ConfigKind = "serverless"
	KindContainer  ConfigKind = "container"
	KindStorage    ConfigKind = "storage"
	KindDatabase   ConfigKind = "database"
	KindCache      ConfigKind = "cache"
	KindNetworking ConfigKind = "networking"
	KindMonitoring ConfigKind = "monitoring"
)

var configKinds = map[ServiceID]ConfigKind{
	ServiceEC2:          KindCompute,
	ServiceLambda:       KindServerless,
	ServiceFargate:      KindContainer,
	ServiceS3:           KindStorage,
	ServiceEBS:          KindStorage,
	ServiceRDS:          KindDatabase,
	ServiceDynamoDB:     KindDatabase,
	ServiceElastiCache:  KindCache,
	ServiceCloudFront:   KindNetworking,
	ServiceALB:          KindNetworking,
	ServiceAPIGateway:   KindNetworking,
	ServiceRoute53:      KindNetworking,
	ServiceDataTransfer: KindNetworking,
	ServiceNATGateway:   KindNetworking,
	ServiceCloudWatch:   KindMonitoring,
}

// ConfigKindFor returns the configuration variant for a service
func ConfigKindFor(id ServiceID) (ConfigKind, bool) {
	k, ok := configKinds[id]
	return k, ok
}

// KnownServices returns all service ids with a configuration variant, sorted
func KnownServices() []ServiceID {
	ids := make([]ServiceID, 0, len(configKinds))
	for id := range configKinds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Region is a deployment region with its cost multiplier
type Region struct {
	// Code is the region code (e.g., "us-east-1")
	Code string `json:"code" yaml:"code"`

	// Name is a human-readable name
	Name string `json:"name,omitempty" yaml:"name"`

	// Multiplier scales every cost component (>= 1.0)
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`

	// FreeTierEligible indicates whether free tier allotments apply
	FreeTierEligible bool `json:"free_tier_eligible" yaml:"free_tier_eligible"`
}

// Currency is an ISO currency code
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}
