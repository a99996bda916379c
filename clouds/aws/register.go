// Package aws - AWS service calculator registration
package aws

import (
	"archcost/clouds"
	"archcost/clouds/aws/apigateway"
	"archcost/clouds/aws/cdn"
	"archcost/clouds/aws/compute"
	"archcost/clouds/aws/containers"
	"archcost/clouds/aws/database"
	"archcost/clouds/aws/dns"
	"archcost/clouds/aws/networking"
	"archcost/clouds/aws/observability"
	"archcost/clouds/aws/serverless"
	"archcost/clouds/aws/storage"
)

// Calculators returns one calculator per supported AWS service
func Calculators() []clouds.Calculator {
	return []clouds.Calculator{
		// Compute
		compute.NewEC2Calculator(),
		serverless.NewLambdaCalculator(),
		containers.NewFargateCalculator(),

		// Storage
		storage.NewS3Calculator(),
		storage.NewEBSCalculator(),

		// Database
		database.NewRDSCalculator(),
		database.NewDynamoDBCalculator(),
		database.NewElastiCacheCalculator(),

		// Networking
		cdn.NewCloudFrontCalculator(),
		networking.NewALBCalculator(),
		apigateway.NewAPIGatewayCalculator(),
		dns.NewRoute53Calculator(),
		networking.NewDataTransferCalculator(),
		networking.NewNATGatewayCalculator(),

		// Monitoring
		observability.NewCloudWatchCalculator(),
	}
}

// Register adds every AWS calculator to the registry
func Register(r *clouds.Registry) error {
	for _, c := range Calculators() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry with every AWS calculator
func NewRegistry() *clouds.Registry {
	r := clouds.NewRegistry()
	r.MustRegister(Calculators()...)
	return r
}
