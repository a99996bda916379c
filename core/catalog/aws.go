// Package catalog - AWS pricing table
// The embedded file is the source of truth for AWS list prices.
package catalog

import (
	_ "embed"
	"time"
)

//go:embed data/aws_pricing.yaml
var awsPricing []byte

// farFuture selects the newest edition
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// AWSPricing returns the raw embedded pricing file
func AWSPricing() []byte {
	return awsPricing
}

// Default loads the newest embedded AWS edition
func Default() (*Catalog, error) {
	return Load(awsPricing, farFuture)
}

// DefaultAsOf loads the embedded AWS edition effective at a date
func DefaultAsOf(asOf time.Time) (*Catalog, error) {
	return Load(awsPricing, asOf)
}
