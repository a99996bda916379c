package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Configuration is a service-category-specific configuration variant.
// Each variant declares its required/optional fields through validate tags
// and is checked at the boundary before it reaches the cost engine.
type Configuration interface {
	// Kind returns the variant tag
	Kind() ConfigKind

	// Validate checks field constraints
	Validate() error
}

// validate is safe for concurrent use; it only caches struct metadata.
var validate = validator.New()

func validateStruct(kind ConfigKind, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s (got %v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	}
	return fmt.Errorf("%s config: %s", kind, strings.Join(msgs, "; "))
}

// ComputeConfig configures always-on virtual machines (EC2)
type ComputeConfig struct {
	InstanceType  string  `json:"instance_type,omitempty" yaml:"instance_type" validate:"omitempty,min=3"`
	Count         int     `json:"count,omitempty" yaml:"count" validate:"gte=0,lte=10000"`
	HoursPerMonth float64 `json:"hours_per_month,omitempty" yaml:"hours_per_month" validate:"gte=0,lte=744"`
	RootVolumeGB  float64 `json:"root_volume_gb,omitempty" yaml:"root_volume_gb" validate:"gte=0"`
	Autoscaling   bool    `json:"autoscaling,omitempty" yaml:"autoscaling"`
	MaxCount      int     `json:"max_count,omitempty" yaml:"max_count" validate:"gte=0"`
	MultiAZ       bool    `json:"multi_az,omitempty" yaml:"multi_az"`
}

func (ComputeConfig) Kind() ConfigKind   { return KindCompute }
func (c ComputeConfig) Validate() error { return validateStruct(KindCompute, c) }

// Instances returns the configured instance count, at least one
func (c ComputeConfig) Instances() int {
	if c.Count <= 0 {
		return 1
	}
	return c.Count
}

// ServerlessConfig configures functions (Lambda)
type ServerlessConfig struct {
	MemoryMB            int     `json:"memory_mb,omitempty" yaml:"memory_mb" validate:"omitempty,min=128,max=10240"`
	AvgDurationMs       float64 `json:"avg_duration_ms,omitempty" yaml:"avg_duration_ms" validate:"gte=0,lte=900000"`
	InvocationsPerMonth int64   `json:"invocations_per_month,omitempty" yaml:"invocations_per_month" validate:"gte=0"`
	Architecture        string  `json:"architecture,omitempty" yaml:"architecture" validate:"omitempty,oneof=x86_64 arm64"`
}

func (ServerlessConfig) Kind() ConfigKind   { return KindServerless }
func (c ServerlessConfig) Validate() error { return validateStruct(KindServerless, c) }

// ContainerConfig configures serverless containers (Fargate)
type ContainerConfig struct {
	VCPU          float64 `json:"vcpu,omitempty" yaml:"vcpu" validate:"gte=0,lte=16"`
	MemoryGB      float64 `json:"memory_gb,omitempty" yaml:"memory_gb" validate:"gte=0,lte=120"`
	Tasks         int     `json:"tasks,omitempty" yaml:"tasks" validate:"gte=0,lte=10000"`
	HoursPerMonth float64 `json:"hours_per_month,omitempty" yaml:"hours_per_month" validate:"gte=0,lte=744"`
	Autoscaling   bool    `json:"autoscaling,omitempty" yaml:"autoscaling"`
}

func (ContainerConfig) Kind() ConfigKind   { return KindContainer }
func (c ContainerConfig) Validate() error { return validateStruct(KindContainer, c) }

// StorageConfig configures object and block storage (S3, EBS)
type StorageConfig struct {
	StorageGB     float64  `json:"storage_gb,omitempty" yaml:"storage_gb" validate:"gte=0"`
	Requests      int64    `json:"requests,omitempty" yaml:"requests" validate:"gte=0"`
	WriteRatio    *float64 `json:"write_ratio,omitempty" yaml:"write_ratio" validate:"omitempty,gte=0,lte=1"`
	StorageClass  string   `json:"storage_class,omitempty" yaml:"storage_class" validate:"omitempty,oneof=STANDARD STANDARD_IA INTELLIGENT_TIERING GLACIER"`
	TransferOutGB float64  `json:"transfer_out_gb,omitempty" yaml:"transfer_out_gb" validate:"gte=0"`
	VolumeType    string   `json:"volume_type,omitempty" yaml:"volume_type" validate:"omitempty,oneof=gp2 gp3 io1 io2 st1 sc1"`
	IOPS          int      `json:"iops,omitempty" yaml:"iops" validate:"gte=0,lte=256000"`
	Lifecycle     bool     `json:"lifecycle,omitempty" yaml:"lifecycle"`
}

func (StorageConfig) Kind() ConfigKind   { return KindStorage }
func (c StorageConfig) Validate() error { return validateStruct(KindStorage, c) }

// DatabaseConfig configures relational (RDS) and key-value (DynamoDB) databases
type DatabaseConfig struct {
	InstanceClass      string   `json:"instance_class,omitempty" yaml:"instance_class" validate:"omitempty,startswith=db."`
	Engine             string   `json:"engine,omitempty" yaml:"engine" validate:"omitempty,oneof=mysql postgres mariadb aurora-mysql aurora-postgresql"`
	MultiAZ            bool     `json:"multi_az,omitempty" yaml:"multi_az"`
	StorageGB          float64  `json:"storage_gb,omitempty" yaml:"storage_gb" validate:"gte=0"`
	HoursPerMonth      float64  `json:"hours_per_month,omitempty" yaml:"hours_per_month" validate:"gte=0,lte=744"`
	BillingMode        string   `json:"billing_mode,omitempty" yaml:"billing_mode" validate:"omitempty,oneof=on-demand provisioned"`
	ReadCapacityUnits  int      `json:"read_capacity_units,omitempty" yaml:"read_capacity_units" validate:"gte=0"`
	WriteCapacityUnits int      `json:"write_capacity_units,omitempty" yaml:"write_capacity_units" validate:"gte=0"`
	ReadRatio          *float64 `json:"read_ratio,omitempty" yaml:"read_ratio" validate:"omitempty,gte=0,lte=1"`
}

func (DatabaseConfig) Kind() ConfigKind   { return KindDatabase }
func (c DatabaseConfig) Validate() error { return validateStruct(KindDatabase, c) }

// CacheConfig configures in-memory caches (ElastiCache)
type CacheConfig struct {
	NodeType      string  `json:"node_type,omitempty" yaml:"node_type" validate:"omitempty,startswith=cache."`
	Nodes         int     `json:"nodes,omitempty" yaml:"nodes" validate:"gte=0,lte=500"`
	Engine        string  `json:"engine,omitempty" yaml:"engine" validate:"omitempty,oneof=redis memcached valkey"`
	HoursPerMonth float64 `json:"hours_per_month,omitempty" yaml:"hours_per_month" validate:"gte=0,lte=744"`
}

func (CacheConfig) Kind() ConfigKind   { return KindCache }
func (c CacheConfig) Validate() error { return validateStruct(KindCache, c) }

// NodeCount returns the configured node count, at least one
func (c CacheConfig) NodeCount() int {
	if c.Nodes <= 0 {
		return 1
	}
	return c.Nodes
}

// NetworkingConfig configures routing and delivery services
// (CloudFront, ALB, API Gateway, Route 53, NAT Gateway, data transfer)
type NetworkingConfig struct {
	APIType     string  `json:"api_type,omitempty" yaml:"api_type" validate:"omitempty,oneof=rest http"`
	Protocol    string  `json:"protocol,omitempty" yaml:"protocol" validate:"omitempty,oneof=http https"`
	HostedZones int     `json:"hosted_zones,omitempty" yaml:"hosted_zones" validate:"gte=0"`
	Gateways    int     `json:"gateways,omitempty" yaml:"gateways" validate:"gte=0,lte=100"`
	ProcessedGB float64 `json:"processed_gb,omitempty" yaml:"processed_gb" validate:"gte=0"`
	MultiAZ     bool    `json:"multi_az,omitempty" yaml:"multi_az"`
}

func (NetworkingConfig) Kind() ConfigKind   { return KindNetworking }
func (c NetworkingConfig) Validate() error { return validateStruct(KindNetworking, c) }

// MonitoringConfig configures metrics and logs (CloudWatch)
type MonitoringConfig struct {
	CustomMetrics  int     `json:"custom_metrics,omitempty" yaml:"custom_metrics" validate:"gte=0"`
	Alarms         int     `json:"alarms,omitempty" yaml:"alarms" validate:"gte=0"`
	LogIngestionGB float64 `json:"log_ingestion_gb,omitempty" yaml:"log_ingestion_gb" validate:"gte=0"`
}

func (MonitoringConfig) Kind() ConfigKind   { return KindMonitoring }
func (c MonitoringConfig) Validate() error { return validateStruct(KindMonitoring, c) }

// NewConfiguration returns the zero value of the variant for a kind
func NewConfiguration(kind ConfigKind) (Configuration, bool) {
	switch kind {
	case KindCompute:
		return ComputeConfig{}, true
	case KindServerless:
		return ServerlessConfig{}, true
	case KindContainer:
		return ContainerConfig{}, true
	case KindStorage:
		return StorageConfig{}, true
	case KindDatabase:
		return DatabaseConfig{}, true
	case KindCache:
		return CacheConfig{}, true
	case KindNetworking:
		return NetworkingConfig{}, true
	case KindMonitoring:
		return MonitoringConfig{}, true
	}
	return nil, false
}

// CheckConfiguration verifies that cfg is the variant the service expects
// and that its fields validate. A nil cfg is valid: calculators use defaults.
func CheckConfiguration(id ServiceID, cfg Configuration) error {
	if cfg == nil {
		return nil
	}
	want, ok := ConfigKindFor(id)
	if ok && cfg.Kind() != want {
		return fmt.Errorf("service %s expects %s config, got %s", id, want, cfg.Kind())
	}
	return cfg.Validate()
}
