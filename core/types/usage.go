package types

import "math"

// UsageProfile holds monthly traffic and resource metrics. All values are non-negative.
type UsageProfile struct {
	PageViews      int64   `json:"page_views" yaml:"page_views"`
	UniqueUsers    int64   `json:"unique_users" yaml:"unique_users"`
	APIRequests    int64   `json:"api_requests" yaml:"api_requests"`
	DataTransferGB float64 `json:"data_transfer_gb" yaml:"data_transfer_gb"`
	StorageGB      float64 `json:"storage_gb" yaml:"storage_gb"`
	ComputeHours   float64 `json:"compute_hours" yaml:"compute_hours"`
}

// UsageIssue reports one metric that was clamped
type UsageIssue struct {
	Metric string
	Value  float64
}

// Sanitize returns a copy with negative and NaN values clamped to zero,
// and the list of metrics that had to be clamped.
func (u UsageProfile) Sanitize() (UsageProfile, []UsageIssue) {
	var issues []UsageIssue
	clampInt := func(metric string, v *int64) {
		if *v < 0 {
			issues = append(issues, UsageIssue{Metric: metric, Value: float64(*v)})
			*v = 0
		}
	}
	clampFloat := func(metric string, v *float64) {
		if math.IsNaN(*v) || *v < 0 || math.IsInf(*v, 0) {
			issues = append(issues, UsageIssue{Metric: metric, Value: *v})
			*v = 0
		}
	}

	out := u
	clampInt("page_views", &out.PageViews)
	clampInt("unique_users", &out.UniqueUsers)
	clampInt("api_requests", &out.APIRequests)
	clampFloat("data_transfer_gb", &out.DataTransferGB)
	clampFloat("storage_gb", &out.StorageGB)
	clampFloat("compute_hours", &out.ComputeHours)
	return out, issues
}

// maxCount is 2^63, the first float64 past math.MaxInt64
const maxCount = float64(1 << 63)

// Scale multiplies every metric by the same multiplier.
// Count metrics are floored to whole units and saturate at math.MaxInt64;
// amounts saturate at math.MaxFloat64.
func (u UsageProfile) Scale(multiplier float64) UsageProfile {
	if multiplier < 0 || math.IsNaN(multiplier) {
		multiplier = 0
	}
	scaleCount := func(v int64) int64 {
		if v == 0 {
			return 0
		}
		scaled := math.Floor(float64(v) * multiplier)
		if scaled >= maxCount {
			return math.MaxInt64
		}
		return int64(scaled)
	}
	scaleAmount := func(v float64) float64 {
		if v == 0 {
			return 0
		}
		scaled := v * multiplier
		if math.IsInf(scaled, 1) {
			return math.MaxFloat64
		}
		return scaled
	}
	return UsageProfile{
		PageViews:      scaleCount(u.PageViews),
		UniqueUsers:    scaleCount(u.UniqueUsers),
		APIRequests:    scaleCount(u.APIRequests),
		DataTransferGB: scaleAmount(u.DataTransferGB),
		StorageGB:      scaleAmount(u.StorageGB),
		ComputeHours:   scaleAmount(u.ComputeHours),
	}
}

// TotalRequests returns page views plus API requests, saturating at math.MaxInt64
func (u UsageProfile) TotalRequests() int64 {
	if u.PageViews > 0 && u.APIRequests > math.MaxInt64-u.PageViews {
		return math.MaxInt64
	}
	return u.PageViews + u.APIRequests
}
