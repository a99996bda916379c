package types

import (
	"fmt"
	"sort"
)

// ServiceUsage is one service declared in an architecture
type ServiceUsage struct {
	// ServiceID identifies the catalog entry
	ServiceID ServiceID `json:"service"`

	// Purpose describes what the service does in this architecture (e.g., "api", "assets")
	Purpose string `json:"purpose,omitempty"`

	// Config is the service-specific configuration variant (nil = defaults)
	Config Configuration `json:"config,omitempty"`
}

// Key returns the (serviceId, purpose) identity of the entry
func (s ServiceUsage) Key() string {
	return string(s.ServiceID) + "/" + s.Purpose
}

// Architecture is an ordered set of services
type Architecture struct {
	// Name is an optional label
	Name string `json:"name,omitempty"`

	// Services are priced in declaration order
	Services []ServiceUsage `json:"services"`
}

// Has reports whether any entry uses the service
func (a Architecture) Has(id ServiceID) bool {
	for _, s := range a.Services {
		if s.ServiceID == id {
			return true
		}
	}
	return false
}

// HasAny reports whether any entry uses one of the services
func (a Architecture) HasAny(ids ...ServiceID) bool {
	for _, id := range ids {
		if a.Has(id) {
			return true
		}
	}
	return false
}

// ServiceIDs returns the distinct service ids, sorted
func (a Architecture) ServiceIDs() []ServiceID {
	seen := make(map[ServiceID]bool, len(a.Services))
	ids := make([]ServiceID, 0, len(a.Services))
	for _, s := range a.Services {
		if !seen[s.ServiceID] {
			seen[s.ServiceID] = true
			ids = append(ids, s.ServiceID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a copy whose service slice can be modified independently.
// Configuration variants are value types, so copying the slice is enough.
func (a Architecture) Clone() Architecture {
	services := make([]ServiceUsage, len(a.Services))
	copy(services, a.Services)
	return Architecture{Name: a.Name, Services: services}
}

// Validate checks every entry's configuration variant and returns one error per bad entry
func (a Architecture) Validate() []error {
	var errs []error
	for i, s := range a.Services {
		if s.ServiceID == "" {
			errs = append(errs, fmt.Errorf("services[%d]: service id is required", i))
			continue
		}
		if err := CheckConfiguration(s.ServiceID, s.Config); err != nil {
			errs = append(errs, fmt.Errorf("services[%d] (%s): %w", i, s.ServiceID, err))
		}
	}
	return errs
}
