package model

import (
	"slices"
	"time"

	"github.com/lib/pq"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusActive    EventStatus = "active"
	EventStatusConcluded EventStatus = "concluded"
)

// Event is a hackathon event. The table is owned by the event management part of the platform,
// only the columns needed to provision and clean up clusters are mapped.
type Event struct {
	ID        string      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Name      string      `json:"name"`
	Status    EventStatus `json:"status" gorm:"index"`

	AtlasProvisioning AtlasProvisioning `json:"atlasProvisioning" gorm:"embedded;embeddedPrefix:atlas_provisioning_"`
}

// AtlasProvisioning governs whether and how clusters may be provisioned for an event.
type AtlasProvisioning struct {
	Enabled               bool           `json:"enabled"`
	DefaultProvider       string         `json:"defaultProvider"`
	DefaultRegion         string         `json:"defaultRegion"`
	OpenNetworkAccess     bool           `json:"openNetworkAccess"`
	AutoCleanupOnEventEnd bool           `json:"autoCleanupOnEventEnd"`
	AllowedProviders      pq.StringArray `json:"allowedProviders" gorm:"type:text[]"`
	AllowedRegions        pq.StringArray `json:"allowedRegions" gorm:"type:text[]"`
}

// AllowsProvider returns true if no providers are configured or the given provider is one of them.
func (a AtlasProvisioning) AllowsProvider(provider string) bool {
	return len(a.AllowedProviders) == 0 || slices.Contains(a.AllowedProviders, provider)
}

// AllowsRegion returns true if no regions are configured or the given region is one of them.
func (a AtlasProvisioning) AllowsRegion(region string) bool {
	return len(a.AllowedRegions) == 0 || slices.Contains(a.AllowedRegions, region)
}
