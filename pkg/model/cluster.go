package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ClusterStatus string

const (
	ClusterStatusCreating ClusterStatus = "creating"
	ClusterStatusActive   ClusterStatus = "active"
	ClusterStatusDeleting ClusterStatus = "deleting"
	ClusterStatusDeleted  ClusterStatus = "deleted"
	ClusterStatusError    ClusterStatus = "error"
)

// TerminalClusterStatuses are the statuses that no longer count against the one cluster per
// event and team rule.
var TerminalClusterStatuses = []ClusterStatus{ClusterStatusDeleted, ClusterStatusError}

// IsTerminal returns true if s is either deleted or error.
func (s ClusterStatus) IsTerminal() bool {
	return s == ClusterStatusDeleted || s == ClusterStatusError
}

// Cluster is the local record of an Atlas cluster provisioned for a team taking part in an event.
// swagger:model
type Cluster struct {
	// required: true
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	// required: true
	CreatedAt time.Time `json:"createdAt"`
	// required: true
	UpdatedAt time.Time `json:"updatedAt"`

	// Only one cluster per event and team may be in a non-terminal status. The partial unique
	// index is created by storage.NewDatabase.
	EventID       string `json:"eventId" gorm:"index;not null"`
	TeamID        string `json:"teamId" gorm:"index;not null"`
	ProjectID     string `json:"projectId"`
	ProvisionedBy string `json:"provisionedBy"`

	AtlasProjectID   string `json:"atlasProjectId"`
	AtlasProjectName string `json:"atlasProjectName"`
	AtlasClusterName string `json:"atlasClusterName"`
	AtlasClusterID   string `json:"atlasClusterId"`

	ConnectionString         string `json:"connectionString"`
	StandardConnectionString string `json:"standardConnectionString"`

	DatabaseUsers datatypes.JSONSlice[DatabaseUser]  `json:"databaseUsers" gorm:"type:jsonb"`
	IPAccessList  datatypes.JSONSlice[IPAccessEntry] `json:"ipAccessList" gorm:"type:jsonb"`

	Status          ClusterStatus `json:"status" gorm:"index;not null"`
	ErrorMessage    string        `json:"errorMessage,omitempty"`
	LastStatusCheck *time.Time    `json:"lastStatusCheck,omitempty"`
	DeletedAt       *time.Time    `json:"deletedAt,omitempty"`

	ProviderName   string `json:"providerName"`
	RegionName     string `json:"regionName"`
	MongoDBVersion string `json:"mongoDBVersion"`
}

type DatabaseUser struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
}

type IPAccessEntry struct {
	CIDRBlock string    `json:"cidrBlock"`
	Comment   string    `json:"comment"`
	AddedAt   time.Time `json:"addedAt"`
	AddedBy   string    `json:"addedBy"`
}
