package models

import (
	"time"
)

// ServiceType is a trade category a worker can offer
type ServiceType string

const (
	ServicePlumber          ServiceType = "plumber"
	ServiceElectrician      ServiceType = "electrician"
	ServiceCleaner          ServiceType = "cleaner"
	ServiceCarpenter        ServiceType = "carpenter"
	ServicePainter          ServiceType = "painter"
	ServiceFlooring         ServiceType = "flooring"
	ServiceHVAC             ServiceType = "hvac"
	ServiceHandyman         ServiceType = "handyman"
	ServiceApplianceRepair  ServiceType = "appliance repair"
	ServiceApplianceInstall ServiceType = "appliance installation"
	ServiceLandscaping      ServiceType = "landscaping"
	ServiceGardening        ServiceType = "gardening"
	ServiceMarbleFitting    ServiceType = "marble fitting"
	ServiceTileWork         ServiceType = "tile work"
	ServiceGlassFitting     ServiceType = "glass fitting"
	ServiceAluminumFitting  ServiceType = "aluminum fitting"
	ServiceRoofing          ServiceType = "roofing"
	ServiceInteriorDesign   ServiceType = "interior design"
	ServiceDoorInstall      ServiceType = "door installation"
	ServiceWindowInstall    ServiceType = "window installation"
	ServiceFalseCeiling     ServiceType = "false ceiling"
	ServiceSecuritySystem   ServiceType = "security system installation"
	ServicePestControl      ServiceType = "pest control"
	ServiceMoving           ServiceType = "moving service"
)

// ServiceTypes lists every trade category the platform offers.
var ServiceTypes = []ServiceType{
	ServicePlumber, ServiceElectrician, ServiceCleaner, ServiceCarpenter,
	ServicePainter, ServiceFlooring, ServiceHVAC, ServiceHandyman,
	ServiceApplianceRepair, ServiceApplianceInstall, ServiceLandscaping,
	ServiceGardening, ServiceMarbleFitting, ServiceTileWork,
	ServiceGlassFitting, ServiceAluminumFitting, ServiceRoofing,
	ServiceInteriorDesign, ServiceDoorInstall, ServiceWindowInstall,
	ServiceFalseCeiling, ServiceSecuritySystem, ServicePestControl,
	ServiceMoving,
}

// IsValidService checks that a service category is one of the known trades
func IsValidService(s ServiceType) bool {
	for _, t := range ServiceTypes {
		if s == t {
			return true
		}
	}
	return false
}

// WorkerProfile carries the worker-only state for a user with role=worker:
// the offered trade, pricing, verification, uploaded documents and the
// denormalized review aggregate.
type WorkerProfile struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	UserID     uint        `json:"user_id" gorm:"uniqueIndex;not null"`
	Service    ServiceType `json:"service" gorm:"type:varchar(50);not null"`
	HourlyRate float64     `json:"hourly_rate" gorm:"type:decimal(10,2);default:0"`
	IsVerified bool        `json:"is_verified" gorm:"default:false"`

	// Review aggregate. AverageRating is always derived from
	// RatingTotal/ReviewCount rounded to one decimal.
	AverageRating float64 `json:"average_rating" gorm:"default:0"`
	ReviewCount   int     `json:"review_count" gorm:"default:0"`
	RatingTotal   int     `json:"-" gorm:"default:0"`

	NICFrontURL *string `json:"nic_front_url" gorm:"size:500"`
	NICFrontID  *string `json:"-" gorm:"size:255"`
	NICBackURL  *string `json:"nic_back_url" gorm:"size:500"`
	NICBackID   *string `json:"-" gorm:"size:255"`

	Certificates []Certificate `json:"certificates,omitempty" gorm:"foreignKey:WorkerProfileID"`
	PastWorks    []PastWork    `json:"past_works,omitempty" gorm:"foreignKey:WorkerProfileID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Certificate is a qualification document uploaded by a worker
type Certificate struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	WorkerProfileID  uint      `json:"worker_profile_id" gorm:"not null;index"`
	URL              string    `json:"url" gorm:"size:500;not null"`
	PublicID         string    `json:"-" gorm:"size:255"`
	Title            string    `json:"title" gorm:"size:255"`
	IssuedDate       string    `json:"issued_date" gorm:"size:50"`
	IssuingAuthority string    `json:"issuing_authority" gorm:"size:255"`
	CreatedAt        time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// PastWork is a photo of previous work uploaded by a worker
type PastWork struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	WorkerProfileID uint      `json:"worker_profile_id" gorm:"not null;index"`
	URL             string    `json:"url" gorm:"size:500;not null"`
	PublicID        string    `json:"-" gorm:"size:255"`
	Description     string    `json:"description" gorm:"size:1000"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the WorkerProfile model
func (WorkerProfile) TableName() string {
	return "worker_profiles"
}

// TableName specifies the table name for the Certificate model
func (Certificate) TableName() string {
	return "certificates"
}

// TableName specifies the table name for the PastWork model
func (PastWork) TableName() string {
	return "past_works"
}
