package models

import (
	"time"
)

// Review is a client's rating of a worker. One review per (client, worker)
// pair; every mutation updates the worker's aggregate.
type Review struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	ClientID uint   `json:"client_id" gorm:"not null;uniqueIndex:idx_client_worker"`
	WorkerID uint   `json:"worker_id" gorm:"not null;uniqueIndex:idx_client_worker"`
	Rating   int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment  string `json:"comment" gorm:"size:1000;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Client User `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Worker User `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
}

// TableName specifies the table name for the Review model
func (Review) TableName() string {
	return "reviews"
}
