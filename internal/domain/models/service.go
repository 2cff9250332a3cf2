// internal/domain/models/service.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Service is a subscribable mailing service attached to an operation.
// Owners may edit it alongside location managers.
type Service struct {
	ID         primitive.ObjectID `bson:"_id" json:"_id"`
	Name       string             `bson:"name" json:"name"`
	Type       string             `bson:"type" json:"type"`
	Location   string             `bson:"location,omitempty" json:"location,omitempty"`
	LocationID string             `bson:"locationId,omitempty" json:"locationId,omitempty"`
	UserID     string             `bson:"userid" json:"userid"` // creator
	Owners     []string           `bson:"owners,omitempty" json:"owners,omitempty"`
	Hidden     bool               `bson:"hidden" json:"hidden"`
	Status     bool               `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
