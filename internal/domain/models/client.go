// internal/domain/models/client.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is a registered API client. Trusted clients act with full write
// capability; untrusted ones only pass authentication.
type Client struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	ClientID   string             `bson:"clientId" json:"clientId"`
	Name       string             `bson:"name" json:"name"`
	SecretHash string             `bson:"secretHash" json:"-"`
	Trusted    bool               `bson:"trusted" json:"trusted"`
	Status     bool               `bson:"status" json:"status"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}
