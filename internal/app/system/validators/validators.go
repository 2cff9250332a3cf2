// internal/app/system/validators/validators.go
package validators

// Terminology: identifiers
//   - userid: the external identity string carried by bearer tokens
//   - _profile: the ObjectID of the profile a contact belongs to

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalemusser/hidapi/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// schemas maps each directory collection to its $jsonSchema validator.
// A nil schema only makes sure the collection exists.
func schemas() []struct {
	name   string
	schema bson.M
} {
	return []struct {
		name   string
		schema bson.M
	}{
		{"profiles", profilesSchema()},
		{"contacts", contactsSchema()},
		{"lists", listsSchema()},
		{"services", servicesSchema()},
		{"clients", clientsSchema()},
		{"audit_events", nil},
	}
}

// EnsureAll creates the directory collections if missing and attaches their
// validators. Servers without collMod support (some DocumentDB versions)
// keep the collections and skip the validator.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	existing, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	var problems []string
	for _, c := range schemas() {
		if !have[c.name] {
			if err := db.CreateCollection(ctx, c.name); err != nil && !namespaceExists(err) {
				problems = append(problems, c.name+": "+err.Error())
				continue
			}
			logger.Info("created collection", zap.String("collection", c.name))
		}
		if c.schema == nil {
			continue
		}
		if err := setValidator(ctx, db, c.name, c.schema); err != nil {
			if unsupported(err) {
				logger.Info("validator skipped (unsupported)", zap.String("collection", c.name))
				continue
			}
			problems = append(problems, c.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	return db.RunCommand(ctx, cmd).Err()
}

// Server error codes: 48 NamespaceExists, 59 CommandNotFound, 115 CommandNotSupported.
func namespaceExists(err error) bool {
	return hasCode(err, 48) || containsAny(err, "already exists")
}

func unsupported(err error) bool {
	return hasCode(err, 59, 115) || containsAny(err, "no such command", "not implemented", "not supported")
}

func hasCode(err error, codes ...int32) bool {
	var ce mongo.CommandError
	if !errors.As(err, &ce) {
		return false
	}
	for _, c := range codes {
		if ce.Code == c {
			return true
		}
	}
	return false
}

func containsAny(err error, subs ...string) bool {
	s := strings.ToLower(err.Error())
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

/* ------------------------- JSON-Schema docs ---------------------- */

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func stringArray() bson.M {
	return bson.M{"bsonType": "array", "items": bson.M{"bsonType": "string"}}
}

func profilesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"userid", "verified", "status", "createdAt"},
			"properties": bson.M{
				"userid":       nonBlank,
				"email":        bson.M{"bsonType": "string"},
				"roles":        stringArray(),
				"verified":     bson.M{"bsonType": "bool"},
				"verifiedByID": bson.M{"bsonType": "string"},
				"dateVerified": bson.M{"bsonType": "date"},
				"orgEditorRoles": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"organizationId", "locationId"},
					},
				},
				"lists":     bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
				"status":    bson.M{"bsonType": "bool"},
				"createdAt": bson.M{"bsonType": "date"},
			},
		},
	}
}

func contactsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"_profile", "type", "status"},
			"properties": bson.M{
				"_profile":   bson.M{"bsonType": "objectId"},
				"type":       bson.M{"enum": bson.A{models.ContactTypeGlobal, models.ContactTypeLocal}},
				"locationId": bson.M{"bsonType": "string"},
				"status":     bson.M{"bsonType": "bool"},
				"keyContact": bson.M{"bsonType": "bool"},
			},
		},
	}
}

func listsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "userid", "privacy"},
			"properties": bson.M{
				"name":   nonBlank,
				"userid": nonBlank,
				"privacy": bson.M{"enum": bson.A{
					models.ListPrivacyAll, models.ListPrivacyVerified, models.ListPrivacySome, models.ListPrivacyMe,
				}},
				"readers": stringArray(),
				"editors": stringArray(),
				"users":   bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}},
			},
		},
	}
}

func servicesSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "userid", "status"},
			"properties": bson.M{
				"name":       nonBlank,
				"userid":     nonBlank,
				"locationId": bson.M{"bsonType": "string"},
				"owners":     stringArray(),
				"hidden":     bson.M{"bsonType": "bool"},
				"status":     bson.M{"bsonType": "bool"},
			},
		},
	}
}

func clientsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"clientId", "secretHash", "trusted", "status"},
			"properties": bson.M{
				"clientId":   nonBlank,
				"secretHash": nonBlank,
				"trusted":    bson.M{"bsonType": "bool"},
				"status":     bson.M{"bsonType": "bool"},
			},
		},
	}
}
