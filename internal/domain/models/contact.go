// internal/domain/models/contact.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact types. A global contact is a person's permanent directory entry;
// a local contact is a check-in at a single operation (location).
const (
	ContactTypeGlobal = "global"
	ContactTypeLocal  = "local"
)

// Contact is one directory entry for a person. Field names double as the
// request keys accepted by the save endpoints, so json and bson tags match.
//
// NOTE:
//   - Status=false means checked out / deleted. Contacts are never removed.
//   - ProfileID links to the owning Profile; ownership checks compare the
//     profile's UserID with the acting user.
type Contact struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	ProfileID primitive.ObjectID `bson:"_profile" json:"_profile"`
	Type      string             `bson:"type" json:"type"`

	Location   string `bson:"location,omitempty" json:"location,omitempty"`
	LocationID string `bson:"locationId,omitempty" json:"locationId,omitempty"`

	NameGiven  string `bson:"nameGiven" json:"nameGiven"`
	NameFamily string `bson:"nameFamily" json:"nameFamily"`
	JobTitle   string `bson:"jobtitle,omitempty" json:"jobtitle,omitempty"`

	Organization []OrgRef      `bson:"organization,omitempty" json:"organization,omitempty"`
	Office       []OfficeRef   `bson:"office,omitempty" json:"office,omitempty"`
	Disasters    []DisasterRef `bson:"disasters,omitempty" json:"disasters,omitempty"`

	Bundle           []string `bson:"bundle,omitempty" json:"bundle,omitempty"`
	ProtectedBundles []string `bson:"protectedBundles,omitempty" json:"protectedBundles,omitempty"`
	ProtectedRoles   []string `bson:"protectedRoles,omitempty" json:"protectedRoles,omitempty"`
	KeyContact       bool     `bson:"keyContact" json:"keyContact"`

	Email   []Email   `bson:"email,omitempty" json:"email,omitempty"`
	Phone   []Phone   `bson:"phone,omitempty" json:"phone,omitempty"`
	VOIP    []VOIP    `bson:"voip,omitempty" json:"voip,omitempty"`
	Address []Address `bson:"address,omitempty" json:"address,omitempty"`
	URI     []string  `bson:"uri,omitempty" json:"uri,omitempty"`

	DepartureDate *time.Time `bson:"departureDate,omitempty" json:"departureDate,omitempty"`
	Notes         string     `bson:"notes,omitempty" json:"notes,omitempty"`

	Status bool `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OrgRef is an organization reference resolved from the directory source.
type OrgRef struct {
	Name     string `bson:"name" json:"name"`
	RemoteID string `bson:"remote_id,omitempty" json:"remote_id,omitempty"`
	OrgType  string `bson:"org_type_name,omitempty" json:"org_type_name,omitempty"`
}

// OfficeRef is a coordination office within an operation.
type OfficeRef struct {
	Name     string `bson:"name" json:"name"`
	RemoteID string `bson:"remote_id,omitempty" json:"remote_id,omitempty"`
}

// DisasterRef tags a contact with an emergency (GLIDE) record.
type DisasterRef struct {
	Name     string `bson:"name" json:"name"`
	RemoteID string `bson:"remote_id,omitempty" json:"remote_id,omitempty"`
}

type Email struct {
	Type    string `bson:"type,omitempty" json:"type,omitempty"`
	Address string `bson:"address" json:"address"`
}

type Phone struct {
	Type        string `bson:"type,omitempty" json:"type,omitempty"`
	Number      string `bson:"number" json:"number"`
	CountryCode string `bson:"countryCode,omitempty" json:"countryCode,omitempty"`
}

type VOIP struct {
	Type   string `bson:"type,omitempty" json:"type,omitempty"`
	Number string `bson:"number" json:"number"`
}

type Address struct {
	Country            string `bson:"country,omitempty" json:"country,omitempty"`
	Locality           string `bson:"locality,omitempty" json:"locality,omitempty"`
	AdministrativeArea string `bson:"administrative_area,omitempty" json:"administrative_area,omitempty"`
	PostalCode         string `bson:"postal_code,omitempty" json:"postal_code,omitempty"`
	Thoroughfare       string `bson:"thoroughfare,omitempty" json:"thoroughfare,omitempty"`
}

// OrganizationIDs returns the remote ids of the contact's organizations,
// skipping entries without one.
func (c *Contact) OrganizationIDs() []string {
	ids := make([]string, 0, len(c.Organization))
	for _, o := range c.Organization {
		if o.RemoteID != "" {
			ids = append(ids, o.RemoteID)
		}
	}
	return ids
}

// PrimaryEmail returns the first email address, or "" if none.
func (c *Contact) PrimaryEmail() string {
	for _, e := range c.Email {
		if e.Address != "" {
			return e.Address
		}
	}
	return ""
}

// FullName joins the given and family names.
func (c *Contact) FullName() string {
	switch {
	case c.NameGiven == "":
		return c.NameFamily
	case c.NameFamily == "":
		return c.NameGiven
	}
	return c.NameGiven + " " + c.NameFamily
}
