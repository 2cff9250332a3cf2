package contacts_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dalemusser/hidapi/internal/app/system/notify"
	"github.com/dalemusser/hidapi/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type memContacts struct {
	byID map[primitive.ObjectID]models.Contact
}

func newMemContacts() *memContacts {
	return &memContacts{byID: map[primitive.ObjectID]models.Contact{}}
}

func (m *memContacts) GetByID(_ context.Context, id primitive.ObjectID) (models.Contact, error) {
	c, ok := m.byID[id]
	if !ok {
		return models.Contact{}, mongo.ErrNoDocuments
	}
	return c, nil
}

func (m *memContacts) GetGlobal(_ context.Context, pid primitive.ObjectID) (models.Contact, error) {
	for _, c := range m.byID {
		if c.ProfileID == pid && c.Type == models.ContactTypeGlobal {
			return c, nil
		}
	}
	return models.Contact{}, mongo.ErrNoDocuments
}

func (m *memContacts) FindActiveLocal(_ context.Context, pid primitive.ObjectID, loc string) (models.Contact, error) {
	for _, c := range m.byID {
		if c.ProfileID == pid && c.Type == models.ContactTypeLocal && c.LocationID == loc && c.Status {
			return c, nil
		}
	}
	return models.Contact{}, mongo.ErrNoDocuments
}

func (m *memContacts) ActiveLocations(_ context.Context, pid primitive.ObjectID) ([]string, error) {
	var out []string
	for _, c := range m.byID {
		if c.ProfileID == pid && c.Type == models.ContactTypeLocal && c.Status {
			out = append(out, c.LocationID)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memContacts) Upsert(_ context.Context, c models.Contact) (models.Contact, error) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.UpdatedAt = time.Now().UTC()
	m.byID[c.ID] = c
	return c, nil
}

func (m *memContacts) put(c models.Contact) models.Contact {
	c, _ = m.Upsert(context.Background(), c)
	return c
}

type memProfiles struct {
	byID map[primitive.ObjectID]models.Profile
}

func newMemProfiles() *memProfiles {
	return &memProfiles{byID: map[primitive.ObjectID]models.Profile{}}
}

func (m *memProfiles) GetByID(_ context.Context, id primitive.ObjectID) (models.Profile, error) {
	p, ok := m.byID[id]
	if !ok {
		return models.Profile{}, mongo.ErrNoDocuments
	}
	return p, nil
}

func (m *memProfiles) GetByUserID(_ context.Context, userID string) (models.Profile, error) {
	for _, p := range m.byID {
		if p.UserID == userID {
			return p, nil
		}
	}
	return models.Profile{}, mongo.ErrNoDocuments
}

func (m *memProfiles) Upsert(_ context.Context, p models.Profile) (models.Profile, error) {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.byID[p.ID] = p
	return p, nil
}

func (m *memProfiles) SetVerified(_ context.Context, id primitive.ObjectID, by string, at time.Time) error {
	p, ok := m.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	p.Verified = true
	p.VerifiedBy = by
	p.VerifiedAt = &at
	m.byID[id] = p
	return nil
}

func (m *memProfiles) put(p models.Profile) models.Profile {
	p, _ = m.Upsert(context.Background(), p)
	return p
}

type sent struct {
	template string
	payload  notify.Payload
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingNotifier) Dispatch(_ context.Context, template string, p notify.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{template, p})
}

type names map[string]string

func (n names) LocationName(id string) (string, bool) {
	v, ok := n[id]
	return v, ok
}
