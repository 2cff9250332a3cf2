// internal/app/system/authz/actor.go
package authz

import "github.com/dalemusser/hidapi/internal/domain/models"

// Mode distinguishes API clients from signed-in users.
type Mode string

const (
	ModeClient Mode = "client"
	ModeUser   Mode = "user"
)

// ActorProfile is the slice of a Profile the policy code needs.
type ActorProfile struct {
	ID              string
	Roles           []string
	Verified        bool
	OrgEditorGrants []models.OrgEditorGrant
}

// Actor is the authenticated caller for one request. It is built once by the
// auth middleware and passed by value; nothing mutates it afterwards.
type Actor struct {
	Mode     Mode
	ClientID string
	Trusted  bool

	UserID  string
	Name    string
	Email   string
	Profile *ActorProfile
}

// ClientActor returns an actor for an API client.
func ClientActor(clientID string, trusted bool) Actor {
	return Actor{Mode: ModeClient, ClientID: clientID, Trusted: trusted}
}

// UserActor returns an actor for a signed-in user. p may be nil for a user
// who has no profile yet.
func UserActor(userID string, p *models.Profile) Actor {
	a := Actor{Mode: ModeUser, UserID: userID}
	if p != nil {
		a.Name = joinName(p.NameGiven, p.NameFamily)
		a.Email = p.Email
		a.Profile = &ActorProfile{
			ID:              p.ID.Hex(),
			Roles:           append([]string(nil), p.Roles...),
			Verified:        p.Verified,
			OrgEditorGrants: append([]models.OrgEditorGrant(nil), p.OrgEditorRoles...),
		}
	}
	return a
}

// IsTrustedClient reports whether the actor is a trusted API client.
func (a Actor) IsTrustedClient() bool {
	return a.Mode == ModeClient && a.Trusted
}

// IsUser reports whether the actor is a signed-in user.
func (a Actor) IsUser() bool {
	return a.Mode == ModeUser && a.UserID != ""
}

// Key identifies the actor for rate limiting and audit records.
func (a Actor) Key() string {
	if a.Mode == ModeClient {
		return "client:" + a.ClientID
	}
	return "user:" + a.UserID
}

// Verified reports whether the acting user's profile is verified.
func (a Actor) Verified() bool {
	return a.Profile != nil && a.Profile.Verified
}

func joinName(given, family string) string {
	switch {
	case given == "":
		return family
	case family == "":
		return given
	}
	return given + " " + family
}
