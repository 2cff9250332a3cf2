package authz_test

import (
	"testing"

	"github.com/dalemusser/hidapi/internal/app/system/authz"
	"github.com/dalemusser/hidapi/internal/domain/models"
)

func TestCanViewList(t *testing.T) {
	verified := authz.Actor{Mode: authz.ModeUser, UserID: "u2", Profile: &authz.ActorProfile{Verified: true}}
	plain := authz.Actor{Mode: authz.ModeUser, UserID: "u3", Profile: &authz.ActorProfile{}}
	owner := authz.Actor{Mode: authz.ModeUser, UserID: "owner"}
	admin := authz.Actor{Mode: authz.ModeUser, UserID: "a", Profile: &authz.ActorProfile{Roles: []string{"admin"}}}
	client := authz.ClientActor("c1", true)
	untrusted := authz.ClientActor("c2", false)

	list := func(privacy string) models.List {
		return models.List{Owner: "owner", Privacy: privacy, Readers: []string{"u3"}}
	}

	tests := []struct {
		name  string
		actor authz.Actor
		list  models.List
		want  bool
	}{
		{"all visible to anyone", plain, list(models.ListPrivacyAll), true},
		{"verified visible to verified", verified, list(models.ListPrivacyVerified), true},
		{"verified hidden from unverified", plain, list(models.ListPrivacyVerified), false},
		{"some visible to reader", plain, list(models.ListPrivacySome), true},
		{"some hidden from non-reader", verified, list(models.ListPrivacySome), false},
		{"me visible to owner", owner, list(models.ListPrivacyMe), true},
		{"me hidden from reader", plain, list(models.ListPrivacyMe), false},
		{"admin sees everything", admin, list(models.ListPrivacyMe), true},
		{"trusted client sees everything", client, list(models.ListPrivacyMe), true},
		{"untrusted client sees nothing", untrusted, list(models.ListPrivacyAll), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := authz.CanViewList(tt.actor, tt.list); got != tt.want {
				t.Errorf("CanViewList = %v, want %v", got, tt.want)
			}
		})
	}
}
