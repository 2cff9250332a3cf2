// internal/app/system/authz/lists.go
package authz

import "github.com/dalemusser/hidapi/internal/domain/models"

// CanViewList reports whether a may see (and therefore follow) l.
//
// Visibility:
//   - trusted clients, admins, the owner and editors always
//   - "all": anyone
//   - "verified": verified profiles
//   - "some": readers
//   - "me": nobody else
func CanViewList(a Actor, l models.List) bool {
	if a.IsTrustedClient() || IsAdmin(a.Profile) {
		return true
	}
	if !a.IsUser() {
		return false
	}
	if a.UserID == l.Owner || contains(l.Editors, a.UserID) {
		return true
	}
	switch l.Privacy {
	case models.ListPrivacyAll:
		return true
	case models.ListPrivacyVerified:
		return a.Verified()
	case models.ListPrivacySome:
		return contains(l.Readers, a.UserID)
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
