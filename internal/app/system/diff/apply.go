// internal/app/system/diff/apply.go
package diff

import "github.com/dalemusser/hidapi/internal/domain/models"

// Apply copies onto base every field of source that events report as
// changed. Applying Contacts(base, source) this way leaves nothing further
// to report between the result and source.
func Apply(base, source models.Contact, events []Event) models.Contact {
	out := base
	for _, ev := range events {
		switch ev.Kind {
		case KindName:
			out.NameGiven, out.NameFamily = source.NameGiven, source.NameFamily
		case KindOrganization:
			out.Organization = cloneSlice(source.Organization)
		case KindJobTitle:
			out.JobTitle = source.JobTitle
		case KindGroups:
			out.Bundle = cloneSlice(source.Bundle)
			out.ProtectedBundles = cloneSlice(source.ProtectedBundles)
		case KindDisasters:
			out.Disasters = cloneSlice(source.Disasters)
		case KindAddress:
			out.Address = cloneSlice(source.Address)
		case KindOffice:
			out.Office = cloneSlice(source.Office)
		case KindPhone:
			out.Phone = cloneSlice(source.Phone)
		case KindVOIP:
			out.VOIP = cloneSlice(source.VOIP)
		case KindEmail:
			out.Email = cloneSlice(source.Email)
		case KindWebsite:
			out.URI = cloneSlice(source.URI)
		case KindDepartureDate:
			out.DepartureDate = nil
			if source.DepartureDate != nil {
				t := *source.DepartureDate
				out.DepartureDate = &t
			}
		case KindNotes:
			out.Notes = source.Notes
		}
	}
	return out
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}
