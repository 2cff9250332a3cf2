// internal/domain/models/operation.go
package models

// Operation is a humanitarian field location as published by the
// directory source. Role scopes and contact locationIds refer to ID.
type Operation struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	ISO3  string `json:"iso3,omitempty"`
	PCode string `json:"pcode,omitempty"`
}
