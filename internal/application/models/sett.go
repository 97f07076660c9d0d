package models

import "time"

// Sett is a badger sett location listed on an application.
type Sett struct {
	ID            int64         `json:"id"`
	ApplicationID ApplicationID `json:"ApplicationId"`
	Sett          string        `json:"sett"`
	GridRef       string        `json:"gridRef"`
	Entrances     int           `json:"entrances"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// NewSett builds a sett for applicationID from an incoming entry. The store
// assigns ID.
func NewSett(applicationID ApplicationID, entry SettEntry, now time.Time) *Sett {
	return &Sett{
		ApplicationID: applicationID,
		Sett:          entry.ID,
		GridRef:       entry.GridReference,
		Entrances:     entry.Entrances,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
