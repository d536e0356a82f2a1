package models

// LocationLine is one entry of an aggregated message.
type LocationLine struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// PendingNotificationGroup is everything one recipient is about to be told in
// a single run, in the order the locations were resolved.
type PendingNotificationGroup struct {
	Recipient string         `json:"recipient"`
	Lang      string         `json:"lang"`
	Locations []LocationLine `json:"locations"`
}

// ComposedMessage is a rendered SMS body for one recipient.
type ComposedMessage struct {
	Recipient string `json:"recipient"`
	Body      string `json:"body"`
	Lang      string `json:"lang"`
}
