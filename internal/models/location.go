package models

// Location is static reference data produced by the scraper.
type Location struct {
	UUID                  string `json:"uuid"`
	Name                  string `json:"name"`
	LinkURL               string `json:"linkUrl"`
	NotificationThreshold *int   `json:"notificationThreshold,omitempty"`
}

// TimeSlot is one scraped appointment window. A nil Slots means the source
// did not report a count.
type TimeSlot struct {
	Slots *int `json:"slots"`
}

// AvailabilitySlot is the scraped availability for one location.
type AvailabilitySlot struct {
	Location string     `json:"location"`
	Times    []TimeSlot `json:"times"`
}

// QualifyingLocation is a location whose availability crossed its threshold
// in the current run.
type QualifyingLocation struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	URL  string `json:"url"`
}
