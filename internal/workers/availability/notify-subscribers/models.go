package notifysubscribers

// Input names the region whose fresh scrape triggered the job. It is the
// "previous stage completed" payload of the scraper.
type Input struct {
	State string `json:"state,omitempty"`
}

type Output struct {
	Region     string `json:"region"`
	Locations  int    `json:"locations"`
	Qualifying int    `json:"qualifying"`
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
	Retired    int    `json:"retired"`
}
