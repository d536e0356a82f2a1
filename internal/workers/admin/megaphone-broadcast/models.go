package megaphonebroadcast

type Input struct {
	State string `json:"state,omitempty"`
}

type Output struct {
	Region     string `json:"region"`
	Locations  int    `json:"locations"`
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
}
