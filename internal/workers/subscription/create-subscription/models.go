package createsubscription

// Input is the subscription request body.
type Input struct {
	Location string `json:"location"`
	SMS      string `json:"sms"`
	Lang     string `json:"lang"`
}

type Output struct {
	Location  string `json:"location"`
	Recipient string `json:"recipient"`
	Lang      string `json:"lang"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"` // RFC 3339
}

const StatusSubscribed = "subscribed"

// Client-facing validation messages.
const (
	MsgMissingBody     = "Missing request body!"
	MsgInvalidBody     = "Invalid request body!"
	MsgInvalidLocation = "Invalid location uuid!"
	MsgInvalidPhone    = "Invalid US phone number!"
	MsgInvalidLang     = `Invalid language id (must be a two char string without localization like "en" or "fr")!`
)

func missingFieldMessage(field string) string {
	return "Missing or incorrect type for required field `" + field + "` in body!"
}
