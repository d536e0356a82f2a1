package models

import "time"

// Sent flag values. Rows are deleted once notified, so stored rows are
// normally Pending.
const (
	Pending = 0
	Sent    = 1
)

// Subscription is a stored intent by one phone number to hear about one location.
type Subscription struct {
	Location  string    `json:"location" dynamodbav:"location"`
	IsSent    int       `json:"isSent" dynamodbav:"isSent"`
	SMS       string    `json:"sms" dynamodbav:"sms"`
	Lang      string    `json:"lang" dynamodbav:"lang"`
	CreatedAt time.Time `json:"createdAt,omitempty" dynamodbav:"createdAt,omitempty"`
}
