package dto

// InboundMessage is the subset of the Twilio messaging webhook the bot reads.
type InboundMessage struct {
	From       string `form:"From"`
	Body       string `form:"Body"`
	MessageSID string `form:"MessageSid"`
}
