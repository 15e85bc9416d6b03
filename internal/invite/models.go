package invite

// EmailNotification is a single outbound email.
type EmailNotification struct {
	To      string
	Subject string
	Body    string
	HTML    string
}

// SendInviteRequest is the invite endpoint payload.
type SendInviteRequest struct {
	RecipientEmail  string `json:"recipient_email" validate:"required,email"`
	PersonalMessage string `json:"personal_message" validate:"max=500"`
	SenderName      string `json:"sender_name" validate:"max=100"`
}
