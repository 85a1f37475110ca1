package domain

// Mailer defines the contract for sending emails (infrastructure port).
// It returns the provider's message id, used for delivery tracking.
type Mailer interface {
	Send(to, subject, html, text string) (messageID string, err error)
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// GuestEmailData holds data for guest-facing templates (invitation,
// confirmation, reminder, test).
type GuestEmailData struct {
	GuestName    string
	GuestEmail   string
	EventName    string
	EventDate    string
	Location     string
	HostName     string
	CheckInToken string
}
