package email

import (
	"fmt"
	"html"
	"strings"

	"signup-auth/internal/domain"
)

// ExpiryLayout formatea la expiracion como "07:30 PM Monday, 6 May, 2024".
const ExpiryLayout = "03:04 PM Monday, 2 January, 2006"

// RegistrationURL arma el enlace de canje para una confirmacion.
func RegistrationURL(domainURL string, c domain.Confirmation) string {
	return fmt.Sprintf("%s/register/%s", strings.TrimRight(domainURL, "/"), c.ID)
}

// NewConfirmationMessage compone el correo de confirmacion.
func NewConfirmationMessage(domainURL string, c domain.Confirmation) Message {
	link := RegistrationURL(domainURL, c)
	expires := c.ExpiresAt.UTC().Format(ExpiryLayout)

	text := fmt.Sprintf(
		"Please visit the link below to complete your registration:\n%s\nThis link expires on %s (UTC).\n",
		link,
		expires,
	)
	htmlBody := fmt.Sprintf(
		"Please click on the link below to complete registration.<br/>\n"+
			"<a href=\"%s\">Complete registration</a><br/>\n"+
			"This link expires on <strong>%s</strong> (UTC).",
		html.EscapeString(link),
		html.EscapeString(expires),
	)

	return Message{
		To:      c.Email,
		Subject: "Complete your registration",
		Text:    text,
		HTML:    htmlBody,
	}
}
