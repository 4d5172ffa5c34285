package email

import (
	"fmt"
	"html"
	"time"
)

// Kind names a portal email. Resend tags and local logs carry it.
type Kind string

const (
	KindMagicLink               Kind = "magic_link"
	KindPasswordReset           Kind = "password_reset"
	KindReservationConfirmation Kind = "reservation_confirmation"
	KindReservationNotice       Kind = "reservation_notice"
)

type Message struct {
	Kind    Kind
	Subject string
	HTML    string
}

// MagicLink builds the sign-in (or password reset) email for link.
func MagicLink(link string, reset bool, ttl time.Duration) Message {
	hours := int(ttl.Hours())
	escaped := html.EscapeString(link)
	if reset {
		return Message{
			Kind:    KindPasswordReset,
			Subject: "Password reset link",
			HTML: fmt.Sprintf(
				`<p>Click the link below to reset your password:</p><p><a href="%s">Reset password</a></p><p>This link expires in %d hours.</p>`,
				escaped, hours,
			),
		}
	}
	return Message{
		Kind:    KindMagicLink,
		Subject: "Your student portal sign-in link",
		HTML: fmt.Sprintf(
			`<p>Click the link below to sign in to the student portal:</p><p><a href="%s">Sign in</a></p><p>This link expires in %d hours.</p>`,
			escaped, hours,
		),
	}
}

type Reservation struct {
	StudentName  string
	StudentEmail string
	ScheduleName string
	Date         time.Time
	Instructor   *string
}

func (r Reservation) details() string {
	out := fmt.Sprintf(`<p><strong>Date:</strong> %s</p><p><strong>Session:</strong> %s</p>`,
		html.EscapeString(r.Date.Format("2006-01-02 15:04")), html.EscapeString(r.ScheduleName))
	if r.Instructor != nil && *r.Instructor != "" {
		out += fmt.Sprintf(`<p><strong>Instructor:</strong> %s</p>`, html.EscapeString(*r.Instructor))
	}
	return out
}

// ReservationConfirmation goes to the student who reserved the slot.
func ReservationConfirmation(r Reservation) Message {
	return Message{
		Kind:    KindReservationConfirmation,
		Subject: fmt.Sprintf("Consultation reserved (%s)", r.Date.Format("2006-01-02 15:04")),
		HTML: fmt.Sprintf(`<p>%s,</p><p>Your consultation is booked.</p>%s<p>Please submit the pre-session questionnaire by the day before.</p>`,
			html.EscapeString(r.StudentName), r.details()),
	}
}

// ReservationNotice goes to the portal owner.
func ReservationNotice(r Reservation) Message {
	return Message{
		Kind:    KindReservationNotice,
		Subject: fmt.Sprintf("New consultation reservation (%s)", r.StudentName),
		HTML: fmt.Sprintf(`<p>A new consultation was reserved.</p><p><strong>Student:</strong> %s &lt;%s&gt;</p>%s`,
			html.EscapeString(r.StudentName), html.EscapeString(r.StudentEmail), r.details()),
	}
}
