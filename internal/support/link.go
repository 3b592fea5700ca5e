// Package support builds the outbound contact links shown to users.
package support

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultNumber is the support WhatsApp number in international format.
const DefaultNumber = "9779861513184"

// ContactLink returns a WhatsApp deep link to number with message pre-filled.
func ContactLink(number, message string) string {
	number = digits(number)
	if number == "" {
		number = DefaultNumber
	}
	link := "https://wa.me/" + number
	if message != "" {
		link += "?text=" + url.QueryEscape(message)
	}
	return link
}

// BlockedAppealMessage is the text a suspended user sends to ask for review.
func BlockedAppealMessage(email string) string {
	return fmt.Sprintf("Hello Admin, my Jobmandu account (%s) has been suspended. I would like to request a review for reactivation.", email)
}

// HelpMessage is the generic pre-filled support greeting.
const HelpMessage = "Hello Jobmandu support, I need help with my account."

// Linker carries the configured support number.
type Linker struct {
	Number string
}

// Appeal returns the contact link for a suspended account.
func (l Linker) Appeal(email string) string {
	return ContactLink(l.Number, BlockedAppealMessage(email))
}

// Help returns the general support link.
func (l Linker) Help() string {
	return ContactLink(l.Number, HelpMessage)
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
