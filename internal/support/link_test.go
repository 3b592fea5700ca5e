package support

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactLink_EscapesMessage(t *testing.T) {
	link := ContactLink("+977 9861513184", "Hi & bye? #1")
	assert.Equal(t, "https://wa.me/9779861513184?text=Hi+%26+bye%3F+%231", link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Hi & bye? #1", u.Query().Get("text"))
}

func TestContactLink_Defaults(t *testing.T) {
	assert.Equal(t, "https://wa.me/"+DefaultNumber, ContactLink("", ""))
}

func TestLinker_Appeal(t *testing.T) {
	link := Linker{Number: "9779800000000"}.Appeal("hari@example.com")

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/9779800000000", u.Path)
	assert.Equal(t,
		"Hello Admin, my Jobmandu account (hari@example.com) has been suspended. I would like to request a review for reactivation.",
		u.Query().Get("text"))
}

func TestLinker_Help(t *testing.T) {
	u, err := url.Parse(Linker{}.Help())
	require.NoError(t, err)
	assert.Equal(t, HelpMessage, u.Query().Get("text"))
}
