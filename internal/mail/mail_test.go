package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeContactEmail(t *testing.T) {
	msg := ContactMessage{
		Name:    "Jordan Reader",
		Email:   "jordan@example.com",
		Message: `Great "catalog"! <3`,
	}

	email := composeContactEmail("noreply@bookshouse.example", "team@bookshouse.example", msg)

	assert.Equal(t, "BooksHouse Form Message from Jordan Reader", email.Subject)
	assert.Equal(t, "noreply@bookshouse.example", email.From.Address)
	require.NotNil(t, email.ReplyTo)
	assert.Equal(t, "jordan@example.com", email.ReplyTo.Address)

	require.Len(t, email.Personalizations, 1)
	require.Len(t, email.Personalizations[0].To, 1)
	assert.Equal(t, "team@bookshouse.example", email.Personalizations[0].To[0].Address)

	require.Len(t, email.Content, 2)
	assert.Contains(t, email.Content[0].Value, "jordan@example.com")
	assert.Contains(t, email.Content[0].Value, `Great "catalog"! <3`)
	// HTML body gets escaped, quotes included.
	assert.Contains(t, email.Content[1].Value, "Great &#34;catalog&#34;! &lt;3")
}

func TestNoopMailerRecordsMessages(t *testing.T) {
	m := NewNoopMailer(nil)

	delivery, err := m.SendContactMessage(context.Background(), ContactMessage{
		Name:    "Visitor",
		Email:   "visitor@example.com",
		Message: "Hello",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, delivery.ReferenceID)
	require.Len(t, m.Sent, 1)
	assert.Equal(t, "visitor@example.com", m.Sent[0].Email)
}
