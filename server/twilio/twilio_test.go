package twilio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhatsAppAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+14155238886", whatsAppAddress("+14155238886"))
	assert.Equal(t, "whatsapp:+14155238886", whatsAppAddress(" whatsapp:+14155238886 "))
}
