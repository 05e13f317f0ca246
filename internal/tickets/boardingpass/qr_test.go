package boardingpass_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-reservation/internal/models"
	"ms-reservation/internal/tickets/boardingpass"
)

func sampleTicket() models.Ticket {
	return models.Ticket{
		ID: "t1", TripID: "trip1", SeatNumber: "1A",
		FromPosition: 0, ToPosition: 2,
		BoardingCode: "BP-TESTCODE", CreatedAt: time.Now(),
	}
}

func TestGenerateEncryptedQRProducesPNG(t *testing.T) {
	gen := boardingpass.NewQRGenerator("test-secret")

	img, err := gen.GenerateEncryptedQR(sampleTicket())
	require.NoError(t, err)
	require.NotEmpty(t, img)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, img[:4])
}

// Each render uses a fresh IV, so even the same ticket never produces
// the same ciphertext twice.
func TestGenerateEncryptedQRIsNotDeterministic(t *testing.T) {
	gen := boardingpass.NewQRGenerator("test-secret")
	ticket := sampleTicket()

	first, err := gen.GenerateEncryptedQR(ticket)
	require.NoError(t, err)
	second, err := gen.GenerateEncryptedQR(ticket)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

// Any secret works: it is normalized to an AES-256 key.
func TestQRGeneratorAcceptsArbitrarySecretLength(t *testing.T) {
	for _, secret := range []string{"", "x", "a-much-longer-secret-than-thirty-two-bytes-in-total"} {
		gen := boardingpass.NewQRGenerator(secret)
		img, err := gen.GenerateEncryptedQR(sampleTicket())
		assert.NoError(t, err)
		assert.NotEmpty(t, img)
	}
}
