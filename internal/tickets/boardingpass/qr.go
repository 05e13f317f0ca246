package boardingpass

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"github.com/skip2/go-qrcode"

	"ms-reservation/internal/models"
)

// payload is what the gate scanner decrypts. It carries only the
// fields the scanner needs to verify against the manifest.
type payload struct {
	TicketID     string    `json:"ticket_id"`
	TripID       string    `json:"trip_id"`
	SeatNumber   string    `json:"seat_number"`
	FromPosition int       `json:"from_position"`
	ToPosition   int       `json:"to_position"`
	BoardingCode string    `json:"boarding_code"`
	IssuedAt     time.Time `json:"issued_at"`
}

type QRGenerator struct {
	secret []byte
}

func NewQRGenerator(secret string) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &QRGenerator{secret: hashed[:]}
}

// GenerateEncryptedQR encrypts the boarding payload and renders it as
// a 256px QR PNG.
func (q *QRGenerator) GenerateEncryptedQR(ticket models.Ticket) ([]byte, error) {
	data, err := json.Marshal(payload{
		TicketID:     ticket.ID,
		TripID:       ticket.TripID,
		SeatNumber:   ticket.SeatNumber,
		FromPosition: ticket.FromPosition,
		ToPosition:   ticket.ToPosition,
		BoardingCode: ticket.BoardingCode,
		IssuedAt:     ticket.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, q.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
