package boardingpass_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ms-reservation/internal/tickets/boardingpass"
)

func TestGenerateFailsWithoutFont(t *testing.T) {
	gen := boardingpass.NewPDFGenerator("/nonexistent/font.ttf")

	_, err := gen.Generate(sampleTicket(), nil, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load font")
}

func TestNewPDFGeneratorDefaultsFontPath(t *testing.T) {
	gen := boardingpass.NewPDFGenerator("")
	assert.Equal(t, "./fonts/DejaVuSans.ttf", gen.FontPath)
}
