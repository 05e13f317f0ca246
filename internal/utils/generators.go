package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateID() string {
	return uuid.New().String()
}

// GenerateBoardingCode returns an opaque, globally unique code printed
// on the boarding pass. The random suffix keeps codes non-guessable;
// the tickets table carries a unique index as the hard guarantee.
func GenerateBoardingCode() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999999))
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("BRD-%d-%09d-%s", timestamp, randomNum.Int64(), suffix)
}
