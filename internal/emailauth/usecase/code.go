package usecase

import (
	"crypto/rand"
	"math/big"
)

// codeUpperBound is exclusive: codes are 0..9998.
const codeUpperBound = 9999

// RandomCode draws codes from crypto/rand.
type RandomCode struct{}

func (RandomCode) Generate() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeUpperBound))
	if err != nil {
		return 0, err
	}
	return int(n.Int64()), nil
}
