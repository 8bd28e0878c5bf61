package services

import (
	"crypto/rand"
	"math/big"
)

// RandomSource draws uniformly distributed integers in [0, n).
type RandomSource interface {
	IntN(n int) (int, error)
}

// CryptoRandom reads from crypto/rand.
type CryptoRandom struct{}

func (CryptoRandom) IntN(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
