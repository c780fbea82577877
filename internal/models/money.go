package models

import (
	"errors"
	"math"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ToCents переводит сумму в основных единицах (наира, доллар) в минорные.
func ToCents(major float64) (int64, error) {
	if math.IsNaN(major) || math.IsInf(major, 0) || major < 0 {
		return 0, ErrInvalidAmount
	}
	c := math.Round(major * 100)
	if c > math.MaxInt64/2 {
		return 0, ErrInvalidAmount
	}
	return int64(c), nil
}

func FromCents(cents int64) float64 { return float64(cents) / 100 }
