package domain

import (
	"context"
	"errors"
)

// Territory is immutable reference data: an ISO-2 code grouped by region.
type Territory struct {
	Code   string `gorm:"primaryKey;type:varchar(2)" json:"code"`
	Region string `gorm:"type:text;not null;index" json:"region"`
}

func (Territory) TableName() string { return "territories" }

type Repository interface {
	List(ctx context.Context, region string) ([]Territory, error)
	FindByCodes(ctx context.Context, codes []string) ([]Territory, error)
	Regions(ctx context.Context) ([]string, error)
}

type Service interface {
	List(ctx context.Context, region string) ([]Territory, error)
	Regions(ctx context.Context) ([]string, error)
	// ValidateCodes normalizes and verifies codes against the catalog.
	ValidateCodes(ctx context.Context, codes []string) ([]string, error)
}

var (
	ErrInvalidTerritoryCode = errors.New("invalid_territory_code")
	ErrUnknownTerritory     = errors.New("unknown_territory")
)

// NormalizeCode uppercases and validates the shape of an ISO-2 code.
func NormalizeCode(code string) (string, error) {
	if len(code) != 2 {
		return "", ErrInvalidTerritoryCode
	}
	normalized := [2]byte{}
	for i := 0; i < 2; i++ {
		ch := code[i]
		switch {
		case ch >= 'a' && ch <= 'z':
			ch -= 'a' - 'A'
		case ch >= 'A' && ch <= 'Z':
		default:
			return "", ErrInvalidTerritoryCode
		}
		normalized[i] = ch
	}
	return string(normalized[:]), nil
}

// NormalizeCodes validates shape and de-duplicates, preserving order.
func NormalizeCodes(codes []string) ([]string, error) {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		normalized, err := NormalizeCode(code)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out, nil
}
