package util

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParseID parses a positive integer identifier from a path or query value.
func ParseID(s string) (uint, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func Calculate(page, size int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	offset = (page - 1) * size
	return offset, size
}

// RandomHexUpper returns n random bytes encoded as upper-case hex.
func RandomHexUpper(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

func ReferralCode() (string, error) {
	return RandomHexUpper(6)
}

func VoucherCode() (string, error) {
	code, err := RandomHexUpper(3)
	if err != nil {
		return "", err
	}
	return "REF-" + code, nil
}
