package security

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
)

// SignatureService verifies the secure hash the payment gateway attaches to
// its callbacks. The hash is HMAC-SHA512 over the callback fields sorted by
// key and joined as key=value pairs with '&'.
type SignatureService interface {
	Sign(fields map[string]string) string
	Verify(fields map[string]string, signature string) error
}

var ErrBadSignature = errors.New("signature verification failed")

type hmacSignature struct {
	secret []byte
}

func NewSignatureService(secret string) SignatureService {
	return &hmacSignature{secret: []byte(secret)}
}

func (s *hmacSignature) Sign(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}

	mac := hmac.New(sha512.New, s.secret)
	mac.Write([]byte(b.String()))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *hmacSignature) Verify(fields map[string]string, signature string) error {
	want := s.Sign(fields)
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(signature))) {
		return ErrBadSignature
	}
	return nil
}
