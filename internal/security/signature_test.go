package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	svc := NewSignatureService("gw-secret")
	fields := map[string]string{
		"orderId":      "ord-1",
		"responseCode": "00",
		"amount":       "125000",
	}

	sig := svc.Sign(fields)
	require.NotEmpty(t, sig)
	assert.NoError(t, svc.Verify(fields, sig))

	// map iteration order must not affect the hash
	again := svc.Sign(map[string]string{
		"amount":       "125000",
		"responseCode": "00",
		"orderId":      "ord-1",
	})
	assert.Equal(t, sig, again)
}

func TestVerifyCaseInsensitiveHex(t *testing.T) {
	t.Parallel()

	svc := NewSignatureService("gw-secret")
	fields := map[string]string{"orderId": "ord-1"}

	sig := svc.Sign(fields)
	assert.NoError(t, svc.Verify(fields, strings.ToUpper(sig)))
}

func TestVerifyRejectsTamperedFields(t *testing.T) {
	t.Parallel()

	svc := NewSignatureService("gw-secret")
	fields := map[string]string{"orderId": "ord-1", "responseCode": "00"}
	sig := svc.Sign(fields)

	fields["responseCode"] = "24"
	assert.ErrorIs(t, svc.Verify(fields, sig), ErrBadSignature)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	fields := map[string]string{"orderId": "ord-1"}
	sig := NewSignatureService("other-secret").Sign(fields)

	assert.ErrorIs(t, NewSignatureService("gw-secret").Verify(fields, sig), ErrBadSignature)
}
