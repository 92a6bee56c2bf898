package idempotency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	fields map[string]any
}

func (p testPayload) CanonicalPayload() map[string]any {
	return p.fields
}

func TestRequestHash_Deterministic(t *testing.T) {
	payload := testPayload{fields: map[string]any{
		"operation": "DEPOSIT",
		"user_id":   "b6f3a0f2-9f6f-4e11-8f1b-1a2b3c4d5e6f",
		"amount":    "100.00",
		"currency":  "USD",
	}}

	first, err := RequestHash(payload)
	require.NoError(t, err)

	second, err := RequestHash(payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // SHA-256 hex
}

func TestRequestHash_KeyOrderIndependent(t *testing.T) {
	// encoding/json сортирует ключи map - порядок вставки не влияет на хеш
	a := testPayload{fields: map[string]any{
		"amount":   "100.00",
		"currency": "USD",
	}}
	b := testPayload{fields: map[string]any{
		"currency": "USD",
		"amount":   "100.00",
	}}

	hashA, err := RequestHash(a)
	require.NoError(t, err)
	hashB, err := RequestHash(b)
	require.NoError(t, err)

	assert.Equal(t, hashA, hashB)
}

func TestRequestHash_DifferentPayloads(t *testing.T) {
	base := testPayload{fields: map[string]any{
		"amount":   "100.00",
		"currency": "USD",
	}}
	changedAmount := testPayload{fields: map[string]any{
		"amount":   "100.01",
		"currency": "USD",
	}}

	hashBase, err := RequestHash(base)
	require.NoError(t, err)
	hashChanged, err := RequestHash(changedAmount)
	require.NoError(t, err)

	assert.NotEqual(t, hashBase, hashChanged)
}

func TestRequestHash_ScaleMatters(t *testing.T) {
	// "100" и "100.00" - разные канонические строки, разные хеши.
	// Суммы хешируются как прислал клиент, без нормализации масштаба.
	a := testPayload{fields: map[string]any{"amount": "100"}}
	b := testPayload{fields: map[string]any{"amount": "100.00"}}

	hashA, err := RequestHash(a)
	require.NoError(t, err)
	hashB, err := RequestHash(b)
	require.NoError(t, err)

	assert.NotEqual(t, hashA, hashB)
}

func TestRequestHash_ExplicitNil(t *testing.T) {
	// Отсутствующее опциональное поле передаётся явным null
	withNil := testPayload{fields: map[string]any{
		"amount":      "100.00",
		"description": nil,
	}}
	withValue := testPayload{fields: map[string]any{
		"amount":      "100.00",
		"description": "salary",
	}}

	hashNil, err := RequestHash(withNil)
	require.NoError(t, err)
	hashValue, err := RequestHash(withValue)
	require.NoError(t, err)

	assert.NotEqual(t, hashNil, hashValue)
}
