package kernel_test

import (
	"encoding/json"
	"testing"

	"github.com/fxavier/mozdelivery-api-sub003/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	id1 := kernel.NewUUID()
	id2 := kernel.NewUUID()

	require.NoError(t, id1.Validate())
	assert.False(t, id1.IsZero())
	assert.False(t, id1.IsEqual(id2))
}

func TestUUIDFromString(t *testing.T) {
	const canonical = "550e8400-e29b-41d4-a716-446655440000"

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "canonical", input: canonical},
		{name: "braced", input: "{" + canonical + "}"},
		{name: "urn", input: "urn:uuid:" + canonical},
		{name: "hyphenless", input: "550e8400e29b41d4a716446655440000"},
		{name: "garbage", input: "not-a-uuid", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "nil_uuid", input: uuid.Nil.String(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := kernel.UUIDFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, canonical, id.String())
		})
	}
}

func TestUUIDFrom(t *testing.T) {
	raw := uuid.New()

	id, err := kernel.UUIDFrom(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, id.Bytes())

	_, err = kernel.UUIDFrom(uuid.Nil)
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestUUID_Validate(t *testing.T) {
	var zero kernel.UUID

	require.ErrorIs(t, zero.Validate(), kernel.ErrUUIDIsNotConstructed)
	assert.True(t, zero.IsZero())
}

func TestUUID_TextRoundTrip(t *testing.T) {
	type payload struct {
		OrderID kernel.UUID `json:"orderId"`
	}
	id := kernel.MustUUID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	data, err := json.Marshal(payload{OrderID: id})
	require.NoError(t, err)
	assert.JSONEq(t, `{"orderId":"6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.IsEqual(decoded.OrderID))

	require.Error(t, json.Unmarshal([]byte(`{"orderId":"nope"}`), &decoded))
}

func TestMustUUID_PanicsOnInvalidInput(t *testing.T) {
	assert.Panics(t, func() { kernel.MustUUID("bad") })
}
