package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lifeflow/pkg/domain-errors"
)

func TestParseRequestID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseRequestID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseRequestID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseRequestID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseRequestID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, RequestID(valid), id)
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "donor@example.com", NormalizeEmail("  Donor@Example.COM "))
	assert.True(t, SameEmail("Admin@bank.org", "admin@BANK.org"))
	assert.False(t, SameEmail("a@bank.org", "b@bank.org"))
}
