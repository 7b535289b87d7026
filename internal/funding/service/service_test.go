package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeflow/internal/funding/models"
	"lifeflow/internal/funding/store/fund"
	id "lifeflow/pkg/domain"
	dErrors "lifeflow/pkg/domain-errors"
)

func newService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(fund.NewInMemory(), WithClock(func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	return svc
}

func TestRecordAndTotal(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	claim := id.Claim{Email: "Donor@Example.com", Name: "Karim"}

	first, err := svc.Record(ctx, claim, RecordInput{Amount: 500, TransactionID: "txn-1"})
	require.NoError(t, err)
	assert.Equal(t, "donor@example.com", first.UserEmail)
	assert.Equal(t, "Karim", first.UserName)

	_, err = svc.Record(ctx, claim, RecordInput{Amount: 1500, TransactionID: "txn-2"})
	require.NoError(t, err)

	total, err := svc.Total(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2000, total)

	funds, err := svc.List(ctx, models.Page{})
	require.NoError(t, err)
	assert.Len(t, funds, 2)
}

func TestRecordValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	claim := id.Claim{Email: "donor@example.com", Name: "Karim"}

	_, err := svc.Record(ctx, claim, RecordInput{Amount: 0, TransactionID: "txn-1"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = svc.Record(ctx, claim, RecordInput{Amount: 100})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
