package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/shandysiswandi/otpflow/internal/notification/entity"
	"github.com/shandysiswandi/otpflow/internal/notification/outbound/db"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/testkit"
	"github.com/shandysiswandi/otpflow/internal/shared/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_Deliveries(t *testing.T) {
	pool := testkit.Postgres(t)
	store := db.NewDB(pool, instrument.NewNoop())
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	d := entity.Delivery{
		ID:            42,
		Purpose:       event.OTPPurposeRegistration,
		Channel:       entity.ChannelEmail,
		Recipient:     "a@example.com",
		Status:        entity.DeliveryStatusQueued,
		CorrelationID: "cid-1",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, store.CreateDelivery(ctx, d))

	got, err := store.GetDelivery(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, event.OTPPurposeRegistration, got.Purpose)
	assert.Equal(t, entity.DeliveryStatusQueued, got.Status)
	assert.Equal(t, "cid-1", got.CorrelationID)
	assert.Empty(t, got.ErrorMessage)

	later := now.Add(time.Second)
	require.NoError(t, store.UpdateDeliveryStatus(ctx, entity.UpdateDelivery{
		ID:           42,
		Status:       entity.DeliveryStatusFailed,
		Attempts:     3,
		ErrorMessage: "relay unavailable",
		UpdatedAt:    later,
	}))

	got, err = store.GetDelivery(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryStatusFailed, got.Status)
	assert.Equal(t, 3, got.Attempts)
	assert.Equal(t, "relay unavailable", got.ErrorMessage)
	assert.True(t, got.UpdatedAt.Equal(later))

	err = store.UpdateDeliveryStatus(ctx, entity.UpdateDelivery{ID: 404, Status: entity.DeliveryStatusSent, UpdatedAt: later})
	assert.ErrorIs(t, err, goerror.ErrNotFound)

	_, err = store.GetDelivery(ctx, 404)
	assert.ErrorIs(t, err, goerror.ErrNotFound)
}
