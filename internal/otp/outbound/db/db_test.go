package db_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpflow/internal/otp/entity"
	"github.com/shandysiswandi/otpflow/internal/otp/outbound/db"
	"github.com/shandysiswandi/otpflow/internal/otp/usecase"
	"github.com/shandysiswandi/otpflow/internal/pkg/clock"
	"github.com/shandysiswandi/otpflow/internal/pkg/goerror"
	"github.com/shandysiswandi/otpflow/internal/pkg/hotp"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/pgtx"
	"github.com/shandysiswandi/otpflow/internal/pkg/seal"
	"github.com/shandysiswandi/otpflow/internal/pkg/testkit"
	"github.com/shandysiswandi/otpflow/internal/pkg/uid"
	"github.com/shandysiswandi/otpflow/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(t *testing.T, sub entity.Subject, now time.Time) entity.Record {
	t.Helper()
	return entity.Record{
		ID:                  uid.NewUUID().Generate(),
		Subject:             sub,
		SecretKey:           []byte("sealed"),
		LastVerifiedCounter: entity.NoVerifiedCounter,
		ValidityPeriod:      30 * time.Minute,
		CodeLength:          6,
		RequestorIP:         "198.51.100.4",
		ExtraData:           map[string]any{"flow": "registration"},
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func TestDB_Records(t *testing.T) {
	pool := testkit.Postgres(t)
	store := db.NewDB(pool, instrument.NewNoop())
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	_, err := pool.Exec(ctx, `INSERT INTO accounts (id, email, password) VALUES (7, 'seven@example.com', 'x')`)
	require.NoError(t, err)

	idSub, err := entity.IdentifierSubject("a@example.com")
	require.NoError(t, err)
	accSub, err := entity.AccountSubject(7)
	require.NoError(t, err)

	t.Run("upsert and get", func(t *testing.T) {
		for _, sub := range []entity.Subject{idSub, accSub} {
			rec := newRecord(t, sub, now)
			require.NoError(t, store.UpsertRecord(ctx, rec))

			got, err := store.GetRecord(ctx, sub)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, got.ID)
			assert.Equal(t, rec.SecretKey, got.SecretKey)
			assert.Equal(t, rec.ValidityPeriod, got.ValidityPeriod)
			assert.Equal(t, rec.CodeLength, got.CodeLength)
			assert.Equal(t, rec.RequestorIP, got.RequestorIP)
			assert.Equal(t, "registration", got.ExtraData["flow"])
			assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
		}
	})

	t.Run("upsert replaces the live record", func(t *testing.T) {
		first := newRecord(t, idSub, now)
		require.NoError(t, store.UpsertRecord(ctx, first))
		ok, err := store.AdvanceCounter(ctx, idSub, first.ID, entity.NoVerifiedCounter, 5)
		require.NoError(t, err)
		require.True(t, ok)

		second := newRecord(t, idSub, now)
		second.RequestorIP = ""
		require.NoError(t, store.UpsertRecord(ctx, second))

		got, err := store.GetRecord(ctx, idSub)
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, entity.NoVerifiedCounter, got.LastVerifiedCounter)
		assert.Empty(t, got.RequestorIP)

		var n int
		require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM otp_identifier_records WHERE identifier = $1`, "a@example.com").Scan(&n))
		assert.Equal(t, 1, n)
	})

	t.Run("compare and set", func(t *testing.T) {
		rec := newRecord(t, accSub, now)
		require.NoError(t, store.UpsertRecord(ctx, rec))

		ok, err := store.AdvanceCounter(ctx, accSub, rec.ID, entity.NoVerifiedCounter, 10)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.AdvanceCounter(ctx, accSub, rec.ID, entity.NoVerifiedCounter, 11)
		require.NoError(t, err)
		assert.False(t, ok, "stale counter")

		ok, err = store.DeleteRecordAtCounter(ctx, accSub, rec.ID, entity.NoVerifiedCounter)
		require.NoError(t, err)
		assert.False(t, ok, "stale counter")

		ok, err = store.DeleteRecordAtCounter(ctx, accSub, rec.ID, 10)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = store.GetRecord(ctx, accSub)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("unknown account", func(t *testing.T) {
		ghost, err := entity.AccountSubject(999)
		require.NoError(t, err)

		err = store.UpsertRecord(ctx, newRecord(t, ghost, now))
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("delete expired", func(t *testing.T) {
		oldSub, err := entity.IdentifierSubject("old@example.com")
		require.NoError(t, err)
		require.NoError(t, store.UpsertRecord(ctx, newRecord(t, oldSub, now.Add(-time.Hour))))
		require.NoError(t, store.UpsertRecord(ctx, newRecord(t, idSub, now)))

		n, err := store.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = store.GetRecord(ctx, oldSub)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
		_, err = store.GetRecord(ctx, idSub)
		assert.NoError(t, err)
	})

	t.Run("joins ambient transaction", func(t *testing.T) {
		txSub, err := entity.IdentifierSubject("tx@example.com")
		require.NoError(t, err)
		errAbort := errors.New("abort")

		err = pgtx.NewTransactor(pool).WithinTx(ctx, func(ctx context.Context) error {
			if err := store.UpsertRecord(ctx, newRecord(t, txSub, now)); err != nil {
				return err
			}
			return errAbort
		})
		require.ErrorIs(t, err, errAbort)

		_, err = store.GetRecord(ctx, txSub)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})
}

func TestDB_ConcurrentVerifySucceedsOnce(t *testing.T) {
	pool := testkit.Postgres(t)
	ctx := context.Background()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	engine, err := usecase.New(usecase.Dependency{
		Config:     usecase.DefaultConfig(),
		RepoDB:     db.NewDB(pool, instrument.NewNoop()),
		Validator:  v,
		HOTP:       hotp.New("otpflow-test"),
		Sealer:     testSealer(t),
		UUID:       uid.NewUUID(),
		Clock:      clock.New(),
		Instrument: instrument.NewNoop(),
	})
	require.NoError(t, err)

	for _, deleteOnVerify := range []bool{true, false} {
		sub, err := entity.IdentifierSubject("race@example.com")
		require.NoError(t, err)

		out, err := engine.GenerateForSubject(ctx, usecase.GenerateInput{Subject: sub})
		require.NoError(t, err)

		const workers = 8
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			success int
		)
		for range workers {
			wg.Go(func() {
				ok, err := engine.Verify(ctx, usecase.VerifyInput{
					Subject:              sub,
					Code:                 out.Code,
					DeleteOnVerification: deleteOnVerify,
				})
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					success++
					mu.Unlock()
				}
			})
		}
		wg.Wait()

		assert.Equal(t, 1, success, "delete_on_verification=%v", deleteOnVerify)
	}
}

func testSealer(t *testing.T) *seal.AESGCM {
	t.Helper()

	s, err := seal.NewAESGCM(1, map[byte][]byte{1: make([]byte, 32)})
	require.NoError(t, err)
	return s
}
