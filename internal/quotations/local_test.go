package quotations

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mepex/cotizador-backend/pkg/db/models"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupQuotationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, migrate.Run(context.Background(), sqlDB, "sqlite", "", "up"))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func sampleRecord(id, cot string) Record {
	return Record{
		ID:        id,
		CotNumber: cot,
		Date:      "2026-03-14",
		Type:      "stand",
		Items:     []Item{{ID: "chair", Name: "Silla", Price: 500, Quantity: 2, Unit: "unidad"}},
		Spaces:    []SpaceRecord{},
		SavedAt:   "2026-03-14T15:04:05.000Z",
	}
}

func TestLocalStoreUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(setupQuotationsTestDB(t), 50, logger.Nop())

	require.NoError(t, store.Upsert(ctx, sampleRecord("a", "COT-2026-0001")))
	require.NoError(t, store.Upsert(ctx, sampleRecord("b", "COT-2026-0002")))

	byID, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "COT-2026-0001", byID.CotNumber)

	byNumber, err := store.Get(ctx, "COT-2026-0002")
	require.NoError(t, err)
	assert.Equal(t, "b", byNumber.ID)

	_, err = store.Get(ctx, "missing")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestLocalStoreReplacesByNumberInPlace(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(setupQuotationsTestDB(t), 50, logger.Nop())

	require.NoError(t, store.Upsert(ctx, sampleRecord("a", "COT-2026-0001")))
	require.NoError(t, store.Upsert(ctx, sampleRecord("b", "COT-2026-0002")))

	updated := sampleRecord("remote-page-a", "COT-2026-0001")
	updated.Items[0].Quantity = 7
	require.NoError(t, store.Upsert(ctx, updated))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, "remote-page-a", list[1].ID)
	assert.Equal(t, 7, list[1].Items[0].Quantity)
}

func TestLocalStoreReplacesOnlyTheIDMatch(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(setupQuotationsTestDB(t), 50, logger.Nop())

	require.NoError(t, store.Upsert(ctx, sampleRecord("id-a", "COT-2026-0001")))
	require.NoError(t, store.Upsert(ctx, sampleRecord("id-b", "COT-2026-0002")))

	// id-a now carries id-b's number; id-b must survive untouched
	require.NoError(t, store.Upsert(ctx, sampleRecord("id-a", "COT-2026-0002")))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "id-b", list[0].ID)
	assert.Equal(t, "COT-2026-0002", list[0].CotNumber)
	assert.Equal(t, "id-a", list[1].ID)
	assert.Equal(t, "COT-2026-0002", list[1].CotNumber)

	kept, err := store.Get(ctx, "id-b")
	require.NoError(t, err)
	assert.Equal(t, "id-b", kept.ID)
}

func TestLocalStoreRetentionCap(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(setupQuotationsTestDB(t), 3, logger.Nop())

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Upsert(ctx, sampleRecord(fmt.Sprintf("id-%d", i), fmt.Sprintf("COT-2026-%04d", i))))
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"id-5", "id-4", "id-3"}, []string{list[0].ID, list[1].ID, list[2].ID})

	_, err = store.Get(ctx, "id-1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestLocalStoreSkipsMalformedPayloads(t *testing.T) {
	ctx := context.Background()
	db := setupQuotationsTestDB(t)
	store := NewLocalStore(db, 50, logger.Nop())

	require.NoError(t, store.Upsert(ctx, sampleRecord("good", "COT-2026-0001")))
	require.NoError(t, db.Create(&models.LocalQuotation{ID: "bad", CotNumber: "COT-2026-0002", SortKey: 10, SavedAt: fixedNow, Payload: "{not json"}).Error)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "good", list[0].ID)

	_, err = store.Get(ctx, "bad")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestLocalStoreWithoutDatabase(t *testing.T) {
	store := NewLocalStore(nil, 0, nil)
	err := store.Upsert(context.Background(), sampleRecord("a", ""))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnavailable))
}
