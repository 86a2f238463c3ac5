package quotations

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mepex/cotizador-backend/internal/repo"
	pkgdb "github.com/mepex/cotizador-backend/pkg/db"
	"github.com/mepex/cotizador-backend/pkg/db/models"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"gorm.io/gorm"
)

// DefaultLocalCap is the number of records the fallback store retains.
const DefaultLocalCap = 50

// LocalStore keeps the most recent records in SQL as the fallback copy.
type LocalStore struct {
	repo.Base
	maxRecords int
	logg       *logger.Logger
}

func NewLocalStore(db *gorm.DB, maxRecords int, logg *logger.Logger) *LocalStore {
	if maxRecords <= 0 {
		maxRecords = DefaultLocalCap
	}
	return &LocalStore{Base: repo.NewBase(db), maxRecords: maxRecords, logg: logg}
}

// Upsert replaces one stored record in place: the one sharing rec's id, else
// the oldest sharing its cotNumber. Otherwise rec is appended. Other records
// are never touched. The oldest records beyond the cap are evicted.
func (s *LocalStore) Upsert(ctx context.Context, rec Record) error {
	if !s.Ready() {
		return pkgerrors.New(pkgerrors.CodeUnavailable, "local quotation store not configured")
	}
	if rec.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "quotation id is required")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode quotation record")
	}
	savedAt := parseSavedAt(rec.SavedAt)

	err = s.Tx(ctx, func(tx *gorm.DB) error {
		target, found, err := s.replaceTarget(tx, rec)
		if err != nil {
			return err
		}

		row := models.LocalQuotation{
			ID:        rec.ID,
			CotNumber: rec.CotNumber,
			SavedAt:   savedAt,
			Payload:   string(payload),
		}
		if found {
			row.SortKey = target.SortKey
			if err := tx.Where("id = ?", target.ID).Delete(&models.LocalQuotation{}).Error; err != nil {
				return err
			}
		} else {
			var maxKey int64
			if err := tx.Model(&models.LocalQuotation{}).Select("COALESCE(MAX(sort_key), -1)").Scan(&maxKey).Error; err != nil {
				return err
			}
			row.SortKey = maxKey + 1
		}
	if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return s.evict(tx)
	})
	if pkgdb.IsUniqueViolation(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "quotation saved concurrently")
	}
	return err
}

func (s *LocalStore) replaceTarget(tx *gorm.DB, rec Record) (models.LocalQuotation, bool, error) {
	var rows []models.LocalQuotation
	if err := tx.Where("id = ?", rec.ID).Limit(1).Find(&rows).Error; err != nil {
		return models.LocalQuotation{}, false, err
	}
	if len(rows) == 0 && rec.CotNumber != "" {
		if err := tx.Where("cot_number = ?", rec.CotNumber).Order("sort_key ASC").Limit(1).Find(&rows).Error; err != nil {
			return models.LocalQuotation{}, false, err
		}
	}
	if len(rows) == 0 {
		return models.LocalQuotation{}, false, nil
	}
	return rows[0], true, nil
}

func (s *LocalStore) evict(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&models.LocalQuotation{}).Count(&count).Error; err != nil {
		return err
	}
	excess := int(count) - s.maxRecords
	if excess <= 0 {
		return nil
	}
	var stale []string
	if err := tx.Model(&models.LocalQuotation{}).
		Order("sort_key ASC").
		Limit(excess).
		Pluck("id", &stale).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", stale).Delete(&models.LocalQuotation{}).Error
}

// List returns the stored records, newest first. Rows whose payload no
// longer decodes are skipped.
func (s *LocalStore) List(ctx context.Context) ([]Record, error) {
	if !s.Ready() {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "local quotation store not configured")
	}
	var rows []models.LocalQuotation
	if err := s.DB(ctx).Order("sort_key DESC").Find(&rows).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list local quotations")
	}
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec, err := Decode([]byte(row.Payload))
		if err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "quotation_id", row.ID), "skipping malformed local quotation")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get finds a record by id or quotation number.
func (s *LocalStore) Get(ctx context.Context, idOrNumber string) (Record, error) {
	if !s.Ready() {
		return Record{}, pkgerrors.New(pkgerrors.CodeUnavailable, "local quotation store not configured")
	}
	var row models.LocalQuotation
	err := s.DB(ctx).
		Where("id = ? OR cot_number = ?", idOrNumber, idOrNumber).
		Order("sort_key DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "quotation %s not found", idOrNumber)
	}
	if err != nil {
		return Record{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "get local quotation")
	}
	rec, err := Decode([]byte(row.Payload))
	if err != nil {
		return Record{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "quotation %s has no readable data", idOrNumber)
	}
	return rec, nil
}

func parseSavedAt(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
