package quotations

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mepex/cotizador-backend/internal/repo"
	"github.com/mepex/cotizador-backend/pkg/db/models"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"go.uber.org/multierr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sequenceTTL keeps a year's counter alive past the end of that year.
const sequenceTTL = 400 * 24 * time.Hour

// Counter is the shared atomic counter used for numbering.
type Counter interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	SequenceKey(scope string) string
}

// Sequencer issues quotation numbers of the form COT-{year}-{seq}, one
// sequence per year. The shared counter is preferred; the SQL table backs
// it when the counter is absent or failing.
type Sequencer struct {
	counter Counter
	db      repo.Base
	logg    *logger.Logger
}

func NewSequencer(counter Counter, db *gorm.DB, logg *logger.Logger) *Sequencer {
	return &Sequencer{counter: counter, db: repo.NewBase(db), logg: logg}
}

// FormatCotNumber renders a quotation number.
func FormatCotNumber(year int, seq int64) string {
	return fmt.Sprintf("COT-%d-%04d", year, seq)
}

// Next returns the next number for the year of now.
func (s *Sequencer) Next(ctx context.Context, now time.Time) (string, error) {
	year := now.Year()
	scope := strconv.Itoa(year)

	var errs error
	if s.counter != nil {
		n, err := s.counter.IncrWithTTL(ctx, s.counter.SequenceKey(scope), sequenceTTL)
		if err == nil {
			return FormatCotNumber(year, n), nil
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "quotation counter unavailable, using local sequence")
		errs = multierr.Append(errs, err)
	}

	if s.db.Ready() {
		n, err := s.nextLocal(ctx, scope, now)
		if err == nil {
			return FormatCotNumber(year, n), nil
		}
		errs = multierr.Append(errs, err)
	}

	if errs == nil {
		return "", pkgerrors.New(pkgerrors.CodeUnavailable, "no quotation sequence configured")
	}
	return "", pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "issue quotation number")
}

func (s *Sequencer) nextLocal(ctx context.Context, scope string, now time.Time) (int64, error) {
	var value int64
	err := s.db.Tx(ctx, func(tx *gorm.DB) error {
		row := models.QuotationSequence{Scope: scope, Value: 1, UpdatedAt: now.UTC()}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "scope"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value":      gorm.Expr("quotation_sequences.value + 1"),
				"updated_at": now.UTC(),
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.QuotationSequence{}).
			Select("value").
			Where("scope = ?", scope).
			Scan(&value).Error
	})
	return value, err
}
