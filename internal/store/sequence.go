package store

import (
	"context"

	"github.com/diewo77/go-schools/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NextSequenceValue atomically increments the (kind, scope) counter and returns
// the new value, starting at 1. Concurrent callers always get distinct values;
// a serialization failure or lock timeout comes back as ErrConflict.
func (s *Store) NextSequenceValue(ctx context.Context, kind models.SequenceKind, scope string) (int64, error) {
	var next int64
	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		tx := s.conn(ctx)
		for attempt := 0; attempt < 2; attempt++ {
			seq := models.Sequence{}
			res := tx.Model(&seq).
				Clauses(clause.Returning{Columns: []clause.Column{{Name: "last_value"}}}).
				Where("kind = ? AND scope = ?", kind, scope).
				Update("last_value", gorm.Expr("last_value + 1"))
			if res.Error != nil {
				return classify(res.Error)
			}
			if res.RowsAffected > 0 {
				if seq.LastValue == 0 {
					if err := tx.Where("kind = ? AND scope = ?", kind, scope).First(&seq).Error; err != nil {
						return classify(err)
					}
				}
				next = seq.LastValue
				return nil
			}

			// First value of the series. A concurrent insert wins the race
			// silently and the update above is retried.
			seq = models.Sequence{Kind: kind, Scope: scope, LastValue: 1}
			res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq)
			if res.Error != nil {
				return classify(res.Error)
			}
			if res.RowsAffected > 0 {
				next = 1
				return nil
			}
		}
		return ErrConflict
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
