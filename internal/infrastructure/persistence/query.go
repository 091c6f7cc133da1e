package persistence

import (
	"errors"

	"gorm.io/gorm"

	"github.com/t1tandr/uevent/internal/domain/shared"
)

// findOne loads the first row of query into M and converts it with toDomain.
// A missing row is shared.ErrNotFound.
func findOne[M, D any](query *gorm.DB, toDomain func(*M) D, conds ...any) (D, error) {
	var model M
	if err := query.First(&model, conds...).Error; err != nil {
		var zero D
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return zero, shared.ErrNotFound
		}
		return zero, err
	}
	return toDomain(&model), nil
}
