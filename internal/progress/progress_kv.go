package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pot-code/course-gate/internal/domain"
	"github.com/pot-code/course-gate/internal/infrastructure/driver"
)

// ProgressKV records stored as JSON documents under progress:<userID>:<courseID>, without expiration
type ProgressKV struct {
	KV driver.KeyValueDB
}

var _ ProgressRepository = &ProgressKV{}

func NewProgressRepository(KV driver.KeyValueDB) *ProgressKV {
	return &ProgressKV{KV}
}

func progressKey(userID, courseID string) string {
	return fmt.Sprintf("progress:%s:%s", userID, courseID)
}

func (repo *ProgressKV) Get(ctx context.Context, userID, courseID string) (*domain.ProgressRecord, error) {
	value, err := repo.KV.Get(ctx, progressKey(userID, courseID))
	if errors.Is(err, driver.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrStorageUnavailable, err)
	}

	rec := new(domain.ProgressRecord)
	if err := json.Unmarshal([]byte(value), rec); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %s", domain.ErrStorageUnavailable, progressKey(userID, courseID), err)
	}
	// keys are authoritative over the stored document
	rec.UserID, rec.CourseID = userID, courseID
	return rec.Normalize(), nil
}

func (repo *ProgressKV) Save(ctx context.Context, rec *domain.ProgressRecord) error {
	value, err := json.Marshal(rec.Normalize())
	if err != nil {
		return err
	}
	if err := repo.KV.Set(ctx, progressKey(rec.UserID, rec.CourseID), string(value)); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrStorageUnavailable, err)
	}
	return nil
}
