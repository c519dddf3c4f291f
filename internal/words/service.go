// Package words assembles the daily word batch for a user.
package words

import (
	"context"
	"fmt"
	"time"

	"github.com/example/vocabot/pkg/models"
)

// Catalog supplies random word selections from the word catalog.
type Catalog interface {
	GetRandomUnassigned(ctx context.Context, userID int64, limit int) ([]models.Word, error)
	GetRandomUnlearnedAssigned(ctx context.Context, userID int64, limit int) ([]models.Word, error)
}

// Assigner binds words to a user's learning cycle.
type Assigner interface {
	Assign(ctx context.Context, userID, wordID int64, assignedAt time.Time) error
}

// Service hands out the daily batch.
type Service struct {
	catalog     Catalog
	assignments Assigner
	batchSize   int
	now         func() time.Time
}

// NewService creates a batch service delivering batchSize words per day.
func NewService(catalog Catalog, assignments Assigner, batchSize int) *Service {
	return &Service{
		catalog:     catalog,
		assignments: assignments,
		batchSize:   batchSize,
		now:         time.Now,
	}
}

// DailyBatch selects the user's batch for today and assigns every returned
// word, resetting any previous progress on it. Selection order: words never
// assigned to the user first, then the user's still-unlearned assigned words
// to fill the remainder. An empty result means the catalog is exhausted for
// this user; that is a benign terminal condition, not an error.
func (s *Service) DailyBatch(ctx context.Context, userID int64) ([]models.Word, error) {
	batch, err := s.catalog.GetRandomUnassigned(ctx, userID, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to select new words: %v", err)
	}

	if len(batch) < s.batchSize {
		fill, err := s.catalog.GetRandomUnlearnedAssigned(ctx, userID, s.batchSize-len(batch))
		if err != nil {
			return nil, fmt.Errorf("failed to select unlearned words: %v", err)
		}
		batch = append(batch, fill...)
	}

	if len(batch) == 0 {
		return nil, nil
	}

	assignedAt := s.now()
	for _, w := range batch {
		if err := s.assignments.Assign(ctx, userID, w.ID, assignedAt); err != nil {
			return nil, fmt.Errorf("failed to assign word %d: %v", w.ID, err)
		}
	}

	return batch, nil
}
