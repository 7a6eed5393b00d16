// Package seed generates synthetic demo slots so a fresh calendar is not
// empty. Synthetic slots belong to a fixed demo roster, are visible to
// everyone, and are exempt from the owner overlap invariant.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/slotboard/slotboard/internal/model"
	"github.com/slotboard/slotboard/internal/repository"
)

// hourLongChance is the probability of merging two adjacent half-hour
// blocks into one longer slot.
const hourLongChance = 0.3

type block struct {
	start, end model.TimeOfDay
}

// timeBlocks is the half-hour grid demo slots are drawn from, with a lunch
// gap between 12:00 and 13:00.
var timeBlocks = []block{
	{model.NewTimeOfDay(9, 0), model.NewTimeOfDay(9, 30)},
	{model.NewTimeOfDay(9, 30), model.NewTimeOfDay(10, 0)},
	{model.NewTimeOfDay(10, 0), model.NewTimeOfDay(10, 30)},
	{model.NewTimeOfDay(10, 30), model.NewTimeOfDay(11, 0)},
	{model.NewTimeOfDay(11, 0), model.NewTimeOfDay(11, 30)},
	{model.NewTimeOfDay(11, 30), model.NewTimeOfDay(12, 0)},
	{model.NewTimeOfDay(13, 0), model.NewTimeOfDay(13, 30)},
	{model.NewTimeOfDay(13, 30), model.NewTimeOfDay(14, 0)},
	{model.NewTimeOfDay(14, 0), model.NewTimeOfDay(14, 30)},
	{model.NewTimeOfDay(14, 30), model.NewTimeOfDay(15, 0)},
	{model.NewTimeOfDay(15, 0), model.NewTimeOfDay(15, 30)},
	{model.NewTimeOfDay(15, 30), model.NewTimeOfDay(16, 0)},
	{model.NewTimeOfDay(16, 0), model.NewTimeOfDay(16, 30)},
	{model.NewTimeOfDay(16, 30), model.NewTimeOfDay(17, 0)},
	{model.NewTimeOfDay(17, 0), model.NewTimeOfDay(17, 30)},
	{model.NewTimeOfDay(17, 30), model.NewTimeOfDay(18, 0)},
}

var demoUsers = []struct {
	ID   string
	Name string
}{
	{"demo_mira", "Mira Chen"},
	{"demo_jonas", "Jonas Weber"},
	{"demo_priya", "Priya Nair"},
	{"demo_tomas", "Tomas Silva"},
	{"demo_aisha", "Aisha Diallo"},
	{"demo_erik", "Erik Lindqvist"},
	{"demo_lucia", "Lucia Romano"},
	{"demo_kenji", "Kenji Watanabe"},
}

// Seeder is the seeding collaborator. It talks to the store directly and
// bypasses the overlap validator by design: synthetic slots carry no
// availability promise.
type Seeder struct {
	store  repository.SlotStore
	logger *zap.Logger
	rng    *rand.Rand
}

// New creates a seeder. A nil rng gets a time-seeded source; tests inject a
// fixed seed for deterministic output.
func New(store repository.SlotStore, logger *zap.Logger, rng *rand.Rand) *Seeder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Seeder{store: store, logger: logger, rng: rng}
}

// Reseed drops all synthetic slots and generates a fresh demo set covering
// days consecutive days starting at start. Each demo user gets one or two
// slots per day drawn from the block grid, occasionally doubled in length
// when the next block is adjacent. Returns the number of slots created.
func (s *Seeder) Reseed(ctx context.Context, start model.Date, days int) (int, error) {
	removed, err := s.store.DeleteByOrigin(ctx, model.SlotOriginSynthetic)
	if err != nil {
		return 0, fmt.Errorf("clear synthetic slots: %w", err)
	}

	var drafts []model.SlotDraft
	for day := 0; day < days; day++ {
		date := start.AddDays(day)
		available := make([]block, len(timeBlocks))
		copy(available, timeBlocks)

		for _, user := range demoUsers {
			slots := 1 + s.rng.Intn(2)
			for i := 0; i < slots && len(available) > 0; i++ {
				idx := s.rng.Intn(len(available))
				picked := available[idx]
				end := picked.end

				if s.rng.Float64() < hourLongChance &&
					idx+1 < len(available) && available[idx+1].start == picked.end {
					end = available[idx+1].end
					available = append(available[:idx], available[idx+2:]...)
				} else {
					available = append(available[:idx], available[idx+1:]...)
				}

				drafts = append(drafts, model.SlotDraft{
					OwnerID:   user.ID,
					OwnerName: user.Name,
					Date:      date,
					StartTime: picked.start,
					EndTime:   end,
					Timezone:  "UTC",
					Origin:    model.SlotOriginSynthetic,
				})
			}
		}
	}

	created, err := s.store.BulkInsert(ctx, drafts)
	if err != nil {
		return 0, fmt.Errorf("insert synthetic slots: %w", err)
	}

	s.logger.Info("Demo slots reseeded",
		zap.String("start", start.String()),
		zap.Int("days", days),
		zap.Int64("removed", removed),
		zap.Int("created", len(created)))

	return len(created), nil
}
