package draws

import (
	"math/rand/v2"
	"slices"
	"time"
)

// Placeholder ball range used by Generate.
const (
	MinBall      = 1
	MaxBall      = 59
	BallsPerDraw = 6
)

// Generate builds limit placeholder draws so a response is never empty. The
// first is dated on the latest target weekday on or before ref, each next one
// exactly a week earlier. Numbers are six distinct sorted balls and a bonus
// ball distinct from them. A nil rng uses a randomly seeded source.
func Generate(limit int, target time.Weekday, ref time.Time, rng *rand.Rand) []Record {
	if limit <= 0 {
		return []Record{}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	ref = ref.UTC()
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	day = day.AddDate(0, 0, -((int(day.Weekday()) - int(target) + 7) % 7))

	out := make([]Record, 0, limit)
	for range limit {
		perm := rng.Perm(MaxBall - MinBall + 1)
		nums := make([]int, BallsPerDraw)
		for j := range nums {
			nums[j] = perm[j] + MinBall
		}
		slices.Sort(nums)
		out = append(out, Record{
			Date:        FormatDate(day),
			BonusNumber: perm[BallsPerDraw] + MinBall,
			Numbers:     nums,
		})
		day = day.AddDate(0, 0, -7)
	}
	return out
}
