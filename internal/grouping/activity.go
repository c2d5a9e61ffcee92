// internal/grouping/activity.go

package grouping

import (
    "context"
    "math"

    "github.com/hyking/hyking-backend/internal/activity"
)

// ActivityFinder is the part of the activity catalog group formation needs
type ActivityFinder interface {
    GetActivity(ctx context.Context, id int64) (*activity.Activity, error)
    FirstOpenInDifficultyRange(ctx context.Context, min, max int) (*activity.Activity, error)
}

// AverageExperience averages every experience skill level rated by the
// group's members. It is 0 when nobody rated one.
func AverageExperience(group CompatibilityGroup) float64 {
    sum, n := 0, 0
    for _, p := range group {
        for _, level := range p.ExperienceLevels() {
            sum += level
            n++
        }
    }
    if n == 0 {
        return 0
    }
    return float64(sum) / float64(n)
}

// DifficultyWindow returns the inclusive difficulty range a group can take on
func DifficultyWindow(group CompatibilityGroup, rules Rules) (int, int) {
    e := AverageExperience(group)
    return int(math.Floor(e)), int(math.Ceil(e)) + rules.DifficultySpan
}

// FindSuitableActivity returns the lowest-id open activity inside the group's
// difficulty window, or nil when there is none
func FindSuitableActivity(ctx context.Context, finder ActivityFinder, group CompatibilityGroup, rules Rules) (*activity.Activity, error) {
    min, max := DifficultyWindow(group, rules)
    return finder.FirstOpenInDifficultyRange(ctx, min, max)
}
