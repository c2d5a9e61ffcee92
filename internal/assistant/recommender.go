// internal/assistant/recommender.go

package assistant

import (
    "sort"
    "strings"

    "github.com/hyking/hyking-backend/internal/activity"
)

const (
    regionWeight     = 0.5
    difficultyWeight = 0.3
    fitnessWeight    = 0.2

    // TopHikes is how many hikes one answer carries
    TopHikes = 5
)

// RegionScore is 100 when the activity's region equals the wanted one,
// 50 when one contains the other and 0 otherwise
func RegionScore(wanted string, a *activity.Activity) float64 {
    wanted = strings.ToLower(strings.TrimSpace(wanted))
    region := strings.ToLower(strings.TrimSpace(a.Region()))
    if wanted == "" || region == "" {
        return 0
    }
    if wanted == region {
        return 100
    }
    if strings.Contains(region, wanted) || strings.Contains(wanted, region) {
        return 50
    }
    return 0
}

// DifficultyScore is 100 for an exact match and 50 when one level off
func DifficultyScore(wanted, actual int) float64 {
    if wanted == 0 || actual == 0 {
        return 0
    }
    switch diff := wanted - actual; {
    case diff == 0:
        return 100
    case diff == 1 || diff == -1:
        return 50
    }
    return 0
}

// FitnessLevelFor derives the fitness a hike asks for from its stamina
// rating. Unrated hikes have no level.
func FitnessLevelFor(a *activity.Activity) string {
    if a.StaminaRating == nil {
        return ""
    }
    switch r := *a.StaminaRating; {
    case r <= 0:
        return ""
    case r <= 2:
        return FitnessBeginner
    case r <= 4:
        return FitnessIntermediate
    default:
        return FitnessAdvanced
    }
}

func fitnessScore(wanted string, a *activity.Activity) float64 {
    level := FitnessLevelFor(a)
    if wanted == "" || level == "" {
        return 0
    }
    if wanted == level {
        return 100
    }
    return 0
}

// Score weighs region, difficulty and fitness fit of one hike
func Score(f Filters, a *activity.Activity) float64 {
    return RegionScore(f.Region, a)*regionWeight +
        DifficultyScore(f.Difficulty, a.Difficulty)*difficultyWeight +
        fitnessScore(f.FitnessLevel, a)*fitnessWeight
}

// Recommend returns the n best scoring open activities. Ties keep the
// lower id first. With any filter set, hikes scoring 0 are left out.
func Recommend(f Filters, activities []*activity.Activity, n int) []Recommendation {
    scored := make([]Recommendation, 0, len(activities))
    for _, a := range activities {
        if a == nil || !a.Open() {
            continue
        }
        score := Score(f, a)
        if score == 0 && !f.Empty() {
            continue
        }
        scored = append(scored, newRecommendation(a, score))
    }

    sort.SliceStable(scored, func(i, j int) bool {
        if scored[i].Score != scored[j].Score {
            return scored[i].Score > scored[j].Score
        }
        return scored[i].ActivityID < scored[j].ActivityID
    })

    if len(scored) > n {
        scored = scored[:n]
    }
    return scored
}
