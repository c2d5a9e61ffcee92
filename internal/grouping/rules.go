// internal/grouping/rules.go

package grouping

import (
    "github.com/hyking/hyking-backend/internal/config"
    "github.com/hyking/hyking-backend/internal/profile"
)

const (
    StrategyCompatibility = "compatibility"
    StrategyMatchChain    = "match_chain"
)

// Rules parameterize group formation
type Rules struct {
    AgeThreshold       int
    MaxSkillGap        int
    MinSharedInterests int
    MinSize            int
    MaxSize            int
    DifficultySpan     int
}

// DefaultRules returns the production defaults
func DefaultRules() Rules {
    return Rules{
        AgeThreshold:       5,
        MaxSkillGap:        1,
        MinSharedInterests: 2,
        MinSize:            3,
        MaxSize:            4,
        DifficultySpan:     10,
    }
}

// RulesFromConfig reads the group settings from cfg
func RulesFromConfig(cfg *config.Config) Rules {
    return Rules{
        AgeThreshold:       cfg.GroupAgeThreshold,
        MaxSkillGap:        cfg.GroupMaxSkillGap,
        MinSharedInterests: cfg.GroupMinSharedInterest,
        MinSize:            cfg.GroupMinSize,
        MaxSize:            cfg.GroupMaxSize,
        DifficultySpan:     cfg.GroupDifficultySpan,
    }
}

// Compatible applies the three checks conjunctively: age gap within the
// threshold, every skill rated by both within MaxSkillGap levels, and at
// least MinSharedInterests interests in common.
func Compatible(p, q profile.Profile, rules Rules) bool {
    if p.Age == nil || q.Age == nil {
        return false
    }
    if abs(*p.Age-*q.Age) > rules.AgeThreshold {
        return false
    }

    theirs := q.SkillLevels()
    for skill, level := range p.SkillLevels() {
        if other, ok := theirs[skill]; ok && abs(level-other) > rules.MaxSkillGap {
            return false
        }
    }

    return sharedInterests(p, q) >= rules.MinSharedInterests
}

func sharedInterests(p, q profile.Profile) int {
    mine := make(map[string]struct{}, len(p.Interests))
    for _, id := range p.InterestIDs() {
        mine[id] = struct{}{}
    }

    shared := 0
    for _, id := range q.InterestIDs() {
        if _, ok := mine[id]; ok {
            shared++
            delete(mine, id)
        }
    }
    return shared
}

func abs(v int) int {
    if v < 0 {
        return -v
    }
    return v
}
