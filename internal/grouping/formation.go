// internal/grouping/formation.go

package grouping

import "github.com/hyking/hyking-backend/internal/profile"

// formation is the state threaded through the greedy pass
type formation struct {
    used   map[string]bool
    groups []CompatibilityGroup
}

// FormGroups partitions profiles into compatibility groups in one
// deterministic greedy pass over the input order. Each unused profile seeds a
// group and pulls in later unused profiles compatible with it until the group
// holds rules.MaxSize members. Groups below rules.MinSize are dropped and
// their members stay used for this pass. Leftovers are the input profiles
// that ended up in no kept group, in input order.
func FormGroups(profiles []profile.Profile, rules Rules) ([]CompatibilityGroup, []profile.Profile) {
    eligible := make([]profile.Profile, 0, len(profiles))
    for _, p := range profiles {
        if p.EligibleForGrouping() {
            eligible = append(eligible, p)
        }
    }

    state := formation{used: make(map[string]bool, len(eligible))}
    if len(eligible) >= rules.MinSize {
        for i := range eligible {
            state = state.seed(eligible, i, rules)
        }
    }

    return state.groups, leftovers(profiles, state.groups)
}

// seed grows a group from eligible[i] and returns the next state
func (f formation) seed(eligible []profile.Profile, i int, rules Rules) formation {
    seed := eligible[i]
    if f.used[seed.ID] {
        return f
    }
    f.used[seed.ID] = true

    group := CompatibilityGroup{seed}
    for j := i + 1; j < len(eligible) && len(group) < rules.MaxSize; j++ {
        candidate := eligible[j]
        if f.used[candidate.ID] || !Compatible(seed, candidate, rules) {
            continue
        }
        f.used[candidate.ID] = true
        group = append(group, candidate)
    }

    if len(group) >= rules.MinSize {
        f.groups = append(f.groups, group)
    }
    return f
}

func leftovers(profiles []profile.Profile, groups []CompatibilityGroup) []profile.Profile {
    placed := make(map[string]bool)
    for _, g := range groups {
        for _, p := range g {
            placed[p.ID] = true
        }
    }

    rest := make([]profile.Profile, 0, len(profiles))
    for _, p := range profiles {
        if !placed[p.ID] {
            rest = append(rest, p)
        }
    }
    return rest
}
