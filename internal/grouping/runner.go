// internal/grouping/runner.go
// Batch group formation. One run loads eligible profiles, forms candidate
// groups and turns each into a group match. A failing group is logged and
// counted; it never aborts the run.

package grouping

import (
    "context"
    "fmt"
    "log"
    "sync"
    "time"

    "github.com/hyking/hyking-backend/internal/matching"
    "github.com/hyking/hyking-backend/internal/profile"
)

// ProfileSource loads the profiles eligible for grouping with their relations
type ProfileSource interface {
    ListEligible(ctx context.Context) ([]profile.Profile, error)
}

// PairSource lists active matches for the match chain strategy
type PairSource interface {
    ActivePairs(ctx context.Context) ([]matching.Pair, error)
}

// Notifier is told about proposed groups. Failures are logged only.
type Notifier interface {
    GroupProposed(ctx context.Context, groupMatchID, title string, members []string) error
}

// Runner executes formation passes. Runs never overlap.
type Runner struct {
    service  Service
    profiles ProfileSource
    pairs    PairSource
    notifier Notifier
    rules    Rules
    strategy string

    mu sync.Mutex
}

// NewRunner creates a batch runner
func NewRunner(service Service, profiles ProfileSource, pairs PairSource, notifier Notifier, rules Rules, strategy string) *Runner {
    if strategy == "" {
        strategy = StrategyCompatibility
    }
    return &Runner{
        service:  service,
        profiles: profiles,
        pairs:    pairs,
        notifier: notifier,
        rules:    rules,
        strategy: strategy,
    }
}

// Run performs one pass and returns its summary. An error means the pass
// could not start; per-group failures only show up in the counters.
func (r *Runner) Run(ctx context.Context) (*RunSummary, error) {
    if !r.mu.TryLock() {
        return nil, ErrRunInProgress
    }
    defer r.mu.Unlock()

    start := time.Now()
    summary := &RunSummary{Strategy: r.strategy, CreatedIDs: []string{}}

    eligible, err := r.profiles.ListEligible(ctx)
    if err != nil {
        RecordRun(r.strategy, "error", time.Since(start))
        return nil, fmt.Errorf("failed to load profiles: %w", err)
    }
    summary.Eligible = len(eligible)

    groups, leftovers, err := r.candidates(ctx, eligible)
    if err != nil {
        RecordRun(r.strategy, "error", time.Since(start))
        return nil, err
    }
    summary.Groups = len(groups)
    summary.Leftovers = leftovers

    log.Printf("👥 Group formation (%s): %d eligible profiles, %d candidate groups", r.strategy, summary.Eligible, summary.Groups)

    for i, group := range groups {
        if ctx.Err() != nil {
            log.Printf("Group formation cancelled after %d of %d groups", i, len(groups))
            break
        }

        id, outcome := r.process(ctx, group)
        RecordGroupOutcome(outcome)
        switch outcome {
        case "created":
            summary.Created++
            summary.CreatedIDs = append(summary.CreatedIDs, id)
        case "skipped":
            summary.Skipped++
        default:
            summary.Failed++
        }
    }

    summary.Duration = time.Since(start)
    RecordRun(r.strategy, "ok", summary.Duration)
    log.Printf("✅ Group formation done: %d created, %d skipped, %d failed in %v",
        summary.Created, summary.Skipped, summary.Failed, summary.Duration)

    return summary, nil
}

// candidates forms groups with the configured strategy and reports how many
// eligible profiles were left out
func (r *Runner) candidates(ctx context.Context, eligible []profile.Profile) ([]CompatibilityGroup, int, error) {
    if r.strategy != StrategyMatchChain {
        groups, rest := FormGroups(eligible, r.rules)
        return groups, len(rest), nil
    }

    pairs, err := r.pairs.ActivePairs(ctx)
    if err != nil {
        return nil, 0, fmt.Errorf("failed to load matches: %w", err)
    }

    byID := make(map[string]profile.Profile, len(eligible))
    for _, p := range eligible {
        byID[p.ID] = p
    }

    // only edges between eligible profiles take part
    usable := make([]matching.Pair, 0, len(pairs))
    for _, p := range pairs {
        _, ok1 := byID[p.User1ID]
        _, ok2 := byID[p.User2ID]
        if ok1 && ok2 {
            usable = append(usable, p)
        }
    }

    var groups []CompatibilityGroup
    placed := 0
    for _, chain := range FindMatchChains(usable, r.rules) {
        group := make(CompatibilityGroup, 0, len(chain))
        for _, id := range chain {
            group = append(group, byID[id])
        }
        groups = append(groups, group)
        placed += len(group)
    }
    return groups, len(eligible) - placed, nil
}

// process turns one candidate group into a group match and returns the
// outcome label
func (r *Runner) process(ctx context.Context, group CompatibilityGroup) (string, string) {
    ids := group.IDs()

    shared, err := r.service.AlreadyGrouped(ctx, ids)
    if err != nil {
        log.Printf("❌ Group %v: duplicate check failed: %v", ids, err)
        return "", "failed"
    }
    if shared {
        log.Printf("Group %v already shares a group match, skipping", ids)
        return "", "skipped"
    }

    act, err := r.service.FindSuitableActivity(ctx, group)
    if err != nil {
        log.Printf("❌ Group %v: activity lookup failed: %v", ids, err)
        return "", "failed"
    }
    if act == nil {
        min, max := DifficultyWindow(group, r.rules)
        log.Printf("⚠️  Group %v: no open activity with difficulty %d-%d, skipping", ids, min, max)
        return "", "skipped"
    }

    gm, err := r.service.CreateGroupMatch(ctx, ids, act.ID, CreateOptions{})
    if err != nil {
        log.Printf("❌ Group %v: failed to create group match for activity %d: %v", ids, act.ID, err)
        return "", "failed"
    }

    if r.notifier != nil {
        if err := r.notifier.GroupProposed(ctx, gm.ID, act.Title, ids); err != nil {
            log.Printf("Failed to notify group match %s: %v", gm.ID, err)
        }
    }
    return gm.ID, "created"
}
