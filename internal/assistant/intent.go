// internal/assistant/intent.go

package assistant

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "regexp"
    "strings"
)

const categorizePrompt = `You sort messages sent to the assistant of a hiking app.
Answer with exactly one category name and nothing else:
- hike_recommendation: the user asks for a hike, route or tour to do
- general_chat: anything else, including other questions about hiking

Message: %s`

const filtersPrompt = `Extract hike preferences from the message below.
Return ONLY a JSON object with these optional keys:
- "region" (string, a place or region name)
- "difficulty" (integer 1-3 where 1 is easy, 2 is medium, 3 is hard)
- "fitness_level" (one of "beginner", "intermediate", "advanced")
Leave out keys that the message does not mention.

Message: %s`

var recommendationKeywords = []string{
    "recommend", "suggest", "hike", "hiking", "trail", "route", "tour", "walk", "trek",
}

var askingWords = []string{
    "recommend", "suggest", "find", "looking for", "show me", "where", "which", "any ", "want", "need",
}

// ClassifyIntent decides whether text asks for hike recommendations.
// It falls back to keyword matching when llm is nil or fails.
func ClassifyIntent(ctx context.Context, llm LLM, text string) Intent {
    if llm != nil {
        answer, err := llm.Generate(ctx, fmt.Sprintf(categorizePrompt, text))
        if err == nil {
            switch Intent(strings.ToLower(strings.Trim(strings.TrimSpace(answer), "'\"."))) {
            case IntentHikeRecommendation:
                return IntentHikeRecommendation
            case IntentGeneralChat:
                return IntentGeneralChat
            }
            log.Printf("⚠️ Unexpected intent answer %q, using keywords", answer)
        } else {
            log.Printf("⚠️ Intent classification unavailable, using keywords: %v", err)
        }
    }
    return keywordIntent(text)
}

func keywordIntent(text string) Intent {
    lower := strings.ToLower(text)
    if containsAny(lower, recommendationKeywords) && containsAny(lower, askingWords) {
        return IntentHikeRecommendation
    }
    return IntentGeneralChat
}

// ExtractFilters pulls region, difficulty and fitness level out of text.
// Values the model leaves out are filled from keywords.
func ExtractFilters(ctx context.Context, llm LLM, text string) Filters {
    fallback := keywordFilters(text)
    if llm == nil {
        return fallback
    }

    answer, err := llm.Generate(ctx, fmt.Sprintf(filtersPrompt, text))
    if err != nil {
        log.Printf("⚠️ Filter extraction unavailable, using keywords: %v", err)
        return fallback
    }

    var parsed Filters
    if err := json.Unmarshal([]byte(stripCodeFence(answer)), &parsed); err != nil {
        log.Printf("⚠️ Filter answer was not valid JSON: %q", answer)
        return fallback
    }

    return mergeFilters(normalizeFilters(parsed), fallback)
}

func normalizeFilters(f Filters) Filters {
    f.Region = strings.TrimSpace(f.Region)
    if strings.EqualFold(f.Region, "none") || strings.EqualFold(f.Region, "null") {
        f.Region = ""
    }
    if f.Difficulty < 1 || f.Difficulty > 3 {
        f.Difficulty = 0
    }
    f.FitnessLevel = strings.ToLower(strings.TrimSpace(f.FitnessLevel))
    switch f.FitnessLevel {
    case FitnessBeginner, FitnessIntermediate, FitnessAdvanced:
    default:
        f.FitnessLevel = ""
    }
    return f
}

func mergeFilters(primary, fallback Filters) Filters {
    if primary.Region == "" {
        primary.Region = fallback.Region
    }
    if primary.Difficulty == 0 {
        primary.Difficulty = fallback.Difficulty
    }
    if primary.FitnessLevel == "" {
        primary.FitnessLevel = fallback.FitnessLevel
    }
    return primary
}

var (
    difficultyWords = map[int][]string{
        1: {"easy", "gentle", "relaxed", "leisurely", "beginner-friendly"},
        2: {"medium", "moderate", "intermediate"},
        3: {"hard", "difficult", "challenging", "strenuous", "tough", "demanding"},
    }

    fitnessWords = map[string][]string{
        FitnessBeginner:     {"beginner", "not very fit", "unfit", "out of shape", "inexperienced", "new to hiking"},
        FitnessIntermediate: {"intermediate", "average fitness", "reasonably fit", "fairly fit"},
        FitnessAdvanced:     {"advanced", "very fit", "athletic", "experienced", "expert"},
    }

    regionPattern = regexp.MustCompile(`\b(?:in|near|around|at)\s+(?:the\s+)?([\p{Lu}][\p{L}\-]*(?:\s+[\p{Lu}][\p{L}\-]*)*)`)
)

func keywordFilters(text string) Filters {
    lower := strings.ToLower(text)
    var f Filters

    for level := 3; level >= 1; level-- {
        if containsAny(lower, difficultyWords[level]) {
            f.Difficulty = level
            break
        }
    }

    for _, level := range []string{FitnessBeginner, FitnessAdvanced, FitnessIntermediate} {
        if containsAny(lower, fitnessWords[level]) {
            f.FitnessLevel = level
            break
        }
    }

    if m := regionPattern.FindStringSubmatch(text); m != nil {
        f.Region = m[1]
    }
    return f
}

func containsAny(s string, words []string) bool {
    for _, w := range words {
        if strings.Contains(s, w) {
            return true
        }
    }
    return false
}
