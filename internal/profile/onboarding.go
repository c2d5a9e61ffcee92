// internal/profile/onboarding.go
// Onboarding wizard steps. Each step is its own type with its own
// validation; the client sends {kind, payload} and DecodeStep picks the type.

package profile

import (
    "encoding/json"
    "fmt"
    "strings"

    "github.com/hyking/hyking-backend/internal/common/errs"
    "github.com/hyking/hyking-backend/internal/common/utils"
)

// StepKind names an onboarding step
type StepKind string

const (
    StepBasicInfo   StepKind = "basic_info"
    StepInterests   StepKind = "interests"
    StepSkills      StepKind = "skills"
    StepMusic       StepKind = "music"
    StepPreferences StepKind = "preferences"
    StepComplete    StepKind = "complete"
)

// Step is one onboarding step
type Step interface {
    Kind() StepKind
    Validate() error
}

// BasicInfoStep collects the mandatory identity fields
type BasicInfoStep struct {
    DisplayName string  `json:"display_name" validate:"required,min=1,max=80"`
    Age         int     `json:"age" validate:"required,min=16,max=120"`
    Gender      *string `json:"gender,omitempty" validate:"omitempty,max=40"`
    Location    *string `json:"location,omitempty" validate:"omitempty,max=120"`
}

func (s *BasicInfoStep) Kind() StepKind { return StepBasicInfo }

func (s *BasicInfoStep) Validate() error {
    s.DisplayName = strings.TrimSpace(s.DisplayName)
    return utils.ValidateStruct(s)
}

// InterestsStep picks interests from the catalog
type InterestsStep struct {
    InterestIDs []string `json:"interest_ids" validate:"required,min=1,max=20,unique,dive,required"`
}

func (s *InterestsStep) Kind() StepKind { return StepInterests }

func (s *InterestsStep) Validate() error { return utils.ValidateStruct(s) }

// SkillsStep rates hiking skills
type SkillsStep struct {
    Skills []SkillSelection `json:"skills" validate:"required,min=1,max=10,dive"`
}

func (s *SkillsStep) Kind() StepKind { return StepSkills }

func (s *SkillsStep) Validate() error {
    if err := utils.ValidateStruct(s); err != nil {
        return err
    }
    seen := make(map[string]bool, len(s.Skills))
    for _, sel := range s.Skills {
        if seen[sel.SkillID] {
            return fmt.Errorf("skill %s rated twice", sel.SkillID)
        }
        seen[sel.SkillID] = true
    }
    return nil
}

// MusicStep carries manually picked artists. Spotify users skip it.
type MusicStep struct {
    Artists []ArtistInput `json:"artists" validate:"max=50,dive"`
}

func (s *MusicStep) Kind() StepKind { return StepMusic }

func (s *MusicStep) Validate() error { return utils.ValidateStruct(s) }

// PreferencesStep holds optional preferences
type PreferencesStep struct {
    DogFriendly bool    `json:"dog_friendly"`
    Phone       *string `json:"phone,omitempty" validate:"omitempty,e164"`
}

func (s *PreferencesStep) Kind() StepKind { return StepPreferences }

func (s *PreferencesStep) Validate() error { return utils.ValidateStruct(s) }

// CompleteStep finishes onboarding
type CompleteStep struct{}

func (s *CompleteStep) Kind() StepKind { return StepComplete }

func (s *CompleteStep) Validate() error { return nil }

// DecodeStep turns a raw payload into the step named by kind and validates it
func DecodeStep(kind string, payload json.RawMessage) (Step, error) {
    var step Step
    switch StepKind(kind) {
    case StepBasicInfo:
        step = &BasicInfoStep{}
    case StepInterests:
        step = &InterestsStep{}
    case StepSkills:
        step = &SkillsStep{}
    case StepMusic:
        step = &MusicStep{}
    case StepPreferences:
        step = &PreferencesStep{}
    case StepComplete:
        return &CompleteStep{}, nil
    default:
        return nil, fmt.Errorf("%w: unknown onboarding step %q", errs.ErrInvalidArgument, kind)
    }

    if len(payload) == 0 {
        payload = json.RawMessage("{}")
    }
    if err := json.Unmarshal(payload, step); err != nil {
        return nil, fmt.Errorf("%w: malformed %s payload", errs.ErrInvalidArgument, kind)
    }
    if err := step.Validate(); err != nil {
        return nil, fmt.Errorf("%w: %v", errs.ErrInvalidArgument, err)
    }
    return step, nil
}
