package models

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type Goal string

const (
	GoalLoseWeight Goal = "lose_weight"
	GoalMaintain   Goal = "maintain"
	GoalGainMuscle Goal = "gain_muscle"
)

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "lightly_active"
	ActivityModerate   ActivityLevel = "moderately_active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// Field bounds shared by the onboarding wizard and the profile edit surface.
const (
	AgeMin    = 15
	AgeMax    = 100
	HeightMin = 100
	HeightMax = 250
	WeightMin = 30.0
	WeightMax = 300.0

	MinPasswordLength = 8
)

// Profile is the persisted entity. The JSON tags are the wire contract of the
// remote record store and must round-trip unchanged.
type Profile struct {
	ID                  string        `json:"id"`
	Email               string        `json:"email"`
	Age                 int           `json:"age"`
	Height              int           `json:"height"`
	Weight              float64       `json:"weight"`
	Gender              Gender        `json:"gender"`
	Goal                Goal          `json:"goal"`
	ActivityLevel       ActivityLevel `json:"activityLevel"`
	OnboardingCompleted bool          `json:"onboardingCompleted"`
}

// NewDefaultProfile is the profile created right after a successful
// registration, before onboarding has collected anything.
func NewDefaultProfile(id, email string) *Profile {
	return &Profile{
		ID:            id,
		Email:         email,
		Gender:        GenderMale,
		Goal:          GoalLoseWeight,
		ActivityLevel: ActivitySedentary,
	}
}

func ValidGender(g Gender) bool {
	return g == GenderMale || g == GenderFemale
}

func ValidGoal(g Goal) bool {
	return g == GoalLoseWeight || g == GoalMaintain || g == GoalGainMuscle
}

func ValidActivityLevel(a ActivityLevel) bool {
	switch a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityVeryActive:
		return true
	}
	return false
}
