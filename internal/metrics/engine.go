package metrics

import (
	"github.com/saeid-a/FitProfileSync/internal/models"
)

// activityMultipliers is the single source of truth for TDEE scaling per
// activity level. Unknown levels fall back to sedentary.
var activityMultipliers = map[models.ActivityLevel]float64{
	models.ActivitySedentary:  1.2,
	models.ActivityLight:      1.375,
	models.ActivityModerate:   1.55,
	models.ActivityVeryActive: 1.725,
}

const minDailyCalories = 1200

type BMIClass string

const (
	BMIUnderweight BMIClass = "underweight"
	BMINormal      BMIClass = "normal"
	BMIOverweight  BMIClass = "overweight"
	BMIObese       BMIClass = "obese"
)

// BMR computes basal metabolic rate via Mifflin-St Jeor.
func BMR(weightKG float64, heightCM int, age int, gender models.Gender) float64 {
	base := 10*weightKG + 6.25*float64(heightCM) - 5*float64(age)
	if gender == models.GenderMale {
		return base + 5
	}
	return base - 161
}

func ActivityMultiplier(level models.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return 1.2
}

func TDEE(bmr float64, level models.ActivityLevel) float64 {
	return bmr * ActivityMultiplier(level)
}

// DailyCalorieGoal adjusts TDEE for the user's goal, truncates to an integer
// and never goes below the 1200 kcal floor.
func DailyCalorieGoal(tdee float64, goal models.Goal) int {
	switch goal {
	case models.GoalLoseWeight:
		tdee -= 500
	case models.GoalGainMuscle:
		tdee += 300
	}
	calories := int(tdee)
	if calories < minDailyCalories {
		return minDailyCalories
	}
	return calories
}

func BMI(weightKG float64, heightCM int) float64 {
	heightM := float64(heightCM) / 100
	return weightKG / (heightM * heightM)
}

func ClassifyBMI(bmi float64) BMIClass {
	switch {
	case bmi < 18.5:
		return BMIUnderweight
	case bmi < 25.0:
		return BMINormal
	case bmi < 30.0:
		return BMIOverweight
	default:
		return BMIObese
	}
}

// ComputeAll derives the integer triple exposed alongside a profile.
func ComputeAll(p *models.Profile) (bmr int, tdee int, dailyGoal int) {
	bmrF := BMR(p.Weight, p.Height, p.Age, p.Gender)
	tdeeF := TDEE(bmrF, p.ActivityLevel)
	return int(bmrF), int(tdeeF), DailyCalorieGoal(tdeeF, p.Goal)
}
