package metrics

import (
	"math"
	"testing"

	"github.com/saeid-a/FitProfileSync/internal/models"
)

func TestBMRMifflinStJeor(t *testing.T) {
	got := BMR(70, 175, 30, models.GenderMale)
	if got != 1648.75 {
		t.Fatalf("expected male BMR 1648.75, got %v", got)
	}

	got = BMR(70, 175, 30, models.GenderFemale)
	if got != 1482.75 {
		t.Fatalf("expected female BMR 1482.75, got %v", got)
	}
}

func TestActivityMultiplierDefaultsToSedentary(t *testing.T) {
	cases := map[models.ActivityLevel]float64{
		models.ActivitySedentary:  1.2,
		models.ActivityLight:      1.375,
		models.ActivityModerate:   1.55,
		models.ActivityVeryActive: 1.725,
		"couch_potato":            1.2,
	}
	for level, want := range cases {
		if got := ActivityMultiplier(level); got != want {
			t.Fatalf("multiplier for %q: expected %v, got %v", level, want, got)
		}
	}
}

func TestDailyCalorieGoalClampsToFloor(t *testing.T) {
	if got := DailyCalorieGoal(1000, models.GoalLoseWeight); got != 1200 {
		t.Fatalf("expected 1200 kcal floor, got %d", got)
	}
}

func TestDailyCalorieGoalPerGoal(t *testing.T) {
	if got := DailyCalorieGoal(2000, models.GoalGainMuscle); got != 2300 {
		t.Fatalf("expected 2300, got %d", got)
	}
	if got := DailyCalorieGoal(2000, models.GoalMaintain); got != 2000 {
		t.Fatalf("expected 2000, got %d", got)
	}
	if got := DailyCalorieGoal(2000, "unknown"); got != 2000 {
		t.Fatalf("expected unknown goal to keep TDEE, got %d", got)
	}
}

func TestBMIAndClassification(t *testing.T) {
	bmi := BMI(70, 175)
	if math.Abs(bmi-22.857) > 0.001 {
		t.Fatalf("expected BMI ~22.857, got %v", bmi)
	}
	if got := ClassifyBMI(bmi); got != BMINormal {
		t.Fatalf("expected normal, got %q", got)
	}

	classes := map[float64]BMIClass{
		16.0: BMIUnderweight,
		18.5: BMINormal,
		24.9: BMINormal,
		25.0: BMIOverweight,
		29.9: BMIOverweight,
		30.0: BMIObese,
	}
	for bmi, want := range classes {
		if got := ClassifyBMI(bmi); got != want {
			t.Fatalf("classify %v: expected %q, got %q", bmi, want, got)
		}
	}
}

func TestComputeAllTruncates(t *testing.T) {
	profile := &models.Profile{
		Age:           30,
		Height:        175,
		Weight:        70,
		Gender:        models.GenderMale,
		Goal:          models.GoalMaintain,
		ActivityLevel: models.ActivitySedentary,
	}
	bmr, tdee, goal := ComputeAll(profile)
	if bmr != 1648 {
		t.Fatalf("expected truncated BMR 1648, got %d", bmr)
	}
	if tdee != 1978 {
		t.Fatalf("expected truncated TDEE 1978, got %d", tdee)
	}
	if goal != 1978 {
		t.Fatalf("expected maintain goal 1978, got %d", goal)
	}
}
