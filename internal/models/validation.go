package models

import "fmt"

// ValidationError is raised client-side, before anything reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateAge(age int) *ValidationError {
	if age < AgeMin || age > AgeMax {
		return &ValidationError{
			Field:   "age",
			Message: fmt.Sprintf("age must be between %d and %d", AgeMin, AgeMax),
		}
	}
	return nil
}

func ValidateHeight(height int) *ValidationError {
	if height < HeightMin || height > HeightMax {
		return &ValidationError{
			Field:   "height",
			Message: fmt.Sprintf("height must be between %d and %d cm", HeightMin, HeightMax),
		}
	}
	return nil
}

func ValidateWeight(weight float64) *ValidationError {
	if weight < WeightMin || weight > WeightMax {
		return &ValidationError{
			Field:   "weight",
			Message: fmt.Sprintf("weight must be between %.1f and %.1f kg", WeightMin, WeightMax),
		}
	}
	return nil
}

func ValidateGoal(goal Goal) *ValidationError {
	if !ValidGoal(goal) {
		return &ValidationError{
			Field:   "goal",
			Message: "goal must be one of: lose_weight, maintain, gain_muscle",
		}
	}
	return nil
}

func ValidateActivityLevel(level ActivityLevel) *ValidationError {
	if !ValidActivityLevel(level) {
		return &ValidationError{
			Field:   "activityLevel",
			Message: "activity level must be one of: sedentary, lightly_active, moderately_active, very_active",
		}
	}
	return nil
}
