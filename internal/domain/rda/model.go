package rda

import (
	"errors"
	"fmt"
	"strings"
)

// Gender selects the sex specific RDA branches.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ActivityLevel scales the daily calorie target.
type ActivityLevel string

const (
	ActivityNone     ActivityLevel = ""
	ActivityLow      ActivityLevel = "low"
	ActivityModerate ActivityLevel = "moderate"
	ActivityHigh     ActivityLevel = "high"
)

// Profile holds the body metrics a calculation runs against.
type Profile struct {
	Gender   Gender        `json:"gender"`
	Age      int           `json:"age"`
	HeightCm float64       `json:"heightCm"`
	WeightKg float64       `json:"weightKg"`
	Pregnant bool          `json:"pregnant"`
	Activity ActivityLevel `json:"activity,omitempty"`
}

// Validate is used at the transport boundary; the calculator itself never re-validates.
func (p Profile) Validate() error {
	switch p.Gender {
	case GenderMale, GenderFemale:
	default:
		return fmt.Errorf("gender must be %q or %q", GenderMale, GenderFemale)
	}
	if p.Age < 0 {
		return errors.New("age cannot be negative")
	}
	if p.HeightCm <= 0 {
		return errors.New("heightCm must be positive")
	}
	if p.WeightKg <= 0 {
		return errors.New("weightKg must be positive")
	}
	if _, ok := activityMultipliers[p.Activity]; !ok {
		return fmt.Errorf("unknown activity level %q", p.Activity)
	}
	return nil
}

// Normalize lower-cases enum fields so "Female" and "female" are equal.
func (p Profile) Normalize() Profile {
	p.Gender = Gender(strings.ToLower(strings.TrimSpace(string(p.Gender))))
	p.Activity = ActivityLevel(strings.ToLower(strings.TrimSpace(string(p.Activity))))
	return p
}

// Targets are the per-day intake goals derived from a Profile.
type Targets struct {
	Calories  float64 `json:"calories"`
	ProteinG  float64 `json:"proteinG"`
	CalciumMg float64 `json:"calciumMg"`
	IronMg    float64 `json:"ironMg"`
	CarbsG    float64 `json:"carbsG"`
	FatG      float64 `json:"fatG"`
}

// WeightRange is an inclusive kilogram interval.
type WeightRange struct {
	MinKg float64 `json:"minKg"`
	MaxKg float64 `json:"maxKg"`
}

// Status buckets a BMI value.
type Status string

const (
	StatusUnderweight Status = "underweight"
	StatusNormal      Status = "normal"
	StatusOverweight  Status = "overweight"
	StatusObese       Status = "obese"
)

// Report is the full calculator output for one profile.
type Report struct {
	Profile     Profile     `json:"profile"`
	BMI         float64     `json:"bmi"`
	Status      Status      `json:"status"`
	IdealWeight WeightRange `json:"idealWeight"`
	Targets     Targets     `json:"targets"`
}
