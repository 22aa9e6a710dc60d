// Package rda derives recommended daily allowances and body-mass figures
// from a user profile using closed-form formulas.
package rda

import "math"

// rule is one branch of an allowance formula. Rules are evaluated in order
// and the first match wins; the result is base + weight*factor.
type rule struct {
	name   string
	match  func(Profile) bool
	base   func(Profile) float64
	factor func(Profile) float64
}

func constant(v float64) func(Profile) float64 {
	return func(Profile) float64 { return v }
}

func always(Profile) bool { return true }

var calciumRules = []rule{
	{
		name:   "growth",
		match:  func(p Profile) bool { return p.Age <= 18 },
		base:   constant(1300),
		factor: constant(5),
	},
	{
		name:   "postmenopausal",
		match:  func(p Profile) bool { return p.Gender == GenderFemale && p.Age > 50 },
		base:   constant(1200),
		factor: constant(2),
	},
	{
		name:  "adult",
		match: always,
		base:  constant(1000),
		factor: func(p Profile) float64 {
			if p.Age < 65 {
				return 3
			}
			return 2
		},
	},
}

// Pregnancy is listed first so it overrides every age and gender branch.
var ironRules = []rule{
	{
		name:   "pregnant",
		match:  func(p Profile) bool { return p.Pregnant },
		base:   constant(27),
		factor: constant(0.3),
	},
	{
		name:   "childbearing",
		match:  func(p Profile) bool { return p.Gender == GenderFemale && p.Age >= 19 && p.Age <= 50 },
		base:   constant(18),
		factor: constant(0.1),
	},
	{
		name:  "growth",
		match: func(p Profile) bool { return p.Age <= 18 },
		base: func(p Profile) float64 {
			if p.Gender == GenderMale {
				return 11
			}
			return 15
		},
		factor: constant(0.2),
	},
	{
		name:   "adult",
		match:  always,
		base:   constant(8),
		factor: constant(0.1),
	},
}

var proteinRules = []rule{
	{name: "growth", match: func(p Profile) bool { return p.Age <= 18 }, base: constant(0), factor: constant(1.0)},
	{name: "senior", match: func(p Profile) bool { return p.Age > 65 }, base: constant(0), factor: constant(1.2)},
	{name: "adult", match: always, base: constant(0), factor: constant(0.8)},
}

var activityMultipliers = map[ActivityLevel]float64{
	ActivityNone:     1.0,
	ActivityLow:      1.2,
	ActivityModerate: 1.5,
	ActivityHigh:     1.8,
}

const (
	idealBMILow  = 18.5
	idealBMIHigh = 24.9

	carbsEnergyShare = 0.5
	fatEnergyShare   = 0.3
	kcalPerGramCarbs = 4
	kcalPerGramFat   = 9
)

// evaluate applies the first matching rule and reports which one fired.
func evaluate(rules []rule, p Profile) (float64, string) {
	for _, r := range rules {
		if r.match(p) {
			return r.base(p) + p.WeightKg*r.factor(p), r.name
		}
	}
	return 0, ""
}

// BMI is weight over height in metres squared.
func BMI(p Profile) float64 {
	h := p.HeightCm / 100
	return p.WeightKg / (h * h)
}

// IdealWeight returns the weight range that keeps BMI within 18.5–24.9.
func IdealWeight(p Profile) WeightRange {
	h := p.HeightCm / 100
	return WeightRange{MinKg: idealBMILow * h * h, MaxKg: idealBMIHigh * h * h}
}

// Classify buckets a BMI value using contiguous WHO cut-offs.
func Classify(bmi float64) Status {
	switch {
	case bmi < 18.5:
		return StatusUnderweight
	case bmi < 25:
		return StatusNormal
	case bmi < 30:
		return StatusOverweight
	default:
		return StatusObese
	}
}

// CalciumMg returns the daily calcium allowance in milligrams.
func CalciumMg(p Profile) float64 {
	v, _ := evaluate(calciumRules, p)
	return v
}

// IronMg returns the daily iron allowance in milligrams.
func IronMg(p Profile) float64 {
	v, _ := evaluate(ironRules, p)
	return v
}

// ProteinG returns the daily protein allowance in grams.
func ProteinG(p Profile) float64 {
	v, _ := evaluate(proteinRules, p)
	return v
}

// Calories returns the daily energy target in kcal.
func Calories(p Profile) float64 {
	base := 2000.0
	if p.Gender == GenderFemale {
		base = 1800
	}
	mult, ok := activityMultipliers[p.Activity]
	if !ok {
		mult = 1
	}
	return base * mult
}

// ComputeTargets derives every daily target for p.
func ComputeTargets(p Profile) Targets {
	kcal := Calories(p)
	return Targets{
		Calories:  kcal,
		ProteinG:  ProteinG(p),
		CalciumMg: CalciumMg(p),
		IronMg:    IronMg(p),
		CarbsG:    kcal * carbsEnergyShare / kcalPerGramCarbs,
		FatG:      kcal * fatEnergyShare / kcalPerGramFat,
	}
}

// Calculate builds the full report for p.
func Calculate(p Profile) Report {
	bmi := BMI(p)
	return Report{
		Profile:     p,
		BMI:         round2(bmi),
		Status:      Classify(bmi),
		IdealWeight: IdealWeight(p),
		Targets:     ComputeTargets(p),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
