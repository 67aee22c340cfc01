package progress

import "github.com/claude/coachdesk/internal/models"

// DayTotals sums a day's meals and compares them to the target.
type DayTotals struct {
	Meals    int          `json:"meals"`
	Calories int          `json:"calories"`
	ProteinG float64      `json:"protein_g"`
	CarbsG   float64      `json:"carbs_g"`
	FatG     float64      `json:"fat_g"`
	Percent  MacroPercent `json:"percent_of_target"`
}

// MacroPercent is consumption as a percentage of target. Values are not
// capped at 100 so overshooting stays visible; a zero target yields 0.
type MacroPercent struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Nutrition totals meals. A nil target leaves Percent at zero.
func Nutrition(target *models.NutritionTarget, meals []models.Meal) DayTotals {
	var d DayTotals
	for _, m := range meals {
		d.Meals++
		d.Calories += m.Calories
		d.ProteinG += m.ProteinG
		d.CarbsG += m.CarbsG
		d.FatG += m.FatG
	}
	d.ProteinG = round1(d.ProteinG)
	d.CarbsG = round1(d.CarbsG)
	d.FatG = round1(d.FatG)

	if target != nil {
		d.Percent = MacroPercent{
			Calories: percent(float64(d.Calories), float64(target.Calories)),
			Protein:  percent(d.ProteinG, target.ProteinG),
			Carbs:    percent(d.CarbsG, target.CarbsG),
			Fat:      percent(d.FatG, target.FatG),
		}
	}
	return d
}

func percent(v, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return round1(v / target * 100)
}
