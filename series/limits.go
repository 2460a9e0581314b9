package series

import "github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"

// PlanLimits caps what a subscription tier may configure.
type PlanLimits struct {
	MaxSeries        int
	AllowedPlatforms []string
}

var planLimits = map[string]PlanLimits{
	"free":      {MaxSeries: 2, AllowedPlatforms: []string{"youtube"}},
	"basic":     {MaxSeries: 4, AllowedPlatforms: []string{"youtube"}},
	"unlimited": {MaxSeries: -1, AllowedPlatforms: []string{"youtube", "instagram", "tiktok", "facebook"}},
}

// LimitsForUser resolves the user's plan limits, defaulting to the free tier.
func LimitsForUser(user models.User) PlanLimits {
	plan := user.SubscriptionPlan
	if !user.IsSubscribed() {
		plan = "free"
	}
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits["free"]
}

// AllowsPlatform reports whether the plan may publish to platform.
func (l PlanLimits) AllowsPlatform(platform string) bool {
	for _, p := range l.AllowedPlatforms {
		if p == platform {
			return true
		}
	}
	return false
}

// AllowsMoreSeries reports whether the user may create another series.
func (l PlanLimits) AllowsMoreSeries(current int) bool {
	return l.MaxSeries < 0 || current < l.MaxSeries
}
