package analytics

import "fmt"

// ConcentrationThreshold is the top-3 share of page views above which the
// concentration insight fires.
const ConcentrationThreshold = 60.0

// HeadlineSurgeThreshold is the users growth above which the headline reports a surge.
const HeadlineSurgeThreshold = 10.0

// NoInsights is returned alone when no rule applies to a summary.
const NoInsights = "There isn't enough activity in this period to highlight trends yet. Check back once more visitors arrive."

const (
	headlineSurge  = "Your conversion velocity is peaking. Prioritize the checkout flow optimization for your growing audience."
	headlineGrowth = "You're seeing healthy growth and steady interest across all major channels."
	headlineSteady = "Performance is holding steady. Double down on your top performing professional content."
)

// InsightRule produces at most one sentence for a summary. Format is only
// called when Applies returns true.
type InsightRule struct {
	Name    string
	Applies func(s *Summary) bool
	Format  func(s *Summary) string
}

// InsightReport is the narrative view of a summary
type InsightReport struct {
	Insights []string `json:"insights"`
	Headline string   `json:"headline"`
}

// InsightRules are evaluated in order by GenerateInsights.
var InsightRules = []InsightRule{
	{Name: "traffic_trend", Applies: hasUsers, Format: trafficTrendInsight},
	{Name: "top_source", Applies: hasSources, Format: topSourceInsight},
	{Name: "top_page", Applies: hasTopPages, Format: topPageInsight},
	{Name: "engagement", Applies: hasEngagement, Format: engagementInsight},
	{Name: "session_frequency", Applies: hasSessionFrequency, Format: sessionFrequencyInsight},
	{Name: "growth", Applies: hasAlignedTrends, Format: growthInsight},
	{Name: "concentration", Applies: isConcentrated, Format: concentrationInsight},
}

// GenerateInsights runs every rule against the summary and collects the
// sentences of those that apply. The result is never empty.
func GenerateInsights(s *Summary) []string {
	if s == nil {
		s = &Summary{}
	}

	insights := make([]string, 0, len(InsightRules))
	for _, rule := range InsightRules {
		if rule.Applies(s) {
			insights = append(insights, rule.Format(s))
		}
	}

	if len(insights) == 0 {
		insights = append(insights, NoInsights)
	}
	return insights
}

// Headline returns the one-line narrative shown above the insights.
func Headline(s *Summary) string {
	if s == nil || s.UsersTrend == nil || !s.UsersTrend.IsUp {
		return headlineSteady
	}
	if parseFixed1(s.UsersTrend.Value) > HeadlineSurgeThreshold {
		return headlineSurge
	}
	return headlineGrowth
}

// BuildInsightReport bundles the insights and headline of a summary.
func BuildInsightReport(s *Summary) InsightReport {
	return InsightReport{
		Insights: GenerateInsights(s),
		Headline: Headline(s),
	}
}

func hasUsers(s *Summary) bool {
	return s.TotalUsers > 0
}

func trafficTrendInsight(s *Summary) string {
	trendText := "remained steady"
	if t := s.UsersTrend; t != nil {
		if t.IsUp {
			trendText = fmt.Sprintf("increased by %s%%", t.Value)
		} else {
			trendText = fmt.Sprintf("decreased by %s%%", t.Value)
		}
	}
	return fmt.Sprintf("You've had %s unique visitors in the last 30 days, which %s compared to the previous period.",
		FormatCount(s.TotalUsers), trendText)
}

func hasSources(s *Summary) bool {
	return len(s.Sources) > 0
}

func topSourceInsight(s *Summary) string {
	top := s.Sources[0]
	percentage := 0.0
	if s.TotalUsers > 0 {
		percentage = float64(top.Users) / float64(s.TotalUsers) * 100
	}
	return fmt.Sprintf("%s is your top traffic source with %s visitors (%s%% of total traffic).",
		top.Name, FormatCount(top.Users), FormatFixed1(percentage))
}

func hasTopPages(s *Summary) bool {
	return len(s.TopPages) > 0
}

func topPageInsight(s *Summary) string {
	top := s.TopPages[0]
	return fmt.Sprintf("\"%s\" is your most popular page with %s views.", top.Title, FormatCount(top.Views))
}

func hasEngagement(s *Summary) bool {
	return s.TotalSessions > 0 && s.TotalPageViews > 0
}

func engagementInsight(s *Summary) string {
	viewsPerSession := FormatFixed1(float64(s.TotalPageViews) / float64(s.TotalSessions))
	trendText := "This is similar"
	if t := s.PageViewsTrend; t != nil {
		if t.IsUp {
			trendText = fmt.Sprintf("This is %s%% higher", t.Value)
		} else {
			trendText = fmt.Sprintf("This is %s%% lower", t.Value)
		}
	}
	return fmt.Sprintf("On average, users view about %s pages per session. %s than the previous period.",
		viewsPerSession, trendText)
}

func hasSessionFrequency(s *Summary) bool {
	return s.TotalUsers > 0 && s.TotalSessions > 0
}

func sessionFrequencyInsight(s *Summary) string {
	avg := FormatFixed1(float64(s.TotalSessions) / float64(s.TotalUsers))
	noun := "sessions"
	if avg == "1.0" {
		noun = "session"
	}
	return fmt.Sprintf("Each visitor averages about %s %s during their time on your site.", avg, noun)
}

func hasAlignedTrends(s *Summary) bool {
	if s.UsersTrend == nil || s.SessionsTrend == nil {
		return false
	}
	return s.UsersTrend.IsUp == s.SessionsTrend.IsUp
}

func growthInsight(s *Summary) string {
	if s.UsersTrend.IsUp {
		return "Great news! Both visitor count and engagement are trending upward, indicating healthy growth."
	}
	return "Traffic and engagement have both declined. Consider reviewing recent content changes or marketing efforts."
}

// top3Share is the rounded percentage of page views held by the first three pages.
func top3Share(s *Summary) string {
	if s.TotalPageViews <= 0 {
		return FormatFixed1(0)
	}
	var views int64
	for _, page := range s.TopPages[:3] {
		views += page.Views
	}
	return FormatFixed1(float64(views) / float64(s.TotalPageViews) * 100)
}

func isConcentrated(s *Summary) bool {
	if len(s.TopPages) < 3 {
		return false
	}
	return parseFixed1(top3Share(s)) > ConcentrationThreshold
}

func concentrationInsight(s *Summary) string {
	return fmt.Sprintf("Your top 3 pages account for %s%% of total views. Consider promoting other pages to distribute traffic more evenly.",
		top3Share(s))
}
