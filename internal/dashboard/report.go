package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tetraminz/estate_coach/internal/store"
)

// UserReport - аналитика по архиву сессий одного агента.
type UserReport struct {
	Username        string
	TotalSessions   int
	TotalUtterances int
	CustomerTurns   int
	PositiveTurns   int
	AvgEngagement   float64
	AvgPositivity   float64
	AvgConversion   float64
	IntentCounts    map[string]int
	Sessions        []store.SessionRecord
}

// UserArchive is the per-user slice of the store the report reads.
type UserArchive interface {
	SessionsByUser(username string) ([]store.SessionRecord, error)
	SessionUtterances(sessionID string) ([]store.TranscriptRow, error)
}

// BuildUserReport aggregates one agent's archived sessions.
func BuildUserReport(archive UserArchive, username string) (UserReport, error) {
	sessions, err := archive.SessionsByUser(username)
	if err != nil {
		return UserReport{}, fmt.Errorf("load sessions: %w", err)
	}

	report := UserReport{
		Username:     username,
		IntentCounts: map[string]int{},
		Sessions:     sessions,
	}
	for _, s := range sessions {
		report.TotalSessions++
		report.AvgEngagement += float64(s.Metrics.EngagementScore)
		report.AvgPositivity += s.Metrics.SentimentPositivity
		report.AvgConversion += s.Metrics.ConversionPotential

		utterances, err := archive.SessionUtterances(s.SessionID)
		if err != nil {
			return UserReport{}, fmt.Errorf("load utterances for %s: %w", s.SessionID, err)
		}
		report.TotalUtterances += len(utterances)
		for _, u := range utterances {
			if u.Speaker != "Customer" {
				continue
			}
			report.CustomerTurns++
			if u.Sentiment == "Positive" {
				report.PositiveTurns++
			}
			report.IntentCounts[u.Intent]++
		}
	}
	if report.TotalSessions > 0 {
		n := float64(report.TotalSessions)
		report.AvgEngagement /= n
		report.AvgPositivity /= n
		report.AvgConversion /= n
	}
	return report, nil
}

// RenderUserReport formats the analytics as markdown.
func RenderUserReport(report UserReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Session Report: %s\n\n", report.Username))
	b.WriteString("## Totals\n")
	b.WriteString(fmt.Sprintf("- total_sessions: `%d`\n", report.TotalSessions))
	b.WriteString(fmt.Sprintf("- total_utterances: `%d`\n", report.TotalUtterances))
	b.WriteString(fmt.Sprintf("- customer_turns: `%d`\n", report.CustomerTurns))
	b.WriteString(fmt.Sprintf("- positive_turns: `%d`\n\n", report.PositiveTurns))

	b.WriteString("## Averages\n")
	b.WriteString(fmt.Sprintf("- avg_engagement: `%.2f`\n", report.AvgEngagement))
	b.WriteString(fmt.Sprintf("- avg_positivity: `%.2f%%`\n", report.AvgPositivity))
	b.WriteString(fmt.Sprintf("- avg_conversion: `%.2f%%`\n\n", report.AvgConversion))

	b.WriteString("## Intent Breakdown\n")
	if len(report.IntentCounts) == 0 {
		b.WriteString("- none\n")
	} else {
		for _, intent := range sortedKeys(report.IntentCounts) {
			b.WriteString(fmt.Sprintf("- %s: `%d`\n", intent, report.IntentCounts[intent]))
		}
	}
	b.WriteString("\n## Sessions\n")
	if len(report.Sessions) == 0 {
		b.WriteString("- none yet\n")
		return b.String()
	}
	for _, s := range report.Sessions {
		summary := strings.TrimSpace(s.Summary)
		if summary == "" {
			summary = "(no summary)"
		}
		b.WriteString(fmt.Sprintf("- %s — %s: engagement `%d`, conversion `%.2f%%` — %s\n",
			s.StartedAtUTC, s.EndedAtUTC, s.Metrics.EngagementScore, s.Metrics.ConversionPotential, summary))
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
