// Package dashboard renders the agent-facing reports as markdown.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/tetraminz/estate_coach/internal/store"
)

// HomeStats - сводка по архиву для главной страницы.
type HomeStats struct {
	TotalSessions       int
	TotalAgents         int
	TotalUtterances     int
	AvgEngagement       float64
	AvgPositivity       float64
	AvgConversion       float64
	RecentSessions      []store.SessionRecord
	RecentSessionsLimit int
}

// SessionArchive is the slice of the store the dashboard reads.
type SessionArchive interface {
	RecentSessions(limit int) ([]store.SessionRecord, error)
	SessionUtterances(sessionID string) ([]store.TranscriptRow, error)
}

// BuildHomeStats aggregates the archive into the home page summary.
func BuildHomeStats(archive SessionArchive, recentLimit int) (HomeStats, error) {
	if recentLimit <= 0 {
		recentLimit = 5
	}
	// a large window stands in for "all sessions"; the archive is
	// per-desk, not per-fleet
	sessions, err := archive.RecentSessions(10000)
	if err != nil {
		return HomeStats{}, fmt.Errorf("load sessions: %w", err)
	}

	stats := HomeStats{RecentSessionsLimit: recentLimit}
	agents := map[string]struct{}{}
	for _, s := range sessions {
		stats.TotalSessions++
		agents[s.Username] = struct{}{}
		stats.AvgEngagement += float64(s.Metrics.EngagementScore)
		stats.AvgPositivity += s.Metrics.SentimentPositivity
		stats.AvgConversion += s.Metrics.ConversionPotential

		utterances, err := archive.SessionUtterances(s.SessionID)
		if err != nil {
			return HomeStats{}, fmt.Errorf("load utterances for %s: %w", s.SessionID, err)
		}
		stats.TotalUtterances += len(utterances)
	}
	stats.TotalAgents = len(agents)
	if stats.TotalSessions > 0 {
		n := float64(stats.TotalSessions)
		stats.AvgEngagement /= n
		stats.AvgPositivity /= n
		stats.AvgConversion /= n
	}
	if len(sessions) > recentLimit {
		sessions = sessions[:recentLimit]
	}
	stats.RecentSessions = sessions
	return stats, nil
}

// RenderHome formats the home page summary as markdown.
func RenderHome(stats HomeStats) string {
	var b strings.Builder
	b.WriteString("# Sales Coach Dashboard\n\n")
	b.WriteString("## Quick Stats\n")
	b.WriteString(fmt.Sprintf("- total_sessions: `%d`\n", stats.TotalSessions))
	b.WriteString(fmt.Sprintf("- total_agents: `%d`\n", stats.TotalAgents))
	b.WriteString(fmt.Sprintf("- total_utterances: `%d`\n", stats.TotalUtterances))
	b.WriteString(fmt.Sprintf("- avg_engagement: `%.2f`\n", stats.AvgEngagement))
	b.WriteString(fmt.Sprintf("- avg_positivity: `%.2f%%`\n", stats.AvgPositivity))
	b.WriteString(fmt.Sprintf("- avg_conversion: `%.2f%%`\n\n", stats.AvgConversion))

	b.WriteString("## Recent Sessions\n")
	if len(stats.RecentSessions) == 0 {
		b.WriteString("- none yet\n")
		return b.String()
	}
	for _, s := range stats.RecentSessions {
		summary := strings.TrimSpace(s.Summary)
		if summary == "" {
			summary = "(no summary)"
		}
		b.WriteString(fmt.Sprintf("### %s — %s\n", s.Username, s.EndedAtUTC))
		b.WriteString(fmt.Sprintf("- engagement: `%d`, positivity: `%.2f%%`, conversion: `%.2f%%`\n",
			s.Metrics.EngagementScore, s.Metrics.SentimentPositivity, s.Metrics.ConversionPotential))
		b.WriteString(fmt.Sprintf("- summary: %s\n\n", summary))
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
