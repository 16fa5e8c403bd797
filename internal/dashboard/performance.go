package dashboard

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tetraminz/estate_coach/internal/store"
)

// AgentPerformance is one row of the sales performance leaderboard.
type AgentPerformance struct {
	Agent         string
	Deals         int
	Revenue       int
	Satisfaction  float64
	AvgEngagement float64
	AvgConversion float64
}

// demoAgents seeds the leaderboard so the page is meaningful before
// the archive has data.
var demoAgents = []AgentPerformance{
	{Agent: "Sophiya", Deals: 15, Revenue: 4_500_000, Satisfaction: 4.8},
	{Agent: "Marcus", Deals: 12, Revenue: 3_800_000, Satisfaction: 4.6},
	{Agent: "Elena", Deals: 10, Revenue: 3_100_000, Satisfaction: 4.7},
	{Agent: "David", Deals: 8, Revenue: 2_400_000, Satisfaction: 4.4},
}

// BuildPerformance merges the demo leaderboard with live averages
// from the archive. Agents present in the archive get their measured
// engagement and conversion attached.
func BuildPerformance(archive SessionArchive) ([]AgentPerformance, error) {
	sessions, err := archive.RecentSessions(10000)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	type agg struct {
		sessions   int
		engagement float64
		conversion float64
	}
	byAgent := map[string]*agg{}
	for _, s := range sessions {
		a := byAgent[s.Username]
		if a == nil {
			a = &agg{}
			byAgent[s.Username] = a
		}
		a.sessions++
		a.engagement += float64(s.Metrics.EngagementScore)
		a.conversion += s.Metrics.ConversionPotential
	}

	rows := make([]AgentPerformance, len(demoAgents))
	copy(rows, demoAgents)
	seen := map[string]int{}
	for i, row := range rows {
		seen[row.Agent] = i
	}
	for agent, a := range byAgent {
		avgEngagement := a.engagement / float64(a.sessions)
		avgConversion := a.conversion / float64(a.sessions)
		if i, ok := seen[agent]; ok {
			rows[i].AvgEngagement = avgEngagement
			rows[i].AvgConversion = avgConversion
			continue
		}
		rows = append(rows, AgentPerformance{
			Agent:         agent,
			AvgEngagement: avgEngagement,
			AvgConversion: avgConversion,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		return rows[i].Agent < rows[j].Agent
	})
	return rows, nil
}

// RenderPerformance formats the leaderboard as a markdown table.
func RenderPerformance(rows []AgentPerformance) string {
	var b strings.Builder
	b.WriteString("# Sales Performance\n\n")
	b.WriteString("| Agent | Deals Closed | Revenue | Satisfaction | Avg Engagement | Avg Conversion |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("| %s | %d | $%d | %.1f | %.2f | %.2f%% |\n",
			row.Agent, row.Deals, row.Revenue, row.Satisfaction, row.AvgEngagement, row.AvgConversion))
	}
	return b.String()
}

// RenderCRM formats a filtered CRM table as markdown.
func RenderCRM(columns []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString("# CRM Records\n\n")
	if len(columns) == 0 {
		b.WriteString("- no data\n")
		return b.String()
	}
	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(columns)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i := range columns {
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	b.WriteString(fmt.Sprintf("\n- rows: `%d`\n", len(rows)))
	return b.String()
}

// RenderTranscriptTable formats archived utterances as markdown.
func RenderTranscriptTable(username string, rows []store.TranscriptRow) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("# Transcript: %s\n\n", username))
	if len(rows) == 0 {
		b.WriteString("- no transcript yet\n")
		return b.String()
	}
	b.WriteString("| Timestamp | Speaker | Text | Sentiment | Intent |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, row := range rows {
		text := strings.ReplaceAll(row.Text, "|", "\\|")
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			row.Timestamp, row.Speaker, text, row.Sentiment, row.Intent))
	}
	return b.String()
}
