package dashboard

import "github.com/dashwatch/internal/source"

// Elyassi is the team dashboard. A nil src serves the placeholder member table.
func Elyassi(src source.Source) *Dashboard {
	if src == nil {
		src = source.NewStaticSource(source.ElyassiMembers())
	}
	return &Dashboard{
		Name:  "elyassi",
		Title: "Elyassi Team Dashboard",
		KPIs: []KPI{
			{Key: "tasksCompleted", Label: "Tasks Completed", Value: 189},
			{Key: "campaignsContributed", Label: "Campaigns Contributed", Value: 24},
			{Key: "turnaroundTime", Label: "Turnaround Time", Value: 3.2, Unit: "days"},
			{Key: "engagementScore", Label: "Engagement Score", Value: 92},
		},
		Chart: &Chart{
			Type:   "bar",
			Title:  "Contributions by platform",
			Labels: []string{"Alice", "Bob", "Charlie"},
			Datasets: []Dataset{
				{Label: "Twitter", Data: []float64{20, 15, 25}, BackgroundColor: "rgba(138, 43, 226, 0.6)"},
				{Label: "LinkedIn", Data: []float64{15, 20, 10}, BackgroundColor: "rgba(254, 254, 91, 0.6)"},
			},
		},
		Source: src,
	}
}

// MagicBot is the client dashboard. A nil src serves the placeholder client table.
func MagicBot(src source.Source) *Dashboard {
	if src == nil {
		src = source.NewStaticSource(source.MagicBotClients())
	}
	return &Dashboard{
		Name:  "magicbot",
		Title: "MagicBot Dashboard",
		KPIs: []KPI{
			{Key: "campaigns", Label: "Campaigns", Value: 156},
			{Key: "engagement", Label: "Engagement", Value: 8.4, Unit: "%"},
			{Key: "revenue", Label: "Revenue", Value: 52890, Unit: "$"},
			{Key: "uptime", Label: "Uptime", Value: 99.9, Unit: "%"},
		},
		Chart: &Chart{
			Type:   "line",
			Title:  "Engagement trend",
			Labels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"},
			Datasets: []Dataset{
				{
					Label:           "Engagement Rate",
					Data:            []float64{4.2, 5.1, 6.8, 7.2, 8.1, 8.4},
					BorderColor:     "#FEFE5B",
					BackgroundColor: "rgba(254, 254, 91, 0.2)",
				},
			},
		},
		Source: src,
	}
}
