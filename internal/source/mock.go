package source

import "github.com/dashwatch/internal/models"

// ElyassiMembers is the placeholder team table of the Elyassi dashboard.
func ElyassiMembers() []models.Record {
	return []models.Record{
		{ID: "alice", Name: "Alice", Value: 45, Metrics: map[string]float64{"completion": 85, "tasks": 45}},
		{ID: "bob", Name: "Bob", Value: 38, Metrics: map[string]float64{"completion": 92, "tasks": 38}},
		{ID: "charlie", Name: "Charlie", Value: 42, Metrics: map[string]float64{"completion": 78, "tasks": 42}},
	}
}

// MagicBotClients is the placeholder client table of the MagicBot dashboard.
func MagicBotClients() []models.Record {
	return []models.Record{
		{
			ID: "1", Name: "Mystic Arts", Value: 8.9,
			Metrics:    map[string]float64{"posts": 45, "engagement": 8.9},
			Attributes: map[string]string{"platform": "Instagram", "status": "Active"},
		},
		{
			ID: "2", Name: "Enchanted", Value: 7.6,
			Metrics:    map[string]float64{"posts": 32, "engagement": 7.6},
			Attributes: map[string]string{"platform": "Twitter", "status": "Active"},
		},
		{
			ID: "3", Name: "Spellbound", Value: 5.4,
			Metrics:    map[string]float64{"posts": 28, "engagement": 5.4},
			Attributes: map[string]string{"platform": "LinkedIn", "status": "Warning"},
		},
	}
}
