package store

import (
	"fmt"
	"time"

	"bandline/internal/model"
)

// DemoDataset builds a deterministic week of scheduling data anchored at
// day (truncated to midnight UTC). Deterministic so snapshot renders and
// docs stay stable.
func DemoDataset(day time.Time) model.Dataset {
	day = day.UTC().Truncate(24 * time.Hour)
	at := func(dayOff int, h float64) int64 {
		return day.AddDate(0, 0, dayOff).UnixMilli() + int64(h*3600_000)
	}

	ds := model.Dataset{
		Version: 1,
		Resources: []model.Resource{
			{ID: "rig-alpha", Name: "Rig Alpha"},
			{ID: "rig-bravo", Name: "Rig Bravo"},
			{ID: "crew-day", Name: "Day Crew", Layout: model.LayoutPack},
			{ID: "crew-night", Name: "Night Crew"},
			{ID: "inspection", Name: "Inspections"},
		},
	}

	add := func(res, name string, startDay int, startH, endH float64, color string) {
		ds.Events = append(ds.Events, model.Event{
			ID:         fmt.Sprintf("evt-%03d", len(ds.Events)+1),
			ResourceID: res,
			Name:       name,
			StartMS:    at(startDay, startH),
			EndMS:      at(startDay, endH),
			Color:      color,
		})
	}

	for d := 0; d < 5; d++ {
		add("rig-alpha", "Drilling shift", d, 6, 14, "blue")
		add("rig-alpha", "Maintenance", d, 13, 16, "orange")
		add("rig-bravo", "Drilling shift", d, 8, 18, "blue")
		add("crew-day", "Crew A", d, 7, 15, "green")
		add("crew-day", "Crew B", d, 11, 19, "teal")
		add("crew-night", "Night watch", d, 20, 30, "purple")
	}
	// Milestones: zero-duration checkpoints.
	add("inspection", "Safety audit", 1, 9, 9, "red")
	add("inspection", "Cert renewal", 3, 14, 14, "red")
	add("inspection", "Handover", 4, 18, 18, "red")

	return ds
}
