package panel

import (
	"fmt"
	"io"
	"text/tabwriter"

	"jury-dashboard/models"
)

const (
	LabelActiveProjects = "Active Projects"
	LabelAverageVotes   = "Average Votes"
	LabelAverageSeen    = "Average Seen"

	// Placeholder is shown for a field the backend did not send as a number.
	Placeholder = "n/a"
)

// Widgets binds the three stat widgets to stats, in display order.
func Widgets(stats models.ProjectStats) []models.StatWidget {
	return []models.StatWidget{
		widget(LabelActiveProjects, stats.Num),
		widget(LabelAverageVotes, stats.AvgVotes),
		widget(LabelAverageSeen, stats.AvgSeen),
	}
}

func widget(name string, v models.StatValue) models.StatWidget {
	if !v.Valid {
		return models.StatWidget{Name: name, Value: Placeholder}
	}
	return models.StatWidget{Name: name, Value: v.Number.String(), Numeric: true}
}

// RenderText writes the view as aligned "label  value" lines.
func RenderText(w io.Writer, view models.PanelView) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, s := range view.Widgets {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Value); err != nil {
			return err
		}
	}
	if view.Error != "" {
		if _, err := fmt.Fprintf(tw, "\n%s\n", view.Error); err != nil {
			return err
		}
	}
	return tw.Flush()
}
