// Package status maps job statuses to their presentation attributes.
//
// Every renderer (HTTP view models, the jobwatch terminal table) goes
// through this single mapping instead of switching on the enum locally.
package status

import "github.com/jonesrussell/north-cloud/dashboard/internal/models"

// Badge describes how a status is presented.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var badges = map[models.Status]Badge{
	models.StatusPending:   {Label: "Pending", Color: "gray", Icon: "clock"},
	models.StatusRunning:   {Label: "Running", Color: "blue", Icon: "spinner"},
	models.StatusCompleted: {Label: "Completed", Color: "green", Icon: "check"},
	models.StatusFailed:    {Label: "Failed", Color: "red", Icon: "x"},
	models.StatusCancelled: {Label: "Cancelled", Color: "yellow", Icon: "slash"},
}

// unknownBadge is rendered for statuses outside the closed set, which only
// happens if the backend starts emitting values this build does not know.
var unknownBadge = Badge{Label: "Unknown", Color: "gray", Icon: "question"}

// For returns the badge for a status.
func For(s models.Status) Badge {
	if b, ok := badges[s]; ok {
		return b
	}
	return unknownBadge
}
