package port

import "github.com/dreschagin/uptime-dashboard/internal/application/dto"

// NotificationService pushes view updates to connected dashboard clients
type NotificationService interface {
	// BroadcastStatusWall sends the latest status wall to every client
	BroadcastStatusWall(wall *dto.StatusWallDTO)

	// BroadcastAlert sends a site status change to every client
	BroadcastAlert(alert *dto.AlertDTO)

	// SendDashboard sends a session's dashboard view to that session's clients
	SendDashboard(sessionID string, view *dto.DashboardViewDTO)

	ClientCount() int
}
