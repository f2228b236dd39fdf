// Package notify provides desktop notifications via D-Bus.
package notify

import "fmt"

// Urgency represents notification priority levels per freedesktop spec.
type Urgency byte

const (
	UrgencyLow      Urgency = 0
	UrgencyNormal   Urgency = 1
	UrgencyCritical Urgency = 2
)

// Notification contains data for a desktop notification.
type Notification struct {
	Title      string  // Summary text (required)
	Body       string  // Body text (optional, supports basic markup)
	Icon       string  // Path to image file or icon name (optional)
	Timeout    int32   // ms, -1 = server default, 0 = never expire
	ReplacesID uint32  // 0 = new notification, >0 = replace existing
	Urgency    Urgency // Low, Normal, Critical
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify sends a notification and returns its ID.
	// Returns 0 and nil error if notifications are disabled or unavailable.
	Notify(n Notification) (uint32, error)
	// Close closes a notification by ID.
	Close(id uint32) error
}

// ScanSummary describes the outcome of a completed library scan.
type ScanSummary struct {
	Added   int
	Updated int
	Removed int
	Failed  int
}

// ScanComplete sends a notification summarizing a finished scan.
func ScanComplete(n Notifier, summary ScanSummary) error {
	body := fmt.Sprintf("%d added, %d updated, %d removed",
		summary.Added, summary.Updated, summary.Removed)
	urgency := UrgencyLow
	if summary.Failed > 0 {
		body += fmt.Sprintf(", %d unreadable", summary.Failed)
		urgency = UrgencyNormal
	}
	_, err := n.Notify(Notification{
		Title:   "Library scan complete",
		Body:    body,
		Timeout: 5000,
		Urgency: urgency,
	})
	return err
}
