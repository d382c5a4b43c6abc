package bot

import (
	"log/slog"
	"time"

	"github.com/sahilcodelab/wbsu-notice-bot/app/database"
	"github.com/sahilcodelab/wbsu-notice-bot/app/semester"
	"github.com/sahilcodelab/wbsu-notice-bot/app/subscription"
)

// Notifier fans a new notice out to every subscriber whose semesters
// intersect the notice's tags. One slow or failing recipient never
// blocks the rest.
type Notifier struct {
	sender   MessageSender
	subs     *subscription.Store
	registry *semester.Registry
	pace     time.Duration
}

func NewNotifier(sender MessageSender, subs *subscription.Store, registry *semester.Registry) *Notifier {
	return &Notifier{
		sender:   sender,
		subs:     subs,
		registry: registry,
		pace:     500 * time.Millisecond,
	}
}

// SetPace overrides the delay between consecutive deliveries. Tests
// set it to zero.
func (n *Notifier) SetPace(d time.Duration) {
	n.pace = d
}

// Notify delivers one notice to all matching subscribers and returns
// the number of successful deliveries.
func (n *Notifier) Notify(notice *database.Notice) int {
	snapshot := n.subs.Snapshot()
	if len(snapshot) == 0 {
		slog.Debug("No subscribers, skipping fan-out", "notice", notice.ID)
		return 0
	}

	text := FormatNotice(n.registry, notice)

	delivered := 0
	for userID, sems := range snapshot {
		if !intersects(sems, notice.Sems) {
			continue
		}

		if err := n.sender.Send(userID, text); err != nil {
			slog.Warn("Failed to notify user", "user", userID, "notice", notice.ID, "error", err)
		} else {
			delivered++
			slog.Debug("Notified user", "user", userID, "notice", notice.ID)
		}

		if n.pace > 0 {
			time.Sleep(n.pace)
		}
	}

	return delivered
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
