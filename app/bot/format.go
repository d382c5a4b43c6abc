package bot

import (
	"fmt"
	"strings"

	"github.com/sahilcodelab/wbsu-notice-bot/app/database"
	"github.com/sahilcodelab/wbsu-notice-bot/app/semester"
)

const timestampLayout = "2006-01-02 15:04:05"

// FormatNotice renders the fan-out message for a new notice.
func FormatNotice(registry *semester.Registry, notice *database.Notice) string {
	semNames := strings.Join(registry.Names(notice.Sems), ", ")
	return fmt.Sprintf(
		"📢 *%s Notice*\n"+
			"🎓 *For:* %s\n\n"+
			"%s\n\n"+
			"🔗 [View Notice](%s)\n"+
			"⏰ %s",
		notice.Source, semNames, notice.Summary, notice.URL,
		notice.CreatedAt.Format(timestampLayout))
}

// FormatLatest renders the reply to a latest-for-semester query.
func FormatLatest(semName string, notice *database.Notice) string {
	return fmt.Sprintf(
		"📢 *Latest Notice for %s*\n\n"+
			"%s\n"+
			"🔗 [View](%s)\n"+
			"⏰ %s",
		semName, notice.Title, notice.URL,
		notice.CreatedAt.Format(timestampLayout))
}

// FormatMatches renders up to a handful of free-text search hits.
func FormatMatches(notices []database.Notice) string {
	var sb strings.Builder
	sb.WriteString("🔎 *Matching Notices:*\n\n")
	for _, n := range notices {
		sb.WriteString(fmt.Sprintf("• [%s](%s)\n", n.Title, n.URL))
	}
	return sb.String()
}
