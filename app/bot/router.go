package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/sahilcodelab/wbsu-notice-bot/app/database"
	"github.com/sahilcodelab/wbsu-notice-bot/app/semester"
	"github.com/sahilcodelab/wbsu-notice-bot/app/subscription"
	"github.com/sahilcodelab/wbsu-notice-bot/app/summary"
)

const maxSearchResults = 3

// commandKind is the closed set of things an incoming message can be.
// The input is pattern-matched once; each kind has one handler.
type commandKind int

const (
	cmdStart commandKind = iota
	cmdSemList
	cmdToggle
	cmdMySems
	cmdRefresh
	cmdLatest
	cmdFreeText
)

type command struct {
	kind commandKind
	arg  string // semester code for cmdToggle/cmdLatest, raw text for cmdFreeText
}

var latestPattern = regexp.MustCompile(`^/(\w+)_sem_update$`)

func parseCommand(text string) command {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)

	switch lower {
	case "/start":
		return command{kind: cmdStart}
	case "/semlist":
		return command{kind: cmdSemList}
	case "/mysems":
		return command{kind: cmdMySems}
	case "/notice":
		return command{kind: cmdRefresh}
	}

	if m := latestPattern.FindStringSubmatch(lower); m != nil {
		return command{kind: cmdLatest, arg: m[1]}
	}
	if code, ok := strings.CutPrefix(lower, "/sem"); ok && code != "" && !strings.Contains(code, " ") {
		return command{kind: cmdToggle, arg: code}
	}

	return command{kind: cmdFreeText, arg: text}
}

// Router interprets inbound chat text and produces a reply. It is
// stateless per invocation; the only durable state is the subscription
// store itself.
type Router struct {
	notices    database.NoticeRepository
	subs       *subscription.Store
	registry   *semester.Registry
	summarizer summary.Summarizer
	refresh    RefreshTrigger
}

func NewRouter(notices database.NoticeRepository, subs *subscription.Store,
	registry *semester.Registry, summarizer summary.Summarizer, refresh RefreshTrigger) *Router {
	return &Router{
		notices:    notices,
		subs:       subs,
		registry:   registry,
		summarizer: summarizer,
		refresh:    refresh,
	}
}

// Handle routes one inbound message and returns the reply text. Both
// the webhook and the long-poll loop land here.
func (r *Router) Handle(ctx context.Context, userID, text string) string {
	cmd := parseCommand(text)

	switch cmd.kind {
	case cmdStart:
		return r.handleStart(ctx, userID, cmd.arg)
	case cmdSemList:
		return r.handleSemList(ctx, userID, cmd.arg)
	case cmdToggle:
		return r.handleToggle(ctx, userID, cmd.arg)
	case cmdMySems:
		return r.handleMySems(ctx, userID, cmd.arg)
	case cmdRefresh:
		return r.handleRefresh(ctx, userID, cmd.arg)
	case cmdLatest:
		return r.handleLatest(ctx, userID, cmd.arg)
	default:
		return r.handleFreeText(ctx, userID, cmd.arg)
	}
}

func (r *Router) handleStart(_ context.Context, _, _ string) string {
	return "🫂 *WBSU Notice Bot*\n\n" +
		"🔹 /mysems - Your subscriptions\n" +
		"🔹 /semlist - All semester commands\n" +
		"🔹 /notice - Check for updates\n" +
		"🔹 /1_sem_update to /6_sem_update - Latest notice\n\n" +
		"Anything else is searched in stored notices."
}

func (r *Router) handleSemList(_ context.Context, _, _ string) string {
	var sb strings.Builder
	sb.WriteString("🎓 *Available Semesters:*\n\n")
	for _, s := range r.registry.All() {
		sb.WriteString(fmt.Sprintf("/sem%s - %s\n", s.Code, s.Name))
	}
	return sb.String()
}

func (r *Router) handleToggle(_ context.Context, userID, code string) string {
	if !r.registry.Valid(code) {
		return "❌ Invalid semester."
	}

	added, err := r.subs.Toggle(userID, code)
	if err != nil {
		// In-memory state is already toggled; the next successful
		// save persists it.
		slog.Error("Failed to persist subscription change", "user", userID, "error", err)
	}

	action := "removed"
	if added {
		action = "added"
	}
	return fmt.Sprintf("✅ %s %s successfully!", r.registry.Name(code), action)
}

func (r *Router) handleMySems(_ context.Context, userID, _ string) string {
	sems := r.subs.Semesters(userID)
	if len(sems) == 0 {
		return "ℹ️ You're not subscribed yet."
	}

	var sb strings.Builder
	sb.WriteString("📚 *Your Subscriptions:*\n")
	for _, code := range sems {
		sb.WriteString(r.registry.Name(code))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (r *Router) handleRefresh(_ context.Context, _, _ string) string {
	if r.refresh.TriggerAsync() {
		return "🔄 Checking for updates..."
	}
	return "⏳ A check is already running, results arrive shortly."
}

func (r *Router) handleLatest(_ context.Context, _, code string) string {
	if !r.registry.Valid(code) {
		return "❌ Invalid semester."
	}

	notice, err := r.notices.LatestBySemester(code)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			slog.Error("Failed to query latest notice", "semester", code, "error", err)
		}
		return "❌ No recent notice found."
	}
	return FormatLatest(r.registry.Name(code), notice)
}

func (r *Router) handleFreeText(ctx context.Context, _, text string) string {
	matches, err := r.notices.Search(text, maxSearchResults)
	if err != nil {
		slog.Error("Notice search failed", "query", text, "error", err)
	}
	if len(matches) > 0 {
		return FormatMatches(matches)
	}

	reply, err := r.summarizer.Reply(ctx, text)
	if err != nil {
		slog.Warn("Conversational fallback failed", "error", err)
		return "🤖 Sorry, couldn't find anything."
	}
	return reply
}
