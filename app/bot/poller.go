package bot

import (
	"context"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Poller consumes Telegram updates via long polling and feeds them to
// the router. It is the webhook's transport-level twin: both converge
// on Router.Handle.
type Poller struct {
	api    *tgbotapi.BotAPI
	router *Router
	sender MessageSender
}

func NewPoller(api *tgbotapi.BotAPI, router *Router, sender MessageSender) *Poller {
	return &Poller{api: api, router: router, sender: sender}
}

// Run blocks until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30

	updates := p.api.GetUpdatesChan(updateCfg)
	defer p.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			p.handleUpdate(ctx, update)
		}
	}
}

func (p *Poller) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	userID := strconv.FormatInt(update.Message.From.ID, 10)
	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)

	reply := p.router.Handle(ctx, userID, update.Message.Text)
	if reply == "" {
		return
	}

	if err := p.sender.Send(chatID, reply); err != nil {
		slog.Warn("Failed to send reply", "chat", chatID, "error", err)
	}
}
