package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sahilcodelab/wbsu-notice-bot/app/bot"
	"github.com/sahilcodelab/wbsu-notice-bot/app/database"
	"github.com/sahilcodelab/wbsu-notice-bot/app/subscription"
)

// Handler carries the dependencies of the HTTP endpoints.
type Handler struct {
	router      *bot.Router
	sender      bot.MessageSender
	notices     database.NoticeRepository
	subs        *subscription.Store
	sourceCount int
	version     string
}

func NewHandler(router *bot.Router, sender bot.MessageSender, notices database.NoticeRepository,
	subs *subscription.Store, sourceCount int, version string) *Handler {
	return &Handler{
		router:      router,
		sender:      sender,
		notices:     notices,
		subs:        subs,
		sourceCount: sourceCount,
		version:     version,
	}
}

func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, fmt.Sprintf("🤖 WBSU Notice Bot %s running", h.version))
}

func (h *Handler) HealthCheck(c *gin.Context) {
	noticeCount, err := h.notices.Count()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "error": err.Error()})
		return
	}

	resp := gin.H{
		"status":  "ok",
		"version": h.version,
		"sources": h.sourceCount,
		"notices": noticeCount,
	}
	if last, err := h.notices.LastChecked(); err == nil && last != nil {
		resp["last_checked"] = last
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetStats(c *gin.Context) {
	noticeCount, err := h.notices.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notices":     noticeCount,
		"subscribers": h.subs.Count(),
		"sources":     h.sourceCount,
	})
}

// Webhook receives one Telegram update per call and feeds it to the
// same router the long-poll path uses.
func (h *Handler) Webhook(c *gin.Context) {
	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		slog.Warn("Malformed webhook update", "error", err)
		c.String(http.StatusBadRequest, "ERROR")
		return
	}

	if update.Message == nil || update.Message.Text == "" || update.Message.From == nil {
		c.String(http.StatusOK, "OK")
		return
	}

	userID := strconv.FormatInt(update.Message.From.ID, 10)
	chatID := strconv.FormatInt(update.Message.Chat.ID, 10)

	reply := h.router.Handle(c.Request.Context(), userID, update.Message.Text)
	if reply != "" {
		if err := h.sender.Send(chatID, reply); err != nil {
			slog.Warn("Failed to send webhook reply", "chat", chatID, "error", err)
		}
	}

	c.String(http.StatusOK, "OK")
}
