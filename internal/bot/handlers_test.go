package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestCallbackChatID(t *testing.T) {
	withMessage := &tgbotapi.CallbackQuery{
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 99}},
	}
	chatID, ok := callbackChatID(withMessage)
	assert.True(t, ok)
	assert.Equal(t, int64(99), chatID)

	// Telegram drops the message from callbacks older than 48 hours
	withoutMessage := &tgbotapi.CallbackQuery{From: &tgbotapi.User{ID: 7}}
	chatID, ok = callbackChatID(withoutMessage)
	assert.False(t, ok)
	assert.Equal(t, int64(7), chatID)
}
