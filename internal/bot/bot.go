// Package bot is the Telegram delivery adapter. It maps messages and button
// callbacks onto the scheduler's verdicts and the quiz engine's synchronous
// contract; no learning logic lives here.
package bot

import (
	"context"
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocabot/internal/config"
	"github.com/example/vocabot/internal/database"
	"github.com/example/vocabot/internal/quiz"
	"github.com/example/vocabot/internal/scheduler"
	"github.com/example/vocabot/internal/words"
)

// Bot is the Telegram bot application.
type Bot struct {
	api     *tgbotapi.BotAPI
	cfg     *config.Config
	users   *database.UserRepository
	results *database.TestResultRepository
	batches *words.Service
	engine  *quiz.Engine

	// assignments is consulted for the test-eligible set the scheduler's
	// verdict depends on
	assignments *database.AssignmentRepository

	mu      sync.Mutex
	pending map[int64]*quiz.Question // outstanding question per user ID
}

// New creates a bot instance. The token is validated against the Telegram API.
func New(cfg *config.Config, users *database.UserRepository, assignments *database.AssignmentRepository,
	results *database.TestResultRepository, batches *words.Service, engine *quiz.Engine) (*Bot, error) {

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %v", err)
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		users:       users,
		results:     results,
		batches:     batches,
		engine:      engine,
		assignments: assignments,
		pending:     make(map[int64]*quiz.Question),
	}, nil
}

// Start runs the update loop until the context is canceled.
func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// NotifyDue implements scheduler.Notifier: it pings a user whose daily cycle
// has words or a test waiting.
func (b *Bot) NotifyDue(userID int64, action scheduler.Action) error {
	user, err := b.users.GetByID(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("failed to resolve user %d: %v", userID, err)
	}

	var text string
	switch action.Verdict {
	case scheduler.AdministerTest:
		text = "Time to test yesterday's words! Send /words to begin."
	case scheduler.DeliverNewWords:
		text = "Your new daily words are ready. Send /words to get them."
	default:
		return nil
	}

	msg := tgbotapi.NewMessage(user.TelegramID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %v", err)
	}
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in update handler: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			log.Printf("Error handling callback: %v", err)
		}
	case update.Message != nil && update.Message.IsCommand():
		if err := b.handleCommand(ctx, update.Message); err != nil {
			log.Printf("Error handling command /%s: %v", update.Message.Command(), err)
		}
	case update.Message != nil:
		b.send(tgbotapi.NewMessage(update.Message.Chat.ID,
			"Use /words to get your daily words or answer with the buttons during a test."))
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

func (b *Bot) setPending(userID int64, q *quiz.Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if q == nil {
		delete(b.pending, userID)
		return
	}
	b.pending[userID] = q
}

// clearPendingIf drops the user's pending question only if it is still the
// given one, so a rejected duplicate callback cannot clobber the question a
// concurrent winning submission has already put up.
func (b *Bot) clearPendingIf(userID int64, q *quiz.Question) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending[userID] == q {
		delete(b.pending, userID)
	}
}

func (b *Bot) pendingQuestion(userID int64) *quiz.Question {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending[userID]
}
