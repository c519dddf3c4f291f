package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocabot/internal/quiz"
	"github.com/example/vocabot/internal/scheduler"
	"github.com/example/vocabot/pkg/models"
)

const callbackAnswerPrefix = "ans"

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	switch message.Command() {
	case "start":
		return b.handleStart(ctx, message)
	case "words":
		return b.handleWords(ctx, message)
	case "stats":
		return b.handleStats(ctx, message)
	default:
		b.send(tgbotapi.NewMessage(message.Chat.ID,
			"Unknown command. Use /words for your daily words or /stats for your progress."))
		return nil
	}
}

func (b *Bot) handleStart(ctx context.Context, message *tgbotapi.Message) error {
	if _, err := b.users.GetOrCreateByTelegramID(ctx, message.From.ID); err != nil {
		return fmt.Errorf("failed to register user: %v", err)
	}

	text := "Welcome! Every day I give you a batch of new words with translations, " +
		"and the next day I quiz you on them.\n\n" +
		"Send /words to receive your first batch."
	b.send(tgbotapi.NewMessage(message.Chat.ID, text))
	return nil
}

// handleWords drives the daily cycle: the scheduler decides whether the user
// gets a new batch, a test, or has to wait.
func (b *Bot) handleWords(ctx context.Context, message *tgbotapi.Message) error {
	user, err := b.users.GetOrCreateByTelegramID(ctx, message.From.ID)
	if err != nil {
		return fmt.Errorf("failed to get user: %v", err)
	}

	now := time.Now()
	eligible, err := b.assignments.GetTestEligible(ctx, user.ID, now.Add(-scheduler.TestWindow), b.cfg.WordsPerDay)
	if err != nil {
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Storage is unavailable right now, please try again later."))
		return fmt.Errorf("failed to get test eligible words: %v", err)
	}

	action := scheduler.Decide(user, len(eligible) > 0, now)
	switch action.Verdict {
	case scheduler.AdministerTest:
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Time to test yesterday's words!"))
		return b.startTest(ctx, message.Chat.ID, user, eligible)
	case scheduler.DeliverNewWords:
		return b.deliverBatch(ctx, message.Chat.ID, user, now)
	case scheduler.Wait:
		hours := int(action.Remaining.Hours())
		minutes := int(action.Remaining.Minutes()) % 60
		b.send(tgbotapi.NewMessage(message.Chat.ID,
			fmt.Sprintf("It's not time for new words yet. Try again in about %d h %d min.", hours, minutes)))
		return nil
	default:
		b.send(tgbotapi.NewMessage(message.Chat.ID, "Please send /start first."))
		return nil
	}
}

func (b *Bot) deliverBatch(ctx context.Context, chatID int64, user *models.User, now time.Time) error {
	batch, err := b.batches.DailyBatch(ctx, user.ID)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Storage is unavailable right now, please try again later."))
		return fmt.Errorf("failed to build daily batch: %v", err)
	}
	if len(batch) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "The dictionary has no words left for you — everything is learned!"))
		return nil
	}

	if err := b.users.UpdateLastWordFetch(ctx, user.ID, now); err != nil {
		return fmt.Errorf("failed to stamp word fetch: %v", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Today's %d new words:\n\n", len(batch))
	for i, w := range batch {
		fmt.Fprintf(&sb, "%d. %s — %s\n", i+1, w.EnglishWord, w.Translation)
	}
	sb.WriteString("\nLearn them well, tomorrow there will be a test!")
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
	return nil
}

func (b *Bot) startTest(ctx context.Context, chatID int64, user *models.User, eligible []models.TestWord) error {
	if _, err := b.engine.StartSession(user.ID, eligible); err != nil {
		return fmt.Errorf("failed to start session: %v", err)
	}
	return b.sendNextQuestion(ctx, chatID, user)
}

func (b *Bot) sendNextQuestion(ctx context.Context, chatID int64, user *models.User) error {
	question, err := b.engine.NextQuestion(ctx, user.ID)
	if err != nil {
		b.setPending(user.ID, nil)
		b.send(tgbotapi.NewMessage(chatID, "Storage is unavailable right now, the test was aborted."))
		return fmt.Errorf("failed to build question: %v", err)
	}
	if question == nil {
		return b.finishTest(ctx, chatID, user)
	}
	b.setPending(user.ID, question)

	var prompt string
	if question.Direction == quiz.EnglishToTranslation {
		prompt = fmt.Sprintf("Choose the translation of '%s':", question.Prompt)
	} else {
		prompt = fmt.Sprintf("Choose the english word for '%s':", question.Prompt)
	}

	// One button per row, like the original keyboard
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(question.Options))
	for i, option := range question.Options {
		data := fmt.Sprintf("%s:%d:%d", callbackAnswerPrefix, question.WordID, i)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(option, data)))
	}

	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(msg)

	if question.AudioRef != "" {
		b.send(tgbotapi.NewAudio(chatID, tgbotapi.FilePath(question.AudioRef)))
	}
	return nil
}

// callbackChatID resolves where to answer a callback query. Telegram omits
// the originating message from callbacks older than 48 hours; those fall
// back to the user's private chat and report false.
func callbackChatID(cq *tgbotapi.CallbackQuery) (int64, bool) {
	if cq.Message == nil {
		return cq.From.ID, false
	}
	return cq.Message.Chat.ID, true
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	// Acknowledge the button press immediately
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		return fmt.Errorf("failed to answer callback: %v", err)
	}

	chatID, hasMessage := callbackChatID(cq)
	if !hasMessage {
		b.send(tgbotapi.NewMessage(chatID, "This test has expired. Send /words to start over."))
		return nil
	}

	parts := strings.Split(cq.Data, ":")
	if len(parts) != 3 || parts[0] != callbackAnswerPrefix {
		return nil
	}
	wordID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("failed to parse callback word id: %v", err)
	}
	optionIdx, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("failed to parse callback option index: %v", err)
	}

	user, err := b.users.GetOrCreateByTelegramID(ctx, cq.From.ID)
	if err != nil {
		return fmt.Errorf("failed to get user: %v", err)
	}

	question := b.pendingQuestion(user.ID)
	if question == nil || question.WordID != wordID || optionIdx < 0 || optionIdx >= len(question.Options) {
		b.send(tgbotapi.NewMessage(chatID, "This test has expired. Send /words to start over."))
		return nil
	}
	selected := question.Options[optionIdx]

	outcome, err := b.engine.SubmitAnswer(ctx, user.ID, wordID, selected, question.CorrectOption)
	if errors.Is(err, quiz.ErrInvalidSession) {
		b.clearPendingIf(user.ID, question)
		b.send(tgbotapi.NewMessage(chatID, "This test has expired. Send /words to start over."))
		return nil
	}
	if err != nil {
		b.clearPendingIf(user.ID, question)
		b.send(tgbotapi.NewMessage(chatID, "Storage is unavailable right now, the test was aborted."))
		return fmt.Errorf("failed to submit answer: %v", err)
	}

	var feedback string
	if outcome.IsCorrect {
		feedback = fmt.Sprintf("✅ Correct! You chose '%s'.", selected)
	} else {
		feedback = fmt.Sprintf("❌ Wrong. You chose '%s', the correct answer is '%s'.",
			selected, question.CorrectOption)
	}
	b.send(tgbotapi.NewEditMessageText(chatID, cq.Message.MessageID, feedback))

	return b.sendNextQuestion(ctx, chatID, user)
}

func (b *Bot) finishTest(ctx context.Context, chatID int64, user *models.User) error {
	b.setPending(user.ID, nil)

	result, err := b.engine.FinishSession(ctx, user.ID)
	if err != nil {
		b.send(tgbotapi.NewMessage(chatID, "Storage is unavailable right now, the test was aborted."))
		return fmt.Errorf("failed to finish session: %v", err)
	}

	// The test counts as taken whether or not it was passed
	if err := b.users.UpdateLastTest(ctx, user.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to stamp test date: %v", err)
	}

	var text string
	if result.Passed {
		text = fmt.Sprintf("🎉 Congratulations, you passed! Your score: %.2f%%. "+
			"New words are coming tomorrow.", result.Percentage)
	} else {
		text = fmt.Sprintf("😔 You did not pass this time. Your score: %.2f%% "+
			"(need at least %.0f%%). The same words will be retested, review them and try again tomorrow!",
			result.Percentage, b.cfg.PassPercentage)
	}
	b.send(tgbotapi.NewMessage(chatID, text))
	return nil
}

func (b *Bot) handleStats(ctx context.Context, message *tgbotapi.Message) error {
	user, err := b.users.GetOrCreateByTelegramID(ctx, message.From.ID)
	if err != nil {
		return fmt.Errorf("failed to get user: %v", err)
	}

	learned, err := b.assignments.CountLearned(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to count learned words: %v", err)
	}
	latest, err := b.results.GetLatestForUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to get latest result: %v", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Words learned: %d\n", learned)
	if latest != nil {
		outcome := "failed"
		if latest.Passed {
			outcome = "passed"
		}
		fmt.Fprintf(&sb, "Last test: %.2f%% (%s) on %s\n",
			latest.Percentage, outcome, latest.TestDate.Format("2006-01-02"))
	} else {
		sb.WriteString("No tests taken yet.\n")
	}
	b.send(tgbotapi.NewMessage(message.Chat.ID, sb.String()))
	return nil
}
