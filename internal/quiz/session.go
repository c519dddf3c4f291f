package quiz

import (
	"time"

	"github.com/google/uuid"

	"github.com/example/vocabot/pkg/models"
)

// Direction says which way a question asks for the translation.
type Direction int

const (
	// EnglishToTranslation shows the english word, options are translations.
	EnglishToTranslation Direction = iota
	// TranslationToEnglish shows the translation, options are english words.
	TranslationToEnglish
)

// Question is one multiple-choice question. CorrectOption carries the literal
// correct text so an answer can be verified later without another catalog
// lookup; a distractor that happens to render identically therefore counts as
// correct.
type Question struct {
	WordID        int64
	Prompt        string
	Direction     Direction
	Options       []string
	CorrectOption string
	AudioRef      string // optional pronunciation reference, empty when unavailable
}

// AnswerOutcome is the result of a single submitted answer.
type AnswerOutcome struct {
	IsCorrect bool
}

// Session holds the state of one quiz run over a fixed word set. The word
// order is fixed at session start; only direction and option order are
// randomized per question.
type Session struct {
	ID        uuid.UUID
	UserID    int64
	Words     []models.TestWord
	Index     int
	Correct   int
	StartedAt time.Time

	// answering is set while an answer for the current question is being
	// persisted; a duplicate submission arriving meanwhile is rejected
	// without touching the session.
	answering bool
}

// wordIDs returns the ids of all words in the session.
func (s *Session) wordIDs() []int64 {
	ids := make([]int64, len(s.Words))
	for i, w := range s.Words {
		ids[i] = w.ID
	}
	return ids
}

// Remaining reports how many questions are left, the outstanding one included.
func (s *Session) Remaining() int {
	if s.Index >= len(s.Words) {
		return 0
	}
	return len(s.Words) - s.Index
}
