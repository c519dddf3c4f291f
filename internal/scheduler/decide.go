package scheduler

import (
	"time"

	"github.com/example/vocabot/pkg/models"
)

// Daily cycle thresholds. New-word eligibility fires at 23h while the test
// window opens at 24h; the intervals are intentionally unequal.
const (
	NewWordsInterval = 23 * time.Hour
	TestDueInterval  = 24 * time.Hour
	RetestInterval   = 23 * time.Hour

	// TestWindow is how long an assigned word stays eligible for testing.
	TestWindow = 48 * time.Hour
)

// Verdict is the action the caller should take for a user right now.
type Verdict int

const (
	// AwaitFirstContact means the user is unknown and must start a conversation first.
	AwaitFirstContact Verdict = iota
	// DeliverNewWords means a fresh daily batch is due.
	DeliverNewWords
	// AdministerTest means the user should be quizzed on recent words.
	AdministerTest
	// Wait means nothing is due yet; Action.Remaining says for how long.
	Wait
)

func (v Verdict) String() string {
	switch v {
	case AwaitFirstContact:
		return "await_first_contact"
	case DeliverNewWords:
		return "deliver_new_words"
	case AdministerTest:
		return "administer_test"
	case Wait:
		return "wait"
	}
	return "unknown"
}

// Action is the scheduler's decision for one user.
type Action struct {
	Verdict   Verdict
	Remaining time.Duration // set only for Wait
}

// Decide determines what is due for the user at the given instant. It is a
// pure function of the user's timestamps, the testEligible flag (whether the
// user has unlearned words assigned within the test window) and now; it never
// touches storage. Callers perform the chosen action and update the user's
// timestamps themselves afterwards.
func Decide(user *models.User, testEligible bool, now time.Time) Action {
	if user == nil {
		return Action{Verdict: AwaitFirstContact}
	}

	lastFetch := user.LastWordFetchDate
	if lastFetch == nil {
		return Action{Verdict: DeliverNewWords}
	}

	testDue := now.Sub(*lastFetch) > TestDueInterval &&
		(user.LastTestDate == nil || now.Sub(*user.LastTestDate) > RetestInterval)
	if testDue {
		if testEligible {
			return Action{Verdict: AdministerTest}
		}
		// Nothing to test, hand out a new batch instead
		return Action{Verdict: DeliverNewWords}
	}

	if now.Sub(*lastFetch) > NewWordsInterval {
		return Action{Verdict: DeliverNewWords}
	}

	return Action{
		Verdict:   Wait,
		Remaining: lastFetch.Add(NewWordsInterval).Sub(now),
	}
}
