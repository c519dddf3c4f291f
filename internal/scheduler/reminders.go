package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/vocabot/internal/database"
)

// Notifier delivers a reminder to a user. The Telegram bot implements it.
type Notifier interface {
	NotifyDue(userID int64, action Action) error
}

// Reminder runs an hourly sweep over all users and pings those whose daily
// cycle has something due.
type Reminder struct {
	scheduler   *gocron.Scheduler
	users       *database.UserRepository
	assignments *database.AssignmentRepository
	notifier    Notifier
}

// NewReminder creates the reminder job. Call Start to begin the sweeps.
func NewReminder(users *database.UserRepository, assignments *database.AssignmentRepository, notifier Notifier) *Reminder {
	return &Reminder{
		scheduler:   gocron.NewScheduler(time.UTC),
		users:       users,
		assignments: assignments,
		notifier:    notifier,
	}
}

// Start begins running the hourly check in the background.
func (r *Reminder) Start() {
	r.scheduler.Every(1).Hour().Do(r.checkDueUsers)
	r.scheduler.StartAsync()
}

// Stop terminates the scheduled job.
func (r *Reminder) Stop() {
	r.scheduler.Stop()
}

func (r *Reminder) checkDueUsers() {
	ctx := context.Background()
	now := time.Now()

	users, err := r.users.GetAll(ctx)
	if err != nil {
		log.Printf("Error getting users for reminders: %v", err)
		return
	}

	for i := range users {
		user := &users[i]
		eligible, err := r.assignments.GetTestEligible(ctx, user.ID, now.Add(-TestWindow), 1)
		if err != nil {
			log.Printf("Error getting test eligible words for user %d: %v", user.ID, err)
			continue
		}

		action := Decide(user, len(eligible) > 0, now)
		if action.Verdict != DeliverNewWords && action.Verdict != AdministerTest {
			continue
		}
		if err := r.notifier.NotifyDue(user.ID, action); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
		}
	}
}
