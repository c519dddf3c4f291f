package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/vocabot/internal/bot"
	"github.com/example/vocabot/internal/config"
	"github.com/example/vocabot/internal/database"
	"github.com/example/vocabot/internal/excel"
	"github.com/example/vocabot/internal/quiz"
	"github.com/example/vocabot/internal/scheduler"
	"github.com/example/vocabot/internal/tts"
	"github.com/example/vocabot/internal/words"
)

func main() {
	importFile := flag.String("import", "", "import words from an Excel or CSV file and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg.DBDriver, cfg.DBURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wordRepo := database.NewWordRepository(db)
	userRepo := database.NewUserRepository(db)
	assignmentRepo := database.NewAssignmentRepository(db)
	resultRepo := database.NewTestResultRepository(db)

	if *importFile != "" {
		result, err := excel.ImportWords(ctx, wordRepo, excel.DefaultImportConfig(*importFile))
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		log.Printf("Import finished: %d processed, %d created, %d skipped, %d errors",
			result.TotalProcessed, result.Created, result.Skipped, len(result.Errors))
		for _, e := range result.Errors {
			log.Printf("Import error: %s", e)
		}
		return
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	// Make sure the catalog can cover at least two daily batches
	count, err := wordRepo.Count(ctx)
	if err != nil {
		log.Fatalf("Failed to count words: %v", err)
	}
	if count < cfg.WordsPerDay*2 {
		inserted, err := database.SeedSampleWords(ctx, wordRepo)
		if err != nil {
			log.Fatalf("Failed to seed sample words: %v", err)
		}
		log.Printf("Seeded %d sample words", inserted)
	}

	batchService := words.NewService(wordRepo, assignmentRepo, cfg.WordsPerDay)
	engine := quiz.NewEngine(wordRepo, assignmentRepo, resultRepo, quiz.Options{
		OptionsCount:   cfg.OptionsCount,
		PassPercentage: cfg.PassPercentage,
		Pronouncer:     tts.New(cfg.AudioDir),
	})

	b, err := bot.New(cfg, userRepo, assignmentRepo, resultRepo, batchService, engine)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	var reminder *scheduler.Reminder
	if cfg.SchedulerEnabled {
		reminder = scheduler.NewReminder(userRepo, assignmentRepo, b)
		reminder.Start()
		defer reminder.Stop()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}
	log.Println("Bot stopped")
}
