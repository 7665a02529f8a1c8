package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/wicaksana/loan-engine/internal/config"
	"github.com/wicaksana/loan-engine/internal/repository"
	"github.com/wicaksana/loan-engine/internal/service"
)

func main() {
	log.Println("Starting loan reprocessing scheduler...")

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	loanService := service.NewLoanService(
		repository.NewLoanRepository(db),
		repository.NewEventRepository(db),
		redisClient,
		cfg,
	)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		log.Fatalf("Invalid scheduler timezone: %v", err)
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Nightly replay of every active loan so backdated charges and payments
	// submitted during the day land in their correct periods.
	_, err = c.AddFunc(cfg.Scheduler.ReprocessCron, func() {
		runReprocessing(loanService)
	})
	if err != nil {
		log.Fatalf("Error scheduling reprocessing job: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func runReprocessing(loanService *service.LoanService) {
	log.Println("Running nightly loan reprocessing job...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	businessDate := time.Now().UTC().Truncate(24 * time.Hour)

	loanIDs, err := loanService.ListActiveLoanIDs(ctx)
	if err != nil {
		log.Printf("Error listing active loans: %v", err)
		return
	}

	reprocessed := 0
	for _, loanID := range loanIDs {
		if err := loanService.ReprocessLoan(ctx, loanID, businessDate); err != nil {
			log.Printf("Error reprocessing loan %s: %v", loanID, err)
			continue
		}
		reprocessed++
	}

	log.Printf("Reprocessing job finished: %d/%d loans reprocessed", reprocessed, len(loanIDs))
}
