package main

import (
	"log"
	"os"

	api "jobtrail-backend/cmd/api"
	authdomain "jobtrail-backend/internal/auth/domain"
	authRepo "jobtrail-backend/internal/auth/repository"
	authUsecase "jobtrail-backend/internal/auth/usecase"
	emaildomain "jobtrail-backend/internal/email/domain"
	emailRepo "jobtrail-backend/internal/email/repository"
	emailUsecase "jobtrail-backend/internal/email/usecase"
	"jobtrail-backend/pkg/config"
	"jobtrail-backend/pkg/database"
	"jobtrail-backend/pkg/gmail"
	"jobtrail-backend/pkg/imap"
	"jobtrail-backend/pkg/mailparse"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&emaildomain.TrackedMailbox{},
		&emaildomain.FetchCheckpoint{},
		&emaildomain.EmailRecord{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	mailboxRepo := emailRepo.NewMailboxRepository(db)
	recordRepo := emailRepo.NewEmailRecordRepository(db)
	checkpointRepo := emailRepo.NewCheckpointRepository(db)

	// Initialize external services
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)
	imapService := imap.NewService(cfg.IMAPTimeout)

	// Initialize use cases (dependency injection)
	allocator := emailUsecase.NewAddressAllocator(mailboxRepo, cfg.TrackingDomain)
	tracker := emailUsecase.NewJobTracker()
	orchestrator := emailUsecase.NewFetchOrchestrator(
		emailUsecase.NewIMAPConnector(imapService),
		mailparse.NewParser(),
		recordRepo,
		checkpointRepo,
		mailboxRepo,
		cfg.FetchWorkers,
	)

	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, cfg)
	emailUsecaseInstance := emailUsecase.NewEmailUsecase(mailboxRepo, recordRepo, allocator, tracker, orchestrator, gmailService, cfg)

	// Provision a tracking address for every new account so the signup
	// wizard can show it right away.
	authUsecaseInstance.SetSignupCallback(emailUsecaseInstance.BootstrapMailbox)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, emailUsecaseInstance, cfg)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Printf("Server starting on port %s", port)
	if err := handler.Start(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
