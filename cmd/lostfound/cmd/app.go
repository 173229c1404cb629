package cmd

import (
	"fmt"
	"log/slog"

	"github.com/vbonduro/lostfound/internal/config"
	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/imagestore/local"
	"github.com/vbonduro/lostfound/internal/mailer"
	"github.com/vbonduro/lostfound/internal/notify"
	"github.com/vbonduro/lostfound/internal/service"
	"github.com/vbonduro/lostfound/internal/store"
	"github.com/vbonduro/lostfound/internal/store/bolt"
	"github.com/vbonduro/lostfound/internal/store/memory"
	"github.com/vbonduro/lostfound/internal/store/sqlite"
	"github.com/vbonduro/lostfound/internal/university"
	"github.com/vbonduro/lostfound/internal/web"
)

// app is the wired process: one repository backend and the services over it.
type app struct {
	repo       store.Repository
	dispatcher *notify.Dispatcher
	services   web.Services
	logger     *slog.Logger
}

func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	repo, err := openRepository(cfg, logger)
	if err != nil {
		return nil, err
	}

	images, err := local.New(cfg.ImagePath)
	if err != nil {
		closeRepository(repo, logger)
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}

	dispatcher := notify.New(repo, newMailer(cfg, logger), cfg.PublicURL, logger)
	matches := service.NewMatchService(repo, dispatcher, logger)
	return &app{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
		services: web.Services{
			Items:         service.NewItemService(repo, matches, images, logger),
			Matches:       matches,
			Users:         service.NewUserService(repo, newVerifier(cfg, logger), dispatcher, cfg.AutoVerifyDomain, logger),
			Notifications: service.NewNotificationService(repo),
		},
	}, nil
}

// close waits for pending notifications before releasing the repository.
func (a *app) close() {
	a.dispatcher.Wait()
	closeRepository(a.repo, a.logger)
}

func openRepository(cfg *config.Config, logger *slog.Logger) (store.Repository, error) {
	switch cfg.StoreBackend {
	case config.BackendBolt:
		logger.Info("using bolt store", "path", cfg.BoltPath)
		repo, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		return repo, nil
	case config.BackendMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		return memory.New(), nil
	default:
		logger.Info("using sqlite store", "path", cfg.DBPath)
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return sqlite.New(database), nil
	}
}

func closeRepository(repo store.Repository, logger *slog.Logger) {
	if err := repo.Close(); err != nil {
		logger.Error("failed to close store", "error", err)
	}
}

// newMailer mirrors notifications over SMTP when a host is configured and
// discards them otherwise.
func newMailer(cfg *config.Config, logger *slog.Logger) mailer.Mailer {
	if cfg.SMTPHost == "" {
		return mailer.Nop{}
	}
	logger.Info("mirroring notifications by e-mail", "smtp_host", cfg.SMTPHost)
	return mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, logger)
}

func newVerifier(cfg *config.Config, logger *slog.Logger) university.Verifier {
	if cfg.UniversityAPIURL == "" {
		logger.Info("using demo university verifier")
		return university.NewStaticVerifier(university.DemoIDs, logger)
	}
	logger.Info("using university directory", "url", cfg.UniversityAPIURL)
	return university.NewHTTPVerifier(cfg.UniversityAPIURL, cfg.UniversityAPIToken, logger)
}
