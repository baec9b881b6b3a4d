package service

import (
	"log/slog"

	"factlog.app/api/common/crypto"
	"factlog.app/api/internal/mapper"
	"factlog.app/api/internal/queue"
	"factlog.app/api/internal/store"
)

type Services struct {
	stores   *store.Stores
	txRunner TxRunner
	crypto   *crypto.Service
	producer queue.Producer
	logger   *slog.Logger
}

func NewServices(stores *store.Stores, txRunner TxRunner, cryptoSvc *crypto.Service, producer queue.Producer, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	return &Services{
		stores:   stores,
		txRunner: txRunner,
		crypto:   cryptoSvc,
		producer: producer,
		logger:   logger,
	}
}

func (s *Services) Facts() FactService {
	return NewFactService(s.stores.Facts(), s.producer, s.logger)
}

func (s *Services) Ingest() IngestService {
	return NewIngestService(mapper.NewGitHub(), s.txRunner, s.producer, s.logger)
}

func (s *Services) Settings() SettingService {
	return NewSettingService(s.stores.Settings(), s.crypto)
}

func (s *Services) Integrations() IntegrationService {
	return NewIntegrationService(s.stores.Integrations(), s.crypto)
}

func (s *Services) SlackOAuth() SlackOAuthService {
	return NewSlackOAuthService(s.Settings(), s.Integrations(), s.logger)
}
