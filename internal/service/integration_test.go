package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"factlog.app/api/common/crypto"
	"factlog.app/api/internal/model"
	"factlog.app/api/internal/service"
	"factlog.app/api/internal/store"
)

var _ = Describe("IntegrationService", func() {
	var (
		ctx          context.Context
		integrations *mockIntegrationStore
		cryptoSvc    *crypto.Service
		svc          service.IntegrationService
	)

	BeforeEach(func() {
		ctx = context.Background()
		integrations = &mockIntegrationStore{}

		var err error
		cryptoSvc, err = crypto.New("0123456789abcdef0123456789abcdef")
		Expect(err).NotTo(HaveOccurred())

		svc = service.NewIntegrationService(integrations, cryptoSvc)
	})

	Describe("Upsert", func() {
		It("encrypts tokens at rest and returns them decrypted", func() {
			var stored *model.Integration
			integrations.upsertFn = func(_ context.Context, id int64, integration *model.Integration) (*model.Integration, error) {
				stored = integration
				out := *integration
				out.ID = id
				return &out, nil
			}

			refresh := "xoxr-refresh"
			result, err := svc.Upsert(ctx, service.UpsertIntegrationParams{
				Provider:     "slack",
				AccountID:    "T123",
				AccessToken:  "xoxb-token",
				RefreshToken: &refresh,
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(stored.AccessToken).NotTo(Equal("xoxb-token"))
			Expect(cryptoSvc.IsEncrypted(stored.AccessToken)).To(BeTrue())
			Expect(stored.RefreshToken).NotTo(BeNil())
			Expect(cryptoSvc.IsEncrypted(*stored.RefreshToken)).To(BeTrue())

			Expect(result.AccessToken).To(Equal("xoxb-token"))
			Expect(*result.RefreshToken).To(Equal("xoxr-refresh"))
			Expect(result.Status).To(Equal(model.IntegrationActive))
		})

		It("rejects missing required fields", func() {
			_, err := svc.Upsert(ctx, service.UpsertIntegrationParams{Provider: "slack"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Update", func() {
		It("re-encrypts only the fields that changed", func() {
			encrypted, err := cryptoSvc.Encrypt("xoxb-old")
			Expect(err).NotTo(HaveOccurred())

			integrations.getByIDFn = func(_ context.Context, id int64) (*model.Integration, error) {
				return &model.Integration{
					ID:          id,
					Provider:    "slack",
					AccountID:   "T123",
					AccessToken: encrypted,
					Status:      model.IntegrationActive,
				}, nil
			}

			var updated *model.Integration
			integrations.updateFn = func(_ context.Context, integration *model.Integration) (*model.Integration, error) {
				updated = integration
				out := *integration
				return &out, nil
			}

			newToken := "xoxb-new"
			result, err := svc.Update(ctx, 1, service.UpdateIntegrationParams{AccessToken: &newToken})
			Expect(err).NotTo(HaveOccurred())

			Expect(cryptoSvc.IsEncrypted(updated.AccessToken)).To(BeTrue())
			Expect(result.AccessToken).To(Equal("xoxb-new"))
			Expect(updated.Status).To(Equal(model.IntegrationActive))
		})
	})

	Describe("Deactivate", func() {
		It("flips the status to inactive with a status-only write", func() {
			encrypted, err := cryptoSvc.Encrypt("xoxb-token")
			Expect(err).NotTo(HaveOccurred())

			status := model.IntegrationActive
			integrations.updateStatusFn = func(_ context.Context, id int64, s model.IntegrationStatus) error {
				status = s
				return nil
			}
			integrations.getByIDFn = func(_ context.Context, id int64) (*model.Integration, error) {
				return &model.Integration{ID: id, AccessToken: encrypted, Status: status}, nil
			}

			result, err := svc.Deactivate(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Status).To(Equal(model.IntegrationInactive))
			Expect(result.AccessToken).To(Equal("xoxb-token"), "result is decrypted like any other read")
		})

		It("maps a missing integration to not found", func() {
			integrations.updateStatusFn = func(context.Context, int64, model.IntegrationStatus) error {
				return store.ErrNotFound
			}

			_, err := svc.Deactivate(ctx, 404)
			Expect(err).To(MatchError(ContainSubstring("not found")))
		})
	})

	Describe("token expiry", func() {
		now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

		It("treats tokens without an expiry as never expired", func() {
			integration := &model.Integration{}
			Expect(integration.IsTokenExpired(now)).To(BeFalse())
		})

		It("treats tokens expiring within five minutes as expired", func() {
			soon := now.Add(4 * time.Minute)
			integration := &model.Integration{ExpiresAt: &soon}
			Expect(integration.IsTokenExpired(now)).To(BeTrue())

			exactly := now.Add(5 * time.Minute)
			integration = &model.Integration{ExpiresAt: &exactly}
			Expect(integration.IsTokenExpired(now)).To(BeTrue())
		})

		It("treats tokens expiring later than five minutes as valid", func() {
			later := now.Add(6 * time.Minute)
			integration := &model.Integration{ExpiresAt: &later}
			Expect(integration.IsTokenExpired(now)).To(BeFalse())
		})
	})
})
