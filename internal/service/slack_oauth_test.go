package service_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/slack-go/slack"

	"factlog.app/api/common/crypto"
	"factlog.app/api/internal/model"
	"factlog.app/api/internal/service"
)

var _ = Describe("SlackOAuthService", func() {
	var (
		ctx          context.Context
		settings     *mockSettingStore
		integrations *mockIntegrationStore
		cryptoSvc    *crypto.Service
		exchanged    []string
		exchangeResp *slack.OAuthV2Response
		exchangeErr  error
		svc          service.SlackOAuthService
	)

	BeforeEach(func() {
		ctx = context.Background()
		settings = &mockSettingStore{}
		integrations = &mockIntegrationStore{}
		exchanged = nil
		exchangeErr = nil
		exchangeResp = &slack.OAuthV2Response{
			AccessToken: "xoxb-new-token",
			Scope:       "chat:write,channels:read",
		}
		exchangeResp.Team.ID = "T999"
		exchangeResp.Team.Name = "Acme"

		var err error
		cryptoSvc, err = crypto.New("0123456789abcdef0123456789abcdef")
		Expect(err).NotTo(HaveOccurred())

		// settings hold encrypted oauth client credentials
		clientID, err := cryptoSvc.Encrypt("client-id")
		Expect(err).NotTo(HaveOccurred())
		clientSecret, err := cryptoSvc.Encrypt("client-secret")
		Expect(err).NotTo(HaveOccurred())
		settings.getByProviderAndTypeFn = func(_ context.Context, provider, settingType string) (*model.Setting, error) {
			switch settingType {
			case "client_id":
				return &model.Setting{Provider: provider, SettingType: settingType, Value: clientID}, nil
			case "client_secret":
				return &model.Setting{Provider: provider, SettingType: settingType, Value: clientSecret}, nil
			}
			return nil, fmt.Errorf("unexpected setting %s", settingType)
		}

		exchange := func(_ context.Context, clientID, clientSecret, code string) (*slack.OAuthV2Response, error) {
			exchanged = []string{clientID, clientSecret, code}
			return exchangeResp, exchangeErr
		}

		svc = service.NewSlackOAuthServiceWithExchanger(
			service.NewSettingService(settings, cryptoSvc),
			service.NewIntegrationService(integrations, cryptoSvc),
			exchange,
			nil,
		)
	})

	It("exchanges the code with decrypted credentials and stores the integration", func() {
		integration, err := svc.HandleCallback(ctx, "tmp-code")
		Expect(err).NotTo(HaveOccurred())

		Expect(exchanged).To(Equal([]string{"client-id", "client-secret", "tmp-code"}))
		Expect(integrations.upsertCalls).To(Equal(1))
		Expect(integration.Provider).To(Equal("slack"))
		Expect(integration.AccountID).To(Equal("T999"))
		Expect(*integration.AccountName).To(Equal("Acme"))
		Expect(integration.AccessToken).To(Equal("xoxb-new-token"))
		Expect(integration.Scope).To(ConsistOf("chat:write", "channels:read"))
	})

	It("rejects an empty code", func() {
		_, err := svc.HandleCallback(ctx, "")
		Expect(err).To(HaveOccurred())
	})

	It("fails when client credentials are not configured", func() {
		settings.getByProviderAndTypeFn = nil // store returns not found

		_, err := svc.HandleCallback(ctx, "tmp-code")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("client_id"))
	})

	It("surfaces exchange failures", func() {
		exchangeErr = fmt.Errorf("invalid_code")

		_, err := svc.HandleCallback(ctx, "tmp-code")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid_code"))
	})

	It("fails when slack returns no access token", func() {
		exchangeResp = &slack.OAuthV2Response{}

		_, err := svc.HandleCallback(ctx, "tmp-code")
		Expect(err).To(HaveOccurred())
	})
})
