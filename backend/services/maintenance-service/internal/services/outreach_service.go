package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/config"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// OutreachService emails and texts providers about new requests. Every
// send is best effort: failures are logged and never block the caller.
type OutreachService struct {
	twilioClient   *twilio.RestClient
	sendgridClient *sendgrid.Client
	fromPhone      string
	fromEmail      string
	orgName        string
	sandbox        bool
}

func NewOutreachService(cfg *config.Config) *OutreachService {
	s := &OutreachService{
		fromPhone: cfg.LDFlag_TwilioFromPhone,
		fromEmail: cfg.LDFlag_SendgridFromEmail,
		orgName:   cfg.OrganizationName,
		sandbox:   cfg.LDFlag_SendgridSandboxMode,
	}
	if cfg.LDFlag_SMSUrgentRequests && cfg.TwilioAccountSID != "" {
		s.twilioClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	if cfg.LDFlag_SendProviderEmails && cfg.SendGridAPIKey != "" {
		s.sendgridClient = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	return s
}

// NewDisabledOutreachService never sends anything.
func NewDisabledOutreachService() *OutreachService {
	return &OutreachService{orgName: utils.OrganizationName}
}

// NotifyProviderOfRequest emails the draft to the provider and, for urgent
// requests, texts its phone.
func (s *OutreachService) NotifyProviderOfRequest(
	_ context.Context,
	provider *models.ServiceProvider,
	req *models.ServiceRequest,
	draft Draft,
) {
	if s == nil || provider == nil {
		return
	}
	log := utils.Logger.WithFields(logrus.Fields{
		"provider": provider.ID,
		"request":  req.ID,
	})

	if s.sendgridClient != nil && provider.Email != "" {
		from := mail.NewEmail(s.orgName, s.fromEmail)
		to := mail.NewEmail(provider.Name, provider.Email)
		htmlBody := "<p>" + strings.ReplaceAll(html.EscapeString(draft.Body), "\n", "<br>") + "</p>"
		msg := mail.NewSingleEmail(from, draft.Subject, to, draft.Body, htmlBody)
		msg.TrackingSettings = &mail.TrackingSettings{
			ClickTracking: &mail.ClickTrackingSetting{
				Enable: utils.Ptr(false),
			},
		}
		if s.sandbox {
			ms := mail.NewMailSettings()
			ms.SetSandboxMode(mail.NewSetting(true))
			msg.MailSettings = ms
		}
		resp, err := s.sendgridClient.Send(msg)
		switch {
		case err != nil:
			log.WithError(err).Warn("request email send failure")
		case resp.StatusCode >= 300:
			log.Warnf("request email rejected by SendGrid: %d", resp.StatusCode)
		default:
			log.Info("request email sent")
		}
	}

	if req.IsUrgent && s.twilioClient != nil && provider.Phone != nil && utils.IsE164(*provider.Phone) {
		params := &twilioApi.CreateMessageParams{}
		params.SetTo(*provider.Phone)
		params.SetFrom(s.fromPhone)
		params.SetBody(fmt.Sprintf("%s: urgent request - %s. Check your email or dashboard.", s.orgName, draft.Subject))
		if _, err := s.twilioClient.Api.CreateMessage(params); err != nil {
			log.WithError(err).Warn("urgent request SMS failure")
		}
	}
}

// TwilioClient exposes the client for contact validation; nil when SMS is off.
func (s *OutreachService) TwilioClient() *twilio.RestClient {
	if s == nil {
		return nil
	}
	return s.twilioClient
}
