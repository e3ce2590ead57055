package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/mail"
	"regexp"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	twilio "github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	lookupsv2 "github.com/twilio/twilio-go/rest/lookups/v2"
)

var e164Regex = regexp.MustCompile(`^\+[1-9]\d{7,14}$`) // ITU-T E.164

// IsE164 reports basic E.164 compliance.
func IsE164(number string) bool { return e164Regex.MatchString(number) }

// NormalizeEmail trims and lower-cases an address for comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ContactValidator checks provider contact details before they are stored.
// With nil clients it only performs local syntax checks.
type ContactValidator struct {
	tw             *twilio.RestClient
	sendGridAPIKey string
	remoteEmail    bool
	lookupMX       func(ctx context.Context, domain string) bool
}

func NewContactValidator(tw *twilio.RestClient, sendGridAPIKey string, remoteEmail bool) *ContactValidator {
	return &ContactValidator{
		tw:             tw,
		sendGridAPIKey: sendGridAPIKey,
		remoteEmail:    remoteEmail,
		lookupMX:       hasMX,
	}
}

// ValidatePhone returns (true,nil) when the number is E.164 and, with a
// Twilio client configured, Lookups v2 knows it.
func (v *ContactValidator) ValidatePhone(ctx context.Context, number string, country *string) (bool, error) {
	if !IsE164(number) {
		return false, nil
	}
	if v == nil || v.tw == nil {
		return true, nil
	}

	var params *lookupsv2.FetchPhoneNumberParams
	if country != nil && *country != "" {
		params = &lookupsv2.FetchPhoneNumberParams{CountryCode: country}
	}

	_, err := v.tw.LookupsV2.FetchPhoneNumber(number, params)
	if err == nil {
		return true, nil
	}
	if restErr, ok := err.(*twilioclient.TwilioRestError); ok {
		if restErr.Status == 404 {
			return false, nil
		}
		return false, fmt.Errorf("twilio lookup failed: %d %s: %w", restErr.Status, restErr.Error(), ErrExternalServiceFailure)
	}
	return false, err
}

// ValidateEmail checks syntax always, MX records when a lookup is
// configured, and the SendGrid deliverability verdict when remote
// validation is on.
func (v *ContactValidator) ValidateEmail(ctx context.Context, email string) (bool, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return false, nil
	}
	if v == nil {
		return true, nil
	}

	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return false, nil
	}
	if v.lookupMX != nil && !v.lookupMX(ctx, parts[1]) {
		return false, nil
	}
	if !v.remoteEmail || v.sendGridAPIKey == "" {
		return true, nil
	}

	req := sendgrid.GetRequest(v.sendGridAPIKey, "/v3/validations/email", "https://api.sendgrid.com")
	req.Method = "POST"
	req.Body = []byte(fmt.Sprintf(`{"email":%q}`, email))

	resp, err := sendgrid.API(req)
	if err != nil {
		return false, err
	}

	switch resp.StatusCode {
	case 200:
		var sg struct {
			Result struct {
				Verdict string `json:"verdict"`
			} `json:"result"`
		}
		if jsonErr := json.Unmarshal([]byte(resp.Body), &sg); jsonErr != nil {
			return false, fmt.Errorf("sendgrid JSON decode: %w", jsonErr)
		}
		verdict := strings.ToLower(sg.Result.Verdict)
		return verdict == "valid" || verdict == "risky", nil
	case 400: // SendGrid treats syntactically bad addresses as 400
		return false, nil
	default:
		return false, fmt.Errorf("sendgrid validation failed: status %d: %w", resp.StatusCode, ErrExternalServiceFailure)
	}
}

// SyntaxOnlyContactValidator skips DNS and remote checks. Used in tests and
// local runs.
func SyntaxOnlyContactValidator() *ContactValidator {
	return &ContactValidator{}
}

func hasMX(ctx context.Context, domain string) bool {
	mx, err := net.DefaultResolver.LookupMX(ctx, domain)
	return err == nil && len(mx) > 0
}
