package config

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	UniqueRunNumber  string
	UniqueRunnerID   string

	// Database
	DBUrl string

	// Change feed
	NatsURL string

	// Blob storage
	BlobDir string

	// Twilio / SendGrid / OpenAI for provider outreach
	TwilioAccountSID string
	TwilioAuthToken  string
	SendGridAPIKey   string
	OpenAIAPIKey     string

	// Auth
	RSAPrivateKey *rsa.PrivateKey
	RSAPublicKey  *rsa.PublicKey

	DefaultSuperAdminEmail    string
	DefaultSuperAdminPassword string

	// LaunchDarkly flags
	LDFlag_UsingIsolatedSchema    bool
	LDFlag_TwilioFromPhone        string
	LDFlag_SendgridFromEmail      string
	LDFlag_SendgridSandboxMode    bool
	LDFlag_SeedDbWithTestData     bool
	LDFlag_CORSHighSecurity       bool
	LDFlag_OpenAIDrafting         bool
	LDFlag_SendProviderEmails     bool
	LDFlag_SMSUrgentRequests      bool
	LDFlag_UseNatsChangeFeed      bool
	LDFlag_ValidateContactsRemote bool
}

const (
	OrganizationName    = utils.OrganizationName
	LDConnectionTimeout = 5 * time.Second
)

// build-time overrides
var (
	AppName             string
	UniqueRunNumber     string
	UniqueRunnerID      string
	LDServerContextKey  string
	LDServerContextKind string
)

// secretKeys are read from the environment when Bitwarden is not configured.
var secretKeys = []string{
	"DB_URL", "LD_SDK_KEY", "NATS_URL", "OPENAI_API_KEY",
	"RSA_PRIVATE_KEY_BASE64", "RSA_PUBLIC_KEY_BASE64",
	"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "SENDGRID_API_KEY",
	"DEFAULT_SUPER_ADMIN_EMAIL", "DEFAULT_SUPER_ADMIN_PASSWORD",
}

func LoadConfig() *Config {
	if AppName == "" {
		utils.Logger.Fatal("AppName ldflag missing")
	}
	if UniqueRunNumber == "" {
		utils.Logger.Fatal("UniqueRunNumber ldflag missing")
	}
	if UniqueRunnerID == "" {
		utils.Logger.Fatal("UniqueRunnerID ldflag missing")
	}
	if LDServerContextKey == "" || LDServerContextKind == "" {
		utils.Logger.Fatal("LD context ldflags missing")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	env := os.Getenv("ENV")
	if env == "" {
		utils.Logger.Fatal("ENV env var is missing")
	}
	appUrl := os.Getenv("APP_URL_FROM_ANYWHERE")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL_FROM_ANYWHERE env var is missing")
	}
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	blobDir := os.Getenv("BLOB_DIR")
	if blobDir == "" {
		blobDir = "/var/lib/" + AppName + "/blobs"
	}

	secrets, err := utils.LoadSecrets(
		secretKeys,
		fmt.Sprintf("shared-%s", env),
		fmt.Sprintf("%s-%s", AppName, env),
	)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to fetch secrets")
	}

	privKey := mustParsePrivateKey(secrets["RSA_PRIVATE_KEY_BASE64"])
	pubKey := mustParsePublicKey(secrets["RSA_PUBLIC_KEY_BASE64"])

	dbURL := secrets["DB_URL"]
	if dbURL == "" {
		utils.Logger.Fatal("DB_URL secret missing")
	}
	ldSDKKey := secrets["LD_SDK_KEY"]
	if ldSDKKey == "" {
		utils.Logger.Fatal("LD_SDK_KEY secret missing")
	}

	ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !ldClient.Initialized() {
		ldClient.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	defer ldClient.Close()

	ctx := ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), LDServerContextKey)

	boolFlag := func(name string) bool {
		v, err := ldClient.BoolVariation(name, ctx, false)
		if err != nil {
			utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", name)
		}
		utils.Logger.Debugf("%s flag: %t", name, v)
		return v
	}
	stringFlag := func(name, fallback string) string {
		v, err := ldClient.StringVariation(name, ctx, "")
		if err != nil {
			utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", name)
		}
		utils.Logger.Debugf("%s flag: %s", name, v)
		if v == "" {
			utils.Logger.Warnf("%s flag is empty, defaulting to %s", name, fallback)
			v = fallback
		}
		return v
	}

	cfg := &Config{
		OrganizationName:          OrganizationName,
		AppName:                   AppName,
		AppPort:                   appPort,
		AppUrl:                    appUrl,
		UniqueRunNumber:           UniqueRunNumber,
		UniqueRunnerID:            UniqueRunnerID,
		DBUrl:                     dbURL,
		BlobDir:                   blobDir,
		RSAPrivateKey:             privKey,
		RSAPublicKey:              pubKey,
		DefaultSuperAdminEmail:    secrets["DEFAULT_SUPER_ADMIN_EMAIL"],
		DefaultSuperAdminPassword: secrets["DEFAULT_SUPER_ADMIN_PASSWORD"],

		LDFlag_UsingIsolatedSchema:    boolFlag("using_isolated_schema"),
		LDFlag_SeedDbWithTestData:     boolFlag("seed_db_with_test_data"),
		LDFlag_CORSHighSecurity:       boolFlag("cors_high_security"),
		LDFlag_OpenAIDrafting:         boolFlag("openai_drafting"),
		LDFlag_SendProviderEmails:     boolFlag("send_provider_emails"),
		LDFlag_SMSUrgentRequests:      boolFlag("sms_urgent_requests"),
		LDFlag_SendgridSandboxMode:    boolFlag("sendgrid_sandbox_mode"),
		LDFlag_UseNatsChangeFeed:      boolFlag("use_nats_change_feed"),
		LDFlag_ValidateContactsRemote: boolFlag("validate_contacts_remote"),
		LDFlag_SendgridFromEmail:      stringFlag("sendgrid_from_email", "no-reply@sos-condo.local"),
		LDFlag_TwilioFromPhone:        stringFlag("twilio_from_phone", "+10005550006"),
	}

	if cfg.DefaultSuperAdminEmail == "" {
		cfg.DefaultSuperAdminEmail = "superadmin@sos-condo.local"
	}

	if cfg.LDFlag_OpenAIDrafting {
		cfg.OpenAIAPIKey = secrets["OPENAI_API_KEY"]
		if cfg.OpenAIAPIKey == "" {
			utils.Logger.Fatal("OPENAI_API_KEY secret missing but flag enabled")
		}
	}
	if cfg.LDFlag_SendProviderEmails || cfg.LDFlag_ValidateContactsRemote {
		cfg.SendGridAPIKey = secrets["SENDGRID_API_KEY"]
		if cfg.SendGridAPIKey == "" {
			utils.Logger.Fatal("SENDGRID_API_KEY secret missing but flag enabled")
		}
	}
	if cfg.LDFlag_SMSUrgentRequests || cfg.LDFlag_ValidateContactsRemote {
		cfg.TwilioAccountSID = secrets["TWILIO_ACCOUNT_SID"]
		cfg.TwilioAuthToken = secrets["TWILIO_AUTH_TOKEN"]
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
			utils.Logger.Fatal("TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN missing but flag enabled")
		}
	}
	if cfg.LDFlag_UseNatsChangeFeed {
		cfg.NatsURL = secrets["NATS_URL"]
		if cfg.NatsURL == "" {
			utils.Logger.Fatal("NATS_URL secret missing but flag enabled")
		}
	}

	return cfg
}

func mustParsePrivateKey(b64 string) *rsa.PrivateKey {
	if b64 == "" {
		utils.Logger.Fatal("RSA_PRIVATE_KEY_BASE64 secret missing")
	}
	privPEM, _ := base64.StdEncoding.DecodeString(b64)
	if block, _ := pem.Decode(privPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA private key")
	}
	return privKey
}

func mustParsePublicKey(b64 string) *rsa.PublicKey {
	if b64 == "" {
		utils.Logger.Fatal("RSA_PUBLIC_KEY_BASE64 secret missing")
	}
	pubPEM, _ := base64.StdEncoding.DecodeString(b64)
	if block, _ := pem.Decode(pubPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}
	return pubKey
}

func (c *Config) Close() {}
