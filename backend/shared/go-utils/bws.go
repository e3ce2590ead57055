package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sdk "github.com/bitwarden/sdk-go"
)

// bwsOrgID owns every secrets project of the platform.
const bwsOrgID = "5f0b3a52-8e61-4c1e-9a43-0c7d2b6e91f4"

const (
	bwsLoginAttempts = 5
	bwsFirstBackoff  = 500 * time.Millisecond
)

// SecretSource yields the key/value secrets of one project.
type SecretSource interface {
	ProjectSecrets(project string) (map[string]string, error)
}

// BWSSecretsClient reads projects from Bitwarden Secrets Manager.
type BWSSecretsClient struct {
	bw sdk.BitwardenClientInterface
}

// bwsRateLimited reports a 429 from the Bitwarden API. sdk-go has no typed
// status error.
func bwsRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "Too Many Requests")
}

// NewBWSSecretsClient logs in with BWS_ACCESS_TOKEN, backing off on 429s.
func NewBWSSecretsClient() (*BWSSecretsClient, error) {
	token := strings.TrimSpace(os.Getenv("BWS_ACCESS_TOKEN"))
	if token == "" {
		return nil, errors.New("BWS_ACCESS_TOKEN env var is missing or empty")
	}
	bw, err := sdk.NewBitwardenClient(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("initialising Bitwarden SDK client: %w", err)
	}

	wait := bwsFirstBackoff
	for attempt := 1; ; attempt++ {
		err = bw.AccessTokenLogin(token, nil)
		switch {
		case err == nil:
			return &BWSSecretsClient{bw: bw}, nil
		case !bwsRateLimited(err):
			bw.Close()
			return nil, fmt.Errorf("bitwarden login: %w", err)
		case attempt == bwsLoginAttempts:
			bw.Close()
			return nil, fmt.Errorf("bitwarden login after %d attempts: %w", attempt, err)
		}
		Logger.Warnf("Bitwarden rate limited login, retrying in %s", wait)
		time.Sleep(wait)
		wait *= 2
	}
}

func (c *BWSSecretsClient) Close() {
	if c != nil && c.bw != nil {
		c.bw.Close()
	}
}

// ProjectSecrets resolves the project by name (case-insensitive) and
// returns its secrets.
func (c *BWSSecretsClient) ProjectSecrets(project string) (map[string]string, error) {
	if strings.TrimSpace(project) == "" {
		return nil, errors.New("project name must not be empty")
	}
	projects, err := c.bw.Projects().List(bwsOrgID)
	if err != nil {
		return nil, fmt.Errorf("listing Bitwarden projects: %w", err)
	}
	projectID := ""
	for _, p := range projects.Data {
		if strings.EqualFold(p.Name, project) {
			projectID = p.ID
			break
		}
	}
	if projectID == "" {
		return nil, fmt.Errorf("bitwarden project %q not found", project)
	}

	synced, err := c.bw.Secrets().Sync(bwsOrgID, nil)
	if err != nil {
		return nil, fmt.Errorf("syncing Bitwarden secrets: %w", err)
	}
	out := map[string]string{}
	for _, s := range synced.Secrets {
		if s.ProjectID != nil && *s.ProjectID == projectID {
			out[s.Key] = s.Value
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no secrets found for project %q", project)
	}
	return out, nil
}

// envSecrets reads a fixed key list from the process environment.
type envSecrets struct{ keys []string }

func (e envSecrets) ProjectSecrets(string) (map[string]string, error) {
	out := make(map[string]string, len(e.keys))
	for _, k := range e.keys {
		if v, ok := os.LookupEnv(k); ok {
			out[k] = v
		}
	}
	return out, nil
}

// MergeSecrets reads each project from src in order. Later projects win.
func MergeSecrets(src SecretSource, projects ...string) (map[string]string, error) {
	out := map[string]string{}
	for _, project := range projects {
		secrets, err := src.ProjectSecrets(project)
		if err != nil {
			return nil, err
		}
		for k, v := range secrets {
			out[k] = v
		}
	}
	return out, nil
}

// LoadSecrets reads the service secrets from Bitwarden, or from the
// environment when BWS_ACCESS_TOKEN is unset.
func LoadSecrets(keys []string, projects ...string) (map[string]string, error) {
	if strings.TrimSpace(os.Getenv("BWS_ACCESS_TOKEN")) == "" {
		Logger.Warn("BWS_ACCESS_TOKEN not set; reading secrets from environment")
		return MergeSecrets(envSecrets{keys: keys}, "env")
	}
	client, err := NewBWSSecretsClient()
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return MergeSecrets(client, projects...)
}
