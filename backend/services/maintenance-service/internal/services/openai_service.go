package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	internal_utils "github.com/lazar0830/sos-condo-sub000/backend/services/maintenance-service/internal/utils"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-models"
	"github.com/lazar0830/sos-condo-sub000/backend/shared/go-utils"
	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// Draft is advisory text for a human to edit before sending.
type Draft struct {
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Generated bool   `json:"generated"`
}

// RequestDraftInput is the context handed to the model for a request email.
type RequestDraftInput struct {
	Task       *models.MaintenanceTask
	Building   *models.Building
	Provider   *models.ServiceProvider
	SenderName string
	IsUrgent   bool
	Notes      *string
}

// OpenAIService wraps the OpenAI client. If client is nil, drafts come from
// fixed templates.
type OpenAIService struct {
	client *openai.Client
	org    string
}

// NewOpenAIService creates the service. Pass an empty apiKey to disable calls.
func NewOpenAIService(apiKey string) *OpenAIService {
	if apiKey == "" {
		return &OpenAIService{client: nil, org: utils.OrganizationName}
	}
	c := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIService{client: &c, org: utils.OrganizationName}
}

// DraftRequestEmail proposes an email asking a provider to take a task. It
// never fails: model errors fall back to the template.
func (s *OpenAIService) DraftRequestEmail(ctx context.Context, in RequestDraftInput) Draft {
	fallback := templateRequestEmail(s.org, in)
	if s.client == nil {
		return fallback
	}

	prompt := fmt.Sprintf(`Write a short, polite email asking a contractor to perform building maintenance.

Company: %s
Sender: %s
Contractor: %s (%s)
Building: %s, %s
Task: %s
Description: %s
Date: %s
Urgent: %t
Notes: %s

Return it by calling write_email(strict).`,
		s.org, in.SenderName, in.Provider.Name, in.Provider.Specialty,
		in.Building.Name, in.Building.Address, in.Task.Name, utils.Val(in.Task.Description),
		taskDateLabel(in.Task), in.IsUrgent, utils.Val(in.Notes))

	var out struct {
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"subject": map[string]string{"type": "string"},
			"body":    map[string]string{"type": "string"},
		},
		"required":             []string{"subject", "body"},
		"additionalProperties": false,
	}
	if err := s.callTool(ctx, "write_email", "Return the drafted email.", schema, prompt, &out); err != nil {
		utils.Logger.WithError(err).Warn("openai email draft failed; using template")
		return fallback
	}
	if strings.TrimSpace(out.Subject) == "" || strings.TrimSpace(out.Body) == "" {
		return fallback
	}
	return Draft{Subject: out.Subject, Body: out.Body, Generated: true}
}

// DraftChecklist proposes inspection steps for a task. Holiday dates are
// called out so the manager can confirm access.
func (s *OpenAIService) DraftChecklist(ctx context.Context, task *models.MaintenanceTask, component *models.Component) []string {
	holiday := ""
	if task.TaskDate != nil {
		holiday, _ = internal_utils.ObservedHoliday(*task.TaskDate)
	}
	fallback := templateChecklist(task, component, holiday)
	if s.client == nil {
		return fallback
	}

	componentLabel := "(none)"
	if component != nil {
		componentLabel = fmt.Sprintf("%s (%s / %s)", component.Name, component.Classification.Type, component.Classification.Category)
	}
	prompt := fmt.Sprintf(`List 3 to 8 concrete checklist steps for this maintenance task.
Task: %s
Specialty: %s
Component: %s
Description: %s
Holiday on the scheduled date: %s

Return them by calling write_checklist(strict).`,
		task.Name, task.Specialty, componentLabel, utils.Val(task.Description), holiday)

	var out struct {
		Items []string `json:"items"`
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"items": map[string]any{"type": "array", "items": map[string]string{"type": "string"}},
		},
		"required":             []string{"items"},
		"additionalProperties": false,
	}
	if err := s.callTool(ctx, "write_checklist", "Return checklist steps.", schema, prompt, &out); err != nil || len(out.Items) == 0 {
		if err != nil {
			utils.Logger.WithError(err).Warn("openai checklist draft failed; using template")
		}
		return fallback
	}
	return out.Items
}

func (s *OpenAIService) callTool(ctx context.Context, name, description string, schema map[string]any, prompt string, out any) error {
	fn := shared.FunctionDefinitionParam{
		Name:        name,
		Description: openai.String(description),
		Strict:      openai.Bool(true),
		Parameters:  schema,
	}
	req := openai.ChatCompletionNewParams{
		Model: shared.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage("You assist property managers of " + s.org + "."),
			openai.UserMessage(prompt),
		},
		Tools: []openai.ChatCompletionToolParam{{
			Function: fn,
		}},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: name,
				},
			},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	resp, err := s.client.Chat.Completions.New(ctx, req)
	if err != nil {
		return fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return fmt.Errorf("openai: no function call returned")
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.ToolCalls[0].Function.Arguments), out); err != nil {
		return fmt.Errorf("unmarshal %s result: %w", name, err)
	}
	return nil
}

func taskDateLabel(t *models.MaintenanceTask) string {
	switch {
	case t.TaskDate != nil:
		return t.TaskDate.Format("Monday, January 2, 2006")
	case t.StartDate != nil && t.EndDate != nil:
		return fmt.Sprintf("%s from %s to %s", strings.ToLower(string(t.Recurrence)),
			t.StartDate.Format("2006-01-02"), t.EndDate.Format("2006-01-02"))
	}
	return "to be scheduled"
}

func templateRequestEmail(org string, in RequestDraftInput) Draft {
	subject := fmt.Sprintf("Service request: %s at %s", in.Task.Name, in.Building.Name)
	if in.IsUrgent {
		subject = "URGENT - " + subject
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", in.Provider.Name)
	fmt.Fprintf(&b, "%s would like to request your services for \"%s\" at %s (%s).\n",
		org, in.Task.Name, in.Building.Name, in.Building.Address)
	fmt.Fprintf(&b, "Date: %s\n", taskDateLabel(in.Task))
	if d := utils.Val(in.Task.Description); d != "" {
		fmt.Fprintf(&b, "Details: %s\n", d)
	}
	if n := utils.Val(in.Notes); n != "" {
		fmt.Fprintf(&b, "Notes: %s\n", n)
	}
	b.WriteString("\nPlease accept or refuse the request from your dashboard.\n\n")
	fmt.Fprintf(&b, "Thank you,\n%s\n%s\n", in.SenderName, org)
	return Draft{Subject: subject, Body: b.String()}
}

func templateChecklist(task *models.MaintenanceTask, component *models.Component, holiday string) []string {
	items := []string{
		"Confirm access with the building manager",
		fmt.Sprintf("Perform: %s", task.Name),
	}
	if component != nil {
		items = append(items, fmt.Sprintf("Inspect %s and note its condition", component.Name))
		if component.WarrantyEndDate != nil && task.TaskDate != nil && !component.WarrantyEndDate.Before(*task.TaskDate) {
			items = append(items, "Component is under warranty; check coverage before replacing parts")
		}
	}
	if holiday != "" {
		items = append(items, fmt.Sprintf("Scheduled date is %s; confirm the site is open", holiday))
	}
	return append(items, "Record cost and attach the report to the service request")
}
