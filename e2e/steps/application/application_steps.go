package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the scenario context these steps need.
type TestContext interface {
	Request(ctx context.Context, method, path string, body any) error
	Status() int
	Body() []byte
	GetResponseField(field string) (any, error)
	Set(key, value string)
	Get(key string) string
}

const keyApplicationID = "application_id"

// RegisterSteps registers application lifecycle steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	s := &applicationSteps{tc: tc}
	ctx.Step(`^I create an application$`, s.createApplication)
	ctx.Step(`^I submit details for "([^"]*)" with email "([^"]*)" and (\d+) setts?$`, s.submitDetails)
	ctx.Step(`^I patch the application with:$`, s.patchApplication)
	ctx.Step(`^I revoke the application because "([^"]*)"$`, s.revokeApplication)
	ctx.Step(`^I fetch the application from (v1|v2)$`, s.fetchApplication)
	ctx.Step(`^I list applications$`, s.listApplications)
	ctx.Step(`^the application should have (\d+) setts?$`, s.shouldHaveSetts)
	ctx.Step(`^the list should include the application$`, s.listShouldInclude)
	ctx.Step(`^the application id should be between 1 and 99999$`, s.idInRange)
}

type applicationSteps struct {
	tc TestContext
}

func (s *applicationSteps) path(version string) string {
	return fmt.Sprintf("/%s/applications/%s", version, s.tc.Get(keyApplicationID))
}

func (s *applicationSteps) createApplication(ctx context.Context) error {
	if err := s.tc.Request(ctx, http.MethodPost, "/v1/applications", nil); err != nil {
		return err
	}
	if s.tc.Status() != http.StatusCreated {
		return fmt.Errorf("create returned %d: %s", s.tc.Status(), s.tc.Body())
	}
	id, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Set(keyApplicationID, fmt.Sprint(id))
	return nil
}

func (s *applicationSteps) submitDetails(ctx context.Context, name, email string, setts int) error {
	entries := make([]map[string]any, setts)
	for i := range entries {
		entries[i] = map[string]any{
			"id":            fmt.Sprintf("S%d", i+1),
			"gridReference": fmt.Sprintf("NH %03d %03d", i, i),
			"entrances":     i + 1,
		}
	}
	body := map[string]any{
		"fullName":        name,
		"emailAddress":    email,
		"complyWithTerms": true,
		"setts":           entries,
	}
	return s.tc.Request(ctx, http.MethodPut, s.path("v1"), body)
}

func (s *applicationSteps) patchApplication(ctx context.Context, doc *godog.DocString) error {
	return s.tc.Request(ctx, http.MethodPatch, s.path("v2"), doc.Content)
}

func (s *applicationSteps) revokeApplication(ctx context.Context, reason string) error {
	body := map[string]string{"reason": reason, "revokedBy": "e2e"}
	return s.tc.Request(ctx, http.MethodDelete, s.path("v2"), body)
}

func (s *applicationSteps) fetchApplication(ctx context.Context, version string) error {
	return s.tc.Request(ctx, http.MethodGet, s.path(version), nil)
}

func (s *applicationSteps) listApplications(ctx context.Context) error {
	return s.tc.Request(ctx, http.MethodGet, "/v2/applications", nil)
}

func (s *applicationSteps) shouldHaveSetts(_ context.Context, want int) error {
	v, err := s.tc.GetResponseField("Setts")
	if err != nil {
		if want == 0 {
			return nil
		}
		return err
	}
	setts, ok := v.([]any)
	if !ok {
		return fmt.Errorf("Setts is not a list: %v", v)
	}
	if len(setts) != want {
		return fmt.Errorf("expected %d setts, got %d", want, len(setts))
	}
	return nil
}

func (s *applicationSteps) listShouldInclude(context.Context) error {
	var apps []struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(s.tc.Body(), &apps); err != nil {
		return fmt.Errorf("list response: %w", err)
	}
	want := s.tc.Get(keyApplicationID)
	for _, app := range apps {
		if fmt.Sprint(app.ID) == want {
			return nil
		}
	}
	return fmt.Errorf("application %s not in list", want)
}

func (s *applicationSteps) idInRange(context.Context) error {
	var id int
	if _, err := fmt.Sscan(s.tc.Get(keyApplicationID), &id); err != nil {
		return err
	}
	if id < 1 || id > 99999 {
		return fmt.Errorf("application id %d out of range", id)
	}
	return nil
}
