package common

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/cucumber/godog"
)

// TestContext is the slice of the scenario context these steps need.
type TestContext interface {
	Request(ctx context.Context, method, path string, body any) error
	Status() int
	Body() []byte
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers generic request and assertion steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	s := &commonSteps{tc: tc}
	ctx.Step(`^the service is running$`, s.serviceIsRunning)
	ctx.Step(`^I send a (GET|POST|PUT|PATCH|DELETE) request to "([^"]*)"$`, s.sendRequest)
	ctx.Step(`^the response status should be (\d+)$`, s.statusShouldBe)
	ctx.Step(`^the response field "([^"]*)" should equal "([^"]*)"$`, s.fieldShouldEqual)
	ctx.Step(`^the response should contain "([^"]*)"$`, s.responseShouldContain)
}

type commonSteps struct {
	tc TestContext
}

func (s *commonSteps) serviceIsRunning(ctx context.Context) error {
	if err := s.tc.Request(ctx, http.MethodGet, "/health", nil); err != nil {
		return err
	}
	return s.statusShouldBe(ctx, http.StatusOK)
}

func (s *commonSteps) sendRequest(ctx context.Context, method, path string) error {
	return s.tc.Request(ctx, method, path, nil)
}

func (s *commonSteps) statusShouldBe(_ context.Context, want int) error {
	if got := s.tc.Status(); got != want {
		return fmt.Errorf("expected status %d, got %d: %s", want, got, s.tc.Body())
	}
	return nil
}

func (s *commonSteps) fieldShouldEqual(_ context.Context, field, want string) error {
	v, err := s.tc.GetResponseField(field)
	if err != nil {
		return err
	}
	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("expected %s=%q, got %q", field, want, got)
	}
	return nil
}

func (s *commonSteps) responseShouldContain(_ context.Context, fragment string) error {
	if !strings.Contains(string(s.tc.Body()), fragment) {
		return fmt.Errorf("response does not contain %q: %s", fragment, s.tc.Body())
	}
	return nil
}
