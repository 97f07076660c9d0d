package e2e

import (
	"github.com/cucumber/godog"

	"github.com/jmassie/standard-forestry-operations-api/e2e/steps/application"
	"github.com/jmassie/standard-forestry-operations-api/e2e/steps/common"
)

// RegisterSteps registers all step definitions from modular packages.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	application.RegisterSteps(ctx, tc)
}
