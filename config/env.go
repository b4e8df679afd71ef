package config

import (
	"os"
	"strings"
)

// Environment represents the current runtime environment
type Environment string

const (
	Development        Environment = "development"
	Test               Environment = "test"
	CI                 Environment = "ci"
	Production         Environment = "production"
	IntegrationTesting Environment = "IntegrationTesting"
	FunctionalTesting  Environment = "FunctionalTesting"
)

// GetEnvironment determines the current environment
func GetEnvironment() Environment {
	env := strings.TrimSpace(os.Getenv("ENV"))

	// Provisioned test environments win over CI detection so that container
	// backed suites behave the same locally and in pipelines.
	switch {
	case strings.EqualFold(env, string(IntegrationTesting)):
		return IntegrationTesting
	case strings.EqualFold(env, string(FunctionalTesting)):
		return FunctionalTesting
	}

	if os.Getenv("CI") == "true" {
		return CI
	}

	switch strings.ToLower(env) {
	case "production":
		return Production
	case "test":
		return Test
	case "development":
		return Development
	default:
		return Development // Default to development
	}
}

// IsDevelopment returns true if the current environment is development
func IsDevelopment() bool {
	return GetEnvironment() == Development
}

// IsProduction returns true if the current environment is production
func IsProduction() bool {
	return GetEnvironment() == Production
}

// IsTesting reports whether the environment runs under any test harness.
func (e Environment) IsTesting() bool {
	switch e {
	case Test, CI, IntegrationTesting, FunctionalTesting:
		return true
	}
	return false
}
