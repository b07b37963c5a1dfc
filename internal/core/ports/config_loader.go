package ports

import "go.trai.ch/shelf/internal/core/domain"

// ConfigLoader loads the project configuration, datasets and scenarios.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers shelf.yaml from cwd upwards. Defaults are returned when none exists.
	Load(cwd string) (*domain.Config, error)

	// LoadDataset reads the seed documents at path.
	LoadDataset(path string) (*domain.Dataset, error)

	// LoadScenario reads the scenario at path.
	LoadScenario(path string) (*domain.Scenario, error)
}
