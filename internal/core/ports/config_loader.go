package ports

import "go.trai.ch/texrun/internal/core/domain"

// ConfigLoader defines the interface for loading the build settings.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the settings for documents in dir. A missing configuration
	// file yields the defaults.
	Load(dir string) (domain.Settings, error)
}
