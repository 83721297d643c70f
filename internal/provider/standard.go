package provider

import (
	"github.com/ironvale/configcore/internal/configstore"
	"github.com/ironvale/configcore/internal/infrastructure/database"
	"github.com/ironvale/configcore/internal/infrastructure/logging"
)

// Chain configures the standard provider chain.
type Chain struct {
	// Dir is the configuration file directory. Empty disables the file
	// provider.
	Dir string

	// DB enables the database provider when set.
	DB *database.DB

	Logger *logging.Logger
}

// Standard assembles the canonical bootstrap order for one identity:
// defaults, then database, then files, then environment. Loading in this
// order is what gives Environment values precedence over ConfigFile values,
// and so on down the rank — the store itself never compares ranks.
func Standard(id configstore.Identity, chain Chain) []configstore.Provider {
	providers := []configstore.Provider{NewDefaults()}
	if chain.DB != nil {
		providers = append(providers, NewSQLite(chain.DB))
	}
	if chain.Dir != "" {
		providers = append(providers, NewFile(chain.Dir, id, chain.Logger))
	}
	providers = append(providers, NewEnv())
	return providers
}
