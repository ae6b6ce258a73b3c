package cmd

import (
	"github.com/appship-labs/appship/pkg/storage"
	directoryFlags "github.com/appship-labs/appship/pkg/storage/directory/flags"
	"github.com/appship-labs/appship/pkg/storage/resolver"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"
)

var (
	// StorageProvider is the configured storage provider.
	StorageProvider = ""
	// StorageDirectoryFlags provides the flags for the directory storage.
	StorageDirectoryFlags = directoryFlags.New()
)

// AddStorageFlags sets up storage provider flags.
func AddStorageFlags(set *pflag.FlagSet) {
	set.StringVar(&StorageProvider, "storage.provider", "directory", "Storage provider to use")
	set.AddFlagSet(StorageDirectoryFlags.GetFlags())
}

// GetStorageImpl returns the configured resolved storage provider.
func GetStorageImpl(logger hclog.Logger) (storage.Provider, error) {
	return resolver.ResolveProvider(logger.With(), StorageProvider, func() storage.FlagProvider {
		switch StorageProvider {
		case "directory":
			return StorageDirectoryFlags
		default:
			return nil
		}
	})
}
