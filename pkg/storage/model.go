package storage

import "github.com/spf13/pflag"

// FlagProvider defines an interface for the storage provider flag handling.
type FlagProvider interface {
	GetFlags() *pflag.FlagSet
	GetInitializedConfiguration() map[string]interface{}
}

// ManifestLookup is the build manifest query parameters configuration.
type ManifestLookup struct {
	Project string
	Image   string
	Version string
}

// ManifestStore is the input for a build manifest store operation.
type ManifestStore struct {
	Metadata interface{}

	Project string
	Image   string
	Version string
}

// ManifestResult contains the information about a resolved build manifest.
type ManifestResult interface {
	HostPath() string
	Metadata() map[string]interface{}
}

// ManifestStoreResult contains the information about the stored build manifest.
type ManifestStoreResult struct {
	MetadataLocation string
	Provider         string
}

// Provider represents a storage provider.
type Provider interface {
	Configure(map[string]interface{}) error

	// FetchManifest fetches a build manifest by lookup.
	FetchManifest(*ManifestLookup) (ManifestResult, error)
	// ListManifests lists all stored build manifests.
	ListManifests() ([]ManifestResult, error)
	// RemoveManifest removes a stored build manifest.
	RemoveManifest(*ManifestLookup) error

	StoreManifest(*ManifestStore) (*ManifestStoreResult, error)
}
