package directory

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/appship-labs/appship/pkg/naming"
	"github.com/appship-labs/appship/pkg/storage"
	"github.com/appship-labs/appship/pkg/utils"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const providerName = "directory"

type providerConfig struct {
	ManifestStorageRoot string `mapstructure:"manifest-storage-root"`
}

type provider struct {
	config *providerConfig
	logger hclog.Logger
}

// New returns a new instance of the provider.
func New(logger hclog.Logger) storage.Provider {
	return &provider{
		logger: logger,
	}
}

func (p *provider) Configure(mapConfig map[string]interface{}) error {
	pConfig := &providerConfig{}
	if err := mapstructure.Decode(&mapConfig, pConfig); err != nil {
		p.logger.Error("error when decoding configuration", "reason", err)
		return errors.Wrap(err, "failed decoding provider configuration")
	}
	if pConfig.ManifestStorageRoot == "" {
		return errors.New("manifest storage root not configured")
	}
	p.config = pConfig
	return nil
}

// FetchManifest fetches a build manifest by lookup.
func (p *provider) FetchManifest(q *storage.ManifestLookup) (storage.ManifestResult, error) {
	manifestPath := p.manifestPath(q.Project, q.Image, q.Version)
	if _, err := utils.CheckIfExistsAndIsRegular(manifestPath); err != nil {
		return nil, errors.Wrap(err, "failed resolving manifest file")
	}
	metadata, err := readMetadata(manifestPath)
	if err != nil {
		return nil, err
	}
	return &manifestResult{
		hostPath: manifestPath,
		metadata: metadata,
	}, nil
}

// ListManifests lists all stored build manifests.
func (p *provider) ListManifests() ([]storage.ManifestResult, error) {
	results := []storage.ManifestResult{}
	if _, err := os.Stat(p.config.ManifestStorageRoot); err != nil {
		if os.IsNotExist(err) {
			return results, nil
		}
		return nil, err
	}
	err := filepath.Walk(p.config.ManifestStorageRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || info.Name() != naming.MetadataFileName {
			return nil
		}
		metadata, readErr := readMetadata(path)
		if readErr != nil {
			p.logger.Warn("skipping unreadable manifest", "path", path, "reason", readErr)
			return nil
		}
		results = append(results, &manifestResult{hostPath: path, metadata: metadata})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed walking manifest storage")
	}
	return results, nil
}

// RemoveManifest removes a stored build manifest.
func (p *provider) RemoveManifest(q *storage.ManifestLookup) error {
	manifestPath := p.manifestPath(q.Project, q.Image, q.Version)
	if _, err := utils.CheckIfExistsAndIsRegular(manifestPath); err != nil {
		return errors.Wrap(err, "failed resolving manifest file")
	}
	return os.RemoveAll(filepath.Dir(manifestPath))
}

func (p *provider) StoreManifest(input *storage.ManifestStore) (*storage.ManifestStoreResult, error) {

	result := &storage.ManifestStoreResult{
		Provider: providerName,
	}

	manifestPath := p.manifestPath(input.Project, input.Image, input.Version)
	if err := os.MkdirAll(filepath.Dir(manifestPath), 0755); err != nil {
		return nil, errors.Wrap(err, "failed creating target storage directory")
	}

	metadataJSONBytes, jsonErr := json.MarshalIndent(&input.Metadata, "", "  ")
	if jsonErr != nil {
		return nil, errors.Wrap(jsonErr, "failed serializing build manifest to JSON")
	}
	if writeErr := ioutil.WriteFile(manifestPath, metadataJSONBytes, 0644); writeErr != nil {
		return nil, errors.Wrap(writeErr, "failed writing build manifest to file")
	}
	result.MetadataLocation = manifestPath

	return result, nil
}

func (p *provider) manifestPath(project, image, version string) string {
	return filepath.Join(p.config.ManifestStorageRoot,
		strings.ReplaceAll(project, "/", "_"), image, version, naming.MetadataFileName)
}

func readMetadata(path string) (map[string]interface{}, error) {
	metadata := map[string]interface{}{}
	metadataFile, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "failed reading build manifest")
	}
	defer metadataFile.Close()
	if jsonErr := json.NewDecoder(metadataFile).Decode(&metadata); jsonErr != nil {
		return nil, errors.Wrap(jsonErr, "failed decoding build manifest")
	}
	return metadata, nil
}
