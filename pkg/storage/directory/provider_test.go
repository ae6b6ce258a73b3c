package directory

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/appship-labs/appship/pkg/storage"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestStoreFetchListRemove(t *testing.T) {

	storageRoot, err := ioutil.TempDir("", "manifest-storage")
	require.Nil(t, err, "expected temp directory to be created")
	defer os.RemoveAll(storageRoot)

	provider := New(hclog.Default())
	require.Nil(t, provider.Configure(map[string]interface{}{
		"manifest-storage-root": storageRoot,
	}), "expected provider to configure")

	storeResult, err := provider.StoreManifest(&storage.ManifestStore{
		Metadata: map[string]interface{}{
			"image":   "test-app",
			"version": "0.1.0",
		},
		Project: "acme-project",
		Image:   "test-app",
		Version: "0.1.0",
	})
	require.Nil(t, err, "expected manifest to be stored")
	assert.Equal(t, "directory", storeResult.Provider)

	fetched, err := provider.FetchManifest(&storage.ManifestLookup{
		Project: "acme-project",
		Image:   "test-app",
		Version: "0.1.0",
	})
	require.Nil(t, err, "expected manifest to be fetched")
	assert.Equal(t, storeResult.MetadataLocation, fetched.HostPath())
	assert.Equal(t, "test-app", fetched.Metadata()["image"])

	listed, err := provider.ListManifests()
	require.Nil(t, err, "expected manifests to be listed")
	assert.Len(t, listed, 1)

	require.Nil(t, provider.RemoveManifest(&storage.ManifestLookup{
		Project: "acme-project",
		Image:   "test-app",
		Version: "0.1.0",
	}), "expected manifest to be removed")

	listed, err = provider.ListManifests()
	require.Nil(t, err, "expected manifests to be listed")
	assert.Len(t, listed, 0)
}

func TestProviderRequiresStorageRoot(t *testing.T) {
	provider := New(hclog.Default())
	assert.NotNil(t, provider.Configure(map[string]interface{}{}))
}
