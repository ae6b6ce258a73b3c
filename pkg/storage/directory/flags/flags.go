package flags

import (
	"os"
	"path/filepath"

	"github.com/appship-labs/appship/pkg/storage"
	"github.com/spf13/pflag"
)

type flags struct {
	ManifestStorageRoot string
}

// New returns an initialized instance of the flag provider.
func New() storage.FlagProvider {
	return &flags{}
}

func (fp *flags) GetFlags() *pflag.FlagSet {
	set := &pflag.FlagSet{}
	defaultRoot := ""
	if home, err := os.UserHomeDir(); err == nil {
		defaultRoot = filepath.Join(home, ".appship", "manifests")
	}
	set.StringVar(&fp.ManifestStorageRoot, "storage-provider.directory.manifest-storage-root", defaultRoot, "Full path to the root directory of the build manifest storage")
	return set
}

func (fp *flags) GetInitializedConfiguration() map[string]interface{} {
	return map[string]interface{}{
		"manifest-storage-root": fp.ManifestStorageRoot,
	}
}
