package ls

import (
	"os"
	"time"

	"github.com/appship-labs/appship/cmd"
	"github.com/appship-labs/appship/configs"
	"github.com/appship-labs/appship/pkg/metadata"
	"github.com/appship-labs/appship/pkg/utils"
	"github.com/spf13/cobra"
)

// Command is the ls command declaration.
var Command = &cobra.Command{
	Use:   "ls",
	Short: "Lists stored build manifests",
	Run:   run,
	Long:  ``,
}

var (
	logConfig = configs.NewLogginConfig()
)

func initFlags() {
	Command.Flags().AddFlagSet(logConfig.FlagSet())
	// Storage provider flags:
	cmd.AddStorageFlags(Command.Flags())
}

func init() {
	initFlags()
}

func run(cobraCommand *cobra.Command, _ []string) {
	os.Exit(processCommand())
}

func processCommand() int {

	cleanup := utils.NewDefers()
	defer cleanup.CallAll()

	rootLogger := logConfig.NewLogger("ls")

	storageImpl, resolveErr := cmd.GetStorageImpl(rootLogger)
	if resolveErr != nil {
		rootLogger.Error("failed resolving storage provider", "reason", resolveErr)
		return 1
	}

	manifests, listErr := storageImpl.ListManifests()
	if listErr != nil {
		rootLogger.Error("failed listing build manifests", "reason", listErr)
		return 1
	}

	for _, manifest := range manifests {
		mdBuild, mdErr := metadata.MDBuildFromInterface(manifest.Metadata())
		if mdErr != nil {
			rootLogger.Warn("skipping undecodable manifest", "path", manifest.HostPath(), "reason", mdErr)
			continue
		}
		rootLogger.Info("build",
			"project", mdBuild.Image.Project,
			"image", mdBuild.Image.Image,
			"version", mdBuild.Image.Version,
			"base", mdBuild.BaseImage,
			"pushed", mdBuild.Pushed,
			"created-at", time.Unix(mdBuild.CreatedAtUTC, 0).UTC().Format(time.RFC3339),
			"path", manifest.HostPath())
	}

	return 0
}
