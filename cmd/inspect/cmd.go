package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/appship-labs/appship/cmd"
	"github.com/appship-labs/appship/configs"
	"github.com/appship-labs/appship/pkg/containers"
	"github.com/appship-labs/appship/pkg/metadata"
	"github.com/appship-labs/appship/pkg/storage"
	"github.com/appship-labs/appship/pkg/utils"
	"github.com/spf13/cobra"
)

// Command is the inspect command declaration.
var Command = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect a stored build manifest",
	Run:   run,
	Long:  ``,
}

var (
	commandConfig = configs.NewInspectCommandConfig()
	logConfig     = configs.NewLogginConfig()
)

func initFlags() {
	Command.Flags().AddFlagSet(commandConfig.FlagSet())
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

	rootLogger := logConfig.NewLogger("inspect")

	if err := commandConfig.Validate(); err != nil {
		rootLogger.Error("configuration is invalid", "reason", err)
		return 1
	}

	storageImpl, resolveErr := cmd.GetStorageImpl(rootLogger)
	if resolveErr != nil {
		rootLogger.Error("failed resolving storage provider", "reason", resolveErr)
		return 1
	}

	fetched, fetchErr := storageImpl.FetchManifest(&storage.ManifestLookup{
		Project: commandConfig.Project,
		Image:   commandConfig.Name,
		Version: commandConfig.Version,
	})
	if fetchErr != nil {
		rootLogger.Error("failed fetching build manifest", "reason", fetchErr)
		return 1
	}

	manifestJSON, jsonErr := json.MarshalIndent(fetched.Metadata(), "", "  ")
	if jsonErr != nil {
		rootLogger.Error("failed serializing build manifest", "reason", jsonErr)
		return 1
	}

	fmt.Println(string(manifestJSON))

	if !commandConfig.ImageConfig {
		return 0
	}

	mdBuild, mdErr := metadata.MDBuildFromInterface(fetched.Metadata())
	if mdErr != nil {
		rootLogger.Error("failed decoding build manifest", "reason", mdErr)
		return 1
	}

	client, clientErr := containers.GetDefaultClient()
	if clientErr != nil {
		rootLogger.Error("failed creating a Docker client", "reason", clientErr)
		return 1
	}

	imageMetadata, readErr := containers.ReadImageConfig(context.Background(), client, rootLogger.Named("image-config"), mdBuild.LocalRef)
	if readErr != nil {
		rootLogger.Error("failed reading image configuration from the Docker host", "local-ref", mdBuild.LocalRef, "reason", readErr)
		return 1
	}

	if port, ok := imageMetadata.Config.Config.EnvValue("PORT"); ok {
		rootLogger.Info("image serves on port", "port", port)
	}

	reconstructed := containers.HistoryToDockerfile(imageMetadata.Config.History, mdBuild.BaseImage)
	fmt.Println(strings.Join(reconstructed, "\n"))

	return 0
}
