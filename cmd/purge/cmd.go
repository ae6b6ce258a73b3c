package purge

import (
	"context"
	"os"

	"github.com/appship-labs/appship/cmd"
	"github.com/appship-labs/appship/configs"
	"github.com/appship-labs/appship/pkg/containers"
	"github.com/appship-labs/appship/pkg/metadata"
	"github.com/appship-labs/appship/pkg/storage"
	"github.com/appship-labs/appship/pkg/utils"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

// Command is the purge command declaration.
var Command = &cobra.Command{
	Use:   "purge",
	Short: "Removes a stored build manifest, optionally with the local images",
	Run:   run,
	Long:  ``,
}

var (
	commandConfig = configs.NewPurgeCommandConfig()
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

	rootLogger := logConfig.NewLogger("purge")

	if err := commandConfig.Validate(); err != nil {
		rootLogger.Error("configuration is invalid", "reason", err)
		return 1
	}

	storageImpl, resolveErr := cmd.GetStorageImpl(rootLogger)
	if resolveErr != nil {
		rootLogger.Error("failed resolving storage provider", "reason", resolveErr)
		return 1
	}

	manifestLookup := &storage.ManifestLookup{
		Project: commandConfig.Project,
		Image:   commandConfig.Name,
		Version: commandConfig.Version,
	}

	var purgeErr *multierror.Error

	if commandConfig.RemoveLocalImages {
		if fetched, fetchErr := storageImpl.FetchManifest(manifestLookup); fetchErr != nil {
			purgeErr = multierror.Append(purgeErr, fetchErr)
		} else {
			if mdBuild, mdErr := metadata.MDBuildFromInterface(fetched.Metadata()); mdErr != nil {
				purgeErr = multierror.Append(purgeErr, mdErr)
			} else {
				if client, clientErr := containers.GetDefaultClient(); clientErr != nil {
					purgeErr = multierror.Append(purgeErr, clientErr)
				} else {
					for _, ref := range []string{mdBuild.RegistryRef, mdBuild.LocalRef} {
						if ref == "" {
							continue
						}
						if err := containers.ImageRemove(context.Background(), client, rootLogger, ref); err != nil {
							purgeErr = multierror.Append(purgeErr, err)
						}
					}
				}
			}
		}
	}

	if err := storageImpl.RemoveManifest(manifestLookup); err != nil {
		purgeErr = multierror.Append(purgeErr, err)
	}

	if purgeErr.ErrorOrNil() != nil {
		rootLogger.Error("purge finished with errors", "reason", purgeErr)
		return 1
	}

	rootLogger.Info("Purge completed successfully.", "project", commandConfig.Project, "image", commandConfig.Name, "version", commandConfig.Version)

	return 0
}
