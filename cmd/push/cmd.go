package push

import (
	"context"
	"os"

	"github.com/appship-labs/appship/cmd"
	"github.com/appship-labs/appship/configs"
	"github.com/appship-labs/appship/pkg/containers"
	"github.com/appship-labs/appship/pkg/metadata"
	"github.com/appship-labs/appship/pkg/refs"
	"github.com/appship-labs/appship/pkg/storage"
	"github.com/appship-labs/appship/pkg/tracing"
	"github.com/appship-labs/appship/pkg/utils"
	"github.com/docker/docker/api/types"
	"github.com/opentracing/opentracing-go"
	"github.com/spf13/cobra"
)

// Command is the push command declaration.
var Command = &cobra.Command{
	Use:   "push",
	Short: "Push a previously built application image to the registry",
	Run:   run,
	Long:  ``,
}

var (
	commandConfig = configs.NewPushCommandConfig()
	logConfig     = configs.NewLogginConfig()
	tracingConfig = configs.NewTracingConfig("appship-push")
)

func initFlags() {
	Command.Flags().AddFlagSet(commandConfig.FlagSet())
	Command.Flags().AddFlagSet(logConfig.FlagSet())
	Command.Flags().AddFlagSet(tracingConfig.FlagSet())
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

	rootLogger := logConfig.NewLogger("push")

	if err := commandConfig.Validate(); err != nil {
		rootLogger.Error("configuration is invalid", "reason", err)
		return 1
	}

	tracer, tracerCleanupFunc, tracerErr := tracing.GetTracer(rootLogger.Named("tracer"), tracingConfig)
	if tracerErr != nil {
		rootLogger.Error("failed constructing tracer", "reason", tracerErr)
		return 1
	}

	cleanup.Add(tracerCleanupFunc)

	spanPush := tracer.StartSpan("push")
	cleanup.Add(func() {
		spanPush.Finish()
	})

	registryRef, registryRefErr := refs.Registry(commandConfig.Registry, commandConfig.Project, commandConfig.Name, commandConfig.Version)
	if registryRefErr != nil {
		rootLogger.Error("failed composing registry image reference", "reason", registryRefErr)
		spanPush.SetBaggageItem("error", registryRefErr.Error())
		return 1
	}

	spanPush.SetTag("registry-ref", registryRef)

	storageImpl, resolveErr := cmd.GetStorageImpl(rootLogger)
	if resolveErr != nil {
		rootLogger.Error("failed resolving storage provider", "reason", resolveErr)
		spanPush.SetBaggageItem("error", resolveErr.Error())
		return 1
	}

	client, clientErr := containers.GetDefaultClient()
	if clientErr != nil {
		rootLogger.Error("failed creating a Docker client", "reason", clientErr)
		spanPush.SetBaggageItem("error", clientErr.Error())
		return 1
	}

	if _, findErr := containers.FindImageIDByTag(context.Background(), client, registryRef); findErr != nil {
		// the registry tag may be missing when the image was built with
		// another project setting; re-tag from the local ref if it exists:
		localRef, localRefErr := refs.Local(commandConfig.Name, commandConfig.Version)
		if localRefErr != nil {
			rootLogger.Error("failed composing local image reference", "reason", localRefErr)
			spanPush.SetBaggageItem("error", localRefErr.Error())
			return 1
		}
		if _, localFindErr := containers.FindImageIDByTag(context.Background(), client, localRef); localFindErr != nil {
			rootLogger.Error("image not found on the Docker host, build it first", "registry-ref", registryRef, "local-ref", localRef, "reason", findErr)
			spanPush.SetBaggageItem("error", findErr.Error())
			return 1
		}
		if tagErr := containers.ImageTag(context.Background(), client, rootLogger, localRef, registryRef); tagErr != nil {
			rootLogger.Error("failed tagging image for the registry", "local-ref", localRef, "registry-ref", registryRef, "reason", tagErr)
			spanPush.SetBaggageItem("error", tagErr.Error())
			return 1
		}
	}

	spanDockerPush := tracer.StartSpan("push-docker-push", opentracing.ChildOf(spanPush.Context()))
	spanDockerPush.SetTag("registry-ref", registryRef)

	var auth *types.AuthConfig
	if commandConfig.RegistryUser != "" {
		auth = &types.AuthConfig{
			Username: commandConfig.RegistryUser,
			Password: commandConfig.RegistryPassword,
		}
	}
	if err := containers.ImagePush(context.Background(), client, rootLogger, registryRef, auth); err != nil {
		rootLogger.Error("failed pushing application image", "reason", err)
		spanDockerPush.SetBaggageItem("error", err.Error())
		spanDockerPush.Finish()
		return 1
	}

	spanDockerPush.Finish()

	// mark the stored manifest as pushed; a missing manifest is not an error,
	// the image could have been built on another machine:
	manifestLookup := &storage.ManifestLookup{
		Project: commandConfig.Project,
		Image:   commandConfig.Name,
		Version: commandConfig.Version,
	}
	if fetched, fetchErr := storageImpl.FetchManifest(manifestLookup); fetchErr == nil {
		if mdBuild, mdErr := metadata.MDBuildFromInterface(fetched.Metadata()); mdErr == nil {
			// the stored manifest must describe the image that was pushed:
			ok, manifestName, manifestVersion := refs.Decompose(mdBuild.LocalRef)
			if !ok || manifestName != commandConfig.Name || manifestVersion != commandConfig.Version {
				rootLogger.Warn("stored manifest does not describe the pushed image, not updating", "local-ref", mdBuild.LocalRef)
			} else {
				mdBuild.Pushed = true
				if _, storeErr := storageImpl.StoreManifest(&storage.ManifestStore{
					Metadata: mdBuild,
					Project:  commandConfig.Project,
					Image:    commandConfig.Name,
					Version:  commandConfig.Version,
				}); storeErr != nil {
					rootLogger.Warn("pushed but failed updating the build manifest", "reason", storeErr)
				}
			}
		}
	} else {
		rootLogger.Warn("no build manifest for pushed image", "reason", fetchErr)
	}

	rootLogger.Info("Push completed successfully.", "registry-ref", registryRef)

	return 0
}
