package build

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/appship-labs/appship/cmd"
	"github.com/appship-labs/appship/configs"
	"github.com/appship-labs/appship/pkg/build/commands"
	"github.com/appship-labs/appship/pkg/build/env"
	"github.com/appship-labs/appship/pkg/build/pin"
	"github.com/appship-labs/appship/pkg/build/reader"
	"github.com/appship-labs/appship/pkg/build/render"
	"github.com/appship-labs/appship/pkg/build/stage"
	"github.com/appship-labs/appship/pkg/containers"
	"github.com/appship-labs/appship/pkg/metadata"
	"github.com/appship-labs/appship/pkg/refs"
	"github.com/appship-labs/appship/pkg/storage"
	"github.com/appship-labs/appship/pkg/tracing"
	"github.com/appship-labs/appship/pkg/utils"
	"github.com/docker/docker/api/types"
	"github.com/gofrs/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/spf13/cobra"
)

// Command is the build command declaration.
var Command = &cobra.Command{
	Use:   "build",
	Short: "Build and tag an application container image from a recipe",
	Run:   run,
	Long:  ``,
}

var (
	commandConfig = configs.NewBuildCommandConfig()
	logConfig     = configs.NewLogginConfig()
	tracingConfig = configs.NewTracingConfig("appship-build")
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

	rootLogger := logConfig.NewLogger("build")

	if err := commandConfig.Validate(); err != nil {
		rootLogger.Error("configuration is invalid", "reason", err)
		return 1
	}

	// tracing:

	rootLogger.Info("configuring tracing", "enabled", tracingConfig.Enable, "application-name", tracingConfig.ApplicationName)

	tracer, tracerCleanupFunc, tracerErr := tracing.GetTracer(rootLogger.Named("tracer"), tracingConfig)
	if tracerErr != nil {
		rootLogger.Error("failed constructing tracer", "reason", tracerErr)
		return 1
	}

	cleanup.Add(tracerCleanupFunc)

	spanBuild := tracer.StartSpan("build")
	cleanup.Add(func() {
		spanBuild.Finish()
	})

	// compose both references before doing any work; an unset project must
	// never surface as a broken push at the end of a long build:
	localRef, localRefErr := refs.Local(commandConfig.Name, commandConfig.Version)
	if localRefErr != nil {
		rootLogger.Error("failed composing local image reference", "reason", localRefErr)
		spanBuild.SetBaggageItem("error", localRefErr.Error())
		return 1
	}
	registryRef, registryRefErr := refs.Registry(commandConfig.Registry, commandConfig.Project, commandConfig.Name, commandConfig.Version)
	if registryRefErr != nil {
		rootLogger.Error("failed composing registry image reference", "reason", registryRefErr)
		spanBuild.SetBaggageItem("error", registryRefErr.Error())
		return 1
	}

	spanBuild.SetTag("local-ref", localRef)
	spanBuild.SetTag("registry-ref", registryRef)

	storageImpl, resolveErr := cmd.GetStorageImpl(rootLogger)
	if resolveErr != nil {
		rootLogger.Error("failed resolving storage provider", "reason", resolveErr)
		spanBuild.SetBaggageItem("error", resolveErr.Error())
		return 1
	}

	spanTempDir := tracer.StartSpan("build-temp-dir", opentracing.ChildOf(spanBuild.Context()))

	tempDirectory, err := ioutil.TempDir("", strings.ToLower(utils.RandStringBytes(16)))
	if err != nil {
		rootLogger.Error("failed creating temporary build directory", "reason", err)
		spanTempDir.SetBaggageItem("error", err.Error())
		spanTempDir.Finish()
		return 1
	}
	cleanup.Add(func() {
		if err := os.RemoveAll(tempDirectory); err != nil {
			rootLogger.Error("failed cleaning up temporary build directory", "reason", err)
		}
	})

	spanTempDir.Finish()

	spanParseRecipe := tracer.StartSpan("build-parse-recipe", opentracing.ChildOf(spanTempDir.Context()))

	readResults, err := reader.ReadFromString(commandConfig.Recipe, tempDirectory)
	if err != nil {
		rootLogger.Error("failed parsing recipe", "reason", err)
		spanParseRecipe.SetBaggageItem("error", err.Error())
		spanParseRecipe.Finish()
		return 1
	}

	spanParseRecipe.Finish()

	spanReadStages := tracer.StartSpan("build-read-stages", opentracing.ChildOf(spanParseRecipe.Context()))

	scs, errs := stage.ReadStages(readResults.Commands())
	for _, err := range errs {
		rootLogger.Warn("stages read contained an error", "reason", err)
	}

	mainStage, layoutErr := stage.RequireSingleUnnamed(scs)
	if layoutErr != nil {
		rootLogger.Error("recipe stage layout is not supported", "reason", layoutErr)
		spanReadStages.SetBaggageItem("error", layoutErr.Error())
		spanReadStages.Finish()
		return 1
	}

	fromFound := false
	fromToBuild := commands.From{}
	declaredEnv := map[string]string{}
	declaredLabels := map[string]string{}
	for _, stageCommand := range mainStage.Commands() {
		switch tcmd := stageCommand.(type) {
		case commands.From:
			if !fromFound {
				fromFound = true
				fromToBuild = tcmd
			}
		case commands.Env:
			declaredEnv[tcmd.Name] = tcmd.Value
		case commands.Label:
			declaredLabels[tcmd.Key] = tcmd.Value
		}
	}

	if !fromFound {
		rootLogger.Error("unnamed stage without a FROM command")
		spanReadStages.SetBaggageItem("error", "invalid unnamed without FROM")
		spanReadStages.Finish()
		return 1
	}

	structuredBase := fromToBuild.ToStructuredFrom()
	spanBuild.SetTag("from", fromToBuild.BaseImage)
	spanReadStages.Finish()

	mergedEnv, mergeErr := commandConfig.MergedEnvironment()
	if mergeErr != nil {
		rootLogger.Error("failed merging environment", "reason", mergeErr)
		spanBuild.SetBaggageItem("error", mergeErr.Error())
		return 1
	}

	buildArgs := map[string]string{}
	for k, v := range mergedEnv {
		buildArgs[k] = v
	}
	for k, v := range commandConfig.BuildArgs {
		buildArgs[k] = v
	}

	// surface moving version-control sources; the build proceeds but the
	// resolved commits end up in the build manifest. RUN commands are
	// expanded with the ARG and ENV state visible at their position so
	// sources behind variables are scanned too:
	spanResolvePins := tracer.StartSpan("build-resolve-pins", opentracing.ChildOf(spanReadStages.Context()))

	buildEnv := env.NewBuildEnv()
	runsToScan := []interface{}{}
	for _, stageCommand := range readResults.Commands() {
		switch tcmd := stageCommand.(type) {
		case commands.Arg:
			if override, ok := buildArgs[tcmd.Name]; ok {
				buildEnv.Put(tcmd.Name, override)
			} else if tcmd.HasValue() {
				buildEnv.Put(tcmd.Name, tcmd.Value)
			}
		case commands.Env:
			buildEnv.Put(tcmd.Name, tcmd.Value)
		case commands.Run:
			tcmd.Command = buildEnv.Expand(tcmd.Command)
			runsToScan = append(runsToScan, tcmd)
		}
	}

	pinResolver := pin.NewRemoteResolver()
	mdSources := []metadata.MDSource{}
	for _, source := range pin.ScanRuns(runsToScan) {
		if !source.Pinned() {
			rootLogger.Warn("recipe installs from a moving version-control ref", "source", source.Raw, "ref", source.Ref)
		}
		resolved, resolveErr := pinResolver.Resolve(source)
		if resolveErr != nil {
			rootLogger.Warn("failed resolving version-control source to a commit", "source", source.Raw, "reason", resolveErr)
		} else if !source.Pinned() {
			rootLogger.Warn("moving ref resolved", "source", source.Raw, "ref", resolved.Ref, "commit", resolved.Commit)
		}
		mdSources = append(mdSources, metadata.MDSource{
			Raw:     resolved.Raw,
			RepoURL: resolved.RepoURL,
			Ref:     resolved.Ref,
			Commit:  resolved.Commit,
		})
	}

	spanResolvePins.Finish()

	// render the effective recipe; environment defaults are appended for
	// variables the recipe does not declare itself:
	effectiveRecipe := render.Render(render.WithEnvDefaults(readResults.Commands(), commandConfig.EnvDefaults))

	contextDir := commandConfig.ContextDir
	if contextDir == "" {
		if _, statErr := utils.CheckIfExistsAndIsRegular(commandConfig.Recipe); statErr != nil {
			rootLogger.Error("--context-dir is required for a remote recipe")
			spanBuild.SetBaggageItem("error", "no context directory")
			return 1
		}
		contextDir = filepath.Dir(commandConfig.Recipe)
	}

	spanGetDockerClient := tracer.StartSpan("build-get-docker-client", opentracing.ChildOf(spanResolvePins.Context()))

	client, clientErr := containers.GetDefaultClient()
	if clientErr != nil {
		rootLogger.Error("failed creating a Docker client", "reason", clientErr)
		spanGetDockerClient.SetBaggageItem("error", clientErr.Error())
		spanGetDockerClient.Finish()
		return 1
	}

	spanGetDockerClient.Finish()

	rootLogger.Info("pulling base image", "base", fromToBuild.BaseImage,
		"base-org", structuredBase.Org(), "base-image", structuredBase.Image(), "base-version", structuredBase.Version())

	spanDockerPull := tracer.StartSpan("build-docker-pull", opentracing.ChildOf(spanGetDockerClient.Context()))
	spanDockerPull.SetTag("base", fromToBuild.BaseImage)

	if err := containers.ImagePull(context.Background(), client, rootLogger, fromToBuild.BaseImage); err != nil {
		// the daemon resolves the base image again during build, a failed
		// explicit pull is not fatal when the image is already local:
		rootLogger.Warn("failed pulling base image, continuing with the daemon cache", "base", fromToBuild.BaseImage, "reason", err)
		spanDockerPull.SetBaggageItem("error", err.Error())
	}

	spanDockerPull.Finish()

	rootLogger.Info("building application image", "base", fromToBuild.BaseImage, "local-ref", localRef, "registry-ref", registryRef)

	spanDockerBuild := tracer.StartSpan("build-docker-build", opentracing.ChildOf(spanDockerPull.Context()))
	spanDockerBuild.SetTag("local-ref", localRef)

	if err := containers.ImageBuild(context.Background(), client, rootLogger,
		contextDir, readResults.ExcludePatterns(), effectiveRecipe,
		[]string{localRef, registryRef}, buildArgs); err != nil {
		rootLogger.Error("failed building application image", "reason", err)
		spanDockerBuild.SetBaggageItem("error", err.Error())
		spanDockerBuild.Finish()
		return 1
	}

	spanDockerBuild.Finish()

	spanDockerImageLookup := tracer.StartSpan("build-docker-lookup", opentracing.ChildOf(spanDockerBuild.Context()))
	spanDockerImageLookup.SetTag("local-ref", localRef)

	imageID, findErr := containers.FindImageIDByTag(context.Background(), client, localRef)
	if findErr != nil {
		// be extra careful:
		rootLogger.Error("expected docker image not found", "reason", findErr)
		spanDockerImageLookup.SetBaggageItem("error", findErr.Error())
		spanDockerImageLookup.Finish()
		return 1
	}

	spanDockerImageLookup.Finish()

	pushed := false
	if commandConfig.Push {
		spanDockerPush := tracer.StartSpan("build-docker-push", opentracing.ChildOf(spanDockerImageLookup.Context()))
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
		pushed = true
		spanDockerPush.Finish()
	}

	spanManifestPersist := tracer.StartSpan("build-manifest-persist", opentracing.ChildOf(spanDockerImageLookup.Context()))

	buildID, uuidErr := uuid.NewV4()
	if uuidErr != nil {
		rootLogger.Error("failed generating build identifier", "reason", uuidErr)
		spanManifestPersist.SetBaggageItem("error", uuidErr.Error())
		spanManifestPersist.Finish()
		return 1
	}

	// the manifest carries the expanded ENV values the image ends up with,
	// ENV declared by the recipe always wins over a default:
	envSnapshot := buildEnv.Snapshot()
	manifestEnv := map[string]string{}
	for k, v := range commandConfig.EnvDefaults {
		manifestEnv[k] = v
	}
	for k, v := range declaredEnv {
		if expanded, ok := envSnapshot[k]; ok {
			v = expanded
		}
		manifestEnv[k] = v
	}

	storeResult, storeErr := storageImpl.StoreManifest(&storage.ManifestStore{
		Metadata: metadata.MDBuild{
			BaseImage: fromToBuild.BaseImage,
			BuildConfig: metadata.MDBuildConfig{
				BuildArgs: buildArgs,
				Recipe:    commandConfig.Recipe,
				Context:   contextDir,
			},
			BuildID:      buildID.String(),
			CreatedAtUTC: time.Now().UTC().Unix(),
			Env:          manifestEnv,
			Image: metadata.MDImage{
				Project: commandConfig.Project,
				Image:   commandConfig.Name,
				Version: commandConfig.Version,
			},
			ImageID:     imageID,
			Labels:      declaredLabels,
			LocalRef:    localRef,
			Pushed:      pushed,
			RegistryRef: registryRef,
			Sources:     mdSources,
			Type:        metadata.MetadataTypeBuild,
		},
		Project: commandConfig.Project,
		Image:   commandConfig.Name,
		Version: commandConfig.Version,
	})
	if storeErr != nil {
		rootLogger.Error("failed storing build manifest", "reason", storeErr)
		spanManifestPersist.SetBaggageItem("error", storeErr.Error())
		spanManifestPersist.Finish()
		return 1
	}

	spanManifestPersist.Finish()

	rootLogger.Info("Build completed successfully. Image tagged.", "local-ref", localRef, "registry-ref", registryRef, "pushed", pushed, "output", storeResult)

	return 0
}
