package containers

import (
	tar "archive/tar"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/pkg/errors"

	"github.com/docker/docker/api/types"
	docker "github.com/docker/docker/client"
)

// ImagePushTimeout is the amount of time the registry push is given to complete.
var ImagePushTimeout = time.Duration(time.Minute * 15)

// GetDefaultClient returns a default instance of the Docker client.
func GetDefaultClient() (*docker.Client, error) {
	return docker.NewEnvClient()
}

// FindImageIDByTag looks up the Docker image ID given a tag name.
func FindImageIDByTag(ctx context.Context, client *docker.Client, requiredTag string) (string, error) {
	images, err := client.ImageList(ctx, types.ImageListOptions{All: true})
	if err != nil {
		return "", err
	}
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == requiredTag {
				return img.ID, nil
			}
		}
	}
	return "", fmt.Errorf("image not found")
}

// ImageBuild builds a Docker image from the source directory context.
// The effective Dockerfile content is injected into the context tar so the
// source directory is never modified. All tags point at the one built image.
// Any step failing aborts the build, the daemon produces no partial image.
func ImageBuild(ctx context.Context, client *docker.Client, logger hclog.Logger,
	source string, excludePatterns []string, dockerfileBytes []byte,
	tags []string, buildArgs map[string]string) error {

	opLogger := logger.With("dir-context", source, "tags", tags)

	buildContext, err := BuildContextTar(source, excludePatterns, injectedDockerfileName, dockerfileBytes)
	if err != nil {
		opLogger.Error("failed creating tar archive as Docker build context", "reason", err)
		return err
	}
	defer buildContext.Close()

	args := map[string]*string{}
	for k := range buildArgs {
		v := buildArgs[k]
		args[k] = &v
	}

	buildResponse, buildErr := client.ImageBuild(ctx, buildContext, types.ImageBuildOptions{
		Dockerfile:  injectedDockerfileName,
		Tags:        tags,
		BuildArgs:   args,
		ForceRemove: true,
		Remove:      true,
	})
	if buildErr != nil {
		opLogger.Error("failed creating Docker image", "reason", buildErr)
		return buildErr
	}

	return processDockerOutput(opLogger, buildResponse.Body, dockerReaderStream())
}

// ImageTag applies another tag to an existing image.
func ImageTag(ctx context.Context, client *docker.Client, logger hclog.Logger, sourceRef, targetRef string) error {
	opLogger := logger.With("source-ref", sourceRef, "target-ref", targetRef)
	if err := client.ImageTag(ctx, sourceRef, targetRef); err != nil {
		opLogger.Error("failed tagging Docker image", "reason", err)
		return err
	}
	return nil
}

// ImagePush pushes a Docker image to the registry the reference points at.
func ImagePush(ctx context.Context, client *docker.Client, logger hclog.Logger, refStr string, auth *types.AuthConfig) error {
	opLogger := logger.With("ref", refStr)

	encodedAuth, encodeErr := EncodeRegistryAuth(auth)
	if encodeErr != nil {
		opLogger.Error("failed encoding registry credentials", "reason", encodeErr)
		return encodeErr
	}

	pushCtx, cancelFunc := context.WithTimeout(ctx, ImagePushTimeout)
	defer cancelFunc()

	response, err := client.ImagePush(pushCtx, refStr, types.ImagePushOptions{RegistryAuth: encodedAuth})
	if err != nil {
		opLogger.Error("failed pushing Docker image", "reason", err)
		return err
	}
	return processDockerOutput(opLogger.Named("image-push"), response, dockerReaderStatus())
}

// ImagePull pulls a Docker image.
func ImagePull(ctx context.Context, client *docker.Client, logger hclog.Logger, refStr string) error {
	response, err := client.ImagePull(ctx, refStr, types.ImagePullOptions{All: false})
	if err != nil {
		return err
	}
	return processDockerOutput(logger.Named("image-pull"), response, dockerReaderStatus())
}

// ImageRemove removes the Docker image using the tag name.
func ImageRemove(ctx context.Context, client *docker.Client, logger hclog.Logger, tagName string) error {
	opLogger := logger.With("tag-name", tagName)
	opLogger.Debug("removing Docker image")
	imageID, err := FindImageIDByTag(ctx, client, tagName)
	if err != nil {
		opLogger.Error("failed fetching Docker image ID by tag", "reason", err)
		return err
	}
	responses, err := client.ImageRemove(ctx, imageID, types.ImageRemoveOptions{Force: true})
	if err != nil {
		opLogger.Error("failed removing Docker image",
			"image-id", imageID,
			"reason", err)
		return err
	}
	for _, response := range responses {
		opLogger.Debug("Docker image removal status",
			"image-id", imageID,
			"deleted", response.Deleted,
			"untagged", response.Untagged)
	}
	return nil
}

// ReadImageConfig extracts the manifest and the image config from a Docker image.
func ReadImageConfig(ctx context.Context, client *docker.Client, opLogger hclog.Logger, tagName string) (*DockerImageMetadata, error) {

	imageID, err := FindImageIDByTag(ctx, client, tagName)
	if err != nil {
		opLogger.Error("failed fetching Docker image ID by tag", "reason", err)
		return nil, err
	}

	opLogger = opLogger.With("image-id", imageID)

	dockerFsReader, cleanupFunc, err := getImageReader(ctx, client, imageID)
	if err != nil {
		opLogger.Error("failed creating io.Reader for image save", "reason", err)
		return nil, err
	}
	defer cleanupFunc()

	jsonEntries := map[string]string{}

	for {
		dockerFsHeader, dockerFsError := dockerFsReader.Next()
		if dockerFsError != nil {
			if dockerFsError == io.EOF {
				break
			}
			opLogger.Error("error while reading exported Docker file system", "reason", dockerFsError)
			return nil, dockerFsError
		}

		// only interested in json files in the top directory:
		if strings.HasSuffix(dockerFsHeader.Name, ".json") {
			fullBuffer := bytes.NewBuffer([]byte{})
			if _, err := io.Copy(fullBuffer, dockerFsReader); err != nil {
				opLogger.Error("error while reading config entry", "entry", dockerFsHeader.Name, "reason", err)
				return nil, err
			}
			jsonEntries[dockerFsHeader.Name] = fullBuffer.String()
		}
	}

	response := &DockerImageMetadata{}

	manifests, ok := jsonEntries["manifest.json"]
	if !ok {
		return nil, fmt.Errorf("no manifest.json")
	}
	output := []*DockerImageManifest{}
	if err := json.NewDecoder(bytes.NewBufferString(manifests)).Decode(&output); err != nil {
		return nil, errors.Wrap(err, "failed deserializing manifest.json")
	}
	if len(output) == 0 {
		return nil, fmt.Errorf("manifest.json without manifests, invalid image?")
	}
	response.Manifest = output[0]

	imageConfig, ok := jsonEntries[response.Manifest.Config]
	if !ok {
		return nil, fmt.Errorf("manifest.json declared %q as config but config not found in image", response.Manifest.Config)
	}
	configOutput := &DockerImageConfig{}
	if err := json.NewDecoder(bytes.NewBufferString(imageConfig)).Decode(&configOutput); err != nil {
		return nil, errors.Wrapf(err, "failed deserializing config %q", response.Manifest.Config)
	}
	response.Config = configOutput

	return response, nil
}

func getImageReader(ctx context.Context, client *docker.Client, imageID string) (*tar.Reader, func(), error) {
	reader, err := client.ImageSave(ctx, []string{imageID})
	if err != nil {
		return nil, nil, err
	}
	return tar.NewReader(reader), func() { reader.Close() }, nil
}
