package containers

import (
	tar "archive/tar"
	"io"
	"time"

	dockerArchive "github.com/docker/docker/pkg/archive"
)

// injectedDockerfileName is the name of the Dockerfile entry injected into
// the build context tar. The name is unlikely to collide with anything a
// context directory would carry; if it does, the injected entry wins.
const injectedDockerfileName = ".appship.dockerfile"

// BuildContextTar produces the Docker build context tar for the source
// directory with the given Dockerfile content injected as an extra entry.
// Exclude patterns follow .dockerignore semantics.
func BuildContextTar(source string, excludePatterns []string, dockerfileName string, dockerfileBytes []byte) (io.ReadCloser, error) {
	sourceTar, err := dockerArchive.TarWithOptions(source, &dockerArchive.TarOptions{
		ExcludePatterns: excludePatterns,
	})
	if err != nil {
		return nil, err
	}

	pipeReader, pipeWriter := io.Pipe()

	go func() {
		defer sourceTar.Close()
		tarWriter := tar.NewWriter(pipeWriter)
		tarReader := tar.NewReader(sourceTar)
		for {
			header, err := tarReader.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
			if header.Name == dockerfileName {
				continue
			}
			if err := tarWriter.WriteHeader(header); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
			if _, err := io.Copy(tarWriter, tarReader); err != nil {
				pipeWriter.CloseWithError(err)
				return
			}
		}
		if err := tarWriter.WriteHeader(&tar.Header{
			Name:    dockerfileName,
			Mode:    0644,
			Size:    int64(len(dockerfileBytes)),
			ModTime: time.Now(),
		}); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		if _, err := tarWriter.Write(dockerfileBytes); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		if err := tarWriter.Close(); err != nil {
			pipeWriter.CloseWithError(err)
			return
		}
		pipeWriter.Close()
	}()

	return pipeReader, nil
}
