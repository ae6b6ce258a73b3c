package containers

import (
	tar "archive/tar"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildContextTarInjectsDockerfile(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "")
	if err != nil {
		t.Fatal("expected temp dir, got error", err)
	}
	defer os.RemoveAll(tempDir)

	if err := os.MkdirAll(filepath.Join(tempDir, "app"), 0755); err != nil {
		t.Fatal("expected app dir, got error", err)
	}
	if err := ioutil.WriteFile(filepath.Join(tempDir, "app", "run.sh"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal("expected app file, got error", err)
	}
	if err := ioutil.WriteFile(filepath.Join(tempDir, "ignored.log"), []byte("noise"), 0644); err != nil {
		t.Fatal("expected log file, got error", err)
	}

	dockerfileBytes := []byte("FROM python:3.8-slim\nCOPY ./app /app\n")

	reader, err := BuildContextTar(tempDir, []string{"*.log"}, injectedDockerfileName, dockerfileBytes)
	if err != nil {
		t.Fatal("expected build context tar, got error", err)
	}
	defer reader.Close()

	entries := map[string][]byte{}
	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal("expected tar entry, got error", err)
		}
		contents, err := ioutil.ReadAll(tarReader)
		if err != nil {
			t.Fatal("expected tar entry contents, got error", err)
		}
		entries[header.Name] = contents
	}

	assert.Equal(t, dockerfileBytes, entries[injectedDockerfileName])
	assert.Contains(t, entries, "app/run.sh")
	assert.NotContains(t, entries, "ignored.log")
}
