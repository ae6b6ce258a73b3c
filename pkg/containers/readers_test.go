package containers

import (
	"io/ioutil"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
)

func TestProcessDockerOutputStream(t *testing.T) {
	logger := hclog.Default()
	body := strings.Join([]string{
		`{"stream":"Step 1/3 : FROM python:3.8-slim"}`,
		`{"stream":" ---> 123abc"}`,
		`{"stream":"Successfully built 123abc"}`,
	}, "\n")
	err := processDockerOutput(logger, ioutil.NopCloser(strings.NewReader(body)), dockerReaderStream())
	assert.Nil(t, err)
}

func TestProcessDockerOutputErrorLineAborts(t *testing.T) {
	logger := hclog.Default()
	body := strings.Join([]string{
		`{"stream":"Step 2/3 : RUN apt-get install missing-package"}`,
		`{"error":"The command '/bin/sh -c apt-get install missing-package' returned a non-zero code: 100","errorDetail":{"message":"non-zero code: 100"}}`,
	}, "\n")
	err := processDockerOutput(logger, ioutil.NopCloser(strings.NewReader(body)), dockerReaderStream())
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "non-zero code: 100")
}

func TestEncodeRegistryAuth(t *testing.T) {
	encoded, err := EncodeRegistryAuth(nil)
	assert.Nil(t, err)
	assert.NotEmpty(t, encoded)
}
