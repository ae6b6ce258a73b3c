package refs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalRef(t *testing.T) {
	ref, err := Local("data-ingest", "v1.2.0")
	assert.Nil(t, err)
	assert.Equal(t, "data-ingest:v1.2.0", ref)

	_, err = Local("Data Ingest", "v1.2.0")
	assert.NotNil(t, err)

	_, err = Local("data-ingest", "")
	assert.NotNil(t, err)
}

func TestRegistryRef(t *testing.T) {
	ref, err := Registry("gcr.io", "my-project", "data-ingest", "latest")
	assert.Nil(t, err)
	assert.Equal(t, "gcr.io/my-project/data-ingest:latest", ref)
}

func TestRegistryRefEmptyProject(t *testing.T) {
	_, err := Registry("gcr.io", "", "data-ingest", "latest")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "project identifier is empty")
}

func TestRegistryRefInvalidProject(t *testing.T) {
	_, err := Registry("gcr.io", "My Project", "data-ingest", "latest")
	assert.NotNil(t, err)
}

func TestDecompose(t *testing.T) {
	ok, name, version := Decompose("data-ingest:v1.2.0")
	assert.True(t, ok)
	assert.Equal(t, "data-ingest", name)
	assert.Equal(t, "v1.2.0", version)

	ok, _, _ = Decompose("data-ingest")
	assert.False(t, ok)
}
