package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistoryToDockerfile(t *testing.T) {
	history := []*DockerImageHistoryEntry{
		{CreatedBy: "/bin/sh -c #(nop) ADD file:aad4290d27580cc1a094ffaf98c3ca2fc5d699fe695dfb8e6e9fac20f1129450 in /"},
		{CreatedBy: "/bin/sh -c #(nop)  CMD [\"/bin/sh\"]"},
		{CreatedBy: "/bin/sh -c apt-get update && apt-get install -y libgeos-dev"},
		{CreatedBy: "/bin/sh -c #(nop)  ENV PORT=8080"},
		{CreatedBy: "/bin/sh -c #(nop) COPY file:0123456789012345678901234567890123456789012345678901234567890123 in /app "},
		{CreatedBy: "/bin/sh -c #(nop)  ENTRYPOINT [\"/app/run.sh\"]"},
	}
	lines := HistoryToDockerfile(history, "python:3.8-slim")
	assert.Equal(t, []string{
		"FROM python:3.8-slim",
		"CMD [\"/bin/sh\"]",
		"ENV PORT=8080",
		"COPY /app /app",
		"ENTRYPOINT [\"/app/run.sh\"]",
	}, lines)
}

func TestEnvValue(t *testing.T) {
	config := &DockerImageConfigConfig{
		Env: []string{"PATH=/usr/bin", "PORT=8080"},
	}
	value, ok := config.EnvValue("PORT")
	assert.True(t, ok)
	assert.Equal(t, "8080", value)

	_, ok = config.EnvValue("MISSING")
	assert.False(t, ok)
}
