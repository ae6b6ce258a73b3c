package render

import (
	"strings"
	"testing"

	"github.com/appship-labs/appship/pkg/build/reader"
	"github.com/stretchr/testify/assert"
)

func TestRenderRoundTrip(t *testing.T) {
	cmds, err := reader.ReadFromBytes([]byte(recipeInput))
	if err != nil {
		t.Fatal("Expected recipe to parse but received an error", err)
	}
	lines := Lines(cmds)
	assert.Equal(t, []string{
		"FROM python:3.8-slim",
		"RUN apt-get update && apt-get install -y libgeos-dev",
		"ENV PORT=9090 WORKERS=2",
		"COPY ./app /app",
		"ENTRYPOINT [\"/app/run.sh\"]",
	}, lines)
}

func TestEnvDefaultInjected(t *testing.T) {
	cmds, err := reader.ReadFromBytes([]byte("FROM python:3.8-slim\nCOPY ./app /app"))
	if err != nil {
		t.Fatal("Expected recipe to parse but received an error", err)
	}
	lines := WithEnvDefaults(cmds, map[string]string{"PORT": "8080"})
	assert.Contains(t, lines, "ENV PORT=\"8080\"")

	content := string(Render(lines))
	assert.True(t, strings.HasSuffix(content, "\n"))
}

func TestEnvDefaultNotOverridingRecipe(t *testing.T) {
	cmds, err := reader.ReadFromBytes([]byte("FROM python:3.8-slim\nENV PORT=9090"))
	if err != nil {
		t.Fatal("Expected recipe to parse but received an error", err)
	}
	lines := WithEnvDefaults(cmds, map[string]string{"PORT": "8080", "DEBUG": "false"})
	assert.Equal(t, []string{
		"FROM python:3.8-slim",
		"ENV PORT=9090",
		"ENV DEBUG=\"false\"",
	}, lines)
}

var recipeInput = `FROM python:3.8-slim
RUN apt-get update && apt-get install -y libgeos-dev
ENV PORT=9090 WORKERS=2
COPY ./app /app
ENTRYPOINT ["/app/run.sh"]
`
