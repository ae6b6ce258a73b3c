package reader

import (
	"testing"

	"github.com/appship-labs/appship/pkg/build/commands"
)

func TestReadServiceRecipeFromBytes(t *testing.T) {
	cmds, err := ReadFromBytes([]byte(recipeService))
	if err != nil {
		t.Fatal("Expected recipe to parse but received an error", err)
	}
	foundFrom := false
	foundPort := false
	runs := 0
	copies := 0
	for _, cmd := range cmds {
		switch tcmd := cmd.(type) {
		case commands.From:
			foundFrom = true
			if tcmd.BaseImage != "python:3.8-slim" {
				t.Fatal("Expected python:3.8-slim base, got", tcmd.BaseImage)
			}
		case commands.Env:
			if tcmd.Name == "PORT" && tcmd.Value == "9090" {
				foundPort = true
			}
		case commands.Run:
			runs = runs + 1
		case commands.Copy:
			copies = copies + 1
		}
	}
	if !foundFrom {
		t.Fatal("Expected FROM command")
	}
	if !foundPort {
		t.Fatal("Expected ENV PORT command")
	}
	if runs != 3 {
		t.Fatal("Expected 3 RUN commands, got", runs)
	}
	if copies != 1 {
		t.Fatal("Expected 1 COPY command, got", copies)
	}
}

func TestReadMalformedGitURL(t *testing.T) {
	_, err := ReadFromString("git+https://example com/repo.git:/Dockerfile", t.TempDir())
	if err == nil {
		t.Fatal("Expected malformed URL to be rejected with an error")
	}
}

func TestReadAddChownFromBytes(t *testing.T) {
	cmds, err := ReadFromBytes([]byte(recipeAddCopyChown))
	if err != nil {
		t.Fatal("Expected recipe to parse but received an error", err)
	}
	foundAdd := false
	foundCopy := false
	for _, cmd := range cmds {
		switch tcmd := cmd.(type) {
		case commands.Add:
			foundAdd = true
			if tcmd.UserFromLocalChown == nil {
				t.Fatal("Expected ADD command with local chown")
			}
		case commands.Copy:
			foundCopy = true
			if tcmd.UserFromLocalChown == nil {
				t.Fatal("Expected COPY command with local chown")
			}
		}
	}
	if !foundAdd {
		t.Fatal("Expected ADD command")
	}
	if !foundCopy {
		t.Fatal("Expected COPY command")
	}
}

var recipeService = `FROM python:3.8-slim
RUN apt-get update && apt-get install -y libgeos-dev wkhtmltopdf
RUN pip install git+https://github.com/example/ingest-tools@feature-branch
RUN pip install pandas sqlalchemy us
ENV PORT=9090
COPY ./app /app`

var recipeAddCopyChown = `FROM scratch
ADD --chown=1:2 . .
COPY --chown=1:2 . .`
