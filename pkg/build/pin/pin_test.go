package pin

import (
	"testing"

	"github.com/appship-labs/appship/pkg/build/commands"
	"github.com/appship-labs/appship/pkg/build/reader"
	"github.com/stretchr/testify/assert"
)

func TestScanRuns(t *testing.T) {
	cmds, err := reader.ReadFromBytes([]byte(recipeWithVcsSources))
	if err != nil {
		t.Fatal("Expected recipe to parse but received an error", err)
	}
	sources := ScanRuns(cmds)
	assert.Len(t, sources, 2)

	assert.Equal(t, "https://github.com/example/ingest-tools", sources[0].RepoURL)
	assert.Equal(t, "feature-branch", sources[0].Ref)
	assert.False(t, sources[0].Pinned())

	assert.Equal(t, "https://github.com/example/parsers.git", sources[1].RepoURL)
	assert.Equal(t, "3adce5b3c47327e6a8a4c734f13a469e67b05635", sources[1].Ref)
	assert.True(t, sources[1].Pinned())
}

func TestParseCredentialedSource(t *testing.T) {
	source := parseSource("git+https://token@github.com/example/private-tools.git@feature-branch")
	assert.Equal(t, "https://token@github.com/example/private-tools.git", source.RepoURL)
	assert.Equal(t, "feature-branch", source.Ref)

	source = parseSource("git+https://token@github.com/example/private-tools.git")
	assert.Equal(t, "https://token@github.com/example/private-tools.git", source.RepoURL)
	assert.Equal(t, "", source.Ref)
}

func TestScanRunsDeduplicates(t *testing.T) {
	sources := ScanRuns([]interface{}{
		commands.RunWithDefaults("pip install git+https://github.com/example/ingest-tools@feature-branch"),
		commands.RunWithDefaults("pip install git+https://github.com/example/ingest-tools@feature-branch"),
	})
	assert.Len(t, sources, 1)
}

func TestResolveUnpinnedSource(t *testing.T) {
	resolver := &remoteResolver{
		listRemote: func(repoURL string) ([]remoteRef, error) {
			assert.Equal(t, "https://github.com/example/ingest-tools", repoURL)
			return []remoteRef{
				{name: "refs/heads/main", isBranch: true, hash: "1111111111111111111111111111111111111111"},
				{name: "refs/heads/feature-branch", isBranch: true, hash: "2222222222222222222222222222222222222222"},
			}, nil
		},
	}
	resolved, err := resolver.Resolve(Source{
		RepoURL: "https://github.com/example/ingest-tools",
		Ref:     "feature-branch",
	})
	assert.Nil(t, err)
	assert.Equal(t, "2222222222222222222222222222222222222222", resolved.Commit)
}

func TestResolvePinnedSourceShortCircuits(t *testing.T) {
	resolver := &remoteResolver{
		listRemote: func(string) ([]remoteRef, error) {
			t.Fatal("remote must not be contacted for a pinned source")
			return nil, nil
		},
	}
	source := Source{
		RepoURL: "https://github.com/example/parsers.git",
		Ref:     "3adce5b3c47327e6a8a4c734f13a469e67b05635",
	}
	resolved, err := resolver.Resolve(source)
	assert.Nil(t, err)
	assert.Equal(t, source.Ref, resolved.Commit)
}

func TestResolveUnknownRef(t *testing.T) {
	resolver := &remoteResolver{
		listRemote: func(string) ([]remoteRef, error) {
			return []remoteRef{}, nil
		},
	}
	_, err := resolver.Resolve(Source{RepoURL: "https://github.com/example/x", Ref: "gone"})
	assert.NotNil(t, err)
}

var recipeWithVcsSources = `FROM python:3.8-slim
RUN pip install git+https://github.com/example/ingest-tools@feature-branch#egg=ingest-tools
RUN pip install git+https://github.com/example/parsers.git@3adce5b3c47327e6a8a4c734f13a469e67b05635
RUN pip install pandas sqlalchemy us
`
