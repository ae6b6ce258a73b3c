package pin

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/appship-labs/appship/pkg/build/commands"
	git "github.com/go-git/go-git/v5"
	gitConfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/pkg/errors"
)

var (
	vcsSourceExtractor = regexp.MustCompile(`git\+(?:https?|ssh)://[^\s'"]+`)
	commitHash         = regexp.MustCompile(`^[0-9a-f]{40}$`)
)

// Source is a version-control package source referenced by a provisioning command.
// The upstream ref can move without any change to the recipe content, which makes
// the build non-reproducible until the ref is resolved to a commit.
type Source struct {
	// Raw is the source token exactly as it appears in the RUN command.
	Raw string
	// RepoURL is the repository URL with the git+ prefix and the ref stripped.
	RepoURL string
	// Ref is the requested branch, tag or commit; empty means the remote default.
	Ref string
	// Commit is the resolved commit hash, filled by a Resolver.
	Commit string
}

// Pinned returns true when the requested ref is already an exact commit.
func (s Source) Pinned() bool {
	return commitHash.MatchString(s.Ref)
}

// ScanRuns extracts version-control package sources from all RUN commands.
func ScanRuns(inputs []interface{}) []Source {
	seen := map[string]bool{}
	sources := []Source{}
	for _, input := range inputs {
		run, ok := input.(commands.Run)
		if !ok {
			continue
		}
		for _, raw := range vcsSourceExtractor.FindAllString(run.Command, -1) {
			if seen[raw] {
				continue
			}
			seen[raw] = true
			sources = append(sources, parseSource(raw))
		}
	}
	return sources
}

func parseSource(raw string) Source {
	source := Source{Raw: raw}
	value := strings.TrimPrefix(raw, "git+")
	// pip style egg fragments do not belong to the repository URL:
	if idx := strings.Index(value, "#"); idx > -1 {
		value = value[0:idx]
	}
	// only an @ after the last path separator names a ref; an earlier @
	// belongs to the URL userinfo (token@host):
	if idx := strings.LastIndex(value, "@"); idx > strings.LastIndex(value, "/") {
		source.Ref = value[idx+1:]
		value = value[0:idx]
	}
	source.RepoURL = value
	return source
}

// Resolver resolves a source ref to an exact commit.
type Resolver interface {
	Resolve(Source) (Source, error)
}

// NewRemoteResolver returns a Resolver listing refs of the remote repository.
func NewRemoteResolver() Resolver {
	return &remoteResolver{listRemote: listRemoteRefs}
}

type remoteRef struct {
	name     string
	isBranch bool
	isTag    bool
	hash     string
}

type remoteResolver struct {
	listRemote func(string) ([]remoteRef, error)
}

func (r *remoteResolver) Resolve(source Source) (Source, error) {
	if source.Pinned() {
		source.Commit = source.Ref
		return source, nil
	}
	refs, err := r.listRemote(source.RepoURL)
	if err != nil {
		return source, errors.Wrapf(err, "failed listing refs of '%s'", source.RepoURL)
	}
	for _, ref := range refs {
		if !ref.isBranch && !ref.isTag {
			continue
		}
		if strings.HasSuffix(ref.name, fmt.Sprintf("/%s", source.Ref)) {
			source.Commit = ref.hash
			return source, nil
		}
	}
	return source, fmt.Errorf("ref '%s' not found in '%s'", source.Ref, source.RepoURL)
}

func listRemoteRefs(repoURL string) ([]remoteRef, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitConfig.RemoteConfig{
		Name: "origin",
		URLs: []string{repoURL},
	})
	listed, err := remote.List(&git.ListOptions{})
	if err != nil {
		return nil, err
	}
	refs := []remoteRef{}
	for _, ref := range listed {
		refs = append(refs, remoteRef{
			name:     ref.Name().String(),
			isBranch: ref.Name().IsBranch(),
			isTag:    ref.Name().IsTag(),
			hash:     ref.Hash().String(),
		})
	}
	return refs, nil
}
