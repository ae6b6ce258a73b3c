package metadata

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

// Type is the type of the metadata entry stored in a file.
type Type = string

// Metadata types.
const (
	MetadataTypeBuild = Type("build")
)

// MDImage is the image.
type MDImage struct {
	Project string `json:"project" mapstructure:"project"`
	Image   string `json:"image" mapstructure:"image"`
	Version string `json:"version" mapstructure:"version"`
}

// MDSource is a version-control package source resolved at build time.
// The recipe references a moving ref; the commit recorded here is what the
// build actually installed.
type MDSource struct {
	Raw     string `json:"raw" mapstructure:"raw"`
	RepoURL string `json:"repo-url" mapstructure:"repo-url"`
	Ref     string `json:"ref" mapstructure:"ref"`
	Commit  string `json:"commit" mapstructure:"commit"`
}

// MDBuildConfig represents the build input configuration.
type MDBuildConfig struct {
	BuildArgs map[string]string `json:"build-args" mapstructure:"build-args"`
	Recipe    string            `json:"recipe" mapstructure:"recipe"`
	Context   string            `json:"context" mapstructure:"context"`
}

// MDBuild represents the metadata of a completed image build.
type MDBuild struct {
	BaseImage    string            `json:"base-image" mapstructure:"base-image"`
	BuildConfig  MDBuildConfig     `json:"build-config" mapstructure:"build-config"`
	BuildID      string            `json:"build-id" mapstructure:"build-id"`
	CreatedAtUTC int64             `json:"created-at-utc" mapstructure:"created-at-utc"`
	Env          map[string]string `json:"env" mapstructure:"env"`
	Image        MDImage           `json:"image" mapstructure:"image"`
	ImageID      string            `json:"image-id" mapstructure:"image-id"`
	Labels       map[string]string `json:"labels" mapstructure:"labels"`
	LocalRef     string            `json:"local-ref" mapstructure:"local-ref"`
	Pushed       bool              `json:"pushed" mapstructure:"pushed"`
	RegistryRef  string            `json:"registry-ref" mapstructure:"registry-ref"`
	Sources      []MDSource        `json:"sources" mapstructure:"sources"`
	Type         Type              `json:"type" mapstructure:"type"`
}

// MDBuildFromInterface unwraps an interface{} as *MDBuild.
func MDBuildFromInterface(input interface{}) (*MDBuild, error) {
	mdbuild := &MDBuild{}
	if err := mapstructure.Decode(input, mdbuild); err != nil {
		return nil, errors.Wrap(err, "failed decoding mdbuild")
	}
	return mdbuild, nil
}
