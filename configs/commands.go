package configs

import (
	"fmt"
	"os"

	"github.com/appship-labs/appship/pkg/utils"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/subosito/gotenv"
)

// Environment variable names consulted by the command configurations.
const (
	EnvGCPProject       = "GCP_PROJECT"
	EnvRegistryUser     = "APPSHIP_REGISTRY_USER"
	EnvRegistryPassword = "APPSHIP_REGISTRY_PASSWORD"
)

// BuildCommandConfig is the build command configuration.
type BuildCommandConfig struct {
	flagBase
	ValidatingConfig

	Recipe     string
	ContextDir string

	Name    string
	Version string

	Registry string
	Project  string
	Push     bool

	BuildArgs   map[string]string
	EnvDefaults map[string]string
	EnvFiles    []string
	EnvVars     map[string]string

	RegistryUser     string
	RegistryPassword string
}

// NewBuildCommandConfig returns new command configuration.
func NewBuildCommandConfig() *BuildCommandConfig {
	return &BuildCommandConfig{}
}

// FlagSet returns an instance of the flag set for the configuration.
func (c *BuildCommandConfig) FlagSet() *pflag.FlagSet {
	if c.initFlagSet() {
		c.flagSet.StringVar(&c.Recipe, "recipe", "", "Local or remote (HTTP / HTTPS / git+) path to the build recipe; if the recipe uses ADD or COPY commands, it's recommended to use a local file")
		c.flagSet.StringVar(&c.ContextDir, "context-dir", "", "Build context directory; if empty, the directory of a local recipe is used")
		c.flagSet.StringVar(&c.Name, "name", "", "Image name, required")
		c.flagSet.StringVar(&c.Version, "version", "latest", "Image version")
		c.flagSet.StringVar(&c.Registry, "registry", "gcr.io", "Registry host to compose the registry reference with")
		c.flagSet.StringVar(&c.Project, "project", os.Getenv(EnvGCPProject), "Registry project identifier; defaults to the GCP_PROJECT environment variable")
		c.flagSet.BoolVar(&c.Push, "push", false, "If set, pushes the registry reference after a successful build")
		c.flagSet.StringToStringVar(&c.BuildArgs, "build-arg", map[string]string{}, "Build arguments, multiple OK")
		c.flagSet.StringToStringVar(&c.EnvDefaults, "env-default", map[string]string{"PORT": "8080"}, "Environment defaults baked into the image unless the recipe declares the variable, multiple OK")
		c.flagSet.StringArrayVar(&c.EnvFiles, "env-file", []string{}, "Full path to an environment file to apply as build arguments, multiple OK")
		c.flagSet.StringToStringVar(&c.EnvVars, "env", map[string]string{}, "Additional environment variables to apply as build arguments, multiple OK")
		c.flagSet.StringVar(&c.RegistryUser, "registry-user", os.Getenv(EnvRegistryUser), "Registry user name; defaults to the APPSHIP_REGISTRY_USER environment variable")
		c.flagSet.StringVar(&c.RegistryPassword, "registry-password", os.Getenv(EnvRegistryPassword), "Registry password; defaults to the APPSHIP_REGISTRY_PASSWORD environment variable")
	}
	return c.flagSet
}

// MergedEnvironment returns merged environment declared by the configuration.
// The order of merging:
//  - parse each env file in order provided
//  - apply all individual --env values
// Duplicated values are always overriden.
func (c *BuildCommandConfig) MergedEnvironment() (map[string]string, error) {
	env := map[string]string{}
	for _, envFile := range c.EnvFiles {
		f, openErr := os.Open(envFile)
		if openErr != nil {
			return env, errors.Wrapf(openErr, "failed opening environment file '%s' for reading", envFile)
		}
		defer f.Close()
		partialEnv, parseErr := gotenv.StrictParse(f)
		if parseErr != nil {
			return env, errors.Wrapf(parseErr, "failed parsing environment file '%s'", envFile)
		}
		for k, v := range partialEnv {
			env[k] = v
		}
	}
	for k, v := range c.EnvVars {
		env[k] = v
	}
	return env, nil
}

// Validate validates the correctness of the configuration.
func (c *BuildCommandConfig) Validate() error {
	if c.Recipe == "" {
		return fmt.Errorf("--recipe can't be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("--name can't be empty")
	}
	for _, envFile := range c.EnvFiles {
		if _, statErr := utils.CheckIfExistsAndIsRegular(envFile); statErr != nil {
			return errors.Wrapf(statErr, "environment file '%s' stat error", envFile)
		}
	}
	if c.ContextDir != "" {
		if _, statErr := utils.CheckIfExistsAndIsDirectory(c.ContextDir); statErr != nil {
			return errors.Wrapf(statErr, "context directory '%s' stat error", c.ContextDir)
		}
	}
	return nil
}

// PushCommandConfig is the push command configuration.
type PushCommandConfig struct {
	flagBase
	ValidatingConfig

	Name    string
	Version string

	Registry string
	Project  string

	RegistryUser     string
	RegistryPassword string
}

// NewPushCommandConfig returns new command configuration.
func NewPushCommandConfig() *PushCommandConfig {
	return &PushCommandConfig{}
}

// FlagSet returns an instance of the flag set for the configuration.
func (c *PushCommandConfig) FlagSet() *pflag.FlagSet {
	if c.initFlagSet() {
		c.flagSet.StringVar(&c.Name, "name", "", "Image name, required")
		c.flagSet.StringVar(&c.Version, "version", "latest", "Image version")
		c.flagSet.StringVar(&c.Registry, "registry", "gcr.io", "Registry host to compose the registry reference with")
		c.flagSet.StringVar(&c.Project, "project", os.Getenv(EnvGCPProject), "Registry project identifier; defaults to the GCP_PROJECT environment variable")
		c.flagSet.StringVar(&c.RegistryUser, "registry-user", os.Getenv(EnvRegistryUser), "Registry user name; defaults to the APPSHIP_REGISTRY_USER environment variable")
		c.flagSet.StringVar(&c.RegistryPassword, "registry-password", os.Getenv(EnvRegistryPassword), "Registry password; defaults to the APPSHIP_REGISTRY_PASSWORD environment variable")
	}
	return c.flagSet
}

// Validate validates the correctness of the configuration.
func (c *PushCommandConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("--name can't be empty")
	}
	return nil
}

// InspectCommandConfig is the inspect command configuration.
type InspectCommandConfig struct {
	flagBase
	ValidatingConfig

	Project string
	Name    string
	Version string

	ImageConfig bool
}

// NewInspectCommandConfig returns new command configuration.
func NewInspectCommandConfig() *InspectCommandConfig {
	return &InspectCommandConfig{}
}

// FlagSet returns an instance of the flag set for the configuration.
func (c *InspectCommandConfig) FlagSet() *pflag.FlagSet {
	if c.initFlagSet() {
		c.flagSet.StringVar(&c.Project, "project", os.Getenv(EnvGCPProject), "Registry project identifier; defaults to the GCP_PROJECT environment variable")
		c.flagSet.StringVar(&c.Name, "name", "", "Image name, required")
		c.flagSet.StringVar(&c.Version, "version", "latest", "Image version")
		c.flagSet.BoolVar(&c.ImageConfig, "image-config", false, "If set, also reads the image configuration from the Docker host and reconstructs the recipe from the image history")
	}
	return c.flagSet
}

// Validate validates the correctness of the configuration.
func (c *InspectCommandConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("--name can't be empty")
	}
	return nil
}

// PurgeCommandConfig is the purge command configuration.
type PurgeCommandConfig struct {
	flagBase
	ValidatingConfig

	Project string
	Name    string
	Version string

	RemoveLocalImages bool
}

// NewPurgeCommandConfig returns new command configuration.
func NewPurgeCommandConfig() *PurgeCommandConfig {
	return &PurgeCommandConfig{}
}

// FlagSet returns an instance of the flag set for the configuration.
func (c *PurgeCommandConfig) FlagSet() *pflag.FlagSet {
	if c.initFlagSet() {
		c.flagSet.StringVar(&c.Project, "project", os.Getenv(EnvGCPProject), "Registry project identifier; defaults to the GCP_PROJECT environment variable")
		c.flagSet.StringVar(&c.Name, "name", "", "Image name, required")
		c.flagSet.StringVar(&c.Version, "version", "latest", "Image version")
		c.flagSet.BoolVar(&c.RemoveLocalImages, "remove-local-images", false, "If set, also removes the local and registry tagged images from the Docker host")
	}
	return c.flagSet
}

// Validate validates the correctness of the configuration.
func (c *PurgeCommandConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("--name can't be empty")
	}
	return nil
}
