package commands

import (
	"fmt"
	"strings"
)

// Add represents the ADD instruction.
type Add struct {
	OriginalCommand    string
	OriginalSource     string
	Source             string
	Target             string
	Workdir            Workdir
	User               User
	UserFromLocalChown *User
}

// Arg represents the ARG instruction.
type Arg struct {
	OriginalCommand string
	Name            string
	Value           string
	hasValue        bool
}

// NewRawArg parses a raw KEY or KEY=VALUE ARG input.
func NewRawArg(raw string) (Arg, error) {
	if raw == "" {
		return Arg{}, fmt.Errorf("empty ARG")
	}
	parts := strings.SplitN(raw, "=", 2)
	if len(parts) == 1 {
		return Arg{Name: parts[0]}, nil
	}
	return Arg{Name: parts[0], Value: strings.Trim(parts[1], "\""), hasValue: true}, nil
}

// HasValue returns true if the ARG was declared with a default value.
func (a Arg) HasValue() bool {
	return a.hasValue
}

// Cmd represents the CMD instruction.
type Cmd struct {
	OriginalCommand string
	Values          []string
}

// Copy represents the COPY instruction.
type Copy struct {
	OriginalCommand    string
	OriginalSource     string
	Source             string
	Stage              string
	Target             string
	Workdir            Workdir
	User               User
	UserFromLocalChown *User
}

// Entrypoint represents the ENTRYPOINT instruction.
type Entrypoint struct {
	OriginalCommand string
	Values          []string
	Env             map[string]string
	Shell           Shell
	Workdir         Workdir
	User            User
}

// Env represents the ENV instruction.
type Env struct {
	OriginalCommand string
	Name            string
	Value           string
}

// Expose represents the EXPOSE instruction.
type Expose struct {
	OriginalCommand string
	RawValue        string
}

// From represents the FROM instruction.
type From struct {
	OriginalCommand string
	BaseImage       string
	StageName       string
}

// StructuredFrom decomposes the base image of From into the org, image and version parts.
type StructuredFrom struct {
	org     string
	image   string
	version string
}

// Org returns the org component of the base image.
func (sf *StructuredFrom) Org() string {
	return sf.org
}

// Image returns the image component of the base image.
func (sf *StructuredFrom) Image() string {
	return sf.image
}

// Version returns the base image version.
func (sf *StructuredFrom) Version() string {
	return sf.version
}

// ToStructuredFrom extracts structured info from the base image string.
func (f From) ToStructuredFrom() *StructuredFrom {
	structuredFrom := &StructuredFrom{org: "_", version: "latest"}
	imageName := f.BaseImage
	if strings.Contains(imageName, "/") {
		structuredFrom.org = imageName[0:strings.LastIndex(imageName, "/")]
		imageName = imageName[strings.LastIndex(imageName, "/")+1:]
	}
	osAndVersion := strings.SplitN(imageName, ":", 2)
	structuredFrom.image = osAndVersion[0]
	if len(osAndVersion) == 2 {
		structuredFrom.version = osAndVersion[1]
	}
	return structuredFrom
}

// Label represents the LABEL instruction.
type Label struct {
	OriginalCommand string
	Key             string
	Value           string
}

// Run represents the RUN instruction.
type Run struct {
	OriginalCommand string
	Args            map[string]string
	Command         string
	Env             map[string]string
	Shell           Shell
	Workdir         Workdir
	User            User
}

// Shell represents the SHELL instruction.
type Shell struct {
	OriginalCommand string
	Commands        []string
}

// User represents the USER instruction.
type User struct {
	OriginalCommand string
	Value           string
}

// Volume represents the VOLUME instruction.
type Volume struct {
	OriginalCommand string
	Values          []string
}

// Workdir represents the WORKDIR instruction.
type Workdir struct {
	OriginalCommand string
	Value           string
}

// DefaultShell returns the default shell.
func DefaultShell() Shell {
	return Shell{Commands: []string{"/bin/sh", "-c"}}
}

// DefaultUser returns the default user.
func DefaultUser() User {
	return User{Value: "0:0"}
}

// DefaultWorkdir returns the default workdir.
func DefaultWorkdir() Workdir {
	return Workdir{Value: "/"}
}

// RunWithDefaults returns a Run for a given command with defaults.
func RunWithDefaults(command string) Run {
	return Run{
		Args:    map[string]string{},
		Env:     map[string]string{},
		Command: command,
		Shell:   DefaultShell(),
		User:    DefaultUser(),
		Workdir: DefaultWorkdir(),
	}
}

// EnvWithDefaults returns an Env with the original command reconstructed.
func EnvWithDefaults(name, value string) Env {
	return Env{
		OriginalCommand: fmt.Sprintf("ENV %s=%q", name, value),
		Name:            name,
		Value:           value,
	}
}
