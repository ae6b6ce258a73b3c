package refs

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	componentExpression = regexp.MustCompile(`^[a-z0-9]+(?:[._-][a-z0-9]+)*$`)
	versionExpression   = regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9._-]{0,127}$`)
	registryExpression  = regexp.MustCompile(`^[a-zA-Z0-9.-]+(?::[0-9]+)?$`)
)

// IsValidComponent checks if the input is a valid image name or project component.
func IsValidComponent(input string) bool {
	return componentExpression.MatchString(input)
}

// IsValidVersion checks if the input is a valid image version.
func IsValidVersion(input string) bool {
	return versionExpression.MatchString(input)
}

// Local composes the local image reference: name:version.
func Local(name, version string) (string, error) {
	if !IsValidComponent(name) {
		return "", fmt.Errorf("image name '%s' is not valid", name)
	}
	if !IsValidVersion(version) {
		return "", fmt.Errorf("image version '%s' is not valid", version)
	}
	return fmt.Sprintf("%s:%s", name, version), nil
}

// Registry composes the registry-qualified image reference:
// registry/project/name:version.
// An empty or invalid project is an error: composing a reference with an
// empty project segment would produce a push destination pointing at a
// path the caller never intended.
func Registry(registry, project, name, version string) (string, error) {
	if registry == "" || !registryExpression.MatchString(registry) {
		return "", fmt.Errorf("registry '%s' is not valid", registry)
	}
	if project == "" {
		return "", fmt.Errorf("project identifier is empty, refusing to compose a registry reference")
	}
	if !IsValidComponent(project) {
		return "", fmt.Errorf("project identifier '%s' is not valid", project)
	}
	local, err := Local(name, version)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", registry, project, local), nil
}

// Decompose splits a name:version reference into its components.
func Decompose(input string) (bool, string, string) {
	parts := strings.SplitN(input, ":", 2)
	if len(parts) != 2 {
		return false, "", ""
	}
	if !IsValidComponent(parts[0]) || !IsValidVersion(parts[1]) {
		return false, "", ""
	}
	return true, parts[0], parts[1]
}
