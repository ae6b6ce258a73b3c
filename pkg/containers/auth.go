package containers

import (
	"encoding/base64"
	"encoding/json"

	"github.com/docker/docker/api/types"
	"github.com/pkg/errors"
)

// EncodeRegistryAuth encodes registry credentials the way the Docker API
// expects them in the X-Registry-Auth header. A nil input encodes an empty
// credential set, which the daemon accepts for registries allowing
// anonymous pushes.
func EncodeRegistryAuth(auth *types.AuthConfig) (string, error) {
	if auth == nil {
		auth = &types.AuthConfig{}
	}
	jsonBytes, err := json.Marshal(auth)
	if err != nil {
		return "", errors.Wrap(err, "failed serializing registry credentials")
	}
	return base64.URLEncoding.EncodeToString(jsonBytes), nil
}
