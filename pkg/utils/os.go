package utils

import (
	"fmt"
	"os"
)

// CheckIfExistsAndIsRegular checks if the path exists and points at a regular file.
func CheckIfExistsAndIsRegular(path string) (os.FileInfo, error) {
	stat, statErr := os.Stat(path)
	if statErr != nil {
		return nil, statErr
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("path '%s' is not a regular file", path)
	}
	return stat, nil
}

// CheckIfExistsAndIsDirectory checks if the path exists and points at a directory.
func CheckIfExistsAndIsDirectory(path string) (os.FileInfo, error) {
	stat, statErr := os.Stat(path)
	if statErr != nil {
		return nil, statErr
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("path '%s' is not a directory", path)
	}
	return stat, nil
}
