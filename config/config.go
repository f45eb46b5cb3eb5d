package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/oracle/oci-go-sdk/v65/common"

	"imagebench/errors"
	"imagebench/logger"
)

// DefaultOCIProfile is used when no profile is configured.
const DefaultOCIProfile = "DEFAULT"

// LoadOCIConfig loads the OCI configuration from the specified config file path
func LoadOCIConfig(configFilePath, profile string) (common.ConfigurationProvider, error) {
	path := ExpandHome(configFilePath)
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WithHintf(errors.Wrap(err, "oci config file"),
			"create %s or point --oci-config at an existing file", path)
	}
	if profile == "" {
		profile = DefaultOCIProfile
	}

	logger.Named("config").Infow("loading OCI config", "path", path, "profile", profile)
	provider, err := common.ConfigurationProviderFromFileWithProfile(path, profile, "")
	if err != nil {
		return nil, errors.Wrapf(err, "load OCI config from %s", path)
	}
	return provider, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
