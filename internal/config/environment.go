// File: internal/config/environment.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Environment is a logical deployment target the suite runs against.
type Environment string

const (
	EnvProd  Environment = "prod"
	EnvQA    Environment = "qa"
	EnvUAT   Environment = "uat"
	EnvStage Environment = "stage"
	EnvDev   Environment = "dev"
)

// KnownEnvironments lists the accepted environment names in a stable order.
var KnownEnvironments = []Environment{EnvProd, EnvQA, EnvUAT, EnvStage, EnvDev}

// InvalidEnvironmentError is returned when an environment name is not one of KnownEnvironments.
type InvalidEnvironmentError struct {
	Name string
}

func (e *InvalidEnvironmentError) Error() string {
	return fmt.Sprintf("invalid environment %q: expected one of prod, qa, uat, stage, dev", e.Name)
}

// ValidateEnvironment trims and case-folds name and checks it against KnownEnvironments.
func ValidateEnvironment(name string) (Environment, error) {
	normalized := Environment(strings.ToLower(strings.TrimSpace(name)))
	for _, env := range KnownEnvironments {
		if env == normalized {
			return env, nil
		}
	}
	return "", &InvalidEnvironmentError{Name: name}
}

// MergeEnvironmentProfile merges <dir>/<env>.yaml into v when the file exists.
// It reports whether a profile was merged. The directory may start with "~".
func MergeEnvironmentProfile(v *viper.Viper, dir string, env Environment) (bool, error) {
	if dir == "" {
		return false, nil
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return false, fmt.Errorf("failed to expand profiles dir %s: %w", dir, err)
	}

	path := filepath.Join(expanded, string(env)+".yaml")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to open environment profile %s: %w", path, err)
	}
	defer f.Close()

	v.SetConfigType("yaml")
	if err := v.MergeConfig(f); err != nil {
		return false, fmt.Errorf("failed to merge environment profile %s: %w", path, err)
	}
	return true, nil
}
