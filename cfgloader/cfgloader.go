// Package cfgloader loads and validates configuration at the start of an application.
package cfgloader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"
)

const codeInvalidConfig = "INVALID_CONFIG"

// MustLoad is like Load but logs the error and exits the process on failure.
func MustLoad[T any](opts ...Option) T {
	config, err := Load[T](opts...)
	if err != nil {
		slog.Error("[cfgloader]: " + err.Error())
		os.Exit(1)
	}
	return config
}

// Load reads ${Dir}/${ENVIRONMENT}.yaml into T.
//
// A .env file in the working directory is loaded first if present, and
// ${VAR} references in the YAML are expanded from the environment.
// Values missing from the file are filled from `default` struct tags
// (github.com/creasty/defaults), then the result is validated with
// `validate` tags (github.com/go-playground/validator/v10).
//
//	type Config struct {
//	    Host string `yaml:"host" validate:"required"`
//	    Port int    `yaml:"port" default:"8080"`
//	}
func Load[T any](opts ...Option) (T, error) {
	var config T
	o := buildOptions(opts)

	if reflect.ValueOf(&config).Elem().Kind() == reflect.Pointer {
		return config, newConfigErr("type argument must not be a pointer")
	}

	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if !slices.Contains([]string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}, env) {
		return config, newConfigErr(
			"ENVIRONMENT env variable is not set or invalid. Choices are: production, staging, dev, local, test",
		)
	}

	path := filepath.Join(o.Dir, env+".yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, newConfigErr(fmt.Sprintf("config file not found in the path %s", path))
	}
	if err != nil {
		return config, errx.Wrap(err, errx.WithCode(codeInvalidConfig))
	}

	data = []byte(os.ExpandEnv(string(data)))

	if err = yaml.Unmarshal(data, &config); err != nil {
		return config, newConfigErr(fmt.Sprintf("failed to unmarshal %s config file: %v", env, err))
	}

	if err = defaults.Set(&config); err != nil {
		return config, newConfigErr(fmt.Sprintf("failed to set default values: %v", err))
	}

	if err = validate(&config, env); err != nil {
		return config, err
	}

	if !o.Silent {
		printConfig(config, env)
	}

	return config, nil
}

func validate(config any, env string) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(config)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return errx.Wrap(err, errx.WithCode(codeInvalidConfig))
	}

	failed := make([]string, 0, len(errs))
	for _, fe := range errs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		failed = append(failed, fmt.Sprintf("%s: %s", fe.Namespace(), tag))
	}
	return newConfigErr(fmt.Sprintf("invalid fields in %s config -> %s", env, strings.Join(failed, ",  ")))
}

func newConfigErr(msg string) error {
	return errx.New(msg, errx.WithCode(codeInvalidConfig))
}
