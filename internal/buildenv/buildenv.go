// Package buildenv reads the build settings a project keeps in its .env
// file: whether the native build steps run, and extra defines passed to
// the build as tags.
package buildenv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	DefaultFile = ".env"

	EnvEnableBuildSteps = "NATIVE_TOOLKIT_ENABLE_BUILD_STEPS"
	EnvExtraDefines     = "NATIVE_TOOLKIT_EXTRA_DEFINES"
)

type Settings struct {
	EnableBuildSteps bool     `json:"enableBuildSteps"`
	ExtraDefines     []string `json:"extraDefines"`
}

// Load reads path and applies variables set in the process environment on
// top. A missing file yields zero settings.
func Load(path string) (Settings, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("buildenv: read %s: %w", path, err)
		}
		vars = map[string]string{}
	}

	for _, key := range []string{EnvEnableBuildSteps, EnvExtraDefines} {
		if v, ok := os.LookupEnv(key); ok {
			vars[key] = v
		}
	}
	return Parse(vars)
}

func Parse(vars map[string]string) (Settings, error) {
	var s Settings

	if raw := strings.TrimSpace(vars[EnvEnableBuildSteps]); raw != "" {
		on, err := strconv.ParseBool(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("buildenv: %s: %w", EnvEnableBuildSteps, err)
		}
		s.EnableBuildSteps = on
	}

	s.ExtraDefines = splitDefines(vars[EnvExtraDefines])
	return s, nil
}

// splitDefines splits on ';' or ',', dropping blanks and repeats while
// keeping first-seen order.
func splitDefines(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" || slices.Contains(out, f) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// BuildArgs returns the go build arguments the settings imply, or nil when
// build steps are disabled.
func (s Settings) BuildArgs() []string {
	if !s.EnableBuildSteps {
		return nil
	}
	if len(s.ExtraDefines) == 0 {
		return []string{}
	}
	return []string{"-tags", strings.Join(s.ExtraDefines, ",")}
}

// Write stores s in path in .env format.
func Write(path string, s Settings) error {
	vars := map[string]string{
		EnvEnableBuildSteps: strconv.FormatBool(s.EnableBuildSteps),
		EnvExtraDefines:     strings.Join(s.ExtraDefines, ";"),
	}
	if err := godotenv.Write(vars, path); err != nil {
		return fmt.Errorf("buildenv: write %s: %w", path, err)
	}
	return nil
}
