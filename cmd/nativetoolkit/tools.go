package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/arko-chat/nativetoolkit/internal/buildenv"
	"github.com/arko-chat/nativetoolkit/internal/localization"
)

func runBuildEnv(_ context.Context, env *environment, args []string) error {
	fs := newFlags("buildenv")
	path := fs.StringP("file", "f", buildenv.DefaultFile, "dotenv file to read")
	asJSON := fs.Bool("json", false, "print the settings as JSON")
	write := fs.Bool("write", false, "normalize the file in place after reading it")
	if err := fs.Parse(args); err != nil {
		return err
	}

	s, err := buildenv.Load(*path)
	if err != nil {
		return err
	}
	if *write {
		if err := buildenv.Write(*path, s); err != nil {
			return err
		}
		env.logger.Info("build settings written", "path", *path)
	}

	if *asJSON {
		return json.NewEncoder(os.Stdout).Encode(s)
	}
	if buildArgs := s.BuildArgs(); buildArgs != nil {
		fmt.Println(strings.Join(buildArgs, " "))
	}
	return nil
}

type missingKeysError map[string][]string

func (e missingKeysError) Error() string {
	langs := make([]string, 0, len(e))
	for lang, keys := range e {
		langs = append(langs, lang+": "+strings.Join(keys, ", "))
	}
	slices.Sort(langs)
	return "catalog is missing labels (" + strings.Join(langs, "; ") + ")"
}

func runLocalize(_ context.Context, env *environment, args []string) error {
	fs := newFlags("localize")
	catalogPath := fs.StringP("catalog", "c", "", "YAML catalog, the built-in one when empty")
	outDir := fs.StringP("out", "o", "", "directory for the generated language assets")
	strict := fs.Bool("strict", false, "fail when a language misses a required label")
	if err := fs.Parse(args); err != nil {
		return err
	}

	catalog := localization.Default()
	if *catalogPath != "" {
		var err error
		if catalog, err = localization.LoadCached(*catalogPath); err != nil {
			return err
		}
	}

	missing := catalog.Missing()
	if *strict && len(missing) > 0 {
		return missingKeysError(missing)
	}

	if *outDir == "" {
		fmt.Println(strings.Join(catalog.Languages(), "\n"))
		return nil
	}

	paths, err := localization.Generate(catalog, *outDir, env.logger)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}
