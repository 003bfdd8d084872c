package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goliatone/go-formflow/pkg/formdef"
)

type violation struct {
	file     string
	location string
	message  string
}

func main() {
	flag.Usage = func() {
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [dirs...]\n", filepath.Base(os.Args[0])); err != nil {
			panic(err)
		}
		if _, err := fmt.Fprintf(flag.CommandLine.Output(), "\nCompile every form definition and report configuration errors and cycles.\n"); err != nil {
			panic(err)
		}
	}
	flag.Parse()

	dirs := flag.Args()
	if len(dirs) == 0 {
		dirs = []string{"forms"}
	}

	ctx := context.Background()
	factories := formdef.NewFactories()

	var violations []violation
	forms := 0
	for _, dir := range dirs {
		linted, count := lintDir(ctx, factories, dir)
		violations = append(violations, linted...)
		forms += count
	}

	if len(violations) > 0 {
		sort.Slice(violations, func(i, j int) bool {
			if violations[i].file == violations[j].file {
				if violations[i].location == violations[j].location {
					return violations[i].message < violations[j].message
				}
				return violations[i].location < violations[j].location
			}
			return violations[i].file < violations[j].file
		})
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "%s: %s -> %s\n", v.file, v.location, v.message)
		}
		os.Exit(1)
	}
	fmt.Printf("%d form(s) OK\n", forms)
}

func lintDir(ctx context.Context, factories *formdef.Factories, dir string) ([]violation, int) {
	catalog, err := formdef.LoadFS(ctx, os.DirFS(dir))
	if err != nil {
		return split(dir, "load", err), 0
	}

	var result []violation
	for _, id := range catalog.Forms() {
		def, _ := catalog.Definition(id)
		file := filepath.Join(dir, def.Source)
		if _, err := catalog.Engine(id, factories); err != nil {
			result = append(result, split(file, "form "+id, err)...)
		}
	}
	return result, len(catalog.Forms())
}

// split reports each joined error separately.
func split(file, location string, err error) []violation {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []violation
		for _, inner := range joined.Unwrap() {
			out = append(out, split(file, location, inner)...)
		}
		return out
	}
	return []violation{{file: file, location: location, message: err.Error()}}
}
