package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/ctxlog"
	"github.com/goliatone/go-formflow/pkg/engine"
	"github.com/goliatone/go-formflow/pkg/formdef"
	"github.com/goliatone/go-formflow/pkg/settings"
	"github.com/goliatone/go-formflow/pkg/simulate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	definitions := flag.String("definitions", cfg.Definitions, "directory holding *.form.yaml definitions")
	formID := flag.String("form", "", "form id to simulate")
	settingsPath := flag.String("settings", "", "initial settings file (JSON or YAML)")
	contextPath := flag.String("context", "", "dialog context file (JSON), for example upstream columns")
	list := flag.Bool("list", false, "list the available forms and exit")
	flag.Parse()

	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = ctxlog.WithLogger(ctx, logger)

	catalog, err := formdef.LoadFS(ctx, os.DirFS(*definitions))
	if err != nil {
		log.Fatalf("Failed to load definitions: %v", err)
	}

	if *list || strings.TrimSpace(*formID) == "" {
		for _, id := range catalog.Forms() {
			fmt.Println(id)
		}
		if !*list {
			fmt.Fprintln(os.Stderr, "pass -form <id> to start a simulation")
		}
		return
	}

	engineOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithSanitizedOptions(cfg.SanitizedOptions...),
	}
	if cfg.LazyPlans {
		engineOpts = append(engineOpts, engine.WithLazyPlans())
	}
	pool, err := engine.NewPool(cfg.PoolSize, catalog.CompileFunc(formdef.NewFactories(), engineOpts...))
	if err != nil {
		log.Fatalf("Failed to create engine pool: %v", err)
	}
	e, err := pool.Get(ctx, *formID)
	if err != nil {
		log.Fatalf("Failed to compile form %q: %v", *formID, err)
	}

	snapshot := settings.New(nil)
	if *settingsPath != "" {
		if snapshot, err = settings.Load(*settingsPath); err != nil {
			log.Fatalf("Failed to read settings: %v", err)
		}
	}

	runnerOpts := []simulate.Option{simulate.WithLogger(logger)}
	if *contextPath != "" {
		dialogContext, err := readContext(*contextPath)
		if err != nil {
			log.Fatalf("Failed to read context: %v", err)
		}
		runnerOpts = append(runnerOpts, simulate.WithDialogContext(dialogContext))
	}

	runner, err := simulate.NewRunner(e, snapshot, runnerOpts...)
	if err != nil {
		log.Fatalf("Failed to start simulation: %v", err)
	}
	if err := runner.Run(ctx); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}

func readContext(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}
