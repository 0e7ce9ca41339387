// Command rolebench runs role-conditioned safety evaluations from the
// command line: batch mode walks the whole evaluation file, single mode
// asks one ad-hoc question.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rolebench-ai/rolebench/internal/app"
	"github.com/rolebench-ai/rolebench/internal/bench"
	"github.com/rolebench-ai/rolebench/internal/config"
	"github.com/rolebench-ai/rolebench/internal/prompt"
	"github.com/rolebench-ai/rolebench/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		role       = flag.String("role", "", "role to evaluate; empty runs every known role")
		mode       = flag.String("mode", "batch", "run mode: batch or single")
		question   = flag.String("question", "", "question for single mode")
		promptOnly = flag.Bool("prompt-only", false, "skip the training pass, rely on the system prompt alone")
		trainFile  = flag.String("train", "", "override the training exemplar file")
		evalFile   = flag.String("eval", "", "override the evaluation question file")
		outDir     = flag.String("out", "", "override the results output directory")
	)
	flag.Parse()

	cfg := config.Load()
	if *trainFile != "" {
		cfg.TrainFile = *trainFile
	}
	if *evalFile != "" {
		cfg.EvalFile = *evalFile
	}
	if *outDir != "" {
		cfg.OutputDir = *outDir
	}

	logger := logging.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, cleanup, err := app.BuildClient(ctx, cfg, logger)
	if err != nil {
		logger.Error("building completion client failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	svc := app.NewService(cfg, client, logger, nil)

	switch *mode {
	case "single":
		if *question == "" {
			logger.Error("single mode requires -question")
			os.Exit(1)
		}
		if *role == "" {
			logger.Error("single mode requires -role")
			os.Exit(1)
		}
		record, err := svc.RunSingle(ctx, *role, *question, *promptOnly)
		if err != nil {
			logger.Error("single run failed", "role", *role, "error", err)
			os.Exit(1)
		}
		out, _ := json.MarshalIndent(record, "", "  ")
		fmt.Println(string(out))

	case "batch":
		roles := prompt.Roles()
		if *role != "" {
			roles = []string{*role}
		}
		failed := false
		for _, r := range roles {
			if err := runBatch(ctx, svc, cfg, logger, r, *promptOnly); err != nil {
				logger.Error("batch run failed", "role", r, "error", err)
				failed = true
			}
		}
		if failed {
			os.Exit(1)
		}

	default:
		logger.Error("unknown mode", "mode", *mode)
		os.Exit(1)
	}
}

func runBatch(ctx context.Context, svc *app.Service, cfg *config.Config, logger *logging.Logger, role string, promptOnly bool) error {
	result, err := svc.RunBatch(ctx, role, promptOnly)
	if err != nil {
		return err
	}

	path, err := bench.WriteResults(cfg.OutputDir, result, promptOnly)
	if err != nil {
		return err
	}

	logger.Info("results written",
		"role", role,
		"path", path,
		"total_questions", result.TotalQuestions,
		"completed", result.Completed)
	return nil
}
