package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/godilite/support-recommender/internal/config"
	"github.com/godilite/support-recommender/internal/questionnaire"
	"github.com/godilite/support-recommender/internal/replay"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	fixturePath := flag.String("fixture", "", "path to a YAML scenario fixture (default: built-in scenarios)")
	flag.Parse()

	_ = godotenv.Load(".env")

	cfg := config.LoadFromEnv()
	logger, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(2)
	}

	code := run(*fixturePath, logger)
	_ = logger.Sync()
	os.Exit(code)
}

func run(fixturePath string, logger *zap.Logger) int {
	if err := questionnaire.Validate(); err != nil {
		logger.Error("question graph is invalid", zap.Error(err))
		return 2
	}

	var (
		f   *replay.Fixture
		err error
	)
	if fixturePath == "" {
		f, err = replay.Builtin()
	} else {
		f, err = replay.LoadFixture(fixturePath)
	}
	if err != nil {
		logger.Error("failed to load fixture", zap.String("path", fixturePath), zap.Error(err))
		return 2
	}

	sum := replay.Run(f, logger)

	for _, r := range sum.Results {
		mark := "PASS"
		if !r.Passed() {
			mark = "FAIL"
		}
		fmt.Printf("%s  %s\n", mark, r.Name)
		for _, rec := range r.Recommendations {
			fmt.Printf("      %d. %s (%d)\n", rec.Rank, rec.Service, rec.Score)
		}
		if r.Err != nil {
			fmt.Printf("      error: %v\n", r.Err)
		}
		if r.Mismatch != "" {
			fmt.Printf("      %s\n", r.Mismatch)
		}
	}
	fmt.Printf("\n%d passed, %d failed\n", sum.Passed, sum.Failed)

	if !sum.OK() {
		return 1
	}
	return 0
}
