package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/chessclub/internal/config"
	"github.com/hailam/chessclub/internal/engine"
	"github.com/hailam/chessclub/internal/logging"
	"github.com/hailam/chessclub/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	difficulty = flag.String("difficulty", "", "engine difficulty: easy, medium or hard")
	seed       = flag.Int64("seed", 0, "random seed for the easy level (0 = time based)")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	// stdout carries the protocol; the logger writes to stderr.
	logCfg := config.LogConfig{Style: "console", Level: "warn"}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		logCfg.Level = v
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	eng := engine.NewEngine(*seed)
	if *difficulty != "" {
		d, err := engine.ParseDifficulty(*difficulty)
		if err != nil {
			log.Fatal(err)
		}
		eng.SetDifficulty(d)
	}

	logger.Info("engine ready", zap.Stringer("difficulty", eng.Difficulty()))

	protocol := uci.New(eng, os.Stdout, logger)
	if err := protocol.Run(os.Stdin); err != nil {
		fmt.Fprintln(os.Stderr, "info string", err)
	}
}
