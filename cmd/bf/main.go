package main

import (
	"flag"
	"os"

	"github.com/Urethramancer/bf/harness"
	"github.com/Urethramancer/bf/internal/bflog"
)

var (
	modeFlag  = flag.String("mode", "auto", "Execution mode: auto, interp, or jit.")
	modeFlagM = flag.String("m", "auto", "Shorthand for -mode.")
)

func main() {
	log := bflog.Default()
	log.SetFlags(0)
	flag.Parse()

	if flag.NArg() != 1 {
		log.Println("Usage: bf [options] <source.bf>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	selected := *modeFlag
	if *modeFlagM != "auto" {
		selected = *modeFlagM
	}
	mode, err := parseMode(selected)
	if err != nil {
		log.Fatalf("Invalid -mode: %v", err)
	}

	filename := flag.Arg(0)
	src, err := os.ReadFile(filename)
	if err != nil {
		log.Fatalf("Couldn't read source file: %v", err)
	}

	if err := harness.Run(src, mode, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("Execution failed: %v", err)
	}
}

func parseMode(s string) (harness.Mode, error) {
	switch s {
	case "auto", "":
		return harness.ModeAuto, nil
	case "interp":
		return harness.ModeInterp, nil
	case "jit":
		return harness.ModeJIT, nil
	default:
		return 0, &invalidModeError{s}
	}
}

type invalidModeError struct{ got string }

func (e *invalidModeError) Error() string {
	return "unknown mode " + e.got + " (want auto, interp, or jit)"
}
