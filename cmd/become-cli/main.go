//go:build linux

package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/kayon/become"
)

var (
	showMaps       bool
	showCandidates bool
	runDemo        bool
	demoHolders    int
	verbose        bool
)

func init() {
	pflag.BoolVarP(&showMaps, "maps", "m", false, "display every mapped region of this process")
	pflag.BoolVarP(&showCandidates, "candidates", "c", false, "display only the readable and writable regions")
	pflag.BoolVarP(&runDemo, "demo", "d", false, "run become on a set of demo objects")
	pflag.IntVar(&demoHolders, "holders", 8, "number of demo objects referring to the source")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	pflag.Parse()
}

func main() {
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	switch {
	case showMaps:
		regions, err := become.SelfRegions()
		checkError(err)
		displayRegions(regions)
	case showCandidates:
		regions, err := become.SelfRegions()
		checkError(err)
		displayRegions(regions.Candidates())
	case runDemo:
		checkError(demo(demoHolders))
	default:
		runConsole()
	}
}

func checkError(err error) {
	if err != nil {
		log.WithFields(log.Fields{"error": err}).Debug("fatal")
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
