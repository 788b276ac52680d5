// Command cryptopals runs the block cipher challenges against simulated
// oracles and reports what each attack recovered.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	matasano "github.com/ciz/cryptopals"
	"github.com/ciz/cryptopals/cryptodata"
	"github.com/ciz/cryptopals/internal/log"
)

// env is what every challenge gets to work with.
type env struct {
	rnd     io.Reader
	workers int
	dataDir string
	out     io.Writer
}

func (e *env) path(name string) string {
	return filepath.Join(e.dataDir, name)
}

func (e *env) random(n int) (cryptodata.Data, error) {
	if e.rnd == nil {
		return cryptodata.Random(matasano.DefaultRand, n)
	}
	return cryptodata.Random(e.rnd, n)
}

func (e *env) printf(format string, args ...interface{}) {
	fmt.Fprintf(e.out, format, args...)
}

func parseChallenges(s string) ([]int, error) {
	if s == "" || s == "all" {
		var all []int
		for n := range challenges {
			all = append(all, n)
		}
		sort.Ints(all)
		return all, nil
	}

	var res []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("bad challenge number %q", f)
		}
		if _, ok := challenges[n]; !ok {
			return nil, fmt.Errorf("no challenge %d", n)
		}
		res = append(res, n)
	}
	return res, nil
}

func main() {
	var (
		chal     string
		dataDir  string
		workers  int
		seed     uint
		logLevel string
	)
	flag.StringVar(&chal, "chal", "all", "comma separated challenge numbers")
	flag.StringVar(&dataDir, "data", "testdata", "directory holding the challenge files")
	flag.IntVar(&workers, "workers", 1, "concurrent oracle queries per byte")
	flag.UintVar(&seed, "seed", 0, "seed for a deterministic random source (0 uses crypto/rand)")
	flag.StringVar(&logLevel, "loglevel", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	lvl, err := log.ParseLevel(logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.SetLevel(lvl)

	nums, err := parseChallenges(chal)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	e := &env{workers: workers, dataDir: dataDir, out: os.Stdout}
	if seed != 0 {
		e.rnd = matasano.NewMersenneReader(uint32(seed))
	}

	failed := 0
	for _, n := range nums {
		e.printf("== challenge %d\n", n)
		if err := challenges[n](e); err != nil {
			fmt.Fprintf(os.Stderr, "challenge %d: %v\n", n, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}
