// Command cppre runs the cppre preprocessor over a single translation
// unit and prints (or writes, one file per configuration) the resulting
// macro-expanded text for every build configuration its #ifdef/#ifndef/
// #if guards admit.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cppre/cppre"
)

// includeList collects repeated -I flags into an ordered slice.
type includeList []string

func (l *includeList) String() string { return strings.Join(*l, ",") }

func (l *includeList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var includes includeList
	flag.Var(&includes, "I", "add a directory to the #include search path (repeatable)")
	listConfigs := flag.Bool("list-configs", false, "print every reachable ConfigString and exit, without expanding any of them")
	outDir := flag.String("o", "", "write one file per configuration into this directory instead of stdout")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-I dir]... [-o dir] [-list-configs] file\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	if *listConfigs {
		code := cppre.NormalizeSource(f, path, includes)
		for _, cfg := range cppre.EnumerateConfigs(code) {
			if cfg == "" {
				cfg = "(baseline)"
			}
			fmt.Println(cfg)
		}
		return
	}

	sink := &cppre.WriterSink{W: os.Stderr}
	results, err := cppre.Preprocess(f, path, includes, sink)
	if err != nil {
		log.Fatal(err)
	}

	var cfgs []string
	for cfg := range results {
		cfgs = append(cfgs, cfg)
	}
	sort.Strings(cfgs)

	if *outDir == "" {
		for _, cfg := range cfgs {
			if cfg != "" {
				fmt.Printf("// config: %s\n", cfg)
			}
			fmt.Print(results[cfg])
		}
		return
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, cfg := range cfgs {
		name := base
		if cfg != "" {
			name += "." + strings.ReplaceAll(cfg, ";", "_")
		}
		name += ".i"
		outPath := filepath.Join(*outDir, name)
		if err := os.WriteFile(outPath, []byte(results[cfg]), 0o644); err != nil {
			log.Fatal(err)
		}
	}
}
