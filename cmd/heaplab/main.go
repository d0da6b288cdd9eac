// Command heaplab replays allocator traces against every registered
// iface.Allocator implementation and reports utilization and throughput,
// playing the role mymalloc/mdriver.c plays for the C reference: a small
// driver binary, not a library.
//
// Flag handling and the --init/--validate/--show config commands follow
// cmd/orizon-config/main.go's shape (flag.BoolVar/StringVar plus a custom
// flag.Usage); trace directory discovery follows mdriver.c's -t <dir> scan.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fenwicklabs/heaplab/internal/badalloc"
	"github.com/fenwicklabs/heaplab/internal/blockalloc"
	"github.com/fenwicklabs/heaplab/internal/harness"
	"github.com/fenwicklabs/heaplab/internal/iface"
	"github.com/fenwicklabs/heaplab/internal/refalloc"
	"github.com/fsnotify/fsnotify"
)

func main() {
	var (
		configFile string
		init       bool
		validate   bool
		show       bool
		traceFile  string
		traceDir   string
		watch      bool
		jsonOut    bool
	)

	flag.StringVar(&configFile, "config", "heaplab.json", "configuration file path")
	flag.BoolVar(&init, "init", false, "write a default configuration file")
	flag.BoolVar(&validate, "validate", false, "validate the configuration file and exit")
	flag.BoolVar(&show, "show", false, "print the effective configuration and exit")
	flag.StringVar(&traceFile, "f", "", "run a single trace file instead of the configured directory")
	flag.StringVar(&traceDir, "t", "", "override trace_dir from the config file")
	flag.BoolVar(&watch, "watch", false, "re-run every trace whenever the trace directory changes")
	flag.BoolVar(&jsonOut, "json", false, "print results as JSON instead of a table")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Replays allocator traces against blockalloc, refalloc and badalloc.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s --init                    # write heaplab.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s                            # run every trace in trace_dir\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -f testdata/traces/x.trace # run a single trace\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --watch                    # re-run on trace directory changes\n", os.Args[0])
	}

	flag.Parse()

	if init {
		if err := initConfig(configFile); err != nil {
			fatalf("failed to initialize config: %v", err)
		}
		fmt.Printf("Configuration initialized: %s\n", configFile)
		return
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			cfg = defaultConfig()
		} else {
			fatalf("failed to load config: %v", err)
		}
	}

	if traceDir != "" {
		cfg.TraceDir = traceDir
	}

	if validate {
		if _, err := loadConfig(configFile); err != nil {
			fatalf("configuration invalid: %v", err)
		}
		fmt.Printf("Configuration is valid: %s\n", configFile)
		return
	}

	if show {
		data, _ := json.MarshalIndent(cfg, "", "  ")
		fmt.Println(string(data))
		return
	}

	if err := runOnce(cfg, traceFile, jsonOut); err != nil {
		fatalf("%v", err)
	}

	if watch {
		if err := runWatch(cfg, jsonOut); err != nil {
			fatalf("%v", err)
		}
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "heaplab: "+format+"\n", args...)
	os.Exit(1)
}

func runOnce(cfg *Config, singleFile string, jsonOut bool) error {
	var paths []string
	var err error

	if singleFile != "" {
		paths = []string{singleFile}
	} else {
		paths, err = discoverTraces(cfg.TraceDir)
		if err != nil {
			return fmt.Errorf("scanning trace dir %s: %w", cfg.TraceDir, err)
		}
	}

	if len(paths) == 0 {
		return fmt.Errorf("no trace files found under %s", cfg.TraceDir)
	}

	traces := make(map[string]*harness.Trace, len(paths))
	for _, p := range paths {
		tr, err := loadTrace(p)
		if err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
		traces[filepath.Base(p)] = tr
	}

	impls, err := selectAllocators(cfg)
	if err != nil {
		return err
	}

	results, err := harness.RunAll(context.Background(), impls, traces, cfg.Alignment)
	if err != nil {
		return fmt.Errorf("running traces: %w", err)
	}

	if jsonOut {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printResults(results)
	return nil
}

// runWatch re-runs the full trace set every time the trace directory
// changes, following mdriver.c's -t <dir> scan but kept alive across
// filesystem events instead of exiting after one pass.
func runWatch(cfg *Config, jsonOut bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.TraceDir); err != nil {
		return fmt.Errorf("watching %s: %w", cfg.TraceDir, err)
	}

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}

	fmt.Printf("watching %s for changes (ctrl-c to stop)\n", cfg.TraceDir)

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(debounce, func() { fire <- struct{}{} })
			} else {
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "heaplab: watcher error: %v\n", err)

		case <-fire:
			fmt.Println("--- trace directory changed, re-running ---")
			if err := runOnce(cfg, "", jsonOut); err != nil {
				fmt.Fprintf(os.Stderr, "heaplab: %v\n", err)
			}
		}
	}
}

func selectAllocators(cfg *Config) (map[string]func() iface.Allocator, error) {
	available := map[string]func() iface.Allocator{
		"blockalloc": func() iface.Allocator {
			return blockalloc.New(blockalloc.WithHeapCap(cfg.HeapCapBytes))
		},
		"refalloc": func() iface.Allocator { return refalloc.New() },
		"badalloc": func() iface.Allocator { return badalloc.New(cfg.HeapCapBytes) },
	}

	impls := make(map[string]func() iface.Allocator, len(cfg.Allocators))
	for _, name := range cfg.Allocators {
		factory, ok := available[name]
		if !ok {
			return nil, fmt.Errorf("unknown allocator %q in config (known: blockalloc, refalloc, badalloc)", name)
		}
		impls[name] = factory
	}

	return impls, nil
}

// discoverTraces mirrors mdriver.c's directory scan when no single -f file
// is given: every regular file in dir is treated as a trace file.
func discoverTraces(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	sort.Strings(paths)
	return paths, nil
}

func loadTrace(path string) (*harness.Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return harness.Parse(f)
}

// printResults follows printresults in mdriver.c: one row per (allocator,
// trace) pair, then an aggregate row.
func printResults(results map[string]harness.Result) {
	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%-28s%8s%8s%8s%10s%10s\n", "trace", "valid", "util", "ops", "secs", "Kops/sec")

	var totalUtil, totalOps, totalSecs, totalThroughput float64
	var validCount int

	for _, k := range keys {
		r := results[k]
		if !r.Valid {
			fmt.Printf("%-28s%8s%8s%8s%10s%10s  (%v)\n", shorten(k), "no", "-", "-", "-", "-", r.Error)
			continue
		}

		kops := r.OpsPerSec / 1e3
		fmt.Printf("%-28s%8s%7.0f%%%8d%10.6f%10.0f\n", shorten(k), "yes", r.Utilization*100, r.Ops, r.Elapsed.Seconds(), kops)

		totalUtil += r.Utilization
		totalOps += float64(r.Ops)
		totalSecs += r.Elapsed.Seconds()
		totalThroughput += kops
		validCount++
	}

	if validCount > 0 {
		fmt.Printf("%-28s%8s%7.0f%%%8.0f%10.6f%10.0f\n", "average", "", (totalUtil/float64(validCount))*100, totalOps, totalSecs, totalThroughput/float64(validCount))
	}
}

func shorten(key string) string {
	if len(key) <= 28 {
		return key
	}
	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 {
		return key[:28]
	}
	return parts[0] + "/…" + parts[1][len(parts[1])-20:]
}
