package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/tdewolff/argp"
)

// Version is the current jsonmin version.
var Version = "built from source"

// Loggers.
var (
	Error   = log.New(io.Discard, "", 0)
	Warning = log.New(io.Discard, "", 0)
	Info    = log.New(io.Discard, "", 0)
	Stats   = log.New(io.Discard, "", 0)
)

// stringList appends option values up to the next flag.
type stringList struct {
	dst *[]string
}

func (l stringList) Scan(args []string) (int, error) {
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return i, nil
		}
		*l.dst = append(*l.dst, arg)
	}
	return len(args), nil
}

func (stringList) TypeName() string {
	return "[]string"
}

func main() {
	os.Exit(run())
}

func run() int {
	var inputs []string
	var configFile string
	var version bool
	opts := Options{}

	f := argp.New("jsonmin")
	f.AddRest(&inputs, "inputs", "Input files or directories, leave blank or use - for stdin")
	f.AddOpt(&opts.Output, "o", "output", nil, "Output file or directory, leave blank or use - for stdout")
	f.AddOpt(&opts.Type, "", "type", nil, "Filetype (eg. json or application/ld+json), inferred from the extension by default")
	f.AddOpt(stringList{&opts.Match}, "", "match", nil, "Filename pattern, only matching files in directories are minified")
	f.AddOpt(stringList{&opts.Exclude}, "", "exclude", nil, "Path pattern of files and directories to skip")
	f.AddOpt(&opts.Ext, "", "ext", nil, "Extension to filetype mapping (eg. jsonc:json)")
	f.AddOpt(&opts.Recursive, "r", "recursive", false, "Minify the files in directories recursively")
	f.AddOpt(&opts.All, "a", "all", false, "Include hidden files and directories")
	f.AddOpt(&opts.Quiet, "q", "quiet", false, "Suppress all output")
	f.AddOpt(argp.Count{I: &opts.Verbose}, "v", "verbose", nil, "Verbose mode, set twice for more verbosity")
	f.AddOpt(&opts.Watch, "w", "watch", false, "Minify again whenever an input changes")
	f.AddOpt(&opts.Bundle, "b", "bundle", false, "Bundle the inputs into JSON Lines, one minified document per line")
	f.AddOpt(&opts.Gzip, "z", "gzip", false, "Compress the output with gzip and append .gz to output filenames")
	f.AddOpt(&opts.Preserve, "p", "preserve", false, "Copy the mode and timestamps of the input to the output")
	f.AddOpt(&configFile, "c", "config", nil, "YAML configuration file, "+defaultConfigFile+" is used when present")
	f.AddOpt(&version, "", "version", false, "Version")
	f.AddOpt(&opts.JSON.ChunkSize, "", "json-chunk-size", 0, "Read buffer size in bytes, 0 uses the default")
	f.AddOpt(&opts.JSON.EscapeParity, "", "json-escape-parity", false, "End strings by counting backslashes instead of the escape cool-down")
	f.Parse()

	required := f.IsSet("config")
	if !required {
		configFile = defaultConfigFile
	}
	cfg, err := LoadConfig(configFile, required)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return 1
	} else if cfg != nil {
		cfg.Apply(f.IsSet, &opts)
	}

	if version {
		fmt.Println("jsonmin", Version)
		return 0
	}

	setLoggers(opts.Quiet, opts.Verbose)
	if cfg != nil {
		Info.Println("use configuration file", configFile)
	}

	if opts.Output == "-" {
		opts.Output = ""
	}
	if len(inputs) == 1 && inputs[0] == "-" {
		inputs = nil
	}

	r, err := newRunner(opts)
	if err != nil {
		Error.Println(err)
		return 1
	}

	if len(inputs) == 0 {
		if opts.Watch || opts.Recursive || opts.Bundle {
			Error.Println("--watch, --recursive and --bundle need input files")
			return 1
		}
		if err := r.minify(job{srcs: []string{""}, dst: r.gz(opts.Output)}); err != nil {
			Error.Println(err)
			return 1
		}
		return 0
	}

	jobs, err := r.collect(osFS{}, inputs)
	if err != nil {
		Error.Println(err)
		return 1
	}
	if opts.Watch {
		if opts.Output == "" {
			Error.Println("--watch needs an output")
			return 1
		}
		return r.watch(inputs, jobs)
	}
	if fails := r.runAll(jobs); 0 < fails {
		Error.Printf("%d of %d failed", fails, len(jobs))
		return 1
	}
	return 0
}

func setLoggers(quiet bool, verbose int) {
	if quiet {
		return
	}
	Error = log.New(os.Stderr, "ERROR: ", 0)
	Stats = log.New(os.Stderr, "", 0)
	if 0 < verbose {
		Warning = log.New(os.Stderr, "WARNING: ", 0)
	}
	if 1 < verbose {
		Info = log.New(os.Stderr, "INFO: ", 0)
	}
}
