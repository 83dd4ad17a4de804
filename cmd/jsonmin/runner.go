package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tdewolff/jsonmin"
)

var extMap = map[string]string{
	"geojson":     "application/geo+json",
	"har":         "application/json",
	"json":        "application/json",
	"jsonld":      "application/ld+json",
	"map":         "application/json",
	"topojson":    "application/topo+json",
	"webmanifest": "application/manifest+json",
}

// job minifies its sources into dst, several sources are bundled as JSON Lines.
// An empty source is stdin and an empty destination is stdout.
type job struct {
	srcs []string
	dst  string
}

// runner holds the state shared by all jobs of a run.
type runner struct {
	opts     Options
	m        *jsonmin.M
	mimetype string // empty to infer from the extension
	exts     map[string]string
	match    []pattern
	exclude  []pattern
}

func newRunner(opts Options) (*runner, error) {
	r := &runner{
		opts: opts,
		m:    jsonmin.New(),
		exts: make(map[string]string, len(extMap)),
	}
	r.m.AddRegexp(regexp.MustCompile("[/+]json$"), &r.opts.JSON)

	for ext, mimetype := range extMap {
		r.exts[ext] = mimetype
	}
	for ext, filetype := range opts.Ext {
		mimetype, err := r.resolve(filetype)
		if err != nil {
			return nil, err
		}
		r.exts[strings.TrimPrefix(ext, ".")] = mimetype
	}
	if opts.Type != "" {
		var err error
		if r.mimetype, err = r.resolve(opts.Type); err != nil {
			return nil, err
		}
	}

	var err error
	if r.match, err = compilePatterns(opts.Match); err != nil {
		return nil, err
	}
	if r.exclude, err = compilePatterns(opts.Exclude); err != nil {
		return nil, err
	}
	return r, nil
}

// resolve turns a filetype such as json into a mimetype.
func (r *runner) resolve(filetype string) (string, error) {
	if strings.Contains(filetype, "/") {
		return filetype, nil
	} else if mimetype, ok := r.exts[filetype]; ok {
		return mimetype, nil
	}
	return "", fmt.Errorf("unknown filetype %q", filetype)
}

// mimetypeOf returns the mimetype for a source, stdin defaults to JSON.
func (r *runner) mimetypeOf(src string) (string, error) {
	if r.mimetype != "" {
		return r.mimetype, nil
	} else if src == "" {
		return "application/json", nil
	}
	ext := strings.TrimPrefix(filepath.Ext(src), ".")
	if mimetype, ok := r.exts[ext]; ok {
		return mimetype, nil
	}
	return "", fmt.Errorf("%s: cannot infer filetype from extension, use --type", src)
}

// accept reports whether a file found in a directory is minified.
func (r *runner) accept(path string) bool {
	if matchAny(r.exclude, path) {
		return false
	} else if 0 < len(r.match) && !matchAny(r.match, filepath.Base(path)) {
		return false
	}
	_, err := r.mimetypeOf(path)
	return err == nil
}

func (r *runner) hidden(name string) bool {
	return !r.opts.All && 1 < len(name) && name[0] == '.'
}

// gz appends .gz to file destinations when compressing.
func (r *runner) gz(dst string) string {
	if r.opts.Gzip && dst != "" && filepath.Ext(dst) != ".gz" {
		return dst + ".gz"
	}
	return dst
}

// collect finds the files of the inputs and pairs them with their destinations.
// A directory input keeps its name below the output directory, unless it ends in a separator.
func (r *runner) collect(fsys fs.FS, inputs []string) ([]job, error) {
	type source struct {
		root, path string
	}

	var sources []source
	dirInput := false
	for _, input := range inputs {
		root := filepath.Dir(input)
		name := filepath.Clean(input)
		info, err := fs.Stat(fsys, name)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if !matchAny(r.exclude, name) {
				sources = append(sources, source{root, name})
			}
			continue
		} else if !r.opts.Recursive {
			Warning.Println("omit directory", name, "without --recursive")
			continue
		}
		dirInput = true

		err = fs.WalkDir(fsys, name, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			} else if d.IsDir() {
				if path != name && (r.hidden(d.Name()) || matchAny(r.exclude, path)) {
					return fs.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() && !r.hidden(d.Name()) && r.accept(path) {
				sources = append(sources, source{root, path})
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	out := r.opts.Output
	if r.opts.Bundle {
		j := job{dst: r.gz(out)}
		for _, src := range sources {
			j.srcs = append(j.srcs, src.path)
		}
		return []job{j}, nil
	} else if out == "" && 1 < len(sources) {
		return nil, fmt.Errorf("cannot write %d files to stdout, use --output or --bundle", len(sources))
	}

	toDir := out != "" && (isDir(out) || dirInput || 1 < len(sources))
	jobs := make([]job, 0, len(sources))
	for _, src := range sources {
		dst := out
		if toDir {
			rel, err := filepath.Rel(src.root, src.path)
			if err != nil {
				return nil, err
			}
			dst = filepath.Join(out, rel)
		}
		jobs = append(jobs, job{[]string{src.path}, r.gz(dst)})
	}
	return jobs, nil
}

// runAll runs the jobs in parallel and returns the number of failures.
func (r *runner) runAll(jobs []job) int {
	workers := min(runtime.NumCPU(), len(jobs))
	queue := make(chan job)
	var fails atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				if err := r.minify(j); err != nil {
					Error.Println(err)
					fails.Add(1)
				}
			}
		}()
	}
	for _, j := range jobs {
		queue <- j
	}
	close(queue)
	wg.Wait()
	return int(fails.Load())
}

// osFS opens files by their operating system path.
type osFS struct{}

func (osFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

func (osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// isDir reports whether path names a directory, or ends in a separator.
func isDir(path string) bool {
	if strings.HasSuffix(path, string(os.PathSeparator)) || strings.HasSuffix(path, "/") {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
