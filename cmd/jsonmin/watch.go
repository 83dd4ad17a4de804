package main

import (
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/patrickmn/go-cache"
)

const (
	settleDelay  = 100 * time.Millisecond // let the writer finish
	ignoreWindow = 500 * time.Millisecond
)

// watcher reports files below the watched paths that are created or written to.
type watcher struct {
	fsw    *fsnotify.Watcher
	ignore *cache.Cache // destinations we just wrote
	recent *cache.Cache // files just reported
}

func newWatcher() (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &watcher{
		fsw:    fsw,
		ignore: cache.New(ignoreWindow, time.Minute),
		recent: cache.New(settleDelay, time.Minute),
	}, nil
}

func (w *watcher) Close() error {
	return w.fsw.Close()
}

// add watches a directory, or the directory holding a file.
func (w *watcher) add(path string, recursive bool) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	} else if !info.IsDir() {
		return w.fsw.Add(filepath.Dir(path))
	} else if !recursive {
		return w.fsw.Add(path)
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}
		return w.fsw.Add(p)
	})
}

// skip silences the events for a file we are about to write.
func (w *watcher) skip(name string) {
	if name != "" {
		w.ignore.SetDefault(filepath.Clean(name), true)
	}
}

// wanted reports whether a change to name should be passed on.
func (w *watcher) wanted(name string) bool {
	if _, ok := w.ignore.Get(name); ok {
		return false
	}
	return w.recent.Add(name, true, cache.DefaultExpiration) == nil
}

// changes returns the files that changed, new directories are watched too when recursive.
// The channel is closed when the watcher is closed.
func (w *watcher) changes(recursive bool) <-chan string {
	files := make(chan string, 16)
	go func() {
		defer close(files)
		for {
			select {
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				} else if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				name := filepath.Clean(event.Name)
				info, err := os.Stat(name)
				if err != nil {
					continue
				} else if info.IsDir() {
					if recursive && event.Has(fsnotify.Create) {
						if err := w.add(name, true); err != nil {
							Error.Println(err)
						}
					}
				} else if w.wanted(name) {
					time.Sleep(settleDelay)
					files <- name
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				Error.Println(err)
			}
		}
	}()
	return files
}

func jobsBySource(jobs []job) map[string]job {
	m := map[string]job{}
	for _, j := range jobs {
		for _, src := range j.srcs {
			m[filepath.Clean(src)] = j
		}
	}
	return m
}

// watch runs the jobs, and then reruns a job whenever one of its sources changes until interrupted.
// Files that appear in a watched directory are picked up by collecting the inputs again.
func (r *runner) watch(inputs []string, jobs []job) int {
	w, err := newWatcher()
	if err != nil {
		Error.Println(err)
		return 1
	}
	defer w.Close()
	for _, input := range inputs {
		if err := w.add(input, r.opts.Recursive); err != nil {
			Error.Println(err)
			return 1
		}
	}

	rerun := func(j job) {
		w.skip(j.dst)
		if err := r.minify(j); err != nil {
			Error.Println(err)
		}
	}
	for _, j := range jobs {
		rerun(j)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)

	bySrc := jobsBySource(jobs)
	changes := w.changes(r.opts.Recursive)
	Info.Println("watching", len(inputs), "inputs")
	for {
		select {
		case <-interrupt:
			return 0
		case name, ok := <-changes:
			if !ok {
				return 0
			}
			j, ok := bySrc[name]
			if !ok && r.accept(name) && !r.hidden(filepath.Base(name)) {
				if jobs, err := r.collect(osFS{}, inputs); err == nil {
					bySrc = jobsBySource(jobs)
					j, ok = bySrc[name]
				}
			}
			if ok {
				rerun(j)
			}
		}
	}
}
