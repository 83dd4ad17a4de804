package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/djherbis/atime"
	humanize "github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"github.com/matryer/try"
)

const retries = 5

// minify runs a job and logs its statistics. The output is buffered so that a source may be its own destination.
func (r *runner) minify(j job) error {
	start := time.Now()
	buf := &bytes.Buffer{}
	var size int64
	for i, src := range j.srcs {
		if i != 0 {
			buf.WriteByte('\n')
		}
		n, err := r.minifyFile(buf, src)
		size += n
		if err != nil {
			return fmt.Errorf("%s: %w", displayName(src), err)
		}
	}
	minSize := int64(buf.Len())

	zSize, err := r.write(j.dst, buf)
	if err != nil {
		return err
	}
	if r.opts.Preserve && len(j.srcs) == 1 && j.srcs[0] != "" && j.dst != "" {
		if err := preserve(j.srcs[0], j.dst); err != nil {
			Warning.Println("preserve", j.dst+":", err)
		}
	}

	from := displayName(j.srcs...)
	if j.dst != "" {
		from += " to " + j.dst
	}
	Stats.Println(stats(time.Since(start), size, minSize, zSize, r.opts.Gzip), "-", from)
	return nil
}

func (r *runner) minifyFile(w io.Writer, src string) (int64, error) {
	mimetype, err := r.mimetypeOf(src)
	if err != nil {
		return 0, err
	}
	f, err := openInput(src)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	c := &counter{}
	err = r.m.Minify(mimetype, w, io.TeeReader(f, c))
	return c.n, err
}

// write writes b to dst, or to stdout when dst is empty, and returns the number of bytes written.
// Files are written to a temporary file first and then renamed over dst.
func (r *runner) write(dst string, b io.Reader) (int64, error) {
	if dst == "" {
		return r.encode(os.Stdout, b)
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0777); err != nil {
		return 0, err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*")
	if err != nil {
		return 0, err
	}
	n, err := r.encode(tmp, b)
	if err == nil {
		err = tmp.Chmod(0644)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = try.Do(func(attempt int) (bool, error) {
			return attempt < retries, os.Rename(tmp.Name(), dst)
		})
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, fmt.Errorf("write %s: %w", dst, err)
	}
	return n, nil
}

// encode copies r to w, gzip compressed with --gzip, and returns the number of bytes written to w.
func (r *runner) encode(w io.Writer, b io.Reader) (int64, error) {
	c := &counter{w: w}
	if !r.opts.Gzip {
		_, err := io.Copy(c, b)
		return c.n, err
	}

	zw, err := gzip.NewWriterLevel(c, gzip.BestCompression)
	if err != nil {
		return 0, err
	}
	_, err = io.Copy(zw, b)
	if cerr := zw.Close(); err == nil {
		err = cerr
	}
	return c.n, err
}

func openInput(src string) (io.ReadCloser, error) {
	if src == "" {
		return io.NopCloser(os.Stdin), nil
	}
	var f *os.File
	err := try.Do(func(attempt int) (bool, error) {
		var err error
		f, err = os.Open(src)
		return attempt < retries, err
	})
	return f, err
}

// preserve copies the permissions and timestamps of src to dst.
func preserve(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, atime.Get(info), info.ModTime())
}

func stats(d time.Duration, size, minSize, zSize int64, gz bool) string {
	ratio := 1.0
	if 0 < size {
		ratio = float64(minSize) / float64(size)
	}
	speed := "-"
	if 0 < d {
		speed = humanize.Bytes(uint64(float64(size)/d.Seconds())) + "/s"
	}
	s := fmt.Sprintf("%9v  %7s -> %7s", d.Round(time.Microsecond), humanize.Bytes(uint64(size)), humanize.Bytes(uint64(minSize)))
	if gz {
		s += fmt.Sprintf(" (%s gz)", humanize.Bytes(uint64(zSize)))
	}
	return s + fmt.Sprintf("  %5.1f%%  %s", 100.0*ratio, speed)
}

func displayName(srcs ...string) string {
	switch {
	case len(srcs) == 0:
		return "(none)"
	case len(srcs) == 1 && srcs[0] == "":
		return "stdin"
	case len(srcs) == 1:
		return srcs[0]
	}
	return fmt.Sprintf("%s (+%d more)", srcs[0], len(srcs)-1)
}

// counter counts the bytes written through it, w may be nil.
type counter struct {
	w io.Writer
	n int64
}

func (c *counter) Write(p []byte) (int, error) {
	n := len(p)
	var err error
	if c.w != nil {
		n, err = c.w.Write(p)
	}
	c.n += int64(n)
	return n, err
}
