package kvstore

import (
	"bufio"
	"io"
	"os"
)

// segmentWriter is a buffered writer over a segment file that tracks
// the absolute offset of the next byte it will write. On construction
// it seeks to the end of the file so pos reflects the file's current
// size, matching the teacher's store.go bootstrap-from-existing-size
// behavior.
type segmentWriter struct {
	file *os.File
	buf  *bufio.Writer
	pos  int64
}

func newSegmentWriter(f *os.File, bufSize int) (*segmentWriter, error) {
	pos, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	return &segmentWriter{
		file: f,
		buf:  bufio.NewWriterSize(f, bufSize),
		pos:  pos,
	}, nil
}

// Write appends p and advances pos by the number of bytes buffered.
func (w *segmentWriter) Write(p []byte) (int, error) {
	n, err := w.buf.Write(p)
	w.pos += int64(n)
	return n, err
}

// Flush pushes buffered bytes to the OS. Callers must flush before
// recording an index entry so a crash never leaves the index pointing
// past what is actually durable on disk.
func (w *segmentWriter) Flush() error {
	return w.buf.Flush()
}

func (w *segmentWriter) Close() error {
	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.file.Close()
}

// segmentReader is an unbuffered reader over a segment file that tracks
// its current absolute offset so repositioning can be skipped when the
// cursor already sits at the target (§4.4.5's compaction copy loop).
type segmentReader struct {
	file *os.File
	pos  int64
}

func newSegmentReader(f *os.File) (*segmentReader, error) {
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	return &segmentReader{file: f, pos: pos}, nil
}

// SeekTo repositions the reader to offset, skipping the syscall if the
// cursor is already there.
func (r *segmentReader) SeekTo(offset int64) error {
	if r.pos == offset {
		return nil
	}
	pos, err := r.file.Seek(offset, io.SeekStart)
	if err != nil {
		return err
	}
	r.pos = pos
	return nil
}

// BoundedReader returns an io.Reader limited to exactly length bytes
// starting wherever the underlying file cursor currently sits, and
// advances the tracked position as bytes are consumed through it.
func (r *segmentReader) BoundedReader(length int64) io.Reader {
	return &trackingLimitReader{r: r, remaining: length}
}

type trackingLimitReader struct {
	r         *segmentReader
	remaining int64
}

func (t *trackingLimitReader) Read(p []byte) (int, error) {
	if t.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > t.remaining {
		p = p[:t.remaining]
	}
	n, err := t.r.file.Read(p)
	t.r.pos += int64(n)
	t.remaining -= int64(n)
	return n, err
}

func (r *segmentReader) Close() error {
	return r.file.Close()
}
