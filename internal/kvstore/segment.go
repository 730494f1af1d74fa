package kvstore

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// segmentSuffix names segment files <gen>.log, matching §3's on-disk
// layout. Grounded on the teacher's log.go, which parses base offsets
// out of "<offset>.store"/"<offset>.index" filenames the same way.
const segmentSuffix = ".log"

// sortedGenerations scans dir for files named <gen>.log and returns
// their generation numbers in ascending order. Non-matching entries
// are silently ignored, per §4.3.
func sortedGenerations(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var gens []uint64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, segmentSuffix) {
			continue
		}
		stem := strings.TrimSuffix(name, segmentSuffix)
		gen, err := strconv.ParseUint(stem, 10, 64)
		if err != nil {
			continue
		}
		gens = append(gens, gen)
	}

	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens, nil
}

// segmentPath returns the deterministic path for generation gen.
func segmentPath(dir string, gen uint64) string {
	return filepath.Join(dir, strconv.FormatUint(gen, 10)+segmentSuffix)
}

// createSegment opens <gen>.log for append, also opens it for reading
// and registers that reader in readers, and returns a writer positioned
// at the file's current end. This tolerates a pre-existing file (the
// normal reopen-on-restart path) and only fails in unusual filesystem
// states, per §4.3.
func createSegment(dir string, gen uint64, readers map[uint64]*segmentReader, writeBufSize int) (*segmentWriter, error) {
	path := segmentPath(dir, gen)

	wf, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	writer, err := newSegmentWriter(wf, writeBufSize)
	if err != nil {
		wf.Close()
		return nil, err
	}

	rf, err := os.Open(path)
	if err != nil {
		writer.Close()
		return nil, err
	}
	reader, err := newSegmentReader(rf)
	if err != nil {
		rf.Close()
		writer.Close()
		return nil, err
	}
	readers[gen] = reader

	return writer, nil
}
