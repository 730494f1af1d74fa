// Package kvstore implements the log-structured storage engine (§4.4):
// an append-only directory of generation-numbered segment files, an
// in-memory key→record-location index rebuilt by replay at open, and
// a two-generation-jump compaction pass triggered by a stale-byte
// counter. It is grounded on the teacher's internal/log package (Log
// owning a segment list plus an active segment, replayed/bootstrapped
// on open) re-targeted from an offset-addressed commit log to a
// key-addressed Bitcask store.
package kvstore

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/aleksandarhr/kvs/internal/command"
	"github.com/aleksandarhr/kvs/pkg/config"
	"github.com/aleksandarhr/kvs/pkg/kvserrors"
)

// recordLocation is the (generation, start offset, length) triple
// identifying one serialized record inside one segment, per §3.
type recordLocation struct {
	gen    uint64
	start  int64
	length int64
}

// Store is the log-structured engine described in §4.4. It satisfies
// the internal/engine.Engine interface.
type Store struct {
	mu sync.Mutex

	path       string
	cfg        config.Config
	log        *zap.SugaredLogger
	currentGen uint64

	readers map[uint64]*segmentReader
	writer  *segmentWriter

	index       map[string]recordLocation
	uncompacted int64
}

// Open creates path if missing, replays every existing segment in
// generation order to rebuild the index, and opens a fresh active
// segment at max(existing generations)+1 (or 1 if none exist), per
// §4.4's Open algorithm.
func Open(path string, log *zap.SugaredLogger, cfg config.Config) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}

	gens, err := sortedGenerations(path)
	if err != nil {
		return nil, err
	}

	s := &Store{
		path:    path,
		cfg:     cfg,
		log:     log,
		readers: make(map[uint64]*segmentReader),
		index:   make(map[string]recordLocation),
	}

	for _, gen := range gens {
		if err := s.replaySegment(gen); err != nil {
			return nil, err
		}
	}

	var nextGen uint64 = 1
	if len(gens) > 0 {
		nextGen = gens[len(gens)-1] + 1
	}
	s.currentGen = nextGen

	writer, err := createSegment(path, nextGen, s.readers, s.cfg.WriteBufferSize)
	if err != nil {
		return nil, err
	}
	s.writer = writer

	s.log.Infow("opened log-structured store",
		"path", path, "currentGen", s.currentGen, "indexSize", len(s.index))
	return s, nil
}

// replaySegment opens generation gen for reading, registers its
// reader, and replays every record in it into the index, per §4.4.1.
func (s *Store) replaySegment(gen uint64) error {
	path := segmentPath(s.path, gen)
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	reader, err := newSegmentReader(f)
	if err != nil {
		f.Close()
		return err
	}
	s.readers[gen] = reader

	dec := command.NewReader(f)
	var offset int64
	for {
		cmd, next, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return kvserrors.NewSerdeError(err)
		}

		start := offset
		switch cmd.Kind {
		case command.KindSet:
			if prev, ok := s.index[cmd.Key]; ok {
				s.uncompacted += prev.length
			}
			s.index[cmd.Key] = recordLocation{gen: gen, start: start, length: next - start}
		case command.KindRemove:
			if prev, ok := s.index[cmd.Key]; ok {
				s.uncompacted += prev.length
				delete(s.index, cmd.Key)
			}
			s.uncompacted += next - start
		}
		offset = next
	}

	// The decode loop read directly from f, so the OS cursor has moved
	// independently of reader.pos's bookkeeping. Resync explicitly
	// rather than through SeekTo, whose same-position skip would
	// otherwise leave the OS cursor at EOF while pos still reads 0.
	pos, err := f.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}
	reader.pos = pos
	return nil
}

// Set serializes a Set record, flushes it durably, then updates the
// index to point at it, per §4.4.2. If the stale-byte counter exceeds
// the configured threshold, a compaction pass runs before returning.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.writer.pos
	enc := command.NewWriter(s.writer)
	if err := enc.Encode(command.NewSet(key, value)); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}
	end := s.writer.pos

	if prev, ok := s.index[key]; ok {
		s.uncompacted += prev.length
	}
	s.index[key] = recordLocation{gen: s.currentGen, start: start, length: end - start}

	if s.uncompacted > s.cfg.CompactionThreshold {
		if err := s.compact(); err != nil {
			return err
		}
	}
	return nil
}

// Get looks up key in the index and, if present, decodes exactly the
// record it points at, per §4.4.3.
func (s *Store) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loc, ok := s.index[key]
	if !ok {
		return "", false, nil
	}

	cmd, err := s.readRecord(loc)
	if err != nil {
		return "", false, err
	}
	if cmd.Kind != command.KindSet {
		return "", false, kvserrors.ErrUnexpectedCommandType
	}
	return cmd.Value, true, nil
}

// Remove appends a Remove record and drops the key from the index, per
// §4.4.4. It fails with kvserrors.ErrKeyNotFound if the key is absent.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.index[key]
	if !ok {
		return kvserrors.ErrKeyNotFound
	}

	enc := command.NewWriter(s.writer)
	if err := enc.Encode(command.NewRemove(key)); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}

	delete(s.index, key)
	s.uncompacted += prev.length
	return nil
}

// readRecord seeks the reader for loc.gen to loc.start and decodes
// exactly loc.length bytes as one command.
func (s *Store) readRecord(loc recordLocation) (command.Command, error) {
	reader, ok := s.readers[loc.gen]
	if !ok {
		return command.Command{}, kvserrors.NewSerdeError(
			&missingReaderError{gen: loc.gen})
	}
	if err := reader.SeekTo(loc.start); err != nil {
		return command.Command{}, err
	}

	dec := command.NewReader(reader.BoundedReader(loc.length))
	cmd, _, err := dec.Decode()
	if err != nil {
		return command.Command{}, kvserrors.NewSerdeError(err)
	}
	return cmd, nil
}

// compact rewrites every live index entry into a fresh segment and
// discards the segments that preceded it, per §4.4.5. Callers must
// hold s.mu.
func (s *Store) compact() error {
	compactionGen := s.currentGen + 1
	newActiveGen := s.currentGen + 2

	compactWriter, err := createSegment(s.path, compactionGen, s.readers, s.cfg.WriteBufferSize)
	if err != nil {
		return err
	}

	for key, loc := range s.index {
		reader, ok := s.readers[loc.gen]
		if !ok {
			return kvserrors.NewSerdeError(&missingReaderError{gen: loc.gen})
		}
		if err := reader.SeekTo(loc.start); err != nil {
			return err
		}

		writeStart := compactWriter.pos
		if _, err := io.Copy(compactWriter, reader.BoundedReader(loc.length)); err != nil {
			return err
		}
		reader.pos = loc.start + loc.length

		s.index[key] = recordLocation{gen: compactionGen, start: writeStart, length: loc.length}
	}
	if err := compactWriter.Flush(); err != nil {
		return err
	}

	activeWriter, err := createSegment(s.path, newActiveGen, s.readers, s.cfg.WriteBufferSize)
	if err != nil {
		return err
	}

	for gen, reader := range s.readers {
		if gen < compactionGen {
			reader.Close()
			delete(s.readers, gen)
			if err := os.Remove(segmentPath(s.path, gen)); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}

	oldWriter := s.writer
	s.writer = activeWriter
	s.currentGen = newActiveGen
	s.uncompacted = 0
	oldWriter.Close()

	s.log.Infow("compacted store",
		"compactionGen", compactionGen, "newActiveGen", newActiveGen, "liveKeys", len(s.index))
	return nil
}

// Close flushes and closes every open segment handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if err := s.writer.Close(); err != nil {
		firstErr = err
	}
	for _, r := range s.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type missingReaderError struct{ gen uint64 }

func (e *missingReaderError) Error() string {
	return "kvstore: no reader registered for segment generation"
}
