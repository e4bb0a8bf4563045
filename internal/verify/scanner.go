package verify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

var ErrSessionClosed = errors.New("scan session closed")

// Scanner serializes camera scan sessions. At most one session is
// live; starting a new one closes the previous, and a closed session
// discards any decision that was still in flight. This keeps a stale
// camera feed from flashing verdicts over a newer session.
type Scanner struct {
	engine *Engine
	logger *slog.Logger

	mu     sync.Mutex
	active *ScanSession
	seq    uint64
}

func NewScanner(engine *Engine) *Scanner {
	return &Scanner{
		engine: engine,
		logger: slog.With("component", "scanner"),
	}
}

// Start opens a new scan session, closing any previous one.
func (s *Scanner) Start() *ScanSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.Close()
	}
	s.seq++
	s.active = &ScanSession{
		id:      s.seq,
		scanner: s,
		done:    make(chan struct{}),
	}
	s.logger.Debug("Scan session started", "session", s.seq)
	return s.active
}

// Active returns the live session, or nil when none is open.
func (s *Scanner) Active() *ScanSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Stop closes the live session, if any.
func (s *Scanner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		s.active.Close()
		s.active = nil
	}
}

// ScanSession is one exclusive run of the scanner.
type ScanSession struct {
	id      uint64
	scanner *Scanner

	done      chan struct{}
	closeOnce sync.Once
}

// ID identifies the session for consumers tracking which run a
// decision belongs to.
func (ss *ScanSession) ID() uint64 {
	return ss.id
}

// Done is closed when the session ends.
func (ss *ScanSession) Done() <-chan struct{} {
	return ss.done
}

// Submit verifies one scanned code. A decision that completes after
// the session closed is discarded and ErrSessionClosed returned, so a
// superseded camera feed never surfaces a verdict.
func (ss *ScanSession) Submit(ctx context.Context, raw string) (*Decision, error) {
	select {
	case <-ss.done:
		return nil, ErrSessionClosed
	default:
	}

	decision, err := ss.scanner.engine.VerifyAsset(ctx, raw)
	if err != nil {
		return nil, err
	}

	select {
	case <-ss.done:
		ss.scanner.logger.Debug("Dropping late decision", "session", ss.id)
		return nil, ErrSessionClosed
	default:
	}
	return decision, nil
}

// Close ends the session. Safe to call more than once.
func (ss *ScanSession) Close() {
	ss.closeOnce.Do(func() {
		close(ss.done)
	})
}
