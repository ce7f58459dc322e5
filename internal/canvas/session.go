package canvas

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("canvas session not found")
	ErrFileNotFound    = errors.New("canvas file not found")
)

const DefaultHistoryDepth = 50

// Session is one live canvas workspace: an ordered file set, the active file,
// and a snapshot stack for undo/redo. The stack always holds at least the
// initial parse result, so undoing past the first edit restores it.
type Session struct {
	ID           string
	UserID       string
	mu           sync.Mutex
	files        []File
	activeID     string
	history      [][]File
	cursor       int
	historyDepth int
}

func newSession(userID string, files []File, historyDepth int) *Session {
	if historyDepth <= 0 {
		historyDepth = DefaultHistoryDepth
	}
	s := &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		files:        files,
		historyDepth: historyDepth,
	}
	if len(files) > 0 {
		s.activeID = files[0].ID
	}
	s.history = [][]File{cloneFiles(files)}
	return s
}

// Files returns a copy of the current file set in order.
func (s *Session) Files() []File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneFiles(s.files)
}

func (s *Session) ActiveFileID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

func (s *Session) SetActiveFile(fileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(fileID) < 0 {
		return ErrFileNotFound
	}
	s.activeID = fileID
	return nil
}

// Edit replaces a file's content in place. Edits are not snapshotted
// individually; callers mark an edit-batch boundary with FlushHistory.
func (s *Session) Edit(fileID, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(fileID)
	if i < 0 {
		return ErrFileNotFound
	}
	s.files[i].Content = content
	s.activeID = fileID
	return nil
}

// FlushHistory pushes the current file set onto the snapshot stack,
// discarding any redo tail past the cursor. Oldest snapshots are dropped
// once the stack exceeds the configured depth.
func (s *Session) FlushHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history[:s.cursor+1], cloneFiles(s.files))
	s.cursor = len(s.history) - 1
	if len(s.history) > s.historyDepth {
		drop := len(s.history) - s.historyDepth
		s.history = s.history[drop:]
		s.cursor -= drop
	}
}

// Undo moves the history cursor back one snapshot. At the oldest snapshot it
// is a no-op and returns false.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor <= 0 {
		return false
	}
	s.cursor--
	s.restoreLocked()
	return true
}

// Redo moves the history cursor forward one snapshot. At the newest snapshot
// it is a no-op and returns false.
func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cursor >= len(s.history)-1 {
		return false
	}
	s.cursor++
	s.restoreLocked()
	return true
}

func (s *Session) restoreLocked() {
	s.files = cloneFiles(s.history[s.cursor])
	if s.indexOf(s.activeID) < 0 && len(s.files) > 0 {
		s.activeID = s.files[0].ID
	}
}

func (s *Session) indexOf(fileID string) int {
	for i := range s.files {
		if s.files[i].ID == fileID {
			return i
		}
	}
	return -1
}

func cloneFiles(files []File) []File {
	out := make([]File, len(files))
	copy(out, files)
	return out
}

// Registry holds live canvas sessions in memory, keyed by session ID.
// Sessions live for the process lifetime unless explicitly deleted.
type Registry struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	historyDepth int
}

func NewRegistry(historyDepth int) *Registry {
	return &Registry{
		sessions:     make(map[string]*Session),
		historyDepth: historyDepth,
	}
}

// Create parses a raw code blob into a new session owned by the given user.
func (r *Registry) Create(userID, raw, languageHint string) *Session {
	session := newSession(userID, ParseFiles(raw, languageHint), r.historyDepth)
	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()
	return session
}

func (r *Registry) Get(sessionID, userID string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[sessionID]
	r.mu.RUnlock()
	if !ok || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (r *Registry) Delete(sessionID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok || session.UserID != userID {
		return ErrSessionNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}
