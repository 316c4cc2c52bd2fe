// Package replay records game state frames and persists them as
// zstd-compressed files.
package replay

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/okusnadi/SabberStone/internal/game/model"
)

// Version is the current replay file format.
const Version = 1

// Extension is appended to the game id to form a replay file name.
const Extension = ".replay.zst"

// ErrUnsupportedVersion is returned when a replay file has an unknown format.
var ErrUnsupportedVersion = errors.New("unsupported replay version")

// Frame is one recorded state of a game.
type Frame struct {
	Step   int
	Action string
	Turn   int
	Hash   string
	Digest string
	View   model.GameView
}

// Capture snapshots g after action.
func Capture(g *model.Game, action string) Frame {
	view := g.View()
	return Frame{
		Action: action,
		Turn:   g.Turn(),
		Hash:   g.Hash(),
		Digest: view.Digest,
		View:   view,
	}
}

// Header is the uncompressed-JSON first line of a replay file.
type Header struct {
	GameID  string    `json:"game_id"`
	Version int       `json:"version"`
	Frames  int       `json:"frames"`
	SavedAt time.Time `json:"saved_at"`
}

// Replay is a recorded game with sequential frames and a playback cursor.
type Replay struct {
	GameID       string
	Frames       []Frame
	CurrentIndex int
	mu           sync.RWMutex
}

// NewReplay creates an empty replay.
func NewReplay(gameID string) *Replay {
	return &Replay{
		GameID: gameID,
		Frames: make([]Frame, 0),
	}
}

// Record appends f, numbering it with the next step.
func (r *Replay) Record(f Frame) Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	f.Step = len(r.Frames)
	r.Frames = append(r.Frames, f)
	return f
}

// Start rewinds the cursor.
func (r *Replay) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CurrentIndex = 0
}

// Next returns the frame under the cursor and advances it.
func (r *Replay) Next() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex < len(r.Frames) {
		f := r.Frames[r.CurrentIndex]
		r.CurrentIndex++
		return f, true
	}
	return Frame{}, false
}

// Previous moves the cursor back and returns that frame.
func (r *Replay) Previous() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.CurrentIndex > 0 {
		r.CurrentIndex--
		return r.Frames[r.CurrentIndex], true
	}
	return Frame{}, false
}

// Skip moves the cursor by count frames, clamped to the recording.
func (r *Replay) Skip(count int) (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.Frames) == 0 {
		return Frame{}, false
	}
	idx := r.CurrentIndex + count
	if idx >= len(r.Frames) {
		idx = len(r.Frames) - 1
	}
	if idx < 0 {
		idx = 0
	}
	r.CurrentIndex = idx
	return r.Frames[idx], true
}

// Size returns the number of recorded frames.
func (r *Replay) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.Frames)
}

// FrameAt returns the frame recorded at step.
func (r *Replay) FrameAt(step int) (Frame, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if step >= 0 && step < len(r.Frames) {
		return r.Frames[step], true
	}
	return Frame{}, false
}

// Path returns the file a replay of gameID is stored in under directory.
func Path(directory, gameID string) string {
	return filepath.Join(directory, gameID+Extension)
}

// SaveToFile writes the replay to directory and returns the file path.
func (r *Replay) SaveToFile(directory string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := Path(directory, r.GameID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return "", fmt.Errorf("failed to create zstd writer: %w", err)
	}
	werr := r.write(enc)
	if err := enc.Close(); err != nil && werr == nil {
		werr = fmt.Errorf("failed to finish replay: %w", err)
	}
	if werr != nil {
		return "", werr
	}
	return path, nil
}

func (r *Replay) write(w io.Writer) error {
	bw := bufio.NewWriter(w)

	hb, err := json.Marshal(Header{
		GameID:  r.GameID,
		Version: Version,
		Frames:  len(r.Frames),
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	encoder := gob.NewEncoder(bw)
	for i := range r.Frames {
		if err := encoder.Encode(&r.Frames[i]); err != nil {
			return fmt.Errorf("failed to encode frame %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush replay: %w", err)
	}
	return nil
}

// LoadFromFile reads the replay of gameID from directory.
func LoadFromFile(directory, gameID string) (*Replay, error) {
	return Open(Path(directory, gameID))
}

// Open reads a replay file.
func Open(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	var h Header
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, fmt.Errorf("failed to decode header: %w", err)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	r := NewReplay(h.GameID)
	decoder := gob.NewDecoder(br)
	for i := 0; i < h.Frames; i++ {
		var frame Frame
		if err := decoder.Decode(&frame); err != nil {
			return nil, fmt.Errorf("failed to decode frame %d: %w", i, err)
		}
		r.Frames = append(r.Frames, frame)
	}
	return r, nil
}

// Diff returns the first step at which a and b disagree, comparing digests.
// A recording that ends early diverges at the first step it is missing.
// ok is false when both replays are identical.
func Diff(a, b *Replay) (step int, ok bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a != b {
		b.mu.RLock()
		defer b.mu.RUnlock()
	}

	n := len(a.Frames)
	if len(b.Frames) < n {
		n = len(b.Frames)
	}
	for i := 0; i < n; i++ {
		if a.Frames[i].Digest != b.Frames[i].Digest {
			return i, true
		}
	}
	if len(a.Frames) != len(b.Frames) {
		return n, true
	}
	return -1, false
}
