package replay

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/okusnadi/SabberStone/internal/game/model"
	"github.com/okusnadi/SabberStone/internal/game/rules"
)

// Recorder keeps in-memory replays for several games and writes them to disk.
type Recorder struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	replays map[string]*Replay // gameID -> Replay
	enabled map[string]bool    // gameID -> whether recording is enabled
	saveDir string
}

// NewRecorder creates a recorder that saves into saveDir.
func NewRecorder(logger *zap.Logger, saveDir string) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		logger:  logger,
		replays: make(map[string]*Replay),
		enabled: make(map[string]bool),
		saveDir: saveDir,
	}
}

// StartRecording begins a fresh replay for gameID.
func (rr *Recorder) StartRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.replays[gameID] = NewReplay(gameID)
	rr.enabled[gameID] = true

	rr.logger.Info("started replay recording",
		zap.String("game_id", gameID),
	)
}

// StopRecording pauses recording; frames recorded so far are kept.
func (rr *Recorder) StopRecording(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	rr.enabled[gameID] = false

	rr.logger.Info("stopped replay recording",
		zap.String("game_id", gameID),
	)
}

// IsRecording reports whether frames of gameID are being recorded.
func (rr *Recorder) IsRecording(gameID string) bool {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	return rr.enabled[gameID]
}

// Record captures g after action if its recording is enabled.
func (rr *Recorder) Record(g *model.Game, action string) {
	rr.mu.RLock()
	enabled := rr.enabled[g.ID()]
	r := rr.replays[g.ID()]
	rr.mu.RUnlock()

	if !enabled || r == nil {
		return
	}

	f := r.Record(Capture(g, action))

	rr.logger.Debug("recorded replay frame",
		zap.String("game_id", g.ID()),
		zap.Int("step", f.Step),
		zap.String("action", action),
		zap.String("digest", f.Digest),
	)
}

// Attach starts recording g and records a frame after every zone change and
// removal. The returned function detaches the recorder from the game's bus.
func (rr *Recorder) Attach(g *model.Game) func() {
	rr.StartRecording(g.ID())
	rr.Record(g, "START")

	handles := []int{
		g.Bus().SubscribeTyped(rules.EventZoneChange, func(e rules.Event) {
			rr.Record(g, describe(e))
		}),
		g.Bus().SubscribeTyped(rules.EventEntityRemoved, func(e rules.Event) {
			rr.Record(g, describe(e))
		}),
	}
	return func() {
		for _, h := range handles {
			g.Bus().Unsubscribe(h)
		}
	}
}

func describe(e rules.Event) string {
	switch e.Type {
	case rules.EventEntityRemoved:
		return fmt.Sprintf("%s %d from %s", e.Type, e.EntityID, e.From)
	default:
		return fmt.Sprintf("%s %d %s->%s@%d", e.Type, e.EntityID, e.From, e.To, e.Position)
	}
}

// Replay returns the in-memory replay of gameID.
func (rr *Recorder) Replay(gameID string) (*Replay, bool) {
	rr.mu.RLock()
	defer rr.mu.RUnlock()

	r, ok := rr.replays[gameID]
	return r, ok
}

// Save writes the replay of gameID to disk and drops it from memory.
func (rr *Recorder) Save(gameID string) (string, error) {
	rr.mu.Lock()
	r, ok := rr.replays[gameID]
	if !ok {
		rr.mu.Unlock()
		return "", fmt.Errorf("no replay found for game %s", gameID)
	}
	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)
	rr.mu.Unlock()

	path, err := r.SaveToFile(rr.saveDir)
	if err != nil {
		return "", fmt.Errorf("failed to save replay: %w", err)
	}

	rr.logger.Info("saved replay to disk",
		zap.String("game_id", gameID),
		zap.Int("frame_count", r.Size()),
		zap.String("path", path),
	)
	return path, nil
}

// Load reads a saved replay of gameID.
func (rr *Recorder) Load(gameID string) (*Replay, error) {
	r, err := LoadFromFile(rr.saveDir, gameID)
	if err != nil {
		return nil, err
	}

	rr.logger.Info("loaded replay from disk",
		zap.String("game_id", gameID),
		zap.Int("frame_count", r.Size()),
	)
	return r, nil
}

// Clear drops the replay of gameID without saving it.
func (rr *Recorder) Clear(gameID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	delete(rr.replays, gameID)
	delete(rr.enabled, gameID)

	rr.logger.Debug("cleared replay from memory",
		zap.String("game_id", gameID),
	)
}
