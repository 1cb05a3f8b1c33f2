// ABOUTME: Durable per-agent conversation memory backed by BoltDB
// ABOUTME: Append-only turn logs, loaded in full at startup, best-effort flush

package memory

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// ErrPersist marks a failed write to the backing file. It is logged, never
// surfaced to the conversation flow: the in-memory log stays authoritative
// for the session and a crash before flush loses at most the latest turn.
var ErrPersist = errors.New("memory persistence failed")

// turnsBucket is the root bucket; one sub-bucket per agent id.
var turnsBucket = []byte("agent_turns")

// Role identifies which side of a simulated conversation produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Turn is one entry in an agent's conversation log. Never mutated after
// creation; logs only grow, except for an explicit Clear.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Store holds every agent's turn log. All operations are synchronous and,
// apart from Open, never fail from the caller's perspective.
type Store struct {
	mu     sync.Mutex
	db     *bolt.DB
	turns  map[string][]Turn
	logger *slog.Logger
}

// Open loads all agent logs from the BoltDB file at path, creating the file
// and parent directories if needed. Pass nil logger for default.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "memory")

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating memory directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening memory database: %w", err)
	}

	s := &Store{
		db:     db,
		turns:  make(map[string][]Turn),
		logger: logger,
	}

	if err := s.loadAll(); err != nil {
		db.Close()
		return nil, fmt.Errorf("loading agent memory: %w", err)
	}

	logger.Info("agent memory loaded", "path", path, "agents", len(s.turns))
	return s, nil
}

// loadAll reads every agent's turns in stored (sequence) order.
func (s *Store) loadAll() error {
	return s.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(turnsBucket)
		if root == nil {
			return nil
		}
		return root.ForEachBucket(func(agentID []byte) error {
			agent := root.Bucket(agentID)
			return agent.ForEach(func(_, v []byte) error {
				var turn Turn
				if err := json.Unmarshal(v, &turn); err != nil {
					// Skip malformed entries instead of failing the whole load
					s.logger.Warn("skipping malformed turn record", "agent_id", string(agentID))
					return nil
				}
				s.turns[string(agentID)] = append(s.turns[string(agentID)], turn)
				return nil
			})
		})
	})
}

// Load returns the stored turns for an agent in original order. The result
// is a copy; an unknown agent yields an empty slice, never an error.
func (s *Store) Load(agentID string) []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := make([]Turn, len(s.turns[agentID]))
	copy(turns, s.turns[agentID])
	return turns
}

// Append adds a turn to an agent's log. The in-memory log always reflects
// the turn; a failed flush to disk is logged and otherwise ignored.
func (s *Store) Append(agentID string, turn Turn) {
	s.mu.Lock()
	s.turns[agentID] = append(s.turns[agentID], turn)
	s.mu.Unlock()

	if err := s.flush(agentID, turn); err != nil {
		s.logger.Error("failed to persist turn",
			"error", fmt.Errorf("%w: %v", ErrPersist, err),
			"agent_id", agentID,
			"role", turn.Role)
	}
}

// flush writes one turn under the agent's bucket with a monotonic sequence key.
func (s *Store) flush(agentID string, turn Turn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(turnsBucket)
		if err != nil {
			return err
		}
		agent, err := root.CreateBucketIfNotExists([]byte(agentID))
		if err != nil {
			return err
		}
		seq, err := agent.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return agent.Put(key, data)
	})
}

// Clear empties an agent's log, in memory and on disk.
func (s *Store) Clear(agentID string) {
	s.mu.Lock()
	delete(s.turns, agentID)
	s.mu.Unlock()

	err := s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(turnsBucket)
		if root == nil {
			return nil
		}
		if root.Bucket([]byte(agentID)) == nil {
			return nil
		}
		return root.DeleteBucket([]byte(agentID))
	})
	if err != nil {
		s.logger.Error("failed to clear agent memory on disk",
			"error", fmt.Errorf("%w: %v", ErrPersist, err),
			"agent_id", agentID)
	}
}

// Agents returns the ids of all agents with stored turns.
func (s *Store) Agents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.turns))
	for id := range s.turns {
		ids = append(ids, id)
	}
	return ids
}

// Close closes the backing database.
func (s *Store) Close() error {
	return s.db.Close()
}
