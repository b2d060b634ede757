package core

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// TaskIDGenerator produces task identifiers. The store retries on collision,
// so generators only need to be unique with overwhelming probability.
type TaskIDGenerator interface {
	GenerateTaskID() string
}

type uuidTaskIDGenerator struct{}

// NewTaskIDGenerator returns the default generator, producing random
// (version 4) UUIDs.
func NewTaskIDGenerator() TaskIDGenerator {
	return uuidTaskIDGenerator{}
}

func (uuidTaskIDGenerator) GenerateTaskID() string {
	return uuid.NewString()
}

// sequentialTaskIDGenerator yields {prefix}-{n} with n zero-padded to
// padWidth. Counters are kept in memory only.
type sequentialTaskIDGenerator struct {
	mu       sync.Mutex
	prefix   string
	padWidth int
	counter  int
}

// NewSequentialTaskIDGenerator returns a deterministic generator (TASK-00001,
// TASK-00002, ...). Use 0 for no padding.
func NewSequentialTaskIDGenerator(prefix string, padWidth int) TaskIDGenerator {
	return &sequentialTaskIDGenerator{prefix: prefix, padWidth: padWidth}
}

func (g *sequentialTaskIDGenerator) GenerateTaskID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	if g.padWidth > 0 {
		return fmt.Sprintf("%s-%0*d", g.prefix, g.padWidth, g.counter)
	}
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
