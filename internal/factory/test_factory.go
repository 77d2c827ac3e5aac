package factory

import (
	"time"

	"github.com/ttt-arcade/tictactoe-server/internal/dependencies/mocks"
	"github.com/ttt-arcade/tictactoe-server/internal/storage/memory"
	"github.com/ttt-arcade/tictactoe-server/internal/testutil"
	"github.com/ttt-arcade/tictactoe-server/internal/ws"
)

// TestApp wraps App with mocked dependencies for testing
type TestApp struct {
	*App
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an application with in-memory storage and mocked
// clock/random for deterministic tests.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	cfg := Config{
		Coordinator: ws.DefaultCoordinatorConfig(),
	}

	app := newWithDependencies(store, mockClock, mockRandom, cfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
