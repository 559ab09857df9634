package service

import (
	"context"
	"sync"

	"github.com/chathuwa-whiz/zors-pos/internal/pos"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SessionManager hands out the per-cashier pos.Session, lazily restoring
// saved tab state on first access after a restart. One session per cashier
// for the life of the process.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*pos.Session

	inv  pos.Inventory
	sink pos.CheckoutSink
	tabs pos.TabStore
	log  zerolog.Logger
}

func NewSessionManager(inv pos.Inventory, sink pos.CheckoutSink, tabs pos.TabStore) *SessionManager {
	return &SessionManager{
		sessions: make(map[uuid.UUID]*pos.Session),
		inv:      inv,
		sink:     sink,
		tabs:     tabs,
		log:      log.With().Str("component", "session_manager").Logger(),
	}
}

// Session returns the cashier's session, restoring it from the tab store
// when one was saved, or bootstrapping a fresh one otherwise.
func (m *SessionManager) Session(ctx context.Context, cashierID uuid.UUID) *pos.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[cashierID]; ok {
		return s
	}

	st, err := m.tabs.Load(ctx, cashierID)
	if err != nil {
		// Tab state is a convenience mirror. Start fresh rather than
		// blocking the cashier on a redis problem.
		m.log.Error().Err(err).Str("cashier_id", cashierID.String()).
			Msg("failed to load saved tabs, starting fresh session")
		st = nil
	}

	var s *pos.Session
	if st != nil {
		s = pos.RestoreSession(ctx, cashierID, st, m.inv, m.sink, m.tabs, m.log)
		m.log.Info().Str("cashier_id", cashierID.String()).
			Int("orders", len(st.Orders)).Msg("session restored from saved tabs")
	} else {
		s = pos.NewSession(ctx, cashierID, m.inv, m.sink, m.tabs, m.log)
	}
	m.sessions[cashierID] = s
	return s
}
