// Package pages allocates fresh page identifiers. It deliberately knows
// nothing about rooms or membership: installing a new page as a room's active
// page is the caller's job.
package pages

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// NewPage returns a unique page id. The unix-millis prefix keeps ids roughly
// time-ordered, which makes debugging a room's page history a lot easier; the
// uuid fragment is what actually guarantees uniqueness.
func (m *Manager) NewPage(roomCode string) string {
	return fmt.Sprintf("%s-%d-%s", strings.ToLower(roomCode), time.Now().UnixMilli(), uuid.NewString()[:8])
}
