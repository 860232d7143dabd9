package chat

import (
	"fmt"
	"sync"
	"testing"

	"github.com/shabeebkaip/polymerhub-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeConn records emitted events for assertions.
type fakeConn struct {
	id     string
	mu     sync.Mutex
	events []fakeEvent
}

type fakeEvent struct {
	name    string
	payload interface{}
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Emit(event string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var payload interface{}
	if len(args) > 0 {
		payload = args[0]
	}
	c.events = append(c.events, fakeEvent{name: event, payload: payload})
}

func (c *fakeConn) eventsNamed(name string) []fakeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []fakeEvent
	for _, e := range c.events {
		if e.name == name {
			out = append(out, e)
		}
	}
	return out
}

// receivedBodies extracts message bodies from message.received events, in
// emit order.
func (c *fakeConn) receivedBodies() []string {
	var out []string
	for _, e := range c.eventsNamed(EventMessageReceived) {
		payload, ok := e.payload.(map[string]interface{})
		if !ok {
			continue
		}
		msg, ok := payload["message"].(models.Message)
		if !ok {
			continue
		}
		out = append(out, msg.Body)
	}
	return out
}

// setupChatTestDB opens an isolated in-memory SQLite DB per test.
func setupChatTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Message{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
