// ABOUTME: Charm KV client wrapper for observation storage.
// ABOUTME: Provides thread-safe initialization and automatic cloud sync.
package charm

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/charmbracelet/log"

	"github.com/harperreed/focus/internal/storage"
)

const (
	// DBName is the Charm KV database holding focus data.
	DBName = "focus"

	// DefaultHost is used when CHARM_HOST is not already set.
	DefaultHost = "charm.2389.dev"

	ObservationPrefix = "obs:"
)

// ErrReadOnly is returned by writes while another process holds the KV lock.
var ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// store is the subset of *kv.KV the client uses.
type store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
	IsReadOnly() bool
	Close() error
}

// Client stores observations in Charm KV and implements storage.Repository.
type Client struct {
	kv       store
	autoSync bool
	logger   *log.Logger
	mu       sync.RWMutex
}

var _ storage.Repository = (*Client)(nil)

// InitClient initializes the global Charm client.
// Thread-safe; can be called multiple times.
func InitClient() (*Client, error) {
	clientOnce.Do(func() {
		if os.Getenv("CHARM_HOST") == "" {
			if err := os.Setenv("CHARM_HOST", DefaultHost); err != nil {
				clientErr = err
				return
			}
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = fmt.Errorf("open charm kv %s: %w", DBName, err)
			return
		}

		globalClient = newClient(db, true)

		// Pull remote data on startup unless another process holds the lock.
		if !db.IsReadOnly() {
			_ = db.Sync()
		}
	})

	return globalClient, clientErr
}

func newClient(s store, autoSync bool) *Client {
	return &Client{kv: s, autoSync: autoSync, logger: log.Default()}
}

// SetLogger routes warnings about unreadable entries to l.
func (c *Client) SetLogger(l *log.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.kv.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.kv.IsReadOnly() {
		return nil
	}
	return c.kv.Sync()
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

// write applies fn under the write lock and syncs afterwards when enabled.
func (c *Client) write(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.kv.IsReadOnly() {
		return ErrReadOnly
	}
	if err := fn(); err != nil {
		return err
	}
	if c.autoSync {
		_ = c.kv.Sync()
	}
	return nil
}

// values returns the values of every key under prefix. Callers hold c.mu.
func (c *Client) values(prefix string) ([][]byte, error) {
	keys, err := c.matchKeys(prefix, 0)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		val, err := c.kv.Get(k)
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", k, err)
		}
		out = append(out, val)
	}
	return out, nil
}

// matchKeys returns keys starting with prefix, stopping after limit matches
// when limit is positive. Callers hold c.mu.
func (c *Client) matchKeys(prefix string, limit int) ([][]byte, error) {
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	want := []byte(prefix)
	var matches [][]byte
	for _, k := range keys {
		if !bytes.HasPrefix(k, want) {
			continue
		}
		matches = append(matches, k)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

// resolveKey finds the single key for an ID or ID prefix. Callers hold c.mu.
func (c *Client) resolveKey(idPrefix string) ([]byte, error) {
	matches, err := c.matchKeys(ObservationPrefix+idPrefix, 2)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, idPrefix)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("ambiguous prefix %s: matches multiple records", idPrefix)
	}
}

// key returns the KV key for an observation ID.
func key(id string) []byte {
	return []byte(ObservationPrefix + id)
}
