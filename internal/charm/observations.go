// ABOUTME: Observation CRUD operations for Charm KV storage.
// ABOUTME: Uses obs:-prefixed keys with client-side date filtering and ordering.
package charm

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/focus/internal/models"
	"github.com/harperreed/focus/internal/storage"
)

// CreateObservation stores a new observation. A second observation for the
// same day is rejected.
func (c *Client) CreateObservation(o *models.Observation) error {
	o.FillIdentity()
	if err := o.Validate(); err != nil {
		return fmt.Errorf("create observation %s: %w", o.DateString(), err)
	}
	return c.write(func() error {
		existing, err := c.byDateLocked(o.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("create observation: %s already recorded", o.DateString())
		}
		return c.putLocked(o)
	})
}

// UpsertObservation inserts an observation or replaces the stored one for
// the same day, keeping its ID.
func (c *Client) UpsertObservation(o *models.Observation) error {
	o.FillIdentity()
	if err := o.Validate(); err != nil {
		return fmt.Errorf("upsert observation %s: %w", o.DateString(), err)
	}
	return c.write(func() error {
		existing, err := c.byDateLocked(o.Date)
		if err != nil {
			return err
		}
		if existing != nil {
			o.ID = existing.ID
			o.CreatedAt = existing.CreatedAt
		}
		return c.putLocked(o)
	})
}

// GetObservation retrieves an observation by ID or ID prefix.
func (c *Client) GetObservation(idOrPrefix string) (*models.Observation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	k, err := c.resolveKey(idOrPrefix)
	if err != nil {
		return nil, fmt.Errorf("get observation: %w", err)
	}
	data, err := c.kv.Get(k)
	if err != nil {
		return nil, fmt.Errorf("get observation: %w", err)
	}
	return decode(data)
}

// GetObservationByDate retrieves the observation recorded for a calendar day.
func (c *Client) GetObservationByDate(date time.Time) (*models.Observation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	o, err := c.byDateLocked(date)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, models.TruncateDay(date).Format(models.DateLayout))
	}
	return o, nil
}

// ListObservations returns observations in date order, oldest first.
// since keeps days on or after it; a positive limit keeps the most recent
// limit days.
func (c *Client) ListObservations(since *time.Time, limit int) ([]*models.Observation, error) {
	c.mu.RLock()
	all, err := c.allLocked()
	c.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("list observations: %w", err)
	}

	var obs []*models.Observation
	for _, o := range all {
		if since != nil && o.Date.Before(models.TruncateDay(*since)) {
			continue
		}
		obs = append(obs, o)
	}

	if limit > 0 && len(obs) > limit {
		obs = obs[len(obs)-limit:]
	}
	return obs, nil
}

// DeleteObservation removes an observation by ID or prefix.
func (c *Client) DeleteObservation(idOrPrefix string) error {
	err := c.write(func() error {
		k, err := c.resolveKey(idOrPrefix)
		if err != nil {
			return err
		}
		return c.kv.Delete(k)
	})
	if err != nil {
		return fmt.Errorf("delete observation: %w", err)
	}
	return nil
}

// CountObservations returns the number of stored days.
func (c *Client) CountObservations() (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys, err := c.matchKeys(ObservationPrefix, 0)
	if err != nil {
		return 0, fmt.Errorf("count observations: %w", err)
	}
	return len(keys), nil
}

// GetAllData retrieves all observations for export.
func (c *Client) GetAllData() (*storage.ExportData, error) {
	obs, err := c.ListObservations(nil, 0)
	if err != nil {
		return nil, err
	}
	return storage.NewExportData(obs), nil
}

// ImportData upserts every observation in an export without syncing per
// record, then syncs once.
func (c *Client) ImportData(data *storage.ExportData) error {
	if err := storage.PrepareImport(data); err != nil {
		return err
	}

	c.mu.Lock()
	autoSync := c.autoSync
	c.autoSync = false
	c.mu.Unlock()

	defer func() {
		c.SetAutoSync(autoSync)
	}()

	for _, o := range data.Observations {
		if err := c.UpsertObservation(o); err != nil {
			return fmt.Errorf("import observation %s: %w", o.DateString(), err)
		}
	}
	if autoSync {
		return c.Sync()
	}
	return nil
}

// putLocked writes o under its ID key. Callers hold the write lock.
func (c *Client) putLocked(o *models.Observation) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal observation: %w", err)
	}
	return c.kv.Set(key(o.ID.String()), data)
}

// allLocked decodes every stored observation sorted by date. Entries that
// fail to decode are logged and skipped.
func (c *Client) allLocked() ([]*models.Observation, error) {
	raw, err := c.values(ObservationPrefix)
	if err != nil {
		return nil, err
	}
	obs := make([]*models.Observation, 0, len(raw))
	for _, data := range raw {
		o, err := decode(data)
		if err != nil {
			c.logger.Warn("skipping unreadable observation", "err", err)
			continue
		}
		obs = append(obs, o)
	}
	sort.Slice(obs, func(i, j int) bool {
		return obs[i].Date.Before(obs[j].Date)
	})
	return obs, nil
}

// byDateLocked returns the observation for date's calendar day, or nil.
func (c *Client) byDateLocked(date time.Time) (*models.Observation, error) {
	day := models.TruncateDay(date)
	all, err := c.allLocked()
	if err != nil {
		return nil, err
	}
	for _, o := range all {
		if o.Date.Equal(day) {
			return o, nil
		}
	}
	return nil, nil
}

func decode(data []byte) (*models.Observation, error) {
	var o models.Observation
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("unmarshal observation: %w", err)
	}
	return &o, nil
}
