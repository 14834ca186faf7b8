package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"

	log "github.com/sirupsen/logrus"

	"toothless_dashboard/internal/entities"
	"toothless_dashboard/internal/interfaces"
)

var ErrUnknownCategory = errors.New("unknown settings category")

// Collection names shared with the bot runtime.
const (
	WelcomeCollection = "welcome-settings"
	LogCollection     = "log-settings"
	TicketCollection  = "ticket-settings"
	LevelCollection   = "level-settings"
)

type UpdateMode string

const (
	// UpdateModeReplace stores the candidate as the whole new document.
	UpdateModeReplace UpdateMode = "replace"
	// UpdateModeMerge overlays the candidate's top-level fields onto the
	// stored document before validation.
	UpdateModeMerge UpdateMode = "merge"
)

// CorruptionObserver is told about every persisted collection or entry that
// had to be discarded while loading.
type CorruptionObserver interface {
	ObserveCorruption(collection string)
}

type Options struct {
	Mode     UpdateMode
	Observer CorruptionObserver
}

type documentCollection interface {
	load(ctx context.Context) error
	getAny(guildID string) (any, bool)
	updateAny(ctx context.Context, guildID string, raw []byte) (any, error)
}

// collection holds one category for every guild. Writers hold mu for the whole
// validate, persist and swap sequence, so readers only ever see a state that
// the backend has accepted.
type collection[T any] struct {
	name     string
	category entities.Category
	schema   schema[T]
	backend  interfaces.Backend
	opts     Options

	mu   sync.RWMutex
	docs map[string]T
}

func newCollection[T any](name string, category entities.Category, s schema[T], backend interfaces.Backend, opts Options) *collection[T] {
	return &collection[T]{
		name:     name,
		category: category,
		schema:   s,
		backend:  backend,
		opts:     opts,
		docs:     map[string]T{},
	}
}

func (c *collection[T]) load(ctx context.Context) error {
	data, err := c.backend.Load(ctx, c.name)
	if err != nil {
		return fmt.Errorf("load %s: %w", c.name, err)
	}
	docs := map[string]T{}
	if data == nil {
		c.setDocs(docs)
		return nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		c.corrupted("", err)
		c.setDocs(docs)
		return nil
	}
	for guildID, raw := range entries {
		doc, err := c.schema.decode(raw)
		if err != nil {
			c.corrupted(guildID, err)
			continue
		}
		docs[guildID] = doc
	}
	c.setDocs(docs)
	return nil
}

func (c *collection[T]) setDocs(docs map[string]T) {
	c.mu.Lock()
	c.docs = docs
	c.mu.Unlock()
}

func (c *collection[T]) corrupted(guildID string, cause error) {
	fields := log.Fields{"collection": c.name, "error": cause}
	msg := "Discarding unreadable settings collection"
	if guildID != "" {
		fields["guild_id"] = guildID
		msg = "Discarding unreadable settings entry"
	}
	log.WithFields(fields).Warn(msg)
	if c.opts.Observer != nil {
		c.opts.Observer.ObserveCorruption(c.name)
	}
}

// Get returns a copy of the guild's document that shares no memory with the
// stored one.
func (c *collection[T]) Get(guildID string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[guildID]
	if !ok {
		return doc, false
	}
	return c.schema.copyOf(doc), true
}

func (c *collection[T]) getAny(guildID string) (any, bool) {
	doc, ok := c.Get(guildID)
	if !ok {
		return nil, false
	}
	return &doc, true
}

// Update validates raw, persists the collection with the new document and
// returns the stored document.
func (c *collection[T]) Update(ctx context.Context, guildID string, raw []byte) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	candidate := raw
	if current, ok := c.docs[guildID]; ok && c.opts.Mode == UpdateModeMerge {
		if _, err := c.schema.decode(raw); err != nil {
			return zero, c.tag(err)
		}
		merged, err := mergeTopLevel(current, raw)
		if err != nil {
			return zero, fmt.Errorf("merge %s settings: %w", c.category, err)
		}
		candidate = merged
	}

	doc, err := c.schema.parse(candidate)
	if err != nil {
		return zero, c.tag(err)
	}

	next := maps.Clone(c.docs)
	next[guildID] = doc
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", c.name, err)
	}
	if err := c.backend.Save(ctx, c.name, data); err != nil {
		return zero, fmt.Errorf("persist %s: %w", c.name, err)
	}
	c.docs = next
	return c.schema.copyOf(doc), nil
}

func (c *collection[T]) updateAny(ctx context.Context, guildID string, raw []byte) (any, error) {
	doc, err := c.Update(ctx, guildID, raw)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *collection[T]) tag(err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Category = c.category
	}
	return err
}

// SettingsStore is the write-through store of the four guild settings
// categories.
type SettingsStore struct {
	backend interfaces.Backend

	Welcome *collection[entities.WelcomeSettings]
	Log     *collection[entities.LogSettings]
	Tickets *collection[entities.TicketSettings]
	Levels  *collection[entities.LevelSettings]

	byCategory map[entities.Category]documentCollection
}

// Open loads every category from backend. Unreadable content is logged and
// treated as absent; only backend read failures are returned.
func Open(ctx context.Context, backend interfaces.Backend, opts Options) (*SettingsStore, error) {
	if opts.Mode == "" {
		opts.Mode = UpdateModeReplace
	}
	if opts.Mode != UpdateModeReplace && opts.Mode != UpdateModeMerge {
		return nil, fmt.Errorf("unknown settings update mode %q", opts.Mode)
	}

	s := &SettingsStore{
		backend: backend,
		Welcome: newCollection(WelcomeCollection, entities.CategoryWelcome, welcomeSchema, backend, opts),
		Log:     newCollection(LogCollection, entities.CategoryLog, logSchema, backend, opts),
		Tickets: newCollection(TicketCollection, entities.CategoryTickets, ticketSchema, backend, opts),
		Levels:  newCollection(LevelCollection, entities.CategoryLevels, levelSchema, backend, opts),
	}
	s.byCategory = map[entities.Category]documentCollection{
		entities.CategoryWelcome: s.Welcome,
		entities.CategoryLog:     s.Log,
		entities.CategoryTickets: s.Tickets,
		entities.CategoryLevels:  s.Levels,
	}

	for _, category := range entities.Categories {
		if err := s.byCategory[category].load(ctx); err != nil {
			return nil, err
		}
	}
	log.WithField("mode", opts.Mode).Info("Settings store loaded")
	return s, nil
}

func (s *SettingsStore) Close() error {
	return s.backend.Close()
}

// Get returns a pointer to a copy of the stored document, or found=false
// when the guild never configured the category.
func (s *SettingsStore) Get(category entities.Category, guildID string) (doc any, found bool, err error) {
	c, ok := s.byCategory[category]
	if !ok {
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	doc, found = c.getAny(guildID)
	return doc, found, nil
}

func (s *SettingsStore) Update(ctx context.Context, category entities.Category, guildID string, raw []byte) (any, error) {
	c, ok := s.byCategory[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return c.updateAny(ctx, guildID, raw)
}

// Snapshot gathers every category for one guild. Categories are read one at a
// time, so the result is not a single atomic view across categories.
func (s *SettingsStore) Snapshot(guildID string) entities.GuildSettings {
	var out entities.GuildSettings
	if doc, ok := s.Welcome.Get(guildID); ok {
		out.Welcome = &doc
	}
	if doc, ok := s.Log.Get(guildID); ok {
		out.Log = &doc
	}
	if doc, ok := s.Tickets.Get(guildID); ok {
		out.Tickets = &doc
	}
	if doc, ok := s.Levels.Get(guildID); ok {
		out.Levels = &doc
	}
	return out
}
