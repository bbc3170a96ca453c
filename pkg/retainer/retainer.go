// Package retainer provides a reference-counted cache that extends a module
// controller's lifetime beyond its original owner.
//
// Entries are keyed by an opaque string (see [NewKey]) and hold anything
// disposable — in practice module controllers. An entry is created by
// Register, shared via Acquire, and dropped either explicitly (Evict) or
// when its reference count reaches zero with the dispose flag set. An entry
// may additionally be bound to a one-shot external termination signal
// (navigation events, timers, manual channels); firing it evicts and
// disposes exactly once regardless of concurrent Release calls.
//
// The engine is agnostic to where retention signals come from: any external
// collaborator may call Acquire, Release, or Evict.
package retainer

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	moderrors "github.com/modkit-go/modkit/pkg/errors"
)

// Disposable is the contract entries must satisfy. Module controllers
// implement it.
type Disposable interface {
	Dispose() error
}

// Policy controls what happens when an entry's reference count reaches zero.
type Policy int

const (
	// PolicyManual keeps orphaned entries alive until the caller releases
	// with the dispose flag or evicts.
	PolicyManual Policy = iota
	// PolicyWhileReferenced disposes as soon as the count reaches zero,
	// regardless of the release flag.
	PolicyWhileReferenced
)

// Entry is a read-only snapshot of a cached entry.
type Entry struct {
	Key          string
	RefCount     int
	Policy       Policy
	LastAccessed time.Time
}

// RegisterOptions tunes a Register call. The zero value registers with one
// reference, manual policy, and no termination signal.
type RegisterOptions struct {
	// InitialRefCount is the starting reference count. Zero means one.
	InitialRefCount int
	Policy          Policy
	// Signal, when non-nil, binds the entry to a one-shot external
	// termination signal: the first receive (or close) evicts and disposes.
	Signal <-chan struct{}
}

type entry struct {
	controller   Disposable
	policy       Policy
	refCount     int
	lastAccessed time.Time

	stop        chan struct{}
	stopOnce    sync.Once
	disposeOnce sync.Once
}

// Retainer is a reference-counted cache of disposable controllers.
// It is safe for concurrent use.
type Retainer struct {
	mu      sync.Mutex
	entries map[string]*entry
	logger  *log.Logger
}

// New creates a retainer. A nil logger falls back to log.Default().
func New(logger *log.Logger) *Retainer {
	if logger == nil {
		logger = log.Default()
	}
	return &Retainer{
		entries: make(map[string]*entry),
		logger:  logger,
	}
}

// NewKey generates an opaque retention key.
func NewKey() string {
	return uuid.NewString()
}

// Register caches c under key. Re-registering a live key is a lifecycle
// error.
func (r *Retainer) Register(key string, c Disposable, opts RegisterOptions) error {
	refs := opts.InitialRefCount
	if refs <= 0 {
		refs = 1
	}

	e := &entry{
		controller:   c,
		policy:       opts.Policy,
		refCount:     refs,
		lastAccessed: time.Now(),
		stop:         make(chan struct{}),
	}

	r.mu.Lock()
	if _, exists := r.entries[key]; exists {
		r.mu.Unlock()
		return moderrors.New(moderrors.ErrCodeDuplicateRetain,
			"key %s is already retained", key)
	}
	r.entries[key] = e
	r.mu.Unlock()

	if opts.Signal != nil {
		go r.watch(key, e, opts.Signal)
	}

	r.logger.Debug("retained controller", "key", key, "refs", refs)
	return nil
}

// Acquire increments the reference count and returns the controller, or nil
// if the key is absent.
func (r *Retainer) Acquire(key string) Disposable {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil
	}
	e.refCount++
	e.lastAccessed = time.Now()
	return e.controller
}

// Peek returns the controller without touching the reference count, or nil
// if the key is absent.
func (r *Retainer) Peek(key string) Disposable {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil
	}
	return e.controller
}

// Release decrements the reference count. At zero, the entry is removed and
// disposed when disposeIfOrphaned is set or the entry's policy is
// PolicyWhileReferenced. Releasing an absent key is a silent no-op.
func (r *Retainer) Release(key string, disposeIfOrphaned bool) error {
	r.mu.Lock()
	e, ok := r.entries[key]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	if e.refCount > 0 {
		e.refCount--
	}
	orphaned := e.refCount == 0
	r.mu.Unlock()

	if orphaned && (disposeIfOrphaned || e.policy == PolicyWhileReferenced) {
		return r.terminate(key, e, true)
	}
	return nil
}

// Evict removes the entry unconditionally, regardless of reference count.
// The controller is disposed when disposeController is set. Evicting an
// absent key is a silent no-op.
func (r *Retainer) Evict(key string, disposeController bool) error {
	r.mu.Lock()
	e, ok := r.entries[key]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return r.terminate(key, e, disposeController)
}

// Lookup returns a snapshot of the entry for key.
func (r *Retainer) Lookup(key string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Key:          key,
		RefCount:     e.refCount,
		Policy:       e.policy,
		LastAccessed: e.lastAccessed,
	}, true
}

// Len returns the number of live entries.
func (r *Retainer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// watch binds an entry to its termination signal.
func (r *Retainer) watch(key string, e *entry, signal <-chan struct{}) {
	select {
	case <-signal:
		if err := r.terminate(key, e, true); err != nil {
			r.logger.Error("dispose on termination signal failed", "key", key, "err", err)
		}
	case <-e.stop:
	}
}

// terminate removes the entry and optionally disposes its controller.
// Safe to call from Release, Evict, and the signal watcher concurrently:
// removal is guarded by the map lock and disposal by a sync.Once.
func (r *Retainer) terminate(key string, e *entry, dispose bool) error {
	r.mu.Lock()
	if cur, ok := r.entries[key]; ok && cur == e {
		delete(r.entries, key)
	}
	r.mu.Unlock()

	e.stopOnce.Do(func() { close(e.stop) })

	var err error
	if dispose {
		e.disposeOnce.Do(func() {
			err = e.controller.Dispose()
			r.logger.Debug("disposed retained controller", "key", key)
		})
	}
	return err
}
