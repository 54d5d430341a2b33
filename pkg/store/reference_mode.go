package store

import (
	"fmt"
	"sync"

	"github.com/arcs-core/arcs/pkg/crdt"
	"github.com/arcs-core/arcs/pkg/model"
	"github.com/arcs-core/arcs/pkg/vv"
)

// pendingState tracks where a container Reference sits in the
// AWAITING_BACKING -> READY state machine.
type pendingState int

const (
	awaitingBacking pendingState = iota
	ready
)

type pendingEntry struct {
	ref   model.Reference
	state pendingState
}

// ReferenceModeStore sits between a particle-facing proxy and a Driver,
// splitting entity writes into a containerStore of References and a
// lazily-created backingStore of per-entity Entity CRDTs. It never
// surfaces a Reference to the proxy before the entity it names has
// arrived with a version vector at least as advanced as the Reference's
// own — this is what keeps references causally dereferenceable.
type ReferenceModeStore struct {
	mu sync.Mutex

	actor   model.Actor
	counter uint64
	schema  *model.Schema

	driver       Driver
	containerKey string
	backingRoot  model.StorageKey

	container *crdt.Collection[model.Reference]
	backing   map[model.ReferenceId]*crdt.Entity

	pending  map[model.ReferenceId]*pendingEntry
	observed map[model.ReferenceId]bool // backing keys with a receiver already registered

	// pendingSends holds payloads a Send call reported as failed; they
	// are retried the next time flushPendingLocked runs (on FlushPending
	// or whenever a driver receiver callback fires).
	pendingSends map[string][]byte

	proxyReceiver func(model.ProxyMessage)
}

// NewReferenceModeStore returns a store for entities shaped by schema,
// multiplexed onto driver under containerKey. Backing entities are keyed
// off containerKey's Child(id) so all of one store's keys share a
// recognizable prefix. The store's own actor string is generated once at
// construction and used for every Reference and op it originates,
// keeping its version vector monotonic.
func NewReferenceModeStore(schema *model.Schema, driver Driver, containerKey model.StorageKey) *ReferenceModeStore {
	s := &ReferenceModeStore{
		actor:        model.NewActor(),
		schema:       schema,
		driver:       driver,
		containerKey: containerKey.String(),
		backingRoot:  containerKey,
		container:    crdt.NewCollection[model.Reference](),
		backing:      make(map[model.ReferenceId]*crdt.Entity),
		pending:      make(map[model.ReferenceId]*pendingEntry),
		observed:     make(map[model.ReferenceId]bool),
		pendingSends: make(map[string][]byte),
	}
	driver.RegisterReceiver(s.containerKey, s.onContainerUpdate)
	return s
}

// SetActor overrides the store's randomly generated actor identity. It
// must be called before any write reaches the store — callers that want
// a stable identity across process restarts (e.g. a CLI honoring an
// ARCS_ACTOR environment variable) call it immediately after
// NewReferenceModeStore.
func (s *ReferenceModeStore) SetActor(actor model.Actor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actor = actor
}

// RegisterProxyReceiver installs the callback invoked whenever the store
// has a ModelUpdate ready to push to the particle-facing proxy — either
// in direct reply to a SyncRequest, or asynchronously once a pending
// Reference's backing entity becomes available.
func (s *ReferenceModeStore) RegisterProxyReceiver(callback func(model.ProxyMessage)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proxyReceiver = callback
}

func (s *ReferenceModeStore) backingKey(id model.ReferenceId) string {
	return s.backingRoot.Child(string(id)).String()
}

func (s *ReferenceModeStore) nextClock() vv.VersionVector {
	s.counter++
	return vv.New().Bump(string(s.actor), s.counter)
}

// HandleProxyMessage processes one incoming ProxyMessage from the
// particle-facing side. SyncRequest replies synchronously with a
// materialized ModelUpdate; ModelUpdate and Operations are applied and
// decomposed into backing-store writes plus container References.
func (s *ReferenceModeStore) HandleProxyMessage(msg model.ProxyMessage) (*model.ProxyMessage, error) {
	switch msg.Kind {
	case model.SyncRequest:
		resp := model.NewModelUpdateMessage(s.materialize(), msg.Id)
		return &resp, nil
	case model.ModelUpdate:
		data, ok := msg.Model.(map[model.ReferenceId]model.EntityData)
		if !ok {
			return nil, fmt.Errorf("store: ModelUpdate payload must be map[ReferenceId]EntityData")
		}
		return nil, s.applyModelUpdate(data)
	case model.Operations:
		return nil, s.applyOperations(msg.Ops)
	default:
		return nil, fmt.Errorf("store: unknown ProxyMessage kind %v", msg.Kind)
	}
}

func (s *ReferenceModeStore) materialize() map[model.ReferenceId]model.EntityView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.ReferenceId]model.EntityView, len(s.backing))
	for id, e := range s.backing {
		if s.readyLocked(id) {
			out[id] = e.View()
		}
	}
	return out
}

// readyLocked reports whether id's backing entity is safe to surface to
// the proxy: either the store originated it directly (no pending entry
// was ever needed), or a pending Reference for it has reached READY.
func (s *ReferenceModeStore) readyLocked(id model.ReferenceId) bool {
	p, tracked := s.pending[id]
	if !tracked {
		_, hasBacking := s.backing[id]
		return hasBacking
	}
	return p.state == ready
}

func (s *ReferenceModeStore) entityLocked(id model.ReferenceId) *crdt.Entity {
	e, ok := s.backing[id]
	if !ok {
		e = crdt.NewEntity(s.schema)
		s.backing[id] = e
	}
	return e
}

// applyModelUpdate upserts every entity named in data into the backing
// store, then pushes a Reference into the container store whose VV
// equals the write's VV.
func (s *ReferenceModeStore) applyModelUpdate(data map[model.ReferenceId]model.EntityData) error {
	s.mu.Lock()
	var toSend []wireOp
	for id, fields := range data {
		e := s.entityLocked(id)
		for name, v := range fields.Singletons {
			add := crdt.SetAdd[model.Primitive]{Clock: s.nextClock(), Value: v}
			add.Actor = string(s.actor)
			if _, err := e.ApplyOperation(crdt.FieldOperation{
				Field: name,
				Inner: add,
			}); err != nil {
				s.mu.Unlock()
				return err
			}
			toSend = append(toSend, wireOp{Field: name, Kind: "add", Value: v})
		}
		for name, vs := range fields.Collections {
			for _, v := range vs {
				add := crdt.SetAdd[model.Primitive]{Clock: s.nextClock(), Value: v}
				add.Actor = string(s.actor)
				if _, err := e.ApplyOperation(crdt.FieldOperation{
					Field: name,
					Inner: add,
				}); err != nil {
					s.mu.Unlock()
					return err
				}
				toSend = append(toSend, wireOp{Field: name, Kind: "add", Value: v})
			}
		}
		s.sendBackingLocked(id, toSend)
		toSend = toSend[:0]

		ref := model.NewReference(id, s.backingRoot.Child(string(id)), e.Version())
		s.addReferenceLocked(ref)
	}
	s.mu.Unlock()
	return nil
}

// applyOperations translates each incoming Operation into a backing-store
// write for its entity plus a container Reference carrying the entity's
// freshly advanced version vector.
func (s *ReferenceModeStore) applyOperations(ops []model.Operation) error {
	s.mu.Lock()
	touched := map[model.ReferenceId]bool{}
	for _, op := range ops {
		clock := s.nextClock()
		e := s.entityLocked(op.EntityId)
		var inner crdt.Operation
		switch op.Kind {
		case model.OpFieldAdd:
			add := crdt.SetAdd[model.Primitive]{Clock: clock, Value: op.Value}
			add.Actor = string(s.actor)
			inner = add
		case model.OpFieldRemove:
			inner = crdt.SetRemove[model.Primitive]{Clock: clock, Value: op.Value}
		}
		if _, err := e.ApplyOperation(crdt.FieldOperation{Field: op.Field, Inner: inner}); err != nil {
			s.mu.Unlock()
			return err
		}
		kind := "add"
		if op.Kind == model.OpFieldRemove {
			kind = "remove"
		}
		s.sendBackingLocked(op.EntityId, []wireOp{{Field: op.Field, Kind: kind, Value: op.Value}})
		touched[op.EntityId] = true
	}
	for id := range touched {
		e := s.backing[id]
		ref := model.NewReference(id, s.backingRoot.Child(string(id)), e.Version())
		s.addReferenceLocked(ref)
	}
	s.mu.Unlock()
	return nil
}

// addReferenceLocked applies a freshly constructed Reference to the
// container store and sends it to the driver, retaining it for retry on
// a false Send.
func (s *ReferenceModeStore) addReferenceLocked(ref model.Reference) {
	clock := s.nextClock()
	add := crdt.SetAdd[model.Reference]{Clock: clock, Value: ref}
	add.Actor = string(s.actor)
	_, _ = s.container.ApplyOperation(add)
	payload := encodeEnvelope([]wireOp{{Kind: "add", Ref: &ref}})
	if !s.driver.Send(s.containerKey, payload, clock) {
		s.pendingSends[s.containerKey] = payload
	}
}

// observeBackingLocked registers the driver receiver for id's backing key
// exactly once, so that remote writes to an entity — whether it arrives
// before or after the local side has anything to say about it — reach
// onBackingUpdate.
func (s *ReferenceModeStore) observeBackingLocked(id model.ReferenceId) {
	if s.observed[id] {
		return
	}
	s.observed[id] = true
	s.driver.RegisterReceiver(s.backingKey(id), func(data []byte, version vv.VersionVector) {
		s.onBackingUpdate(id, data, version)
	})
}

// sendBackingLocked flushes ops for id's backing entity to the driver.
func (s *ReferenceModeStore) sendBackingLocked(id model.ReferenceId, ops []wireOp) {
	if len(ops) == 0 {
		return
	}
	s.observeBackingLocked(id)
	key := s.backingKey(id)
	payload := encodeEnvelope(ops)
	version := s.backing[id].Version()
	if !s.driver.Send(key, payload, version) {
		s.pendingSends[key] = payload
	}
}

// onContainerUpdate is the driver callback for the container key: a
// remote write has introduced or advanced References. Each Reference not
// yet backed locally is queued AWAITING_BACKING; one already backed
// deeply enough is READY immediately.
func (s *ReferenceModeStore) onContainerUpdate(data []byte, _ vv.VersionVector) {
	ops, err := decodeEnvelope(data)
	if err != nil {
		return
	}
	s.mu.Lock()
	var readyIds []model.ReferenceId
	for _, op := range ops {
		if op.Ref == nil {
			continue
		}
		ref := *op.Ref
		id := ref.ID
		s.pending[id] = &pendingEntry{ref: ref, state: awaitingBacking}
		s.observeBackingLocked(id)
		if e, ok := s.backing[id]; ok && ref.VV().LessEq(e.Version()) {
			s.pending[id].state = ready
			readyIds = append(readyIds, id)
		}
	}
	s.flushPendingLocked()
	s.mu.Unlock()
	s.notifyReady(readyIds)
}

// onBackingUpdate is the driver callback for a specific entity's backing
// key: a remote write has advanced that entity. If a pending Reference
// for it is now dominated, the entry transitions to READY and the proxy
// is notified.
func (s *ReferenceModeStore) onBackingUpdate(id model.ReferenceId, data []byte, version vv.VersionVector) {
	ops, err := decodeEnvelope(data)
	if err != nil {
		return
	}
	s.mu.Lock()
	e := s.entityLocked(id)
	for _, op := range ops {
		// Fold the sender's version into the op's clock so the entity's
		// version covers what the remote write had seen; pending
		// References are compared against that version.
		clock := s.nextClock().Merge(version)
		var inner crdt.Operation
		if op.Kind == "remove" {
			inner = crdt.SetRemove[model.Primitive]{Clock: clock, Value: op.Value}
		} else {
			add := crdt.SetAdd[model.Primitive]{Clock: clock, Value: op.Value}
			add.Actor = string(s.actor)
			inner = add
		}
		_, _ = e.ApplyOperation(crdt.FieldOperation{Field: op.Field, Inner: inner})
	}
	var readyIds []model.ReferenceId
	if p, tracked := s.pending[id]; tracked && p.state == awaitingBacking && p.ref.VV().LessEq(e.Version()) {
		p.state = ready
		readyIds = append(readyIds, id)
	}
	s.flushPendingLocked()
	s.mu.Unlock()
	s.notifyReady(readyIds)
}

func (s *ReferenceModeStore) notifyReady(ids []model.ReferenceId) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	recv := s.proxyReceiver
	views := make(map[model.ReferenceId]model.EntityView, len(ids))
	for _, id := range ids {
		views[id] = s.backing[id].View()
	}
	s.mu.Unlock()
	if recv != nil {
		recv(model.NewModelUpdateMessage(views, nil))
	}
}

// FlushPending retries every write the driver previously reported as
// failed. It is exported for callers that want to force a retry
// explicitly (e.g. a CLI sync subcommand); the store also calls this
// itself, via flushPendingLocked, whenever a driver receiver callback
// fires, since a live callback is itself proof the driver is reachable
// again.
func (s *ReferenceModeStore) FlushPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushPendingLocked()
}

// flushPendingLocked is FlushPending's body, callable from code that
// already holds s.mu — onContainerUpdate and onBackingUpdate use this to
// retry parked writes as soon as the driver demonstrates it is
// reachable again, rather than requiring a caller to notice and invoke
// FlushPending itself.
func (s *ReferenceModeStore) flushPendingLocked() {
	for key, payload := range s.pendingSends {
		version := vv.New().Bump(string(s.actor), s.counter)
		if s.driver.Send(key, payload, version) {
			delete(s.pendingSends, key)
		}
	}
}

// Idle reports whether the store has no pending driver writes and no
// container Reference still AWAITING_BACKING.
func (s *ReferenceModeStore) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pendingSends) != 0 {
		return false
	}
	for _, p := range s.pending {
		if p.state == awaitingBacking {
			return false
		}
	}
	return true
}

// CloneFrom serializes other's current materialized model and applies it
// as a ModelUpdate(id=0) — a one-shot resync used when a replica needs to
// catch a new store up to its current state rather than relying on the
// driver to propagate every intermediate op.
func (s *ReferenceModeStore) CloneFrom(other *ReferenceModeStore) error {
	snapshot := other.materializeAsData()
	return s.applyModelUpdate(snapshot)
}

func (s *ReferenceModeStore) materializeAsData() map[model.ReferenceId]model.EntityData {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.ReferenceId]model.EntityData, len(s.backing))
	for id, e := range s.backing {
		if !s.readyLocked(id) {
			continue
		}
		view := e.View()
		collections := make(map[string][]model.Primitive, len(view.Collections))
		for k, v := range view.Collections {
			collections[k] = append([]model.Primitive{}, v...)
		}
		out[id] = model.EntityData{
			ID:          id,
			Singletons:  view.Singletons,
			Collections: collections,
		}
	}
	return out
}
