// Package registry holds the process-wide state every connection and world
// task shares by reference: the RSA key pair, the compression threshold,
// the ban sets, and the player index. One Registry is constructed at
// startup and passed explicitly into every task's constructor, per spec
// §4.6's "avoid hidden process-wide singletons" design note and grounded on
// the teacher's GameInfo/ConnHandler construction (connhandler.go), which
// threads its collaborators through explicit fields rather than package
// globals.
package registry

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opencraft-go/corecraft/internal/auth"
	"github.com/opencraft-go/corecraft/internal/metrics"
	"github.com/opencraft-go/corecraft/internal/player"
	"github.com/opencraft-go/corecraft/internal/world"
)

// PlayerHandle is the registry's view of one connected player: its identity
// and the fields the session task owning this player writes without a lock
// (ping, logged-in). It holds no client settings and no outbound sender;
// packets reach a player through the Out channel of its player.Player.
type PlayerHandle struct {
	ID       uuid.UUID
	Username string

	ping     atomic.Int32
	loggedIn atomic.Bool
}

// Ping returns the player's last measured round-trip latency in
// milliseconds.
func (h *PlayerHandle) Ping() int32 { return h.ping.Load() }

// SetPing is called only by the session task that owns this player.
func (h *PlayerHandle) SetPing(ms int32) { h.ping.Store(ms) }

// LoggedIn reports whether the player has completed the login phase.
func (h *PlayerHandle) LoggedIn() bool { return h.loggedIn.Load() }

// SetLoggedIn is called only by the session task that owns this player.
func (h *PlayerHandle) SetLoggedIn(v bool) { h.loggedIn.Store(v) }

// Registry is the single shared handle passed by reference into every
// session and world task (spec §4.6 "Shared global state").
type Registry struct {
	Log     *logrus.Entry
	Metrics *metrics.Metrics
	Keys    *auth.KeyPair

	// compressionThreshold is read-mostly; a negative value disables
	// compression (spec §4.6). Only Set during startup config load.
	compressionThreshold atomic.Int32

	nextID atomic.Int32

	mu           sync.RWMutex
	players      map[uuid.UUID]*PlayerHandle
	bannedIPs    map[string]struct{}
	bannedUsers  map[string]string // username -> reason
	worlds       map[string]*world.World
	saveBansHook func(ips map[string]struct{}, users map[string]string) error
}

// NextPlayerID allocates a process-wide unique player entity id. Session
// tasks call this once per successful login, before constructing the
// player.Player handed to the destination world.
func (r *Registry) NextPlayerID() player.ID {
	return player.ID(r.nextID.Add(1))
}

// New constructs an empty registry. keys and a metrics handle are supplied
// by the caller since both have process-lifetime construction costs (RSA
// keygen, collector registration) that shouldn't be hidden here.
func New(log *logrus.Entry, m *metrics.Metrics, keys *auth.KeyPair) *Registry {
	r := &Registry{
		Log:         log,
		Metrics:     m,
		Keys:        keys,
		players:     make(map[uuid.UUID]*PlayerHandle),
		bannedIPs:   make(map[string]struct{}),
		bannedUsers: make(map[string]string),
		worlds:      make(map[string]*world.World),
	}
	r.compressionThreshold.Store(-1)
	return r
}

// CompressionThreshold returns the current negotiated default; a negative
// value disables compression.
func (r *Registry) CompressionThreshold() int32 { return r.compressionThreshold.Load() }

// SetCompressionThreshold updates the process-wide default, read by every
// new connection at login time.
func (r *Registry) SetCompressionThreshold(v int32) { r.compressionThreshold.Store(v) }

// AddWorld registers a world under name so sessions can look it up for
// initial admission or MovePlayer handoffs.
func (r *Registry) AddWorld(name string, w *world.World) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.worlds[name] = w
}

// World looks up a registered world by name.
func (r *Registry) World(name string) (*world.World, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.worlds[name]
	return w, ok
}

// AddPlayer inserts a handle for a newly-logged-in player. Writers hold the
// lock only long enough to insert (spec §4.6 "Shared-resource policy").
func (r *Registry) AddPlayer(h *PlayerHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[h.ID] = h
	r.Metrics.ConnectedPlayers.Inc()
}

// RemovePlayer drops a player's handle once its owning connection task
// exits.
func (r *Registry) RemovePlayer(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; ok {
		delete(r.players, id)
		r.Metrics.ConnectedPlayers.Dec()
	}
}

// Player looks up a connected player's handle.
func (r *Registry) Player(id uuid.UUID) (*PlayerHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.players[id]
	return h, ok
}

// PlayerCount reports how many players are currently connected.
func (r *Registry) PlayerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// SetSaveBansHook installs the function used to persist ban state whenever
// BanIP/BanUsername/Unban mutate it. The hook is opaque to the registry
// (spec §4.6 "persisted via an opaque save hook") so storage format is the
// caller's concern.
func (r *Registry) SetSaveBansHook(fn func(ips map[string]struct{}, users map[string]string) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveBansHook = fn
}

// BanIP adds ip to the banned set and persists it via the save hook, if any.
func (r *Registry) BanIP(ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bannedIPs[ip] = struct{}{}
	return r.persistBansLocked()
}

// UnbanIP removes ip from the banned set and persists it.
func (r *Registry) UnbanIP(ip string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bannedIPs, ip)
	return r.persistBansLocked()
}

// IsIPBanned reports whether ip is currently banned.
func (r *Registry) IsIPBanned(ip string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, banned := r.bannedIPs[ip]
	return banned
}

// BanUsername bans username with the given reason and persists it.
func (r *Registry) BanUsername(username, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bannedUsers[username] = reason
	return r.persistBansLocked()
}

// UnbanUsername clears a username ban and persists it.
func (r *Registry) UnbanUsername(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bannedUsers, username)
	return r.persistBansLocked()
}

// UsernameBanReason reports whether username is banned and, if so, why.
func (r *Registry) UsernameBanReason(username string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reason, banned := r.bannedUsers[username]
	return reason, banned
}

// persistBansLocked calls the save hook, if one is installed. Callers must
// hold mu.
func (r *Registry) persistBansLocked() error {
	if r.saveBansHook == nil {
		return nil
	}
	return r.saveBansHook(r.bannedIPs, r.bannedUsers)
}
