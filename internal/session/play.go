package session

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opencraft-go/corecraft/internal/frame"
	"github.com/opencraft-go/corecraft/internal/player"
	"github.com/opencraft-go/corecraft/internal/proto"
	"github.com/opencraft-go/corecraft/internal/registry"
	"github.com/opencraft-go/corecraft/internal/world"
)

// keepAliveInterval is "the keep-alive timer (5s)" spec §4.4 step (c)
// specifies.
const keepAliveInterval = 5 * time.Second

// keepAliveTimeout is "unanswered for more than 30s" spec §4.4's disconnect
// condition.
const keepAliveTimeout = 30 * time.Second

// inboundFrame is one decoded Play-phase packet (or the terminal read error)
// handed from the read goroutine to the session's main select loop.
type inboundFrame struct {
	pkt proto.IPacket
	err error
}

// play runs the per-connection Play-phase event loop: select over an
// inbound socket packet, a world-to-client packet, the keep-alive timer, and
// shutdown — grounded on the teacher's player.Player.mainLoop select shape
// (mainQueue/rx.RecvPkt/RecvErr/stopPlayer), generalized to the three
// channels SPEC_FULL.md's session owns (spec §4.4 "Play phase").
func (s *Session) play(
	ctx context.Context,
	fr *frame.Conn,
	conn net.Conn,
	p *player.Player,
	handle *registry.PlayerHandle,
	outCh <-chan player.Outbound,
	inCh chan<- player.Inbound,
	log *logrus.Entry,
) error {
	handle.SetLoggedIn(true)

	reads := make(chan inboundFrame)
	go s.readPlayPackets(fr, reads)

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()
	timeout := time.NewTimer(keepAliveTimeout)
	defer timeout.Stop()

	var lastKeepAliveSentAt time.Time
	var lastKeepAliveID int64

	// currentWorld is the world the player is presently attached to; a
	// /world command can move it to another registered world mid-session
	// without the socket or its Play-phase channels changing (spec §4.4
	// "the world exposes ... MovePlayer{id, new_world}").
	currentWorld := s.World

	for {
		select {
		case <-ctx.Done():
			return nil

		case item := <-reads:
			if item.err != nil {
				return item.err
			}
			if _, ok := item.pkt.(*proto.KeepAliveResponse); ok {
				if !timeout.Stop() {
					<-timeout.C
				}
				timeout.Reset(keepAliveTimeout)
			}
			currentWorld = s.dispatchPlayPacket(currentWorld, p, handle, inCh, item.pkt, lastKeepAliveID, lastKeepAliveSentAt, log)

		case out := <-outCh:
			if err := s.writePacket(fr, proto.PhasePlay, proto.Clientbound, out); err != nil {
				return err
			}

		case <-keepAlive.C:
			lastKeepAliveID = time.Now().UnixNano()
			lastKeepAliveSentAt = time.Now()
			if err := s.writePacket(fr, proto.PhasePlay, proto.Clientbound, &proto.KeepAliveClientbound{ID: lastKeepAliveID}); err != nil {
				return err
			}

		case <-timeout.C:
			s.disconnect(fr, proto.PhasePlay, "Timed out")
			return nil
		}
	}
}

// readPlayPackets reads and decodes Play-phase frames until the first error,
// which it reports and then exits on, mirroring the teacher's rx goroutine
// feeding RecvPkt/RecvErr channels into mainLoop.
func (s *Session) readPlayPackets(fr *frame.Conn, out chan<- inboundFrame) {
	for {
		pkt, err := s.readPacket(fr, proto.PhasePlay, proto.Serverbound)
		out <- inboundFrame{pkt: pkt, err: err}
		if err != nil {
			return
		}
	}
}

// dispatchPlayPacket implements spec §4.4's "(a) handle framing-level
// concerns ... else forward to the world". TeleportConfirm and
// KeepAliveResponse are framing-level and handled here without reaching the
// world; everything else (including ClientSettings, which the world also
// needs for chunk-streaming radius) is forwarded. It returns the world the
// player is attached to after handling pkt, which only changes on a
// recognized /world command.
func (s *Session) dispatchPlayPacket(
	currentWorld *world.World,
	p *player.Player,
	handle *registry.PlayerHandle,
	inCh chan<- player.Inbound,
	pkt proto.IPacket,
	lastKeepAliveID int64,
	lastSentAt time.Time,
	log *logrus.Entry,
) *world.World {
	switch m := pkt.(type) {
	case *proto.TeleportConfirm:
		// Acknowledged at the framing level; the world never tracks
		// outstanding teleport ids in this scope.
	case *proto.KeepAliveResponse:
		if m.ID == lastKeepAliveID && !lastSentAt.IsZero() {
			handle.SetPing(int32(time.Since(lastSentAt).Milliseconds()))
			p.TickPing = handle.Ping()
		}
	case *proto.ChatMessageServerbound:
		if s.handleAdminCommand(p, m.Message, log) {
			return currentWorld
		}
		if dest, ok := s.handleWorldCommand(currentWorld, p, m.Message, log); ok {
			if dest != nil {
				return dest
			}
			return currentWorld
		}
		inCh <- player.Inbound{Packet: pkt}
	default:
		inCh <- player.Inbound{Packet: pkt}
	}
	return currentWorld
}

// handleWorldCommand implements "/world <name>": it hands the player off to
// another registered world via MovePlayer (spec §4.4's world-to-world
// handoff), leaving the player's Play-phase socket and channels untouched.
// Reports whether msg was a recognized /world command.
func (s *Session) handleWorldCommand(currentWorld *world.World, p *player.Player, msg string, log *logrus.Entry) (*world.World, bool) {
	fields := strings.Fields(msg)
	if len(fields) == 0 || fields[0] != "/world" {
		return nil, false
	}
	if len(fields) < 2 {
		return nil, true
	}
	dest, ok := s.Reg.World(fields[1])
	if !ok {
		log.WithField("world", fields[1]).Warn("player requested an unknown world")
		return nil, true
	}
	currentWorld.Transfer() <- world.MovePlayer{Player: p, Destination: dest.Admission()}
	return dest, true
}

// handleAdminCommand implements spec §4.6's "privileged chat commands" that
// mutate the banned-IP set and banned-username map. It reports whether msg
// was a recognized command (and therefore must not also be broadcast as
// chat).
func (s *Session) handleAdminCommand(p *player.Player, msg string, log *logrus.Entry) bool {
	fields := strings.Fields(msg)
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "/ban", "/unban", "/banip", "/unbanip":
	default:
		return false
	}

	if !s.Cfg.IsOperator(p.Username) {
		log.WithField("player", p.Username).Warn("non-operator attempted a privileged command")
		return true
	}
	if len(fields) < 2 {
		return true
	}

	switch fields[0] {
	case "/ban":
		reason := "banned by an administrator"
		if len(fields) > 2 {
			reason = strings.Join(fields[2:], " ")
		}
		if err := s.Reg.BanUsername(fields[1], reason); err != nil {
			log.WithError(err).Warn("failed to persist username ban")
		}
	case "/unban":
		if err := s.Reg.UnbanUsername(fields[1]); err != nil {
			log.WithError(err).Warn("failed to persist username unban")
		}
	case "/banip":
		if err := s.Reg.BanIP(fields[1]); err != nil {
			log.WithError(err).Warn("failed to persist IP ban")
		}
	case "/unbanip":
		if err := s.Reg.UnbanIP(fields[1]); err != nil {
			log.WithError(err).Warn("failed to persist IP unban")
		}
	}
	return true
}
