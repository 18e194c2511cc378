// Package session implements the per-connection task: TCP accept handling,
// the legacy-ping sub-protocol, and the Handshake/Status/Login/Play phase
// machine (spec §4.4), generalized from the teacher's one-goroutine-per-
// connection pktHandler (connhandler.go) and player.Player mainLoop
// (player/player.go select shape).
package session

import (
	"bufio"
	"context"
	"fmt"
	"net"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"

	"github.com/opencraft-go/corecraft/internal/auth"
	"github.com/opencraft-go/corecraft/internal/chat"
	"github.com/opencraft-go/corecraft/internal/config"
	"github.com/opencraft-go/corecraft/internal/frame"
	"github.com/opencraft-go/corecraft/internal/player"
	"github.com/opencraft-go/corecraft/internal/proto"
	"github.com/opencraft-go/corecraft/internal/protoerr"
	"github.com/opencraft-go/corecraft/internal/registry"
	"github.com/opencraft-go/corecraft/internal/world"
)

// spawnPosition is where every newly admitted player appears, matching the
// PlayerPositionAndLook coordinates world.greet sends (spec §4.5).
var spawnPosition = mgl64.Vec3{0, 20, 0}

// Session is the per-connection handler. One is constructed per accepted
// socket and run in its own goroutine (spec §4.4 "the session task"),
// grounded on the teacher's pktHandler (gameInfo/conn/ps fields bundled at
// construction, one goroutine per connection).
type Session struct {
	Reg      *registry.Registry
	Cfg      config.Config
	Verifier *auth.Verifier
	World    *world.World
	Log      *logrus.Entry

	// Favicon is the pre-loaded base64 data URI sent in status responses, or
	// empty if none is configured.
	Favicon string
}

// New constructs a Session with its collaborators bound explicitly, in the
// style of the teacher's GameInfo passed into every ConnHandler/pktHandler.
func New(reg *registry.Registry, cfg config.Config, verifier *auth.Verifier, w *world.World, log *logrus.Entry) *Session {
	return &Session{Reg: reg, Cfg: cfg, Verifier: verifier, World: w, Log: log}
}

// Handle drives one accepted connection end to end: legacy ping, or
// Handshake → (Status | Login → Play). It never panics out to the caller;
// all errors are logged and the connection is closed.
func (s *Session) Handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}

	log := s.Log.WithField("remote", conn.RemoteAddr().String())
	br := bufio.NewReader(conn)

	legacy, err := s.detectLegacyPing(br)
	if err != nil {
		log.WithError(err).Debug("legacy ping detection failed")
		return
	}
	if legacy != nil {
		if err := s.handleLegacyPing(br, conn, legacy); err != nil {
			log.WithError(err).Debug("legacy ping handling failed")
		}
		return
	}

	fr := frame.NewReaderWriter(br, conn)

	hs, err := s.readHandshake(fr)
	if err != nil {
		log.WithError(err).Debug("handshake read failed")
		return
	}

	switch proto.NextState(hs.Next) {
	case proto.NextStateStatus:
		if err := s.handleStatus(fr, hs); err != nil {
			log.WithError(err).Debug("status phase failed")
		}
	case proto.NextStateLogin:
		if err := s.handleLogin(ctx, fr, conn, log); err != nil {
			log.WithError(err).Debug("login phase failed")
		}
	default:
		log.WithField("next", hs.Next).Debug("unknown requested next state")
	}
}

func (s *Session) readHandshake(fr *frame.Conn) (*proto.Handshake, error) {
	body, err := fr.ReadFrame()
	if err != nil {
		return nil, err
	}
	pkt, err := proto.DecodePacket(proto.PhaseHandshake, proto.Serverbound, body)
	if err != nil {
		return nil, err
	}
	hs, ok := pkt.(*proto.Handshake)
	if !ok {
		return nil, protoerr.New(protoerr.KindProtocol, fmt.Sprintf("expected Handshake, got %T", pkt))
	}
	return hs, nil
}

// readPacket reads one frame in phase/direction and decodes it.
func (s *Session) readPacket(fr *frame.Conn, phase proto.Phase, direction proto.Direction) (proto.IPacket, error) {
	body, err := fr.ReadFrame()
	if err != nil {
		return nil, err
	}
	return proto.DecodePacket(phase, direction, body)
}

// writePacket encodes and writes one frame in phase/direction.
func (s *Session) writePacket(fr *frame.Conn, phase proto.Phase, direction proto.Direction, pkt proto.IPacket) error {
	body, err := proto.EncodePacket(phase, direction, pkt)
	if err != nil {
		return err
	}
	return fr.WriteFrame(body)
}

// disconnect sends a best-effort Disconnect with reason, in whichever phase
// is still open for it (Login or Play share the Disconnect type).
func (s *Session) disconnect(fr *frame.Conn, phase proto.Phase, reason string) {
	msg, err := chat.Marshal(chat.Text(reason))
	if err != nil {
		msg = reason
	}
	_ = s.writePacket(fr, phase, proto.Clientbound, &proto.Disconnect{Reason: msg})
}

func (s *Session) handleStatus(fr *frame.Conn, hs *proto.Handshake) error {
	for {
		pkt, err := s.readPacket(fr, proto.PhaseStatus, proto.Serverbound)
		if err != nil {
			return err
		}
		switch m := pkt.(type) {
		case *proto.StatusRequest:
			doc, err := s.buildStatusResponse(int32(hs.Protocol))
			if err != nil {
				return err
			}
			body, _, err := doc.Marshal()
			if err != nil {
				return err
			}
			if err := s.writePacket(fr, proto.PhaseStatus, proto.Clientbound, &proto.StatusResponseBody{JSON: body}); err != nil {
				return err
			}
		case *proto.PingRequest:
			return s.writePacket(fr, proto.PhaseStatus, proto.Clientbound, &proto.PongResponse{Payload: m.Payload})
		default:
			return protoerr.New(protoerr.KindProtocol, fmt.Sprintf("unexpected status packet %T", pkt))
		}
	}
}

func (s *Session) buildStatusResponse(protocol int32) (chat.StatusResponse, error) {
	return chat.StatusResponse{
		Version:     chat.StatusVersion{Name: "1.16.5", Protocol: protocol},
		Players:     chat.StatusPlayers{Max: int32(s.Cfg.MaxPlayers), Online: int32(s.Reg.PlayerCount())},
		Description: chat.Text(s.Cfg.MOTD),
		Favicon:     s.Favicon,
	}, nil
}

func (s *Session) handleLogin(ctx context.Context, fr *frame.Conn, conn net.Conn, log *logrus.Entry) error {
	pkt, err := s.readPacket(fr, proto.PhaseLogin, proto.Serverbound)
	if err != nil {
		return err
	}
	start, ok := pkt.(*proto.LoginStart)
	if !ok {
		return protoerr.New(protoerr.KindProtocol, fmt.Sprintf("expected LoginStart, got %T", pkt))
	}
	username := string(start.Name)

	clientIP, _, _ := net.SplitHostPort(conn.RemoteAddr().String())
	if s.Reg.IsIPBanned(clientIP) {
		s.disconnect(fr, proto.PhaseLogin, "Your IP address is banned from this server.")
		return protoerr.New(protoerr.KindAuth, "banned IP attempted login")
	}
	if reason, banned := s.Reg.UsernameBanReason(username); banned {
		s.disconnect(fr, proto.PhaseLogin, "Banned: "+reason)
		return protoerr.New(protoerr.KindAuth, "banned username attempted login")
	}

	token, err := auth.NewVerifyToken()
	if err != nil {
		return err
	}
	if err := s.writePacket(fr, proto.PhaseLogin, proto.Clientbound, &proto.EncryptionRequest{
		ServerID:    "",
		PublicKey:   proto.Bytes(s.Reg.Keys.DER),
		VerifyToken: proto.Bytes(token),
	}); err != nil {
		return err
	}

	pkt, err = s.readPacket(fr, proto.PhaseLogin, proto.Serverbound)
	if err != nil {
		return err
	}
	encResp, ok := pkt.(*proto.EncryptionResponse)
	if !ok {
		return protoerr.New(protoerr.KindProtocol, fmt.Sprintf("expected EncryptionResponse, got %T", pkt))
	}

	decryptedToken, err := s.Reg.Keys.Decrypt(encResp.VerifyToken)
	if err != nil {
		s.disconnect(fr, proto.PhaseLogin, "Encryption error.")
		return err
	}
	if !auth.VerifyToken(token, decryptedToken) {
		s.disconnect(fr, proto.PhaseLogin, "Incorrect verify token")
		return protoerr.New(protoerr.KindCrypto, "verify token mismatch")
	}

	secret, err := s.Reg.Keys.Decrypt(encResp.SharedSecret)
	if err != nil {
		s.disconnect(fr, proto.PhaseLogin, "Encryption error.")
		return err
	}
	if err := fr.InstallCipher(secret); err != nil {
		return err
	}

	serverIDHash := auth.ServerIDHash(secret, s.Reg.Keys.DER)
	profile, err := s.Verifier.Verify(ctx, username, serverIDHash, clientIP)
	if err != nil {
		s.disconnect(fr, proto.PhaseLogin, "Failed to verify username.")
		return err
	}

	threshold := s.Reg.CompressionThreshold()
	if threshold >= 0 {
		if err := s.writePacket(fr, proto.PhaseLogin, proto.Clientbound, &proto.SetCompression{Threshold: proto.VarInt(threshold)}); err != nil {
			return err
		}
		fr.SetCompressionThreshold(threshold)
	}

	if err := s.writePacket(fr, proto.PhaseLogin, proto.Clientbound, &proto.LoginSuccess{
		UUID:     proto.FromStd(profile.ID),
		Username: proto.BString16(profile.Name),
	}); err != nil {
		return err
	}

	return s.runPlay(ctx, fr, conn, profile, log)
}

func (s *Session) runPlay(ctx context.Context, fr *frame.Conn, conn net.Conn, profile auth.Profile, log *logrus.Entry) error {
	id := s.Reg.NextPlayerID()
	outCh := make(chan player.Outbound, 256)
	inCh := make(chan player.Inbound, 64)

	p := player.NewPlayer(id, profile.ID, profile.Name, spawnPosition, outCh, inCh)
	handle := &registry.PlayerHandle{ID: profile.ID, Username: profile.Name}
	s.Reg.AddPlayer(handle)
	defer s.Reg.RemovePlayer(profile.ID)
	defer close(inCh)

	s.World.Admission() <- world.AddPlayer{Player: p}

	return s.play(ctx, fr, conn, p, handle, outCh, inCh, log)
}
