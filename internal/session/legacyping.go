package session

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"

	"golang.org/x/text/encoding/unicode"

	"github.com/opencraft-go/corecraft/internal/protoerr"
)

// legacyPing is the parsed request for the one flavour that carries a
// payload (1.6's FE 01 FA variant); the other two flavours carry none.
type legacyPing struct {
	sixPointSix bool // true once a 1.6-style FA payload was read
	protocol    byte
	hostname    string
	port        uint16
}

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// detectLegacyPing peeks at most 3 bytes without consuming anything beyond
// what's already buffered, classifying the connection per spec §4.4's
// three-flavour table. A nil, nil return means this is not a legacy ping at
// all and normal VarInt framing should proceed.
func (s *Session) detectLegacyPing(br *bufio.Reader) (*legacyPing, error) {
	first, err := br.Peek(1)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	if first[0] != 0xFE {
		return nil, nil
	}
	if br.Buffered() < 2 {
		return &legacyPing{}, nil // "FE alone" — pre-1.4
	}
	two, _ := br.Peek(2)
	if two[1] != 0x01 {
		return &legacyPing{}, nil
	}
	if br.Buffered() < 3 {
		return &legacyPing{}, nil // "FE 01" — 1.4-1.5
	}
	three, _ := br.Peek(3)
	if three[2] != 0xFA {
		return &legacyPing{}, nil // "FE 01" — 1.4-1.5
	}
	return &legacyPing{sixPointSix: true}, nil
}

// handleLegacyPing consumes the appropriate number of bytes (none for the
// two bare flavours, the full 1.6 payload for the third) and writes the
// matching response, then returns: the connection is closed unconditionally
// after a legacy ping (spec §4.4).
func (s *Session) handleLegacyPing(br *bufio.Reader, conn net.Conn, ping *legacyPing) error {
	motd := s.Cfg.MOTD
	online := strconv.Itoa(s.Reg.PlayerCount())
	max := strconv.Itoa(s.Cfg.MaxPlayers)

	if !ping.sixPointSix {
		// Bare "FE" or "FE 01": nothing further to read, respond with the
		// pre-1.4 payload (the oldest client of the two can't parse more).
		return writeLegacyPre14(conn, motd, online, max)
	}

	parsed, err := readLegacy16Payload(br)
	if err != nil {
		return protoerr.Wrap(protoerr.KindMalformed, "read 1.6 legacy ping payload", err)
	}
	return writeLegacy14Plus(conn, fmt.Sprintf("%d", parsed.protocol), "1.16.5", motd, online, max)
}

// readLegacy16Payload parses the FE 01 FA flavour's body, grounded literally
// on the original implementation's read_1_6 (legacy_ping.rs): a fixed
// 27-byte prelude (the FE 01 FA marker, which detectLegacyPing only peeks
// and so leaves in r, then the "MC|PingHost" channel-name frame and its own
// redundant length prefix) is discarded, followed by
// hostname-length-minus-7, the protocol byte, a second redundant u16, the
// UTF-16BE hostname, and the port as a truncated i32.
func readLegacy16Payload(r io.Reader) (legacyPing, error) {
	var prelude [27]byte
	if _, err := io.ReadFull(r, prelude[:]); err != nil {
		return legacyPing{}, err
	}

	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return legacyPing{}, err
	}
	hostnameLen := int(binary.BigEndian.Uint16(lenBuf[:])) - 7
	if hostnameLen < 0 || hostnameLen > 1<<15 {
		return legacyPing{}, protoerr.New(protoerr.KindMalformed, "legacy ping hostname length out of range")
	}

	var protocolBuf [1]byte
	if _, err := io.ReadFull(r, protocolBuf[:]); err != nil {
		return legacyPing{}, err
	}

	var redundant [2]byte
	if _, err := io.ReadFull(r, redundant[:]); err != nil {
		return legacyPing{}, err
	}

	hostnameUTF16 := make([]byte, hostnameLen*2)
	if _, err := io.ReadFull(r, hostnameUTF16); err != nil {
		return legacyPing{}, err
	}
	hostnameUTF8, err := utf16be.NewDecoder().Bytes(hostnameUTF16)
	if err != nil {
		return legacyPing{}, protoerr.Wrap(protoerr.KindMalformed, "decode legacy ping hostname", err)
	}

	var portBuf [4]byte
	if _, err := io.ReadFull(r, portBuf[:]); err != nil {
		return legacyPing{}, err
	}
	port := uint16(binary.BigEndian.Uint32(portBuf[:]))

	return legacyPing{sixPointSix: true, protocol: protocolBuf[0], hostname: string(hostnameUTF8), port: port}, nil
}

// writeLegacyPre14 writes the "FE alone" response: 0xFF, a u16 character
// count, then "motd§online§max" as UTF-16BE.
func writeLegacyPre14(w io.Writer, motd, online, max string) error {
	payload := motd + "§" + online + "§" + max
	encoded, err := utf16be.NewEncoder().String(payload)
	if err != nil {
		return protoerr.Wrap(protoerr.KindIO, "encode legacy ping response", err)
	}
	var out []byte
	out = append(out, 0xFF)
	out = binary.BigEndian.AppendUint16(out, uint16(len([]rune(payload))))
	out = append(out, []byte(encoded)...)
	_, err = w.Write(out)
	return err
}

// writeLegacy14Plus writes the 1.4+ payload: 0xFF, a u16 character count
// (patched after encoding), the constant §1\0 marker, then protocol,
// version, motd, online, max separated by 0x0000 with the trailing
// separator stripped.
func writeLegacy14Plus(w io.Writer, protocolVersion, version, motd, online, max string) error {
	fields := []string{protocolVersion, version, motd, online, max}

	var body []byte
	body = append(body, 0x00, 0xA7, 0x00, 0x31, 0x00, 0x00)
	for _, f := range fields {
		enc, err := utf16be.NewEncoder().String(f)
		if err != nil {
			return protoerr.Wrap(protoerr.KindIO, "encode legacy ping field", err)
		}
		body = append(body, []byte(enc)...)
		body = append(body, 0x00, 0x00)
	}
	body = body[:len(body)-2] // strip the trailing separator

	charCount := uint16(len(body) / 2)

	var out []byte
	out = append(out, 0xFF)
	out = binary.BigEndian.AppendUint16(out, charCount)
	out = append(out, body...)
	_, err := w.Write(out)
	return err
}
