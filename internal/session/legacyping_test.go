package session

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/opencraft-go/corecraft/internal/config"
	"github.com/opencraft-go/corecraft/internal/registry"
)

func testSessionForLegacyPing() *Session {
	log := logrus.NewEntry(logrus.New())
	cfg := config.Config{MOTD: "A Corecraft Server", MaxPlayers: 20}
	return &Session{Reg: registry.New(log, nil, nil), Cfg: cfg, Log: log}
}

func TestDetectLegacyPingNotLegacy(t *testing.T) {
	s := testSessionForLegacyPing()
	br := bufio.NewReader(bytes.NewReader([]byte{0x00, 0x01, 0x02}))

	got, err := s.detectLegacyPing(br)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDetectLegacyPingBareFE(t *testing.T) {
	s := testSessionForLegacyPing()
	br := bufio.NewReader(bytes.NewReader([]byte{0xFE}))

	got, err := s.detectLegacyPing(br)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.False(t, got.sixPointSix)
}

func TestDetectLegacyPingFE01(t *testing.T) {
	s := testSessionForLegacyPing()
	br := bufio.NewReader(bytes.NewReader([]byte{0xFE, 0x01}))

	got, err := s.detectLegacyPing(br)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.False(t, got.sixPointSix)
}

func TestDetectLegacyPingFE01FA(t *testing.T) {
	s := testSessionForLegacyPing()
	payload := build16Payload(t, 80, "localhost", 25565)
	br := bufio.NewReader(bytes.NewReader(payload))

	got, err := s.detectLegacyPing(br)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.True(t, got.sixPointSix)
}

// build16Payload assembles a well-formed FE 01 FA request: the 27-byte
// prelude (FE 01 FA marker + 24 zero bytes standing in for the "MC|PingHost"
// channel name frame and its length prefix), hostname-length-minus-7, protocol, a redundant u16, the UTF-16BE
// hostname, and the port as a 4-byte big-endian value.
func build16Payload(t *testing.T, protocol byte, hostname string, port uint16) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(0xFE)
	buf.WriteByte(0x01)
	buf.WriteByte(0xFA)
	prelude := make([]byte, 24)
	buf.Write(prelude)

	hostUTF16, err := utf16be.NewEncoder().String(hostname)
	require.NoError(t, err)

	var rest bytes.Buffer
	_ = binary.Write(&rest, binary.BigEndian, uint16(len(hostname)+7))
	rest.WriteByte(protocol)
	_ = binary.Write(&rest, binary.BigEndian, uint16(0))
	rest.WriteString(hostUTF16)
	_ = binary.Write(&rest, binary.BigEndian, uint32(port))

	buf.Write(rest.Bytes())
	return buf.Bytes()
}

func TestReadLegacy16PayloadRoundTrip(t *testing.T) {
	full := build16Payload(t, 110, "play.example.com", 25577)
	// detectLegacyPing only peeks the FE 01 FA marker, so the reader still
	// starts at FE and the marker is part of the 27-byte prelude.
	r := bytes.NewReader(full)

	got, err := readLegacy16Payload(r)
	require.NoError(t, err)
	require.Equal(t, byte(110), got.protocol)
	require.Equal(t, "play.example.com", got.hostname)
	require.Equal(t, uint16(25577), got.port)
}

func TestWriteLegacyPre14FormatsFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLegacyPre14(&buf, "Hello", "3", "20"))

	out := buf.Bytes()
	require.Equal(t, byte(0xFF), out[0])

	charCount := binary.BigEndian.Uint16(out[1:3])
	decoded, err := utf16be.NewDecoder().Bytes(out[3:])
	require.NoError(t, err)
	require.Equal(t, "Hello§3§20", string(decoded))
	require.Equal(t, int(charCount), len([]rune("Hello§3§20")))
}

func TestWriteLegacy14PlusFormatsFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeLegacy14Plus(&buf, "754", "1.16.5", "Hi there", "1", "20"))

	out := buf.Bytes()
	require.Equal(t, byte(0xFF), out[0])
	charCount := binary.BigEndian.Uint16(out[1:3])
	require.Equal(t, int(charCount)*2, len(out)-3)

	decoded, err := utf16be.NewDecoder().Bytes(out[3:])
	require.NoError(t, err)
	require.Contains(t, string(decoded), "754")
	require.Contains(t, string(decoded), "1.16.5")
	require.Contains(t, string(decoded), "Hi there")
}

func TestHandleLegacyPingBareFERespondsPre14Format(t *testing.T) {
	s := testSessionForLegacyPing()
	var out bytes.Buffer
	br := bufio.NewReader(bytes.NewReader(nil))

	require.NoError(t, s.handleLegacyPing(br, &writeOnlyConn{&out}, &legacyPing{}))
	require.Equal(t, byte(0xFF), out.Bytes()[0])
}

func TestHandleLegacyPingFE01FARespondsWithProtocol(t *testing.T) {
	s := testSessionForLegacyPing()
	full := build16Payload(t, 78, "localhost", 25565)

	var out bytes.Buffer
	br := bufio.NewReader(bytes.NewReader(full))

	require.NoError(t, s.handleLegacyPing(br, &writeOnlyConn{&out}, &legacyPing{sixPointSix: true}))

	decoded, err := utf16be.NewDecoder().Bytes(out.Bytes()[3:])
	require.NoError(t, err)
	require.Contains(t, string(decoded), "78")
}
