package registry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/opencraft-go/corecraft/internal/metrics"
	"github.com/opencraft-go/corecraft/internal/world"
)

func testRegistry() *Registry {
	log := logrus.NewEntry(logrus.New())
	m := metrics.New(prometheus.NewRegistry())
	return New(log, m, nil)
}

func TestAddPlayerAndPlayerLookup(t *testing.T) {
	r := testRegistry()
	h := &PlayerHandle{ID: uuid.New(), Username: "Steve"}

	r.AddPlayer(h)

	got, ok := r.Player(h.ID)
	require.True(t, ok)
	require.Equal(t, h, got)
	require.Equal(t, 1, r.PlayerCount())
}

func TestRemovePlayerDropsHandleAndDecrementsCount(t *testing.T) {
	r := testRegistry()
	h := &PlayerHandle{ID: uuid.New(), Username: "Alex"}
	r.AddPlayer(h)

	r.RemovePlayer(h.ID)

	_, ok := r.Player(h.ID)
	require.False(t, ok)
	require.Equal(t, 0, r.PlayerCount())
}

func TestRemovePlayerUnknownIDIsNoop(t *testing.T) {
	r := testRegistry()
	r.RemovePlayer(uuid.New())
	require.Equal(t, 0, r.PlayerCount())
}

func TestPlayerHandlePingAndLoggedInAreIndependentlyMutable(t *testing.T) {
	h := &PlayerHandle{ID: uuid.New()}
	require.False(t, h.LoggedIn())
	require.Equal(t, int32(0), h.Ping())

	h.SetPing(42)
	h.SetLoggedIn(true)

	require.Equal(t, int32(42), h.Ping())
	require.True(t, h.LoggedIn())
}

func TestCompressionThresholdDefaultsNegativeAndIsSettable(t *testing.T) {
	r := testRegistry()
	require.Equal(t, int32(-1), r.CompressionThreshold())

	r.SetCompressionThreshold(256)
	require.Equal(t, int32(256), r.CompressionThreshold())
}

func TestAddWorldAndLookup(t *testing.T) {
	r := testRegistry()
	w := world.New(logrus.NewEntry(logrus.New()))

	r.AddWorld("overworld", w)

	got, ok := r.World("overworld")
	require.True(t, ok)
	require.Same(t, w, got)

	_, ok = r.World("nether")
	require.False(t, ok)
}

func TestBanIPAndUnban(t *testing.T) {
	r := testRegistry()
	require.False(t, r.IsIPBanned("1.2.3.4"))

	require.NoError(t, r.BanIP("1.2.3.4"))
	require.True(t, r.IsIPBanned("1.2.3.4"))

	require.NoError(t, r.UnbanIP("1.2.3.4"))
	require.False(t, r.IsIPBanned("1.2.3.4"))
}

func TestBanUsernameAndUnban(t *testing.T) {
	r := testRegistry()

	require.NoError(t, r.BanUsername("Griefer", "destroying spawn"))
	reason, banned := r.UsernameBanReason("Griefer")
	require.True(t, banned)
	require.Equal(t, "destroying spawn", reason)

	require.NoError(t, r.UnbanUsername("Griefer"))
	_, banned = r.UsernameBanReason("Griefer")
	require.False(t, banned)
}

func TestNextPlayerIDIsUniqueAndMonotonic(t *testing.T) {
	r := testRegistry()
	a := r.NextPlayerID()
	b := r.NextPlayerID()
	require.NotEqual(t, a, b)
	require.Less(t, int32(a), int32(b))
}

func TestSaveBansHookInvokedOnEveryMutation(t *testing.T) {
	r := testRegistry()
	calls := 0
	r.SetSaveBansHook(func(ips map[string]struct{}, users map[string]string) error {
		calls++
		return nil
	})

	require.NoError(t, r.BanIP("5.6.7.8"))
	require.NoError(t, r.BanUsername("Bad", "spam"))
	require.NoError(t, r.UnbanIP("5.6.7.8"))

	require.Equal(t, 3, calls)
}
