package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestOfflineProfileDeterministicAndVersioned(t *testing.T) {
	a := OfflineProfile("Notch")
	b := OfflineProfile("Notch")
	require.Equal(t, a.ID, b.ID)
	require.Equal(t, "Notch", a.Name)

	require.Equal(t, byte(3), (a.ID[6]>>4)&0x0f, "version nibble must be forced to 3")
	require.Equal(t, byte(0x02), a.ID[8]>>6, "variant bits must be forced to IETF (10xxxxxx)")
}

func TestOfflineProfileDiffersByName(t *testing.T) {
	require.NotEqual(t, OfflineProfile("Notch").ID, OfflineProfile("jeb_").ID)
}

func newTestVerifier(t *testing.T, srv *httptest.Server, offline bool) *Verifier {
	t.Helper()
	metrics := NewMetrics(prometheus.NewRegistry())
	v := NewVerifier(offline, metrics)
	v.HTTPClient = srv.Client()
	v.BaseURL = srv.URL
	return v
}

func TestVerifierAcceptsSuccessfulSession(t *testing.T) {
	id := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(hasJoinedResponse{
			ID:   stripDashes(id.String()),
			Name: "Steve",
		})
	}))
	defer srv.Close()

	v := newTestVerifier(t, srv, false)
	profile, err := v.Verify(context.Background(), "Steve", "deadbeef", "127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, id, profile.ID)
	require.Equal(t, "Steve", profile.Name)
}

func TestVerifierFallsBackToOfflineOnRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	v := newTestVerifier(t, srv, true)
	profile, err := v.Verify(context.Background(), "Steve", "deadbeef", "127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, OfflineProfile("Steve").ID, profile.ID)
}

func TestVerifierRejectsWhenOfflineModeDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	v := newTestVerifier(t, srv, false)
	_, err := v.Verify(context.Background(), "Steve", "deadbeef", "127.0.0.1")
	require.Error(t, err)
}

func TestVerifierTreatsSlowSessionServerAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	v := newTestVerifier(t, srv, false)
	v.HTTPClient.Timeout = 10 * time.Millisecond

	_, err := v.Verify(context.Background(), "Steve", "deadbeef", "127.0.0.1")
	require.Error(t, err)
}

func TestInsertDashesFormatsUUID(t *testing.T) {
	got := insertDashes("069a79f444e94726a5befca90e38aaf5")
	require.Equal(t, "069a79f4-44e9-4726-a5be-fca90e38aaf5", got)
}

func TestInsertDashesLeavesOtherLengthsAlone(t *testing.T) {
	got := insertDashes("069a79f4-44e9-4726-a5be-fca90e38aaf5")
	require.Equal(t, "069a79f4-44e9-4726-a5be-fca90e38aaf5", got)
}

func stripDashes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
