package auth

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/opencraft-go/corecraft/internal/protoerr"
)

const sessionServerURL = "https://sessionserver.mojang.com/session/minecraft/hasJoined"

// SharedSecretSize is the AES-128 key length spec §4.4 step 5 uses.
const SharedSecretSize = 16

// NewSharedSecret generates the 16 random bytes used as both AES key and IV.
func NewSharedSecret() ([]byte, error) {
	secret := make([]byte, SharedSecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, protoerr.Wrap(protoerr.KindCrypto, "generate shared secret", err)
	}
	return secret, nil
}

// Property is a Mojang session profile property (e.g. "textures" skin data).
type Property struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

// Profile is the resolved identity of a joining player.
type Profile struct {
	ID         uuid.UUID
	Name       string
	Properties []Property
}

type hasJoinedResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Properties []Property `json:"properties"`
}

// Metrics are the Prometheus counters auth verification reports through,
// the modern replacement for the teacher's expvar counters in
// server_auth.go and player/player.go.
type Metrics struct {
	Successes prometheus.Counter
	Failures  prometheus.Counter
	Latency   prometheus.Histogram
}

// NewMetrics registers auth counters against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Successes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corecraft_auth_success_total",
			Help: "Mojang session verifications that returned a profile.",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "corecraft_auth_failure_total",
			Help: "Mojang session verifications that failed or were rejected.",
		}),
		Latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "corecraft_auth_latency_seconds",
			Help: "Mojang hasJoined round-trip latency.",
		}),
	}
	reg.MustRegister(m.Successes, m.Failures, m.Latency)
	return m
}

// Verifier resolves a joining player's identity, either against Mojang's
// session server or, when offline mode is permitted, via the deterministic
// offline UUID (spec §4.4 step 8).
type Verifier struct {
	HTTPClient  *http.Client
	OfflineMode bool
	Metrics     *Metrics
	BaseURL     string // overridable for tests; defaults to sessionServerURL.
}

// NewVerifier builds a Verifier with a bounded HTTP client; the Mojang call
// is bounded by an external timeout per spec §5.
func NewVerifier(offlineMode bool, metrics *Metrics) *Verifier {
	return &Verifier{
		HTTPClient:  &http.Client{Timeout: 5 * time.Second},
		OfflineMode: offlineMode,
		Metrics:     metrics,
		BaseURL:     sessionServerURL,
	}
}

// Verify resolves name's profile. When Mojang returns non-200 and offline
// mode is not permitted, this is an Auth error; when offline mode is
// permitted, it falls back to a deterministic v3 UUID of
// "OfflinePlayer:<name>".
func (v *Verifier) Verify(ctx context.Context, name, serverIDHash, clientIP string) (Profile, error) {
	start := time.Now()
	profile, err := v.verifyOnline(ctx, name, serverIDHash, clientIP)
	if v.Metrics != nil {
		v.Metrics.Latency.Observe(time.Since(start).Seconds())
	}
	if err == nil {
		if v.Metrics != nil {
			v.Metrics.Successes.Inc()
		}
		return profile, nil
	}

	if !v.OfflineMode {
		if v.Metrics != nil {
			v.Metrics.Failures.Inc()
		}
		return Profile{}, protoerr.Wrap(protoerr.KindAuth, "session verification failed", err)
	}
	if v.Metrics != nil {
		v.Metrics.Successes.Inc()
	}
	return OfflineProfile(name), nil
}

func (v *Verifier) verifyOnline(ctx context.Context, name, serverIDHash, clientIP string) (Profile, error) {
	q := url.Values{}
	q.Set("username", name)
	q.Set("serverId", serverIDHash)
	if clientIP != "" {
		q.Set("ip", clientIP)
	}
	reqURL := v.BaseURL + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Profile{}, protoerr.Wrap(protoerr.KindIO, "build session request", err)
	}

	resp, err := v.HTTPClient.Do(req)
	if err != nil {
		return Profile{}, protoerr.Wrap(protoerr.KindTimeout, "session server request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Profile{}, protoerr.New(protoerr.KindAuth, fmt.Sprintf("session server returned %d", resp.StatusCode))
	}

	var body hasJoinedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Profile{}, protoerr.Wrap(protoerr.KindMalformed, "decode session response", err)
	}

	id, err := uuid.Parse(insertDashes(body.ID))
	if err != nil {
		return Profile{}, protoerr.Wrap(protoerr.KindMalformed, "parse session uuid", err)
	}

	return Profile{ID: id, Name: body.Name, Properties: body.Properties}, nil
}

// OfflineProfile computes the deterministic offline-mode identity for name:
// md5("OfflinePlayer:<name>") with the version/variant bits forced to v3/IETF
// (spec §4.4 step 8).
func OfflineProfile(name string) Profile {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = (sum[6] & 0x0f) | 0x30 // version 3
	sum[8] = (sum[8] & 0x3f) | 0x80 // variant IETF
	id, _ := uuid.FromBytes(sum[:])
	return Profile{ID: id, Name: name}
}

// insertDashes reformats Mojang's dash-free uuid string into standard form.
func insertDashes(s string) string {
	if len(s) != 32 {
		return s
	}
	return s[0:8] + "-" + s[8:12] + "-" + s[12:16] + "-" + s[16:20] + "-" + s[20:32]
}
