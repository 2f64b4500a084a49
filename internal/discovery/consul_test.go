package discovery

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{":8080", 8080, false},
		{"0.0.0.0:50051", 50051, false},
		{"9000", 9000, false},
		{":http", 0, true},
		{":70000", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParsePort(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestRegistrations(t *testing.T) {
	httpReg := HTTPRegistration("storefront", "10.0.0.5", 8080)
	assert.Equal(t, "storefront-10.0.0.5-8080", httpReg.ID)
	assert.Equal(t, "http://10.0.0.5:8080/health", httpReg.Check.HTTP)

	grpcReg := GRPCRegistration("storefront", "10.0.0.5", 50051, "storefront.CartService")
	assert.Equal(t, "storefront-grpc", grpcReg.Name)
	assert.Equal(t, "10.0.0.5:50051/storefront.CartService", grpcReg.Check.GRPC)
}

type fakeAgent struct {
	mu           sync.Mutex
	registered   []consulapi.AgentServiceRegistration
	deregistered []string
}

func (f *fakeAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("X-Consul-Index", "1")
	w.Header().Set("X-Consul-LastContact", "0")
	w.Header().Set("X-Consul-KnownLeader", "true")
	switch {
	case r.URL.Path == "/v1/agent/service/register":
		var reg consulapi.AgentServiceRegistration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.registered = append(f.registered, reg)
	case strings.HasPrefix(r.URL.Path, "/v1/agent/service/deregister/"):
		f.deregistered = append(f.deregistered, strings.TrimPrefix(r.URL.Path, "/v1/agent/service/deregister/"))
	case r.URL.Path == "/v1/health/service/storefront-grpc":
		_, _ = w.Write([]byte(`[{"Node":{"Address":"10.0.0.1"},"Service":{"Address":"","Port":50051}}]`))
	case strings.HasPrefix(r.URL.Path, "/v1/health/service/"):
		_, _ = w.Write([]byte(`[]`))
	default:
		http.NotFound(w, r)
	}
}

func newFakeConsul(t *testing.T) (*fakeAgent, *consulapi.Client) {
	t.Helper()
	agent := &fakeAgent{}
	srv := httptest.NewServer(agent)
	t.Cleanup(srv.Close)
	client, err := NewClient(strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	return agent, client
}

func TestRegistrarRoundTrip(t *testing.T) {
	agent, client := newFakeConsul(t)
	r := NewRegistrar(client, testLogger())

	require.NoError(t, r.Register(HTTPRegistration("storefront", "127.0.0.1", 8080)))
	require.NoError(t, r.Register(GRPCRegistration("storefront", "127.0.0.1", 50051, "storefront.CartService")))
	require.Len(t, agent.registered, 2)
	assert.Equal(t, "storefront", agent.registered[0].Name)

	require.NoError(t, r.DeregisterAll())
	assert.Equal(t, []string{"storefront-grpc-127.0.0.1-50051", "storefront-127.0.0.1-8080"}, agent.deregistered)
}

func TestGetServiceAddress(t *testing.T) {
	_, client := newFakeConsul(t)

	addr, port, err := GetServiceAddress(client, "storefront-grpc")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", addr)
	assert.Equal(t, 50051, port)

	_, _, err = GetServiceAddress(client, "missing")
	assert.Error(t, err)
}
