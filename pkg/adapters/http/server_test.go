package http_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	adapter "github.com/frusal/deploy-my-schema/pkg/adapters/http"
	"github.com/frusal/deploy-my-schema/pkg/adapters/memory"
	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, store ports.WorkspaceStore, opts ...adapter.Option) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(adapter.NewHandler(store, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Contract(t *testing.T) {
	srv := newServer(t, memory.NewStore())
	ports.RunWorkspaceStoreContract(t, adapter.NewClient(srv.URL, srv.Client()))
}

func TestServer_Health(t *testing.T) {
	srv := newServer(t, memory.NewStore(), adapter.WithVersion("1.2.3"))

	resp, err := http.Get(srv.URL + "/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"version":"1.2.3"`)
}

func TestServer_BadRequests(t *testing.T) {
	srv := newServer(t, memory.NewStore())

	tests := []struct {
		name string
		body string
	}{
		{"Malformed", "{"},
		{"Name Mismatch", `{"name":"other","version":0,"entities":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPut, srv.URL+"/workspaces/shop", strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

// failingStore breaks on every call.
type failingStore struct{}

func (failingStore) Load(context.Context, string) (*domain.Snapshot, error) {
	return nil, errors.New("disk on fire")
}
func (failingStore) Commit(context.Context, *domain.Snapshot) (int64, error) {
	return 0, errors.New("disk on fire")
}
func (failingStore) Delete(context.Context, string) error { return errors.New("disk on fire") }
func (failingStore) List(context.Context) ([]string, error) {
	return nil, errors.New("disk on fire")
}

func TestServer_InternalErrorsAreHidden(t *testing.T) {
	srv := newServer(t, failingStore{})
	client := adapter.NewClient(srv.URL, srv.Client())

	_, err := client.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "internal error")
	assert.NotContains(t, err.Error(), "disk on fire")
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "sample_total", Help: "sample counter"})
	reg.MustRegister(counter)
	counter.Inc()

	srv := newServer(t, memory.NewStore(), adapter.WithMetrics(reg))

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "sample_total 1")

	// Without a registry there is no endpoint.
	bare := newServer(t, memory.NewStore())
	resp, err = http.Get(bare.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
