package statusserver

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sart/resizer"
)

func TestListenWithEmptyAddrDisablesServer(t *testing.T) {
	s, err := Listen("")
	require.NoError(t, err)
	assert.Nil(t, s)

	// every method must be nil-safe, same as jobstore.Store's pattern.
	s.Snapshot("resize", resizer.Counters{})
	assert.NoError(t, s.Close())
}

func TestSnapshotIsVisibleOverStatusEndpoint(t *testing.T) {
	s, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	require.NotNil(t, s)
	defer s.Close()

	addr := s.listener.Addr().String()
	s.Snapshot("resize", resizer.Counters{InsertedBufferCount: 4, ResizeCount: 7, DesignArea: 12.5, MaxArea: 100})

	resp, err := http.Get("http://" + addr + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "resize", body.EntryPoint)
	assert.Equal(t, 4, body.InsertedBufferCount)
	assert.Equal(t, 7, body.ResizeCount)
	assert.InDelta(t, 12.5, body.DesignArea, 1e-9)
	assert.InDelta(t, 100.0, body.MaxArea, 1e-9)
}
