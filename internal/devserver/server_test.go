package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist/shoplist-cli/internal/api"
	"github.com/shoplist/shoplist-cli/internal/items"
	"github.com/shoplist/shoplist-cli/internal/output"
)

func newTestServer(t *testing.T, content string) (*httptest.Server, *DB) {
	t.Helper()
	db := openTestDB(t, content)
	srv := httptest.NewServer(New(db, zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)
	return srv, db
}

func TestServerRoundTripWithItemsClient(t *testing.T) {
	srv, _ := newTestServer(t, "")
	now := time.Unix(1700000000, 0)
	client := items.NewClient(api.NewClient(srv.URL), items.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	created, err := client.Create(ctx, items.Draft{Name: "Eggs", OwnerID: 1})
	require.NoError(t, err)
	assert.Equal(t, items.ID("1"), created.ID)
	assert.Equal(t, int64(1700000000), created.CreatedAt)

	_, err = client.Update(ctx, items.Toggle(*created))
	require.NoError(t, err)

	renamed, err := client.Update(ctx, items.Rename(created.ID, "Brown eggs"))
	require.NoError(t, err)
	assert.Equal(t, "Brown eggs", renamed.Name)
	assert.True(t, renamed.Completed, "partial update keeps other fields")

	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Brown eggs", list[0].Name)

	raw, err := client.Delete(ctx, items.Ref{ID: created.ID})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))

	_, err = client.Delete(ctx, items.Ref{ID: created.ID})
	require.Error(t, err)
	assert.Equal(t, output.CodeNotFound, output.AsError(err).Code)
}

func TestServerListEmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/items")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got []any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestServerRejectsNonObjectBody(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Post(srv.URL+"/items", "application/json", strings.NewReader(`[1,2]`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServerDuplicateIDConflicts(t *testing.T) {
	srv, _ := newTestServer(t, `{"items":[{"id":1,"name":"Milk"}]}`)

	resp, err := http.Post(srv.URL+"/items", "application/json", strings.NewReader(`{"id":1,"name":"Again"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestServerGetAndPut(t *testing.T) {
	srv, _ := newTestServer(t, `{"items":[{"id":1,"name":"Milk","completed":true}]}`)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/items/1", strings.NewReader(`{"name":"Oat milk"}`))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/items/1")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "Oat milk", got["name"])
	assert.NotContains(t, got, "completed")
}

func TestServerUnknownIDIs404(t *testing.T) {
	srv, _ := newTestServer(t, "")

	resp, err := http.Get(srv.URL + "/items/42")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, "")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/items", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServerPreflight(t *testing.T) {
	srv, _ := newTestServer(t, "")

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/items/1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServerStartAndShutdown(t *testing.T) {
	db := openTestDB(t, "")
	s := New(db, zerolog.Nop())
	require.NoError(t, s.Start("127.0.0.1:0"))
	assert.NotEmpty(t, s.Addr())

	resp, err := http.Get("http://" + s.Addr() + "/items")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx))
}
