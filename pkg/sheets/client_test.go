package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	method string
	path   string
	values [][]interface{}
}

type fakeSheets struct {
	mu    sync.Mutex
	calls []call
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Values [][]interface{} `json:"values"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.calls = append(f.calls, call{method: r.Method, path: r.URL.Path, values: body.Values})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{}`))
}

func newTestClient(t *testing.T) (*Client, *fakeSheets) {
	t.Helper()
	fake := &fakeSheets{}
	ts := httptest.NewServer(fake)
	t.Cleanup(ts.Close)

	client, err := NewClient(context.Background(), Config{Endpoint: ts.URL + "/"})
	require.NoError(t, err)
	return client, fake
}

func TestNewClient_RequiresCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.Error(t, err)
}

func TestAppendValues(t *testing.T) {
	client, fake := newTestClient(t)

	err := client.AppendValues(context.Background(), "sheet-1", "Apps!A1", [][]interface{}{{"TechCorp", "Engineer"}})
	require.NoError(t, err)

	require.Len(t, fake.calls, 1)
	assert.Equal(t, http.MethodPost, fake.calls[0].method)
	assert.Equal(t, "/v4/spreadsheets/sheet-1/values/Apps!A1:append", fake.calls[0].path)
	assert.Equal(t, [][]interface{}{{"TechCorp", "Engineer"}}, fake.calls[0].values)
}

func TestReplaceTab(t *testing.T) {
	client, fake := newTestClient(t)

	header := []interface{}{"Company", "Status"}
	rows := [][]interface{}{{"TechCorp", "phone_screen"}, {"Initech", "rejected"}}
	require.NoError(t, client.ReplaceTab(context.Background(), "sheet-1", "", header, rows))

	require.Len(t, fake.calls, 2)
	assert.Equal(t, "/v4/spreadsheets/sheet-1/values/Sheet1!A1:Z:clear", fake.calls[0].path)

	assert.Equal(t, http.MethodPut, fake.calls[1].method)
	assert.Equal(t, "/v4/spreadsheets/sheet-1/values/Sheet1!A1", fake.calls[1].path)
	require.Len(t, fake.calls[1].values, 3)
	assert.Equal(t, header, fake.calls[1].values[0])
	assert.Equal(t, rows[1], fake.calls[1].values[2])
}
