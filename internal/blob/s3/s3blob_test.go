package s3blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyarb/internal/domain"
)

// fakeS3 is a minimal path-style object store: PUT, GET and HEAD on
// /<bucket>/<key>.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[path] = body
		f.types[path] = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", f.types[path])
		_, _ = w.Write(body)
	case http.MethodHead:
		if strings.Count(strings.Trim(path, "/"), "/") == 0 {
			w.WriteHeader(http.StatusOK)
			return
		}
		if _, ok := f.objects[path]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeS3) {
	t.Helper()
	fake := newFakeS3()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), ClientConfig{
		Endpoint:       srv.URL,
		Region:         "us-east-1",
		Bucket:         "polyarb-test",
		AccessKey:      "key",
		SecretKey:      "secret",
		ForcePathStyle: true,
	})
	require.NoError(t, err)
	return c, fake
}

func TestNew_RequiresBucketAndRegion(t *testing.T) {
	_, err := New(context.Background(), ClientConfig{Region: "us-east-1"})
	assert.Error(t, err)

	_, err = New(context.Background(), ClientConfig{Bucket: "b"})
	assert.Error(t, err)
}

func TestNormaliseEndpoint(t *testing.T) {
	assert.Equal(t, "https://e2.example.com", normaliseEndpoint("https://e2.example.com", false))
	assert.Equal(t, "http://localhost:9000", normaliseEndpoint("localhost:9000", false))
	assert.Equal(t, "https://e2.example.com", normaliseEndpoint("e2.example.com", true))
}

func TestWriterReader_RoundTrip(t *testing.T) {
	c, fake := newTestClient(t)
	ctx := context.Background()
	w := NewWriter(c)
	r := NewReader(c)

	require.NoError(t, c.Health(ctx))

	require.NoError(t, w.Put(ctx, "reports/2026/10/16/abc.json", strings.NewReader(`{"ok":true}`), "application/json"))
	assert.Equal(t, "application/json", fake.types["/polyarb-test/reports/2026/10/16/abc.json"])

	ok, err := r.Exists(ctx, "reports/2026/10/16/abc.json")
	require.NoError(t, err)
	assert.True(t, ok)

	body, err := r.Get(ctx, "reports/2026/10/16/abc.json")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
}

func TestReader_Missing(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	r := NewReader(c)

	ok, err := r.Exists(ctx, "nope.json")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.Get(ctx, "nope.json")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStateStore_S3(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()
	store := NewStateStore(NewReader(c), NewWriter(c), "state/analyzed_markets.json")

	state, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, state)

	state["predict_fun"] = []string{"101", "102"}
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"101", "102"}, loaded["predict_fun"])
}

// memBlob is an in-memory blob store for StateStore error paths.
type memBlob struct {
	data   map[string][]byte
	getErr error
	putErr error
}

func (m *memBlob) Put(_ context.Context, path string, data io.Reader, _ string) error {
	if m.putErr != nil {
		return m.putErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.data[path] = b
	return nil
}

func (m *memBlob) Get(_ context.Context, path string) (io.ReadCloser, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	b, ok := m.data[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memBlob) Exists(_ context.Context, path string) (bool, error) {
	_, ok := m.data[path]
	return ok, nil
}

func TestStateStore_Errors(t *testing.T) {
	ctx := context.Background()

	m := &memBlob{data: map[string][]byte{"k": []byte("not json")}}
	_, err := NewStateStore(m, m, "k").Load(ctx)
	assert.Error(t, err)

	m = &memBlob{data: map[string][]byte{}, getErr: errors.New("boom")}
	_, err = NewStateStore(m, m, "k").Load(ctx)
	assert.ErrorContains(t, err, "boom")

	m = &memBlob{data: map[string][]byte{}, putErr: errors.New("denied")}
	err = NewStateStore(m, m, "k").Save(ctx, domain.SeenState{"a": {"1"}})
	assert.ErrorContains(t, err, "denied")
}

func TestClient_KeyPrefix(t *testing.T) {
	fake := newFakeS3()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), ClientConfig{
		Endpoint:       srv.URL,
		Region:         "us-east-1",
		Bucket:         "polyarb-test",
		AccessKey:      "key",
		SecretKey:      "secret",
		ForcePathStyle: true,
		Prefix:         "/staging/",
	})
	require.NoError(t, err)
	ctx := context.Background()

	assert.Equal(t, "staging/sports/state.json", c.ObjectKey("sports/state.json"))
	assert.Equal(t, "staging/sports/state.json", c.ObjectKey("/sports/state.json"))

	require.NoError(t, NewWriter(c).Put(ctx, "sports/state.json", strings.NewReader(`{}`), "application/json"))
	_, stored := fake.objects["/polyarb-test/staging/sports/state.json"]
	assert.True(t, stored)

	ok, err := NewReader(c).Exists(ctx, "sports/state.json")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNormalisePrefix(t *testing.T) {
	assert.Equal(t, "", normalisePrefix(""))
	assert.Equal(t, "", normalisePrefix("/"))
	assert.Equal(t, "prod/", normalisePrefix("prod"))
	assert.Equal(t, "a/b/", normalisePrefix("/a/b//"))
}
