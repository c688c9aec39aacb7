package remote

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFigShareMock(t *testing.T, existingTitle string, existingID int) (*httptest.Server, *FigShareAdapter) {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/account/articles", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			if existingTitle == "" {
				w.Write([]byte(`[]`))
				return
			}
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"id": existingID, "title": existingTitle},
			})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"entity_id": 9999})
		}
	})

	mux.HandleFunc("/account/articles/9001/files", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]map[string]interface{}{
				{"name": "x.tsv", "size": 2, "computed_md5": "60b725f10c9c85c70d97880dfe8191b3", "download_url": "http://example/x.tsv"},
			})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{"location": "/upload/abc"})
		}
	})
	mux.HandleFunc("/upload/abc", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{"parts": []interface{}{}})
		case http.MethodPost:
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{})
		}
	})
	mux.HandleFunc("/upload/abc/1", func(w http.ResponseWriter, r *http.Request) {
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	adapter := NewFigShare(srv.URL)
	return srv, adapter
}

func TestFigShareEnsureProjectFindsExisting(t *testing.T) {
	_, a := newFigShareMock(t, "My Dataset", 9001)
	require.NoError(t, a.Authenticate("tok"))

	id, err := a.EnsureProject("My Dataset")
	require.NoError(t, err)
	assert.Equal(t, "9001", id)
}

func TestFigShareEnsureProjectCreatesWhenMissing(t *testing.T) {
	_, a := newFigShareMock(t, "", 0)
	require.NoError(t, a.Authenticate("tok"))

	id, err := a.EnsureProject("New Dataset")
	require.NoError(t, err)
	assert.Equal(t, "9999", id)
}

func TestFigShareListFiles(t *testing.T) {
	_, a := newFigShareMock(t, "My Dataset", 9001)
	files, err := a.ListFiles("9001")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "x.tsv", files[0].Name)
	assert.True(t, files[0].HasMD5)
	assert.Equal(t, "60b725f10c9c85c70d97880dfe8191b3", files[0].MD5)
}

func TestFigShareUploadRejectsExistingWithoutOverwrite(t *testing.T) {
	_, a := newFigShareMock(t, "My Dataset", 9001)

	dir := t.TempDir()
	path := filepath.Join(dir, "x.tsv")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))

	_, err := a.Upload("9001", path, false)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestFigShareUploadNewFile(t *testing.T) {
	_, a := newFigShareMock(t, "My Dataset", 9001)

	dir := t.TempDir()
	path := filepath.Join(dir, "y.tsv")
	require.NoError(t, os.WriteFile(path, []byte("b\n"), 0644))

	rf, err := a.Upload("9001", path, false)
	require.NoError(t, err)
	assert.Equal(t, "y.tsv", rf.Name)
}

func TestFigShareSupportsMD5(t *testing.T) {
	a := NewFigShare("")
	assert.True(t, a.SupportsMD5())
}
