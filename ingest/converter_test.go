package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteConverterSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"text": "extracted body", "pages": 2}`))
	}))
	defer server.Close()

	conv := NewRemoteConverter(server.URL)
	text, err := conv.Convert(context.Background(), []byte("%PDF-1.4"), "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, "extracted body", text)
}

func TestRemoteConverterEscapesName(t *testing.T) {
	var gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("name")
		w.Write([]byte(`{"text": "ok"}`))
	}))
	defer server.Close()

	conv := NewRemoteConverter(server.URL)
	_, err := conv.Convert(context.Background(), []byte("%PDF-1.4"), "q3 report & notes.pdf")
	require.NoError(t, err)
	assert.Equal(t, "q3 report & notes.pdf", gotName)
}

func TestRemoteConverterServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "encrypted document"}`))
	}))
	defer server.Close()

	conv := NewRemoteConverter(server.URL)
	_, err := conv.Convert(context.Background(), []byte("%PDF-1.4"), "doc.pdf")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConversionFailed)
	assert.Contains(t, err.Error(), "encrypted document")
}

func TestRemoteConverterBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	conv := NewRemoteConverter(server.URL)
	_, err := conv.Convert(context.Background(), []byte("data"), "doc.pdf")
	assert.ErrorIs(t, err, ErrConversionFailed)
}

func TestRemoteConverterUnreachable(t *testing.T) {
	conv := NewRemoteConverter("http://127.0.0.1:1")
	_, err := conv.Convert(context.Background(), []byte("data"), "doc.pdf")
	assert.ErrorIs(t, err, ErrConversionFailed)
}
