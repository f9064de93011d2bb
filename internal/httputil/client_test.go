package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardClient_Wraps(t *testing.T) {
	customClient := &http.Client{}
	client := NewStandardClient(customClient)
	assert.Same(t, customClient, client.Client)
}

func TestStandardClient_Do(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("accepted"))
	}))
	defer server.Close()

	client := NewStandardClient(nil)
	req, err := http.NewRequest(http.MethodGet, server.URL+"/chunks/1/2", nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "accepted", string(body))
}

func TestMockHTTPClient_QueuedResponsesReplayInOrder(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "first chunk")
	mock.AddResponse(http.StatusOK, "second chunk")

	req1, _ := http.NewRequest(http.MethodGet, "http://places.example/chunks/0/0", nil)
	resp1, err := mock.Do(req1)
	require.NoError(t, err)
	body1, _ := io.ReadAll(resp1.Body)
	assert.Equal(t, "first chunk", string(body1))

	req2, _ := http.NewRequest(http.MethodGet, "http://places.example/chunks/1/0", nil)
	resp2, err := mock.Do(req2)
	require.NoError(t, err)
	body2, _ := io.ReadAll(resp2.Body)
	assert.Equal(t, "second chunk", string(body2))

	assert.Equal(t, 2, mock.RequestCount())
	assert.True(t, strings.Contains(mock.GetRequest(0).URL.String(), "0/0"))
	assert.True(t, strings.Contains(mock.GetRequest(1).URL.String(), "1/0"))
}

func TestMockHTTPClient_AddErrorResponse(t *testing.T) {
	mock := NewMockHTTPClient()
	dropped := errors.New("connection refused")
	mock.AddErrorResponse(dropped)

	req, _ := http.NewRequest(http.MethodGet, "http://places.example/chunks/0/0", nil)
	_, err := mock.Do(req)
	assert.Same(t, dropped, err)
}

func TestMockHTTPClient_DefaultResponseWhenQueueEmpty(t *testing.T) {
	mock := NewMockHTTPClient()

	req, _ := http.NewRequest(http.MethodGet, "http://places.example/chunks/0/0", nil)
	resp, err := mock.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMockHTTPClient_GetRequestOutOfBounds(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "")
	req, _ := http.NewRequest(http.MethodGet, "http://places.example/chunks/0/0", nil)
	mock.Do(req)

	assert.Nil(t, mock.GetRequest(99))
	assert.Nil(t, mock.GetRequest(-1))
}
