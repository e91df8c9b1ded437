package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"publish-automation/domain/model"
	"publish-automation/infrastructure/clients/gateway"
)

var payload = model.PublishPayload{
	Title:  "一部新电影",
	URL:    "https://site.test/posts/a/",
	Source: "热映",
	Date:   "2026-08-20",
	Body:   "第一段介绍。\n\n原文链接：https://site.test/posts/a/",
}

func TestDeliver_SuccessSendsJSONWithBearerToken(t *testing.T) {
	var got model.PublishPayload
	var auth, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := gateway.NewClient(5 * time.Second)
	err := client.Deliver(context.Background(), srv.URL, "tok-123", payload)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", auth)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, payload, got)
}

func TestDeliver_NoTokenOmitsAuthorization(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	client := gateway.NewClient(5 * time.Second)
	require.NoError(t, client.Deliver(context.Background(), srv.URL, "", payload))
	assert.Empty(t, auth)
}

func TestDeliver_BadRequestIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing title", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := gateway.NewClient(5 * time.Second)
	err := client.Deliver(context.Background(), srv.URL, "", payload)
	require.Error(t, err)

	var de *gateway.DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, http.StatusBadRequest, de.StatusCode)
	assert.Contains(t, de.Body, "missing title")
	assert.True(t, de.Permanent())
}

func TestDeliver_ServerErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := gateway.NewClient(5 * time.Second)
	err := client.Deliver(context.Background(), srv.URL, "", payload)
	require.Error(t, err)

	var de *gateway.DeliveryError
	require.True(t, errors.As(err, &de))
	assert.False(t, de.Permanent())
}

func TestDeliveryError_ThrottlingIsRetryable(t *testing.T) {
	assert.False(t, (&gateway.DeliveryError{StatusCode: http.StatusTooManyRequests}).Permanent())
	assert.False(t, (&gateway.DeliveryError{StatusCode: http.StatusRequestTimeout}).Permanent())
	assert.True(t, (&gateway.DeliveryError{StatusCode: http.StatusNotFound}).Permanent())
}
