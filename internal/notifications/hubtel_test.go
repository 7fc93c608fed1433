package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPhoneNumber(t *testing.T) {
	cases := map[string]string{
		"241234567":        "+233241234567",
		"0241234567":       "+233241234567",
		"024 123 4567":     "+233241234567",
		"233241234567":     "+233241234567",
		"+233 24 123 4567": "+233241234567",
		"12345":            "12345",
		"1241234567":       "1241234567",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatPhoneNumber(in), in)
	}
}

func TestThankYouMessage(t *testing.T) {
	msg := ThankYouMessage("Ama", []string{"Haircut", "Manicure"}, 150)
	assert.Equal(t, "Dear Ama, thank you for visiting our salon & spa today. "+
		"We appreciate your business and hope you enjoyed your Haircut and Manicure. "+
		"Total: GHS 150.00. We look forward to seeing you again soon!", msg)

	assert.Contains(t, ThankYouMessage("Kofi", nil, 20), "enjoyed your service.")
}

func newTestClient(url string) *HubtelClient {
	return NewHubtelClient(HubtelConfig{
		APIURL:         url,
		ClientID:       "id",
		ClientSecret:   "secret",
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
	}, nil)
}

func TestSendSMSPostsMessage(t *testing.T) {
	var got hubtelMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", user)
		assert.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendSMS(context.Background(), "0241234567", "hello")
	require.NoError(t, err)
	assert.Equal(t, hubtelMessage{From: "SALON&SPA", To: "+233241234567", Content: "hello"}, got)
}

func TestSendSMSRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendSMS(context.Background(), "0241234567", "hello")
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendSMSGivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendSMS(context.Background(), "0241234567", "hello")
	require.Error(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls)) // first attempt + 3 retries
}

func TestSendSMSDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendSMS(context.Background(), "0241234567", "hello")
	require.Error(t, err)

	var gwErr *gatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestSendSMSDisabledWithoutCredentials(t *testing.T) {
	client := NewHubtelClient(HubtelConfig{APIURL: "http://unused"}, nil)
	err := client.SendSMS(context.Background(), "0241234567", "hello")
	assert.ErrorIs(t, err, ErrGatewayDisabled)
}
