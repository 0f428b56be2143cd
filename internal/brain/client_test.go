package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"alpha_miner/internal/auth"
	"alpha_miner/internal/constant"
	"alpha_miner/internal/viewer"
)

// newTestClient spins one server that answers both the login exchange and the
// handler under test, and returns a client whose paging limiter and sleeper
// never block the test.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *[]time.Duration) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == constant.AuthUri {
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"user":{"id":"TU1"},"token":{"expiry":14400}}`)
			return
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	session, err := auth.Login(server.URL, 5*time.Second, "test@example.com", "secret")
	require.NoError(t, err)

	slept := make([]time.Duration, 0)
	client := NewClient(session)
	client.pageLimiter = rate.NewLimiter(rate.Inf, 1)
	client.sleep = func(d time.Duration) { slept = append(slept, d) }
	return client, &slept
}

func TestSubmitOnceDrainsRetryAfter(t *testing.T) {
	getPolls := 0
	client, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
		case http.MethodGet:
			getPolls++
			if getPolls == 1 {
				w.Header().Set("Retry-After", "0.5")
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			fmt.Fprint(w, `{"is":{"checks":[]}}`)
		}
	})

	result, err := client.SubmitOnce("AB123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, 2, getPolls)
	require.Len(t, *slept, 2)
	assert.Equal(t, 2*time.Second, (*slept)[0])
	assert.Equal(t, 500*time.Millisecond, (*slept)[1])
}

func TestSubmitOnceNoRetryAfter(t *testing.T) {
	client, slept := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	result, err := client.SubmitOnce("AB123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, result.StatusCode)
	assert.Empty(t, *slept)
}

func TestGetAlphaDefaultsStatusToPending(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"AB123","type":"REGULAR"}`)
	})

	alpha, err := client.GetAlpha("AB123")
	require.NoError(t, err)
	assert.Equal(t, "AB123", alpha.Id)
	assert.Equal(t, constant.StatusPending, alpha.Status)
}

func TestGetAlphaNotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetAlpha("MISSING")
	assert.ErrorIs(t, err, ErrAlphaNotFound)
}

func TestCheckSubmissionNon200YieldsNoPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	payload, err := client.CheckSubmission("AB123")
	assert.NoError(t, err)
	assert.Nil(t, payload)
}

func TestListAlphasStopsOnShortPage(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		size := int(constant.ListPageSize)
		if requests > 1 {
			size = 3
		}
		writeAlphaPage(w, requests, size)
	})

	alphas, err := client.ListAlphas(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	assert.Len(t, alphas, constant.ListPageSize+3)
}

func TestListAlphasHonorsLimit(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		writeAlphaPage(w, requests, constant.ListPageSize)
	})

	alphas, err := client.ListAlphas(context.Background(), 50)
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
	assert.Len(t, alphas, constant.ListPageSize)
}

func TestListAlphasKeepsFetchedOnFailedPage(t *testing.T) {
	requests := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeAlphaPage(w, requests, constant.ListPageSize)
	})

	alphas, err := client.ListAlphas(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, alphas, constant.ListPageSize)
}

func writeAlphaPage(w http.ResponseWriter, page int, size int) {
	items := make([]string, 0, size)
	for i := 0; i < size; i++ {
		items = append(items, fmt.Sprintf(`{"id":"A%d_%d"}`, page, i))
	}
	fmt.Fprintf(w, `{"count":%d,"results":[%s]}`, size, strings.Join(items, ","))
}

func TestCreateAlphaReturnsServerId(t *testing.T) {
	var captured map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":"NEW01"}`)
	})

	id, err := client.CreateAlpha("rank(close)", "momentum_1", viewer.SimulationSettings{
		InstrumentType: "EQUITY",
		Region:         "USA",
	})
	require.NoError(t, err)
	assert.Equal(t, "NEW01", id)
	assert.Equal(t, "REGULAR", captured["type"])
	assert.Equal(t, "rank(close)", captured["regular"])
}

func TestCreateAlphaWithoutIdIsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	_, err := client.CreateAlpha("rank(close)", "", viewer.SimulationSettings{})
	assert.Error(t, err)
}

func TestGetDatasetsRejectsNon200(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetDatasets(DatasetQuery{InstrumentType: "EQUITY", Region: "USA", Delay: 1, Universe: "TOP3000"}, false)
	assert.Error(t, err)
}

func TestGetUserProfileMapsPowerPoolFlag(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"username":"quant42","rank":{"level":"GOLD"},"powerPoolEligible":true}`)
	})

	profile, err := client.GetUserProfile()
	require.NoError(t, err)
	assert.Equal(t, "quant42", profile.Username)
	assert.True(t, profile.CanSubmitRegular)
	assert.True(t, profile.CanSubmitPowerPool)
}
