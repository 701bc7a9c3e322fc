package sidra

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/ougirez/sidra/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTransport struct {
	calls atomic.Int32
}

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls.Add(1)
	return nil, errors.New("connection refused")
}

func testConfig(url string) Config {
	return Config{
		MetadataURL:    url + "/agregados",
		ValuesURL:      url + "/values",
		DescriptionURL: url + "/desctabapi.aspx",
		Timeout:        time.Second,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func TestSidra_Client_FetchOne(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/values/t/1419/N1/1/v/63/p/201201-201202/f/n/d/4/h/y", r.URL.Path)
			_, _ = w.Write([]byte(valuesArrays))
		}))
		defer srv.Close()

		c := NewClient(testConfig(srv.URL))
		res := c.FetchOne(context.Background(), domain.QueryRequest{
			URL: srv.URL + "/values/t/1419/N1/1/v/63/p/201201-201202/f/n/d/4/h/y",
		})
		require.Equal(t, domain.FetchStateSuccess, res.State)
		require.True(t, res.OK())
		require.Equal(t, 1, res.Attempts)
		require.NoError(t, res.Err)
		require.Equal(t, 2, res.Frame.Nrow())
	})

	t.Run("always failing connection is exhausted after max retries", func(t *testing.T) {
		t.Parallel()

		transport := &failingTransport{}
		c := NewClient(testConfig("http://sidra.test"), WithHTTPClient(&http.Client{Transport: transport}))

		res := c.FetchOne(context.Background(), domain.QueryRequest{URL: "http://sidra.test/values/t/1"})
		require.Equal(t, domain.FetchStateExhausted, res.State)
		require.Equal(t, 3, res.Attempts)
		require.Equal(t, int32(3), transport.calls.Load())
		require.True(t, IsRetryable(res.Err))
	})

	t.Run("timeouts are retried until exhausted", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.Timeout = 50 * time.Millisecond
		c := NewClient(cfg)

		res := c.FetchOne(context.Background(), domain.QueryRequest{URL: srv.URL + "/values"})
		require.Equal(t, domain.FetchStateExhausted, res.State)
		require.Equal(t, 3, res.Attempts)
		require.Equal(t, int32(3), calls.Load())
		require.True(t, IsRetryable(res.Err))
	})

	t.Run("redirect loop is retried until exhausted", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, r.URL.Path, http.StatusFound)
		}))
		defer srv.Close()

		c := NewClient(testConfig(srv.URL))
		res := c.FetchOne(context.Background(), domain.QueryRequest{URL: srv.URL + "/values"})
		require.Equal(t, domain.FetchStateExhausted, res.State)
		require.Equal(t, 3, res.Attempts)
		require.True(t, IsRetryable(res.Err))
		require.Contains(t, res.Err.Error(), "redirects")
	})

	t.Run("server errors are retried until success", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(valuesArrays))
		}))
		defer srv.Close()

		c := NewClient(testConfig(srv.URL))
		res := c.FetchOne(context.Background(), domain.QueryRequest{URL: srv.URL + "/values"})
		require.Equal(t, domain.FetchStateSuccess, res.State)
		require.Equal(t, 3, res.Attempts)
	})

	t.Run("status error keeps the status code", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`"Parâmetro inválido"`))
		}))
		defer srv.Close()

		cfg := testConfig(srv.URL)
		cfg.MaxRetries = 2
		res := NewClient(cfg).FetchOne(context.Background(), domain.QueryRequest{URL: srv.URL + "/values"})
		require.Equal(t, domain.FetchStateExhausted, res.State)
		require.Equal(t, 2, res.Attempts)

		var fe *FetchError
		require.ErrorAs(t, res.Err, &fe)
		require.Equal(t, http.StatusBadRequest, fe.StatusCode)
	})

	t.Run("unparseable body is an unexpected error without retries", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(`<html>manutenção</html>`))
		}))
		defer srv.Close()

		res := NewClient(testConfig(srv.URL)).FetchOne(context.Background(), domain.QueryRequest{URL: srv.URL + "/values"})
		require.Equal(t, domain.FetchStateFailed, res.State)
		require.Equal(t, 1, res.Attempts)
		require.Equal(t, int32(1), calls.Load())
		require.False(t, IsRetryable(res.Err))
	})

	t.Run("cancelled context fails without retries", func(t *testing.T) {
		t.Parallel()

		transport := &failingTransport{}
		c := NewClient(testConfig("http://sidra.test"), WithHTTPClient(&http.Client{Transport: transport}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := c.FetchOne(ctx, domain.QueryRequest{URL: "http://sidra.test/values"})
		require.Equal(t, domain.FetchStateFailed, res.State)
		require.Equal(t, 1, res.Attempts)
		require.Zero(t, transport.calls.Load())
	})
}

func TestSidra_Client_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/N6/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(valuesArrays))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1
	c := NewClient(cfg)

	requests := []domain.QueryRequest{
		{URL: srv.URL + "/values/t/1419/N1/1/v/63"},
		{URL: srv.URL + "/values/t/1419/N6/2200053/v/63"},
		{URL: srv.URL + "/values/t/1419/N3/22/v/63"},
	}
	results := c.Fetch(context.Background(), requests)
	require.Len(t, results, 3)
	for i, r := range results {
		require.Equal(t, requests[i], r.Request)
	}

	df, failed, err := Collect(results)
	require.NoError(t, err)
	require.Equal(t, 4, df.Nrow())
	require.Len(t, failed, 1)
	require.Equal(t, domain.FetchStateExhausted, failed[0].State)
	require.Equal(t, requests[1], failed[0].Request)
}

func TestSidra_Collect_NoSuccess(t *testing.T) {
	t.Parallel()

	df, failed, err := Collect([]domain.FetchResult{
		{State: domain.FetchStateFailed, Frame: dataframe.DataFrame{}},
	})
	require.NoError(t, err)
	require.Zero(t, df.Ncol())
	require.Len(t, failed, 1)
}

func TestSidra_Client_Metadata(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agregados/1419/metadados" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(metadata1419))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))

	body, err := c.Metadata(context.Background(), 1419)
	require.NoError(t, err)
	require.JSONEq(t, metadata1419, string(body))

	_, err = c.Metadata(context.Background(), 9999)
	require.Error(t, err)
	require.True(t, IsRetryable(err))
}

func TestSidra_NewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Config{})
	cfg := c.Config()
	require.Equal(t, DefaultMetadataURL, cfg.MetadataURL)
	require.Equal(t, DefaultValuesURL, cfg.ValuesURL)
	require.Equal(t, DefaultDescriptionURL, cfg.DescriptionURL)
	require.Equal(t, DefaultConfig().Timeout, cfg.Timeout)
	require.Equal(t, 1, cfg.MaxRetries)
}

func TestSidra_NewLimiter(t *testing.T) {
	t.Parallel()

	unlimited := NewLimiter(0)
	for i := 0; i < 10; i++ {
		require.True(t, unlimited.Allow())
	}

	limited := NewLimiter(time.Hour)
	require.True(t, limited.Allow())
	require.False(t, limited.Allow())
}

func TestSidra_FetchError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("wrapped: %w", &FetchError{Kind: FetchErrorRetryable, URL: "u", Err: errors.New("boom")})
	require.True(t, IsRetryable(err))
	require.Contains(t, err.Error(), "retryable fetch error: u: boom")
	require.False(t, IsRetryable(errors.New("plain")))
}
