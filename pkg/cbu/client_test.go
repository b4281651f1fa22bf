package cbu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `[{"id":69,"Code":"840","Ccy":"USD","CcyNm_EN":"US Dollar","Nominal":"1","Rate":"12745.32","Diff":"-10.5","Date":"16.10.2026"}]`

func TestFetchUSDRate_Direct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	q, err := NewClient(srv.URL, nil, 0).FetchUSDRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "12745.32", q.Rate.String())
	assert.Equal(t, "16.10.2026", q.Date)
	assert.Equal(t, "direct", q.Source)
}

func TestFetchUSDRate_FallsBackToProxy(t *testing.T) {
	direct := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer direct.Close()

	var proxied atomic.Value
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		proxied.Store(r.URL.Query().Get("url"))
		_, _ = w.Write([]byte(feed))
	}))
	defer proxy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer broken.Close()

	c := NewClient(direct.URL, []string{broken.URL + "/?url=", proxy.URL + "/raw?url="}, 0)
	q, err := c.FetchUSDRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "proxy", q.Source)
	assert.Equal(t, direct.URL, proxied.Load())
}

func TestFetchUSDRate_AllFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"Ccy":"EUR","Rate":"13900.00"}]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, []string{srv.URL + "/?u="}, 0).FetchUSDRate(context.Background())
	assert.ErrorIs(t, err, ErrNoRate)
}

func TestProxyURLs(t *testing.T) {
	c := NewClient("https://cbu.uz/uz/arkhiv-kursov-valyut/json/USD/", []string{"https://corsproxy.io/?", " "}, 0)
	got := c.proxyURLs()
	require.Len(t, got, 1)
	assert.Equal(t, "https://corsproxy.io/?"+url.QueryEscape("https://cbu.uz/uz/arkhiv-kursov-valyut/json/USD/"), got[0])
}
