package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/ok.jpg":
			w.WriteHeader(http.StatusOK)
		case "/moved.jpg":
			http.Redirect(w, r, "/ok.jpg", http.StatusMovedPermanently)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	prober := NewHTTPProber(time.Second, "probe-test")
	ctx := context.Background()

	require.NoError(t, prober.Probe(ctx, server.URL+"/ok.jpg"))
	require.NoError(t, prober.Probe(ctx, server.URL+"/moved.jpg"))
	assert.Error(t, prober.Probe(ctx, server.URL+"/missing.jpg"))
	assert.Error(t, prober.Probe(ctx, "http://127.0.0.1:1/unreachable.jpg"))
}

func TestPipeline_HTTPProberDropsBrokenImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/good.jpg" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	html := `<div class="product"><img src="/good.jpg"><span class="product-name">Good</span><span class="price">1</span></div>
<div class="product"><img src="/bad.jpg"><span class="product-name">Bad</span><span class="price">2</span></div>`

	page, err := NewPageFromString(html, server.URL+"/shop")
	require.NoError(t, err)

	products := newTestPipeline(NewHTTPProber(time.Second, "")).Scrape(context.Background(), page)
	require.Len(t, products, 2)
	require.NotNil(t, products[0].ImageURL)
	assert.Equal(t, server.URL+"/good.jpg", *products[0].ImageURL)
	assert.Nil(t, products[1].ImageURL)
}
