package engine

import (
	"context"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeForm_KeepsOrder(t *testing.T) {
	got := EncodeForm([]Field{
		{Name: "ddlYear", Value: "2025"},
		{Name: "ddlMonth", Value: "May"},
		{Name: "txtRollNo", Value: "12 34&5"},
		{Name: "btnSubmit", Value: "Submit"},
	})
	assert.Equal(t, "ddlYear=2025&ddlMonth=May&txtRollNo=12+34%265&btnSubmit=Submit", got)
}

func TestHTTPEngine_GET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, "<html><title>ok</title></html>")
	}))
	defer srv.Close()

	e := NewHTTPEngine(WithUserAgent("test-agent"))
	res, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Body, "<title>ok</title>")
}

func TestHTTPEngine_FormPOST(t *testing.T) {
	var gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
	}))
	defer srv.Close()

	e := NewHTTPEngine()
	_, err := e.Fetch(context.Background(), &FetchRequest{
		URL:  srv.URL,
		Form: []Field{{Name: "b", Value: "2"}, {Name: "a", Value: "1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "b=2&a=1", gotBody)
	assert.Equal(t, "application/x-www-form-urlencoded", gotType)
}

func TestHTTPEngine_Non2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewHTTPEngine().Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestHTTPEngine_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	e := NewHTTPEngine(WithTimeout(50 * time.Millisecond))
	_, err := e.Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context deadline exceeded")
}

func TestHTTPEngine_BodyCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "0123456789")
	}))
	defer srv.Close()

	res, err := NewHTTPEngine(WithMaxBody(4)).Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "0123", res.Body)
}

func TestHTTPEngine_ConcurrentTLS(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<p>Result Pending</p>")
	}))
	defer srv.Close()

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	e := NewHTTPEngine(WithRootCAs(pool))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// A fresh engine per goroutine as well, so every request dials.
			for _, eng := range []*HTTPEngine{e, NewHTTPEngine(WithRootCAs(pool))} {
				res, err := eng.Fetch(context.Background(), &FetchRequest{URL: srv.URL})
				if err != nil {
					errs <- err
					return
				}
				if res.Body != "<p>Result Pending</p>" {
					errs <- fmt.Errorf("unexpected body %q", res.Body)
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestHTTPEngine_DecodesDeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<p>R\xe9sultat: admis</p>"))
	}))
	defer srv.Close()

	res, err := NewHTTPEngine().Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "<p>Résultat: admis</p>", res.Body)
}

func TestHTTPEngine_DecodesMetaCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><head><meta charset=\"windows-1252\"></head><body>Stra\xdfe \x80</body></html>"))
	}))
	defer srv.Close()

	res, err := NewHTTPEngine().Fetch(context.Background(), &FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Contains(t, res.Body, "Straße €")
}
