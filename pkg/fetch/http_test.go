package fetch_test

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xakep666/license/pkg/fetch"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

const mitText = `MIT License

Copyright (c) <year> <copyright holders>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction.
`

func TestHTTPSource_Open(t *testing.T) {
	t.Parallel()
	mockedServerMux := http.NewServeMux()
	mockedServerMux.HandleFunc("/text/MIT.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = fmt.Fprint(w, mitText)
	})
	mockedServerMux.HandleFunc("/text/user-agent.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, r.Header.Get("User-Agent"))
	})
	mockedServerMux.HandleFunc("/text/slow.txt", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
	})

	server := httptest.NewServer(mockedServerMux)
	t.Cleanup(server.Close)

	t.Run("ok", func(t *testing.T) {
		source := fetch.NewHTTPSource(zaptest.NewLogger(t), fetch.HTTPSourceParams{Client: server.Client()})

		rc, err := source.Open(context.Background(), server.URL+"/text/MIT.txt")
		if assert.NoError(t, err) {
			defer rc.Close()

			content, err := ioutil.ReadAll(rc)
			if assert.NoError(t, err) {
				assert.Equal(t, mitText, string(content))
			}
		}
	})

	t.Run("user agent", func(t *testing.T) {
		source := fetch.NewHTTPSource(zaptest.NewLogger(t), fetch.HTTPSourceParams{
			Client:    server.Client(),
			UserAgent: "license-test/1.0",
		})

		rc, err := source.Open(context.Background(), server.URL+"/text/user-agent.txt")
		if assert.NoError(t, err) {
			defer rc.Close()

			content, err := ioutil.ReadAll(rc)
			if assert.NoError(t, err) {
				assert.Equal(t, "license-test/1.0", string(content))
			}
		}
	})

	t.Run("not found", func(t *testing.T) {
		source := fetch.NewHTTPSource(zaptest.NewLogger(t), fetch.HTTPSourceParams{Client: server.Client()})

		_, err := source.Open(context.Background(), server.URL+"/text/NOPE.txt")

		var statusErr *fetch.UnexpectedStatusError
		if assert.True(t, errors.As(err, &statusErr), "Expected UnexpectedStatusError, got", err) {
			assert.Equal(t, http.StatusNotFound, statusErr.Code)
			assert.Equal(t, server.URL+"/text/NOPE.txt", statusErr.URL)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		source := fetch.NewHTTPSource(zaptest.NewLogger(t), fetch.HTTPSourceParams{
			Client:  server.Client(),
			Timeout: 50 * time.Millisecond,
		})

		_, err := source.Open(context.Background(), server.URL+"/text/slow.txt")
		assert.Error(t, err)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		source := fetch.NewHTTPSource(zaptest.NewLogger(t), fetch.HTTPSourceParams{})

		_, err := source.Open(context.Background(), "ftp://example.com/MIT.txt")
		assert.True(t, errors.Is(err, fetch.ErrUnsupportedURL), "Expected ErrUnsupportedURL, got", err)
	})
}

func TestNewHTTPSource_timeout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, fetch.DefaultTimeout, fetch.NewHTTPSource(zaptest.NewLogger(t), fetch.HTTPSourceParams{}).Timeout())
	assert.Equal(t, time.Minute, fetch.NewHTTPSource(zaptest.NewLogger(t), fetch.HTTPSourceParams{Timeout: time.Minute}).Timeout())
	assert.Equal(t, time.Duration(0), fetch.NewHTTPSource(zaptest.NewLogger(t), fetch.HTTPSourceParams{Timeout: -1}).Timeout())

	base := &http.Client{Timeout: time.Hour}
	fetch.NewHTTPSource(zaptest.NewLogger(t), fetch.HTTPSourceParams{Client: base})
	assert.Equal(t, time.Hour, base.Timeout, "provided client must not be modified")
}
