package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shravanasati/beacon/handlers"
	"github.com/shravanasati/beacon/internal/logging"
	"github.com/shravanasati/beacon/server"
)

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.address)
	assert.Equal(t, "info", cfg.logging.Level)
	assert.Equal(t, logging.FormatConsole, cfg.logging.Format)
	assert.True(t, cfg.color)

	cfg, err = parseFlags([]string{"-addr", "127.0.0.1:8080", "-log-level", "debug", "-log-format", "json", "-color=false"})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.address)
	assert.Equal(t, "debug", cfg.logging.Level)
	assert.Equal(t, logging.FormatJSON, cfg.logging.Format)
	assert.False(t, cfg.color)

	_, err = parseFlags([]string{"extra"})
	assert.Error(t, err)
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	res, err := client.Get(url)
	require.NoError(t, err)
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(b)
}

func setBuildInfo(t *testing.T, version, commit, date string) {
	t.Helper()
	oldVersion, oldCommit, oldDate := appVersion, gitCommit, buildDate
	appVersion, gitCommit, buildDate = version, commit, date
	t.Cleanup(func() { appVersion, gitCommit, buildDate = oldVersion, oldCommit, oldDate })
}

func TestRun(t *testing.T) {
	setBuildInfo(t, "v9.9.9", "deadbeef", "2026-10-19")
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan *server.Server, 1)
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, config{address: "127.0.0.1:0"}, zap.New(core), func(s *server.Server) { ready <- s })
	}()

	var srv *server.Server
	select {
	case srv = <-ready:
	case err := <-done:
		t.Fatalf("run returned early: %v", err)
	}

	status, body := get(t, srv.URL()+"health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body)

	status, body = get(t, srv.URL())
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello world", body)

	status, body = get(t, srv.URL()+"missing")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not Found", body)

	status, body = get(t, srv.URL()+"whoami")
	assert.Equal(t, http.StatusOK, status)
	var who handlers.Identity
	require.NoError(t, json.Unmarshal([]byte(body), &who))
	assert.Equal(t, "v9.9.9", who.AppVersion)
	assert.Equal(t, "deadbeef", who.GitCommit)
	assert.Equal(t, os.Getpid(), who.PID)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}

	assert.Equal(t, 1, logs.FilterMessage("http/1 server listening at: "+srv.URL()).Len())
	assert.Equal(t, 4, logs.FilterMessage("request").Len())
	assert.Equal(t, 1, logs.FilterMessage("service configuration").Len())
	assert.Equal(t, 1, logs.FilterMessage("shutting down http/1 server").Len())

	_, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	assert.Error(t, err)
}

func TestRunBindFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	err = run(context.Background(), config{address: l.Addr().String()}, zap.NewNop(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen on")
}

func TestColored(t *testing.T) {
	testCases := []struct {
		args     []string
		expected bool
	}{
		{nil, true},
		{[]string{"-color=false"}, false},
		{[]string{"-log-format", "json"}, false},
		{[]string{"-log-format", "json", "-color=true"}, false},
		{[]string{"-log-format", "console", "-color=true"}, true},
	}

	for _, tc := range testCases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			cfg, err := parseFlags(tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cfg.colored())
		})
	}
}

func TestJSONLogsCarryNoEscapes(t *testing.T) {
	cfg, err := parseFlags([]string{"-log-format", "json"})
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	handler, err := newHandler(zap.New(core), cfg, handlers.Identity{})
	require.NoError(t, err)

	srv, err := server.Serve(server.Options{Address: "127.0.0.1:0"}, handler)
	require.NoError(t, err)
	defer srv.Stop(true)

	status, _ := get(t, srv.URL()+"health")
	assert.Equal(t, http.StatusOK, status)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "/health", entries[0].ContextMap()["target"])
	for _, e := range logs.All() {
		assert.NotContains(t, e.Message, "\x1b[")
	}
}

func TestConcurrentRequestsThroughRoutes(t *testing.T) {
	handler, err := newHandler(zap.NewNop(), config{}, handlers.Identity{Hostname: "box"})
	require.NoError(t, err)

	srv, err := server.Serve(server.Options{Address: "127.0.0.1:0"}, handler)
	require.NoError(t, err)
	defer srv.Stop(true)

	expected := map[string]string{
		"health": "OK",
		"":       "hello world",
	}

	const workers = 8
	const perWorker = 25
	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 5 * time.Second}
			for i := range perWorker {
				path := "health"
				if (w+i)%2 == 0 {
					path = ""
				}
				res, err := client.Get(srv.URL() + path)
				if err != nil {
					errs <- err
					continue
				}
				b, err := io.ReadAll(res.Body)
				res.Body.Close()
				if err != nil {
					errs <- err
					continue
				}
				if string(b) != expected[path] {
					errs <- fmt.Errorf("GET /%s: got %q, want %q", path, b, expected[path])
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
