package main_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/linkpub"
	main "github.com/fwojciec/linkpub/cmd/linkpub"
	"github.com/fwojciec/linkpub/consume"
	"github.com/fwojciec/linkpub/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("fetches every host once without a validator", func(t *testing.T) {
		t.Parallel()

		// Given three hosts answering differently
		transport := &mock.Transport{
			FetchFn: func(_ context.Context, host, path, validator string) linkpub.Outcome {
				if validator != "" || path != "/" {
					return linkpub.Failure("unexpected request")
				}
				switch host {
				case "h1":
					return linkpub.Updated([]byte(`{"/a":[],"/b":[]}`), "V1")
				case "h2":
					return linkpub.Updated([]byte(`not json`), "")
				default:
					return linkpub.UnexpectedStatus(503)
				}
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			Logger:    slog.New(slog.DiscardHandler),
			Config:    consume.Config{Hosts: []string{"h1", "h2", "h3"}, ConsumerGUID: linkpub.DefaultConsumerGUID},
			Transport: transport,
		}

		// When probing
		err := (&main.ProbeCmd{}).Run(deps)

		// Then each host is reported in configuration order
		require.Error(t, err)
		assert.Equal(t, "2 of 3 hosts failed", err.Error())
		lines := stdout.String()
		assert.Contains(t, lines, "h1\tok\t2 pages\n")
		assert.Contains(t, lines, "h2\tinvalid payload:")
		assert.Contains(t, lines, "h3\tfailed: unexpected-status:503\n")
		assert.Less(t, bytes.Index(stdout.Bytes(), []byte("h1")), bytes.Index(stdout.Bytes(), []byte("h3")))
	})

	t.Run("succeeds when every host answers", func(t *testing.T) {
		t.Parallel()

		transport := &mock.Transport{
			FetchFn: func(_ context.Context, host, path, validator string) linkpub.Outcome {
				return linkpub.NotModified()
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			Config:    consume.Config{Hosts: []string{"h1"}, ConsumerGUID: linkpub.DefaultConsumerGUID},
			Transport: transport,
		}

		err := (&main.ProbeCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "h1\tnot modified\n", stdout.String())
	})
}

func TestLinksCmd_Run_RejectsInvalidLimit(t *testing.T) {
	t.Parallel()

	stderr := &bytes.Buffer{}
	deps := &main.Dependencies{
		Ctx:    context.Background(),
		Stdout: &bytes.Buffer{},
		Stderr: stderr,
	}

	err := (&main.LinksCmd{Page: "/", Limit: -2}).Run(deps)

	assert.Equal(t, linkpub.EINVALID, linkpub.ErrorCode(err))
	assert.Contains(t, stderr.String(), "limit")
}
