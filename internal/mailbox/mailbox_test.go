// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package mailbox_test

import (
	"context"
	"sync"
	"testing"

	"github.com/petenewcomb/lbsim-go/internal/mailbox"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMailboxWithRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		m := mailbox.New[int]()
		var model []int

		t.Repeat(map[string]func(*rapid.T){
			"post": func(t *rapid.T) {
				v := rapid.Int().Draw(t, "value")
				require.True(t, m.Post(v))
				model = append(model, v)
			},
			"receive": func(t *rapid.T) {
				if len(model) == 0 {
					t.Skip("mailbox is empty")
				}
				v, err := m.Receive(ctx)
				require.NoError(t, err)
				require.Equal(t, model[0], v)
				model = model[1:]
			},
			"": func(t *rapid.T) {
				require.Equal(t, len(model), m.Len())
			},
		})
	})
}

func TestMailboxConcurrentPosters(t *testing.T) {
	chk := require.New(t)
	ctx := context.Background()
	m := mailbox.New[int]()
	const posters, each = 8, 100

	var wg sync.WaitGroup
	for p := range posters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range each {
				m.Post(p*each + i)
			}
		}()
	}

	seen := make(map[int]bool)
	lastByPoster := make([]int, posters)
	for i := range lastByPoster {
		lastByPoster[i] = -1
	}
	for range posters * each {
		v, err := m.Receive(ctx)
		chk.NoError(err)
		chk.False(seen[v])
		seen[v] = true
		p := v / each
		chk.Greater(v, lastByPoster[p], "messages from one poster stay in order")
		lastByPoster[p] = v
	}
	wg.Wait()
}

func TestMailboxClose(t *testing.T) {
	chk := require.New(t)
	ctx := context.Background()
	m := mailbox.New[string]()
	chk.True(m.Post("a"))
	m.Close()
	chk.False(m.Post("b"))

	v, err := m.Receive(ctx)
	chk.NoError(err)
	chk.Equal("a", v)
	_, err = m.Receive(ctx)
	chk.ErrorIs(err, mailbox.ErrClosed)
}

func TestMailboxReceiveCanceled(t *testing.T) {
	chk := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	m := mailbox.New[int]()
	cancel()
	_, err := m.Receive(ctx)
	chk.ErrorIs(err, context.Canceled)
}
