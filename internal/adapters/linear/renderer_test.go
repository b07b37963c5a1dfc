package linear_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shelf/internal/adapters/linear"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/zerr"
)

func newRenderer(t *testing.T) (*linear.Renderer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	return linear.NewRenderer(&stdout, &stderr), &stdout, &stderr
}

func TestRenderer_Lifecycle(t *testing.T) {
	r, _, _ := newRenderer(t)
	require.NoError(t, r.Start(context.Background()))
	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())
}

func TestRenderer_Events(t *testing.T) {
	r, stdout, _ := newRenderer(t)
	args := domain.Args{"id": "o1"}

	r.OnEvent(domain.Event{
		Kind: domain.EventTransition, Name: "orders:get", Args: args,
		From: domain.StatusUninitialized, To: domain.StatusLoading,
	})
	r.OnEvent(domain.Event{
		Kind: domain.EventTransition, Name: "orders:get", Args: args,
		From: domain.StatusLoading, To: domain.StatusSuccess,
	})
	r.OnEvent(domain.Event{
		Kind: domain.EventMutation, Name: "orderItems:create",
		Args: domain.Args{"orderId": "o1", "productId": "p1"},
		Refs: []domain.TaggedRef{domain.RefID(domain.TagOrders, "o1")},
	})
	r.OnEvent(domain.Event{Kind: domain.EventInvalidated, Name: "orders:get", Args: args})
	r.OnEvent(domain.Event{
		Kind: domain.EventTransition, Name: "orders:get", Args: args,
		From: domain.StatusSuccess, To: domain.StatusLoading,
	})
	r.OnEvent(domain.Event{
		Kind: domain.EventTransition, Name: "orders:get", Args: args,
		From: domain.StatusLoading, To: domain.StatusError, Err: zerr.New("backend unavailable"),
	})
	r.OnEvent(domain.Event{Kind: domain.EventRemoved, Name: "orders:get", Args: args})

	goldie.New(t).Assert(t, "events", stdout.Bytes())
}

func TestRenderer_Progress(t *testing.T) {
	r, stdout, stderr := newRenderer(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	r.OnPlan("checkout", []string{"subscribe-cart", "add", "expect-cart"})
	r.OnSpanStart("s1", "cart:get", start)
	r.OnSpanEnd("s1", start.Add(20*time.Millisecond), nil)
	r.OnSpanStart("s2", "cart:addItem", start)
	r.OnSpanEnd("s2", start.Add(5*time.Millisecond), zerr.New("out of stock"))
	r.OnStepDone("subscribe-cart", nil)
	r.OnStepDone("add", zerr.New("out of stock"))

	assert.Empty(t, stdout.String())
	goldie.New(t).Assert(t, "progress", stderr.Bytes())
}

func TestRenderer_UnknownSpanIgnored(t *testing.T) {
	r, _, stderr := newRenderer(t)
	r.OnSpanEnd("missing", time.Now(), nil)
	assert.Empty(t, stderr.String())
}
