package scenario_test

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shelf/internal/api"
	"go.trai.ch/shelf/internal/core/domain"
	"go.trai.ch/shelf/internal/core/ports"
	"go.trai.ch/shelf/internal/core/ports/mocks"
	"go.trai.ch/shelf/internal/engine/scenario"
	"go.trai.ch/shelf/internal/engine/tagcache"
	"go.uber.org/mock/gomock"
)

type runnerTestMocks struct {
	transport *mocks.MockTransport
	renderer  *mocks.MockRenderer
}

func setupRunner(t *testing.T, opts ...tagcache.Option) (*scenario.Runner, *tagcache.Layer, runnerTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := runnerTestMocks{
		transport: mocks.NewMockTransport(ctrl),
		renderer:  mocks.NewMockRenderer(ctrl),
	}

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()
	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		},
	).AnyTimes()
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	layer := tagcache.New(m.transport, tracer, log, opts...)
	t.Cleanup(layer.Close)
	require.NoError(t, api.Register(layer))

	runner := scenario.NewRunner(layer, tracer, m.renderer)
	t.Cleanup(runner.Release)
	return runner, layer, m
}

func quietRenderer(m runnerTestMocks) {
	m.renderer.EXPECT().OnPlan(gomock.Any(), gomock.Any()).AnyTimes()
	m.renderer.EXPECT().OnStepDone(gomock.Any(), gomock.Any()).AnyTimes()
}

func build(t *testing.T, name string, steps ...*domain.Step) *domain.Scenario {
	t.Helper()
	sc := domain.NewScenario(name)
	for _, step := range steps {
		require.NoError(t, sc.AddStep(step))
	}
	require.NoError(t, sc.Validate())
	return sc
}

func ptr[T any](v T) *T { return &v }

func orderDetail(id string) domain.OrderDetail {
	return domain.OrderDetail{Order: domain.Order{ID: id, Status: domain.OrderPending}}
}

func TestRunner_OrderItemCreation(t *testing.T) {
	runner, _, m := setupRunner(t)
	quietRenderer(m)

	m.transport.EXPECT().Query(gomock.Any(), "orders:get", domain.Args{"id": "o1"}).Return(orderDetail("o1"), nil).Times(2)
	m.transport.EXPECT().Query(gomock.Any(), "orders:get", domain.Args{"id": "o2"}).Return(orderDetail("o2"), nil).Times(1)
	m.transport.EXPECT().Mutate(gomock.Any(), "orderItems:create", gomock.Any()).Return(domain.OrderItem{ID: "i1"}, nil)

	sc := build(t, "order-items",
		&domain.Step{Name: "detail-o1", Kind: domain.StepSubscribe, Endpoint: "orders:get", Args: domain.Args{"id": "o1"}},
		&domain.Step{Name: "detail-o2", Kind: domain.StepSubscribe, Endpoint: "orders:get", Args: domain.Args{"id": "o2"}},
		&domain.Step{
			Name: "add-item", Kind: domain.StepMutate, Endpoint: "orderItems:create",
			Args:  domain.Args{"orderId": "o1", "productId": "p1", "quantity": 1},
			After: []string{"detail-o1", "detail-o2"},
		},
		&domain.Step{
			Name: "o1-fresh", Kind: domain.StepExpect, Endpoint: "orders:get", Args: domain.Args{"id": "o1"},
			Expect: &domain.Expectation{Status: ptr(domain.StatusSuccess), Stale: ptr(false)},
			After:  []string{"add-item"},
		},
	)

	report, err := runner.Run(t.Context(), sc, 4)
	require.NoError(t, err)
	assert.Zero(t, report.Failed())
	assert.Equal(t, scenario.StatusPassed, runner.Status("o1-fresh"))
}

func TestRunner_FailureSkipsDependents(t *testing.T) {
	runner, _, m := setupRunner(t)
	quietRenderer(m)

	m.transport.EXPECT().Mutate(gomock.Any(), "orders:touch", gomock.Any()).Return(nil, errors.New("backend down"))
	m.transport.EXPECT().Query(gomock.Any(), "products:get", gomock.Any()).Return(domain.Product{ID: "p1"}, nil)

	sc := build(t, "failing",
		&domain.Step{Name: "touch", Kind: domain.StepMutate, Endpoint: "orders:touch", Args: domain.Args{"id": "o1"}},
		&domain.Step{Name: "after-touch", Kind: domain.StepSleep, Duration: time.Millisecond, After: []string{"touch"}},
		&domain.Step{Name: "transitive", Kind: domain.StepSleep, Duration: time.Millisecond, After: []string{"after-touch"}},
		&domain.Step{Name: "independent", Kind: domain.StepInvoke, Endpoint: "products:get", Args: domain.Args{"id": "p1"}},
	)

	report, err := runner.Run(t.Context(), sc, 2)
	require.ErrorContains(t, err, domain.ErrScenarioFailed.Error())
	require.ErrorContains(t, err, "backend down")
	assert.Equal(t, 3, report.Failed())

	assert.Equal(t, scenario.StatusFailed, runner.Status("touch"))
	assert.Equal(t, scenario.StatusSkipped, runner.Status("after-touch"))
	assert.Equal(t, scenario.StatusSkipped, runner.Status("transitive"))
	assert.Equal(t, scenario.StatusPassed, runner.Status("independent"))
}

func TestRunner_ExpectError(t *testing.T) {
	runner, _, m := setupRunner(t)
	quietRenderer(m)

	m.transport.EXPECT().Mutate(gomock.Any(), "orders:touch", gomock.Any()).Return(nil, errors.New("not found"))
	m.transport.EXPECT().Mutate(gomock.Any(), "orders:touch", gomock.Any()).Return(domain.Order{ID: "o1"}, nil)

	sc := build(t, "expect-error",
		&domain.Step{Name: "fails", Kind: domain.StepMutate, Endpoint: "orders:touch", Args: domain.Args{"id": "o9"}, ExpectError: true},
		&domain.Step{
			Name: "succeeds", Kind: domain.StepMutate, Endpoint: "orders:touch", Args: domain.Args{"id": "o1"},
			ExpectError: true, After: []string{"fails"},
		},
	)

	_, err := runner.Run(t.Context(), sc, 1)
	require.ErrorContains(t, err, domain.ErrExpectationFailed.Error())
	assert.Equal(t, scenario.StatusPassed, runner.Status("fails"))
	assert.Equal(t, scenario.StatusFailed, runner.Status("succeeds"))
}

func TestRunner_ExpectMismatch(t *testing.T) {
	runner, _, m := setupRunner(t)
	quietRenderer(m)

	m.transport.EXPECT().Query(gomock.Any(), "orders:get", gomock.Any()).Return(nil, errors.New("order missing"))

	sc := build(t, "mismatch",
		&domain.Step{Name: "read", Kind: domain.StepSubscribe, Endpoint: "orders:get", Args: domain.Args{"id": "o1"}, ExpectError: true},
		&domain.Step{
			Name: "is-error", Kind: domain.StepExpect, Endpoint: "orders:get", Args: domain.Args{"id": "o1"},
			Expect: &domain.Expectation{Status: ptr(domain.StatusError), Error: "missing"},
			After:  []string{"read"},
		},
		&domain.Step{
			Name: "is-success", Kind: domain.StepExpect, Endpoint: "orders:get", Args: domain.Args{"id": "o1"},
			Expect: &domain.Expectation{Status: ptr(domain.StatusSuccess)},
			After:  []string{"read"},
		},
		&domain.Step{
			Name: "is-absent", Kind: domain.StepExpect, Endpoint: "orders:get", Args: domain.Args{"id": "o1"},
			Expect: &domain.Expectation{Absent: true},
			After:  []string{"read"},
		},
	)

	report, err := runner.Run(t.Context(), sc, 2)
	require.ErrorContains(t, err, domain.ErrExpectationFailed.Error())
	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, scenario.StatusPassed, runner.Status("is-error"))
	assert.Equal(t, scenario.StatusFailed, runner.Status("is-success"))
	assert.Equal(t, scenario.StatusFailed, runner.Status("is-absent"))
}

func TestRunner_UnsubscribeRemovesEntry(t *testing.T) {
	runner, layer, m := setupRunner(t, tagcache.WithKeepUnusedFor(0))
	quietRenderer(m)

	m.transport.EXPECT().Query(gomock.Any(), "cart:get", gomock.Any()).Return(domain.Cart{UserID: "u1"}, nil)

	sc := build(t, "unmount",
		&domain.Step{Name: "cart", Kind: domain.StepSubscribe, Endpoint: "cart:get", Args: domain.Args{"userId": "u1"}},
		&domain.Step{Name: "leave", Kind: domain.StepUnsubscribe, Target: "cart"},
		&domain.Step{
			Name: "gone", Kind: domain.StepExpect, Endpoint: "cart:get", Args: domain.Args{"userId": "u1"},
			Expect: &domain.Expectation{Absent: true}, After: []string{"leave"},
		},
	)

	_, err := runner.Run(t.Context(), sc, 4)
	require.NoError(t, err)
	assert.Empty(t, layer.Entries())
}

func TestRunner_UnsubscribeUnknownTarget(t *testing.T) {
	runner, _, m := setupRunner(t)
	quietRenderer(m)

	sc := build(t, "unknown-target",
		&domain.Step{Name: "noop", Kind: domain.StepSleep, Duration: time.Millisecond},
		&domain.Step{Name: "leave", Kind: domain.StepUnsubscribe, Target: "noop"},
	)

	_, err := runner.Run(t.Context(), sc, 1)
	require.ErrorContains(t, err, domain.ErrInvalidStep.Error())
}

func TestRunner_InvalidateAndRetry(t *testing.T) {
	runner, _, m := setupRunner(t)
	quietRenderer(m)

	m.transport.EXPECT().Query(gomock.Any(), "products:get", domain.Args{"id": "p1"}).Return(domain.Product{ID: "p1"}, nil).Times(3)

	sc := build(t, "manual",
		&domain.Step{Name: "p1", Kind: domain.StepSubscribe, Endpoint: "products:get", Args: domain.Args{"id": "p1"}},
		&domain.Step{
			Name: "all-products", Kind: domain.StepInvalidate,
			Refs: []domain.TaggedRef{domain.Ref(domain.TagProducts)}, After: []string{"p1"},
		},
		&domain.Step{
			Name: "retry", Kind: domain.StepRetry, Endpoint: "products:get", Args: domain.Args{"id": "p1"},
			After: []string{"all-products"},
		},
	)

	_, err := runner.Run(t.Context(), sc, 1)
	require.NoError(t, err)
}

func TestRunner_ReportsPlanAndSteps(t *testing.T) {
	runner, _, m := setupRunner(t)

	sc := build(t, "plan",
		&domain.Step{Name: "b", Kind: domain.StepSleep, Duration: time.Millisecond, After: []string{"a"}},
		&domain.Step{Name: "a", Kind: domain.StepSleep, Duration: time.Millisecond},
	)

	gomock.InOrder(
		m.renderer.EXPECT().OnPlan("plan", []string{"a", "b"}),
		m.renderer.EXPECT().OnStepDone("a", nil),
		m.renderer.EXPECT().OnStepDone("b", nil),
	)

	report, err := runner.Run(t.Context(), sc, 2)
	require.NoError(t, err)
	require.Len(t, report.Steps, 2)
	assert.Equal(t, "a", report.Steps[0].Name)
	assert.Equal(t, scenario.StatusPassed, report.Steps[1].Status)
}

func TestRunner_Parallelism(t *testing.T) {
	tests := []struct {
		name        string
		parallelism int
		want        time.Duration
	}{
		{name: "serial", parallelism: 1, want: 3 * time.Second},
		{name: "parallel", parallelism: 3, want: time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				runner, _, m := setupRunner(t)
				quietRenderer(m)

				sc := build(t, "sleepers",
					&domain.Step{Name: "s1", Kind: domain.StepSleep, Duration: time.Second},
					&domain.Step{Name: "s2", Kind: domain.StepSleep, Duration: time.Second},
					&domain.Step{Name: "s3", Kind: domain.StepSleep, Duration: time.Second},
				)

				start := time.Now()
				_, err := runner.Run(t.Context(), sc, tt.parallelism)
				require.NoError(t, err)
				assert.Equal(t, tt.want, time.Since(start))
			})
		})
	}
}

func TestRunner_Cancelled(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		runner, _, m := setupRunner(t)
		quietRenderer(m)

		sc := build(t, "long",
			&domain.Step{Name: "wait", Kind: domain.StepSleep, Duration: time.Hour},
			&domain.Step{Name: "later", Kind: domain.StepSleep, Duration: time.Second, After: []string{"wait"}},
		)

		ctx, cancel := context.WithTimeout(t.Context(), time.Minute)
		defer cancel()

		_, err := runner.Run(ctx, sc, 1)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, scenario.StatusFailed, runner.Status("wait"))
		assert.Equal(t, scenario.StatusSkipped, runner.Status("later"))
	})
}
