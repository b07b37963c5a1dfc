package domain_test

import (
	"encoding/json"
	"slices"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/shelf/internal/core/domain"
)

func TestTaggedRef_Matches(t *testing.T) {
	tests := []struct {
		name        string
		invalidated domain.TaggedRef
		provided    domain.TaggedRef
		want        bool
	}{
		{"same key", domain.RefID(domain.TagOrders, "o1"), domain.RefID(domain.TagOrders, "o1"), true},
		{"other key", domain.RefID(domain.TagOrders, "o1"), domain.RefID(domain.TagOrders, "o2"), false},
		{"category invalidates keyed", domain.Ref(domain.TagProducts), domain.RefID(domain.TagProducts, "p1"), true},
		{"keyed invalidates category", domain.RefID(domain.TagProducts, "p1"), domain.Ref(domain.TagProducts), true},
		{"other tag", domain.Ref(domain.TagProducts), domain.Ref(domain.TagOrders), false},
		{"list is an ordinary key", domain.RefID(domain.TagOrders, "o1"), domain.ListRef(domain.TagOrders), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.invalidated.Matches(tt.provided))
		})
	}
}

func TestAnyMatch(t *testing.T) {
	provided := []domain.TaggedRef{domain.RefID(domain.TagProducts, "p1"), domain.ListRef(domain.TagProducts)}

	assert.True(t, domain.AnyMatch([]domain.TaggedRef{domain.Ref(domain.TagProducts)}, provided))
	assert.False(t, domain.AnyMatch([]domain.TaggedRef{domain.RefID(domain.TagProducts, "p2")}, provided))
	assert.False(t, domain.AnyMatch([]domain.TaggedRef{domain.Ref(domain.TagProducts)}, nil),
		"an entry with zero tags is never matched")
}

func TestTaggedRef_Text(t *testing.T) {
	ref, err := domain.ParseTaggedRef("Orders:o1")
	require.NoError(t, err)
	assert.Equal(t, domain.RefID(domain.TagOrders, "o1"), ref)
	assert.Equal(t, "Orders:o1", ref.String())

	ref, err = domain.ParseTaggedRef("Analytics")
	require.NoError(t, err)
	assert.True(t, ref.IsCategory())

	_, err = domain.ParseTaggedRef("orders:o1")
	require.ErrorContains(t, err, domain.ErrUnknownTag.Error())

	data, err := json.Marshal([]domain.TaggedRef{domain.Ref(domain.TagCart), domain.RefID(domain.TagUser, "u1")})
	require.NoError(t, err)
	assert.JSONEq(t, `["Cart","User:u1"]`, string(data))

	var decoded []domain.TaggedRef
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []domain.TaggedRef{domain.Ref(domain.TagCart), domain.RefID(domain.TagUser, "u1")}, decoded)

	_, err = json.Marshal(domain.TaggedRef{})
	require.Error(t, err)
}

func TestAllTags(t *testing.T) {
	tags := domain.AllTags()
	require.NotEmpty(t, tags)
	assert.Equal(t, domain.TagProducts, tags[0])
	assert.True(t, slices.Contains(tags, domain.TagNotifications))
	for _, tag := range tags {
		assert.True(t, tag.Valid())
		parsed, err := domain.ParseTag(tag.String())
		require.NoError(t, err)
		assert.Equal(t, tag, parsed)
	}
	assert.False(t, domain.Tag(0).Valid())
}

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.Status
		want     bool
	}{
		{domain.StatusUninitialized, domain.StatusLoading, true},
		{domain.StatusUninitialized, domain.StatusSuccess, false},
		{domain.StatusUninitialized, domain.StatusError, false},
		{domain.StatusLoading, domain.StatusSuccess, true},
		{domain.StatusLoading, domain.StatusError, true},
		{domain.StatusLoading, domain.StatusLoading, false},
		{domain.StatusSuccess, domain.StatusLoading, true},
		{domain.StatusSuccess, domain.StatusError, false},
		{domain.StatusError, domain.StatusLoading, true},
		{domain.StatusSuccess, domain.StatusUninitialized, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestParseStatus(t *testing.T) {
	st, ok := domain.ParseStatus("success")
	assert.True(t, ok)
	assert.Equal(t, domain.StatusSuccess, st)

	_, ok = domain.ParseStatus("done")
	assert.False(t, ok)
}

func TestArgs(t *testing.T) {
	args := domain.Args{
		"id":       "o1",
		"quantity": 2,
		"wide":     int64(3),
		"json":     float64(4),
		"number":   json.Number("5"),
		"price":    "24.50",
		"gift":     true,
	}

	assert.Equal(t, "o1", args.String("id"))
	assert.Equal(t, "2", args.String("quantity"))
	assert.Empty(t, args.String("missing"))

	for key, want := range map[string]int{"quantity": 2, "wide": 3, "json": 4, "number": 5} {
		got, ok := args.Int(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	_, ok := args.Int("id")
	assert.False(t, ok)

	price, ok := args.Decimal("price")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("24.5").Equal(price))
	_, ok = args.Decimal("id")
	assert.False(t, ok)

	assert.True(t, args.Bool("gift"))
	assert.False(t, args.Bool("id"))
}

func TestArgs_Canonical(t *testing.T) {
	a, err := domain.Args{"b": 1, "a": "x"}.Canonical()
	require.NoError(t, err)
	b, err := domain.Args{"a": "x", "b": 1}.Canonical()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	empty, err := domain.Args(nil).Canonical()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))

	_, err = domain.Args{"bad": func() {}}.Canonical()
	require.Error(t, err)
}

func TestArgs_Clone(t *testing.T) {
	orig := domain.Args{"id": "o1"}
	clone := orig.Clone()
	clone["id"] = "o2"
	assert.Equal(t, "o1", orig.String("id"))
	assert.Nil(t, domain.Args(nil).Clone())
}

func TestStep_Validate(t *testing.T) {
	tests := []struct {
		name    string
		step    domain.Step
		wantErr bool
	}{
		{"subscribe", domain.Step{Name: "s", Kind: domain.StepSubscribe, Endpoint: "orders:get"}, false},
		{"subscribe without endpoint", domain.Step{Name: "s", Kind: domain.StepSubscribe}, true},
		{"expect without expectation", domain.Step{Name: "e", Kind: domain.StepExpect, Endpoint: "orders:get"}, true},
		{"unsubscribe without target", domain.Step{Name: "u", Kind: domain.StepUnsubscribe}, true},
		{"invalidate without refs", domain.Step{Name: "i", Kind: domain.StepInvalidate}, true},
		{"sleep", domain.Step{Name: "z", Kind: domain.StepSleep, Duration: time.Second}, false},
		{"sleep without duration", domain.Step{Name: "z", Kind: domain.StepSleep}, true},
		{"unknown kind", domain.Step{Name: "x", Kind: "teleport"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.step.Validate()
			if tt.wantErr {
				require.ErrorContains(t, err, domain.ErrInvalidStep.Error())
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestScenario_Walk(t *testing.T) {
	sc := domain.NewScenario("checkout")
	require.NoError(t, sc.AddStep(&domain.Step{Name: "view", Kind: domain.StepSubscribe, Endpoint: "cart:get"}))
	require.NoError(t, sc.AddStep(&domain.Step{
		Name: "add", Kind: domain.StepMutate, Endpoint: "cart:addItem", After: []string{"view"},
	}))
	require.NoError(t, sc.AddStep(&domain.Step{Name: "leave", Kind: domain.StepUnsubscribe, Target: "view"}))
	require.NoError(t, sc.Validate())

	var order []string
	for step := range sc.Walk() {
		order = append(order, step.Name)
	}
	assert.Equal(t, []string{"view", "add", "leave"}, order)
	assert.Equal(t, []string{"view"}, sc.Dependencies("leave"))
	assert.Nil(t, sc.Dependencies("ghost"))
}

func TestScenario_Errors(t *testing.T) {
	t.Run("duplicate", func(t *testing.T) {
		sc := domain.NewScenario("dup")
		require.NoError(t, sc.AddStep(&domain.Step{Name: "a", Kind: domain.StepSleep, Duration: time.Second}))
		err := sc.AddStep(&domain.Step{Name: "a", Kind: domain.StepSleep, Duration: time.Second})
		require.ErrorContains(t, err, domain.ErrStepAlreadyExists.Error())
	})

	t.Run("missing dependency", func(t *testing.T) {
		sc := domain.NewScenario("missing")
		require.NoError(t, sc.AddStep(&domain.Step{
			Name: "a", Kind: domain.StepSleep, Duration: time.Second, After: []string{"ghost"},
		}))
		require.ErrorContains(t, sc.Validate(), domain.ErrMissingDependency.Error())
	})

	t.Run("cycle", func(t *testing.T) {
		sc := domain.NewScenario("cycle")
		require.NoError(t, sc.AddStep(&domain.Step{
			Name: "a", Kind: domain.StepSleep, Duration: time.Second, After: []string{"b"},
		}))
		require.NoError(t, sc.AddStep(&domain.Step{
			Name: "b", Kind: domain.StepSleep, Duration: time.Second, After: []string{"a"},
		}))
		require.ErrorContains(t, sc.Validate(), domain.ErrCycleDetected.Error())
	})
}
