package enrich

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudcollector/internal/catalog"
	"cloudcollector/internal/remote/remotetest"
)

var (
	tmplConfig = catalog.Detail("Config", "svc", "get-config", "--id")
	tmplTags   = catalog.Detail("Tags", "svc", "get-tags", "--id")
)

func op(tmpl catalog.DetailTemplate, id, partition string) catalog.Operation {
	return tmpl.For(id).Bind(partition)
}

func TestAugment(t *testing.T) {
	fake := remotetest.New().
		On(op(tmplConfig, "a", "eu-west-1"), map[string]any{"size": "m"}).
		On(op(tmplTags, "a", "eu-west-1"), map[string]any{"Tags": []any{}}).
		On(op(tmplConfig, "b", "eu-west-1"), map[string]any{"size": "l"}).
		Fail(op(tmplTags, "b", "eu-west-1"))
	aug := New(fake, nil)
	templates := []catalog.DetailTemplate{tmplConfig, tmplTags}

	tests := []struct {
		name string
		base any
		id   string
		want any
	}{
		{
			name: "all details succeed",
			base: map[string]any{"id": "a"},
			id:   "a",
			want: map[string]any{
				"id":     "a",
				"Config": map[string]any{"size": "m"},
				"Tags":   map[string]any{"Tags": []any{}},
			},
		},
		{
			name: "failed detail leaves field absent",
			base: map[string]any{"id": "b"},
			id:   "b",
			want: map[string]any{
				"id":     "b",
				"Config": map[string]any{"size": "l"},
			},
		},
		{
			name: "every detail fails",
			base: map[string]any{"id": "zzz"},
			id:   "zzz",
			want: map[string]any{"id": "zzz"},
		},
		{
			name: "empty identifier",
			base: map[string]any{"id": ""},
			id:   "",
			want: map[string]any{"id": ""},
		},
		{
			name: "non-object base",
			base: "arn:aws:sqs:eu-west-1:1:q",
			id:   "a",
			want: "arn:aws:sqs:eu-west-1:1:q",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := aug.Augment(context.Background(), tt.base, tt.id, templates, "eu-west-1")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAugmentDoesNotModifyBase(t *testing.T) {
	fake := remotetest.New().On(op(tmplConfig, "a", "eu-west-1"), map[string]any{"size": "m"})
	base := map[string]any{"id": "a"}

	got := New(fake, nil).Augment(context.Background(), base, "a", []catalog.DetailTemplate{tmplConfig}, "eu-west-1")

	assert.Equal(t, map[string]any{"id": "a"}, base)
	assert.Contains(t, got, "Config")
}

func TestAugmentOrderIndependent(t *testing.T) {
	templates := []catalog.DetailTemplate{
		tmplConfig,
		tmplTags,
		catalog.Detail("Policy", "svc", "get-policy", "--id"),
		catalog.Detail("Metrics", "svc", "get-metrics", "--id"),
	}
	fake := remotetest.New()
	for i, tmpl := range templates {
		if i == 2 {
			fake.Fail(op(tmpl, "x", "us-east-1"))
			continue
		}
		fake.On(op(tmpl, "x", "us-east-1"), map[string]any{"from": tmpl.Field})
	}
	aug := New(fake, nil)
	base := map[string]any{"Name": "x"}

	want := aug.Augment(context.Background(), base, "x", templates, "us-east-1")
	permutations := [][]int{{3, 2, 1, 0}, {1, 3, 0, 2}, {2, 0, 3, 1}}
	for _, perm := range permutations {
		shuffled := make([]catalog.DetailTemplate, len(perm))
		for i, p := range perm {
			shuffled[i] = templates[p]
		}
		assert.Equal(t, want, aug.Augment(context.Background(), base, "x", shuffled, "us-east-1"), "permutation %v", perm)
	}
}

func TestAugmentBindsPartition(t *testing.T) {
	pinned := catalog.DetailOp("Location", "s3api", "get-bucket-location", "--bucket", catalog.Placeholder, "--region", "us-east-1")
	fake := remotetest.New().
		On(op(tmplConfig, "b1", "ap-southeast-1"), map[string]any{}).
		On(pinned.For("b1"), map[string]any{"LocationConstraint": nil})

	got := New(fake, nil).Augment(context.Background(), map[string]any{"Name": "b1"}, "b1",
		[]catalog.DetailTemplate{tmplConfig, pinned}, "ap-southeast-1")

	assert.Contains(t, got, "Config")
	assert.Contains(t, got, "Location")
	assert.Equal(t, 1, fake.CallCount(pinned.For("b1")))
	assert.Equal(t, 1, fake.CallCount(catalog.NewOperation("svc", "get-config", "--id", "b1", "--region", "ap-southeast-1")))
}

func TestAugmentConcurrencyCeiling(t *testing.T) {
	var templates []catalog.DetailTemplate
	fake := remotetest.New()
	fake.Delay = 20 * time.Millisecond
	for _, field := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		tmpl := catalog.Detail(field, "svc", "get-"+field, "--id")
		templates = append(templates, tmpl)
		fake.On(op(tmpl, "x", "eu-west-1"), map[string]any{})
	}

	aug := &Augmenter{Client: fake, Concurrency: 3}
	got := aug.Augment(context.Background(), map[string]any{}, "x", templates, "eu-west-1")

	assert.Len(t, got, 8)
	assert.LessOrEqual(t, fake.Peak(), 3)
}

func TestEnrichItem(t *testing.T) {
	fake := remotetest.New().
		On(op(tmplConfig, "fn", "eu-west-1"), map[string]any{"ok": true}).
		On(op(tmplConfig, "42", "eu-west-1"), map[string]any{"ok": true})
	aug := New(fake, nil)
	templates := []catalog.DetailTemplate{tmplConfig}

	got := aug.EnrichItem(context.Background(), map[string]any{"FunctionName": "fn"}, "FunctionName", templates, "eu-west-1")
	assert.Contains(t, got, "Config")

	got = aug.EnrichItem(context.Background(), map[string]any{"Id": json.Number("42")}, "Id", templates, "eu-west-1")
	assert.Contains(t, got, "Config")

	missing := map[string]any{"Other": "fn"}
	assert.Equal(t, missing, aug.EnrichItem(context.Background(), missing, "FunctionName", templates, "eu-west-1"))

	wrongType := map[string]any{"FunctionName": true}
	assert.Equal(t, wrongType, aug.EnrichItem(context.Background(), wrongType, "FunctionName", templates, "eu-west-1"))
}

func TestSteps(t *testing.T) {
	steps := Steps("q1", "global", []catalog.DetailTemplate{tmplConfig, tmplTags})
	require.Len(t, steps, 2)
	assert.Equal(t, []string{"svc", "get-config", "--id", "q1"}, steps[0].Operation.Args())
	assert.Equal(t, "Tags", steps[1].Field)
}
