package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudcollector/internal/errors"
)

func TestAWSCatalog(t *testing.T) {
	c := AWS()

	assert.Len(t, c.Names(), 21)

	for _, name := range []string{"iam", "route53", "cloudfront"} {
		svc, ok := c.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, GlobalPolicy, svc.Policy, name)
	}

	s3, ok := c.Lookup("s3")
	require.True(t, ok)
	assert.Equal(t, "us-east-1", s3.Policy.Resolve("eu-west-1"))

	for _, svc := range c.Services() {
		for _, rc := range svc.Resources {
			assert.NoError(t, ValidateResource(rc), "%s/%s", svc.Name, rc.ResourceType)
		}
	}
}

func TestCatalogLookupAliases(t *testing.T) {
	c := AWS()

	svc, ok := c.Lookup("ELBv2")
	require.True(t, ok)
	assert.Equal(t, "elb", svc.Name)

	_, ok = c.Lookup("nope")
	assert.False(t, ok)
}

func TestCatalogSelect(t *testing.T) {
	c := AWS()

	all, err := c.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 21)

	picked, err := c.Select([]string{"s3", "wafv2", "waf"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "s3", picked[0].Name)
	assert.Equal(t, "waf", picked[1].Name)

	_, err = c.Select([]string{"ec2", "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.NotEmpty(t, errors.FlattenHints(err))
}

func TestCatalogRejectsDuplicateNames(t *testing.T) {
	a := NewBuilder("a", Custom, RegionalPolicy).Alias("shared").PlainList("x", "a", "x").MustBuild()
	b := NewBuilder("b", Custom, RegionalPolicy).Alias("shared").PlainList("x", "b", "x").MustBuild()

	_, err := New(a, b)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestCatalogMerge(t *testing.T) {
	base := AWS()
	override := NewBuilder("sqs", Integration, RegionalPolicy).PlainList("queues", "sqs", "list-queues").MustBuild()
	extra := NewBuilder("kinesis", Custom, RegionalPolicy).PlainList("streams", "kinesis", "list-streams").MustBuild()

	merged, err := base.Merge(override, extra)
	require.NoError(t, err)

	names := merged.Names()
	assert.Len(t, names, 22)
	assert.Equal(t, "kinesis", names[len(names)-1])

	sqs, ok := merged.Lookup("sqs")
	require.True(t, ok)
	require.Len(t, sqs.Resources, 1)
	assert.Equal(t, "plain_list", sqs.Resources[0].Mode.Kind())

	// the original stays untouched
	orig, _ := base.Lookup("sqs")
	assert.Equal(t, "list_then_enrich", orig.Resources[0].Mode.Kind())
}

func TestCatalogByCategory(t *testing.T) {
	groups := AWS().ByCategory()

	require.Len(t, groups, 7)
	assert.Equal(t, Compute, groups[0].Category)
	assert.Equal(t, []string{"ec2", "ecs", "lambda"}, groups[0].Services)
	assert.Equal(t, DevTools, groups[6].Category)
	assert.Equal(t, []string{"ecr"}, groups[6].Services)

	total := 0
	for _, g := range groups {
		total += len(g.Services)
	}
	assert.Equal(t, 21, total)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("")
	require.NoError(t, err)
	assert.Equal(t, Custom, c)

	c, err = ParseCategory(" Networking ")
	require.NoError(t, err)
	assert.Equal(t, Networking, c)

	_, err = ParseCategory("quantum")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
