package collect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudcollector/internal/catalog"
)

func taskNames(tasks []Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.String()
	}
	return out
}

func TestPlan(t *testing.T) {
	services := []catalog.Service{
		catalog.NewBuilder("ec2", catalog.Compute, catalog.RegionalPolicy).
			PlainList("vpcs", "ec2", "describe-vpcs").MustBuild(),
		catalog.NewBuilder("iam", catalog.Security, catalog.GlobalPolicy).
			PlainList("users", "iam", "list-users").MustBuild(),
		catalog.NewBuilder("s3", catalog.Storage, catalog.FixedPolicy("us-east-1")).
			PlainList("buckets", "s3api", "list-buckets").MustBuild(),
		catalog.NewBuilder("waf", catalog.Security, catalog.RegionalPolicy).Alias("wafv2").
			PlainList("web-acls-regional", "wafv2", "list-web-acls", "--scope", "REGIONAL").
			PlainList("web-acls-cloudfront", "wafv2", "list-web-acls", "--scope", "CLOUDFRONT").
			Only("us-east-1").
			MustBuild(),
	}
	partitions := []string{"eu-west-1", "us-east-1", "ap-southeast-1"}

	tests := []struct {
		name string
		opts PlanOptions
		want []string
	}{
		{
			name: "every service everywhere",
			want: []string{
				"ec2/eu-west-1/vpcs", "ec2/us-east-1/vpcs", "ec2/ap-southeast-1/vpcs",
				"iam/global/users",
				"s3/us-east-1/buckets",
				"waf/eu-west-1/web-acls-regional",
				"waf/us-east-1/web-acls-regional", "waf/us-east-1/web-acls-cloudfront",
				"waf/ap-southeast-1/web-acls-regional",
			},
		},
		{
			name: "region services limit extra partitions",
			opts: PlanOptions{RegionServices: []string{" WAFv2 ", "iam"}},
			want: []string{
				"ec2/eu-west-1/vpcs",
				"iam/global/users",
				"s3/us-east-1/buckets",
				"waf/eu-west-1/web-acls-regional",
				"waf/us-east-1/web-acls-regional", "waf/us-east-1/web-acls-cloudfront",
				"waf/ap-southeast-1/web-acls-regional",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, taskNames(Plan(services, partitions, tt.opts)))
		})
	}
}

func TestPlanNoPartitions(t *testing.T) {
	svc := catalog.NewBuilder("ec2", catalog.Compute, catalog.RegionalPolicy).PlainList("vpcs", "ec2", "describe-vpcs").MustBuild()
	assert.Empty(t, Plan([]catalog.Service{svc}, nil, PlanOptions{}))
}

func TestExpand(t *testing.T) {
	batch := Task{Service: "rds", Partition: "eu-west-1", ResourceType: "rds", Mode: catalog.IndependentBatch{Operations: []catalog.NamedOperation{
		catalog.Entry("db-instances", "rds", "describe-db-instances"),
		catalog.Entry("db-clusters", "rds", "describe-db-clusters"),
	}}}
	plain := Task{Service: "iam", Partition: "global", ResourceType: "users", Mode: catalog.PlainList{Operation: catalog.NewOperation("iam", "list-users")}}

	got := Expand([]Task{batch, plain})

	require.Len(t, got, 3)
	assert.Equal(t, "rds/eu-west-1/db-instances", got[0].String())
	assert.Equal(t, "rds", got[0].Group)
	pl, ok := got[1].Mode.(catalog.PlainList)
	require.True(t, ok)
	assert.Equal(t, []string{"rds", "describe-db-clusters"}, pl.Operation.Args())
	assert.Equal(t, plain, got[2])
}

func TestPlanAWSCatalog(t *testing.T) {
	services := catalog.AWS().Services()
	single := Plan(services, []string{"eu-west-1"}, PlanOptions{})
	double := Plan(services, []string{"eu-west-1", "eu-central-1"}, PlanOptions{})

	// waf cloudfront scope only runs in us-east-1; global and fixed services
	// are not repeated for the second region
	var perRegion, once int
	for _, svc := range services {
		if svc.Policy.PerPartition() {
			perRegion += len(svc.Resources)
		} else {
			once += len(svc.Resources)
		}
	}
	perRegion-- // web-acls-cloudfront
	assert.Len(t, single, perRegion+once)
	assert.Len(t, double, 2*perRegion+once)
}
