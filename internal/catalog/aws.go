package catalog

// AWS returns the built-in catalog of AWS services.
func AWS() *Catalog {
	c, err := New(
		ec2(), ecs(), lambda(),
		s3(), rds(), elasticache(),
		vpc(), elb(), route53(), cloudfront(),
		iam(), acm(), waf(), secretsManager(),
		cloudFormation(), cloudWatch(), eventBridge(),
		sns(), sqs(), ses(),
		ecr(),
	)
	if err != nil {
		panic(err)
	}
	return c
}

func ec2() Service {
	return NewBuilder("ec2", Compute, RegionalPolicy).
		Batch("ec2",
			Entry("instances", "ec2", "describe-instances"),
			Entry("vpcs", "ec2", "describe-vpcs"),
			Entry("subnets", "ec2", "describe-subnets"),
			Entry("route-tables", "ec2", "describe-route-tables"),
			Entry("internet-gateways", "ec2", "describe-internet-gateways"),
			Entry("nat-gateways", "ec2", "describe-nat-gateways"),
			Entry("network-acls", "ec2", "describe-network-acls"),
			Entry("security-groups", "ec2", "describe-security-groups"),
			Entry("vpc-endpoints", "ec2", "describe-vpc-endpoints"),
			Entry("elastic-ips", "ec2", "describe-addresses"),
			Entry("volumes", "ec2", "describe-volumes"),
			Entry("snapshots", "ec2", "describe-snapshots", "--owner-ids", "self"),
			Entry("images", "ec2", "describe-images", "--owners", "self"),
			Entry("key-pairs", "ec2", "describe-key-pairs"),
			Entry("network-interfaces", "ec2", "describe-network-interfaces"),
			Entry("launch-templates", "ec2", "describe-launch-templates"),
			Entry("auto-scaling-groups", "autoscaling", "describe-auto-scaling-groups"),
			Entry("placement-groups", "ec2", "describe-placement-groups"),
			Entry("vpc-peering-connections", "ec2", "describe-vpc-peering-connections"),
			Entry("transit-gateway-attachments", "ec2", "describe-transit-gateway-attachments"),
			Entry("vpn-connections", "ec2", "describe-vpn-connections"),
			Entry("customer-gateways", "ec2", "describe-customer-gateways"),
		).
		MustBuild()
}

func ecs() Service {
	return NewBuilder("ecs", Compute, RegionalPolicy).
		ListThenEnrich("clusters",
			NewOperation("ecs", "list-clusters", "--query", "{clusters: clusterArns[].{clusterArn: @}}"),
			"clusters", "clusterArn", 5,
			Detail("Services", "ecs", "list-services", "--cluster"),
			Detail("Tasks", "ecs", "list-tasks", "--cluster"),
			Detail("ContainerInstances", "ecs", "list-container-instances", "--cluster"),
			DetailOp("Details", "ecs", "describe-clusters", "--clusters", Placeholder,
				"--include", "ATTACHMENTS", "SETTINGS", "STATISTICS", "TAGS"),
		).
		PlainList("task-definitions", "ecs", "list-task-definitions").
		PlainList("capacity-providers", "ecs", "describe-capacity-providers").
		MustBuild()
}

func lambda() Service {
	return NewBuilder("lambda", Compute, RegionalPolicy).
		ListThenEnrich("functions",
			NewOperation("lambda", "list-functions"),
			"Functions", "FunctionName", 10,
			Detail("Configuration", "lambda", "get-function-configuration", "--function-name"),
			Detail("Aliases", "lambda", "list-aliases", "--function-name"),
			Detail("Versions", "lambda", "list-versions-by-function", "--function-name"),
			Detail("EventSourceMappings", "lambda", "list-event-source-mappings", "--function-name"),
			Detail("FunctionUrlConfig", "lambda", "get-function-url-config", "--function-name"),
			Detail("Concurrency", "lambda", "get-function-concurrency", "--function-name"),
		).
		PlainList("layers", "lambda", "list-layers").
		PlainList("code-signing-configs", "lambda", "list-code-signing-configs").
		MustBuild()
}

func s3() Service {
	bucket := func(field, action string) DetailTemplate {
		return Detail(field, "s3api", action, "--bucket")
	}
	return NewBuilder("s3", Storage, FixedPolicy("us-east-1")).
		ListThenEnrich("buckets",
			NewOperation("s3api", "list-buckets"),
			"Buckets", "Name", 5,
			bucket("Location", "get-bucket-location"),
			bucket("Versioning", "get-bucket-versioning"),
			bucket("Encryption", "get-bucket-encryption"),
			bucket("Lifecycle", "get-bucket-lifecycle-configuration"),
			bucket("Logging", "get-bucket-logging"),
			bucket("Tags", "get-bucket-tagging"),
			bucket("ACL", "get-bucket-acl"),
			bucket("Policy", "get-bucket-policy"),
			bucket("CORS", "get-bucket-cors"),
			bucket("Website", "get-bucket-website"),
			bucket("PublicAccessBlock", "get-public-access-block"),
			bucket("Replication", "get-bucket-replication"),
			bucket("NotificationConfiguration", "get-bucket-notification-configuration"),
			bucket("InventoryConfigurations", "list-bucket-inventory-configurations"),
			bucket("AnalyticsConfigurations", "list-bucket-analytics-configurations"),
			bucket("MetricsConfigurations", "list-bucket-metrics-configurations"),
			bucket("IntelligentTieringConfigurations", "list-bucket-intelligent-tiering-configurations"),
			bucket("ObjectLockConfiguration", "get-object-lock-configuration"),
		).
		MustBuild()
}

func rds() Service {
	return NewBuilder("rds", Storage, RegionalPolicy).
		Batch("rds",
			Entry("db-instances", "rds", "describe-db-instances"),
			Entry("db-clusters", "rds", "describe-db-clusters"),
			Entry("db-snapshots", "rds", "describe-db-snapshots"),
			Entry("db-cluster-snapshots", "rds", "describe-db-cluster-snapshots"),
			Entry("db-subnet-groups", "rds", "describe-db-subnet-groups"),
			Entry("db-parameter-groups", "rds", "describe-db-parameter-groups"),
			Entry("db-cluster-parameter-groups", "rds", "describe-db-cluster-parameter-groups"),
			Entry("option-groups", "rds", "describe-option-groups"),
			Entry("db-security-groups", "rds", "describe-db-security-groups"),
			Entry("db-proxies", "rds", "describe-db-proxies"),
			Entry("event-subscriptions", "rds", "describe-event-subscriptions"),
			Entry("reserved-db-instances", "rds", "describe-reserved-db-instances"),
		).
		MustBuild()
}

func elasticache() Service {
	return NewBuilder("elasticache", Storage, RegionalPolicy).
		Batch("elasticache",
			Entry("cache-clusters", "elasticache", "describe-cache-clusters"),
			Entry("replication-groups", "elasticache", "describe-replication-groups"),
			Entry("cache-subnet-groups", "elasticache", "describe-cache-subnet-groups"),
			Entry("cache-parameter-groups", "elasticache", "describe-cache-parameter-groups"),
			Entry("cache-security-groups", "elasticache", "describe-cache-security-groups"),
			Entry("snapshots", "elasticache", "describe-snapshots"),
			Entry("user-groups", "elasticache", "describe-user-groups"),
		).
		MustBuild()
}

func vpc() Service {
	return NewBuilder("vpc", Networking, RegionalPolicy).
		Batch("vpc",
			Entry("vpcs", "ec2", "describe-vpcs"),
			Entry("subnets", "ec2", "describe-subnets"),
			Entry("route-tables", "ec2", "describe-route-tables"),
			Entry("internet-gateways", "ec2", "describe-internet-gateways"),
			Entry("nat-gateways", "ec2", "describe-nat-gateways"),
			Entry("network-acls", "ec2", "describe-network-acls"),
			Entry("vpc-endpoints", "ec2", "describe-vpc-endpoints"),
			Entry("vpc-peering-connections", "ec2", "describe-vpc-peering-connections"),
			Entry("vpn-gateways", "ec2", "describe-vpn-gateways"),
			Entry("customer-gateways", "ec2", "describe-customer-gateways"),
		).
		MustBuild()
}

func elb() Service {
	return NewBuilder("elb", Networking, RegionalPolicy).
		Alias("elbv2").
		PlainList("classic-load-balancers", "elb", "describe-load-balancers").
		ListThenEnrich("load-balancers",
			NewOperation("elbv2", "describe-load-balancers"),
			"LoadBalancers", "LoadBalancerArn", 5,
			Detail("Attributes", "elbv2", "describe-load-balancer-attributes", "--load-balancer-arn"),
			Detail("Tags", "elbv2", "describe-tags", "--resource-arns"),
			Detail("Listeners", "elbv2", "describe-listeners", "--load-balancer-arn"),
		).
		ListThenEnrich("target-groups",
			NewOperation("elbv2", "describe-target-groups"),
			"TargetGroups", "TargetGroupArn", 5,
			Detail("TargetHealth", "elbv2", "describe-target-health", "--target-group-arn"),
			Detail("Attributes", "elbv2", "describe-target-group-attributes", "--target-group-arn"),
		).
		MustBuild()
}

func route53() Service {
	return NewBuilder("route53", Networking, GlobalPolicy).
		ListThenEnrich("hosted-zones",
			NewOperation("route53", "list-hosted-zones"),
			"HostedZones", "Id", 5,
			Detail("RecordSets", "route53", "list-resource-record-sets", "--hosted-zone-id"),
			DetailOp("Tags", "route53", "list-tags-for-resource",
				"--resource-type", "hostedzone", "--resource-id", Placeholder),
		).
		PlainList("health-checks", "route53", "list-health-checks").
		PlainList("traffic-policies", "route53", "list-traffic-policies").
		MustBuild()
}

func cloudfront() Service {
	return NewBuilder("cloudfront", Networking, GlobalPolicy).
		ListThenEnrich("distributions",
			NewOperation("cloudfront", "list-distributions", "--query", "{Items: DistributionList.Items}"),
			"Items", "Id", 5,
			Detail("Config", "cloudfront", "get-distribution-config", "--id"),
		).
		PlainList("origin-access-identities", "cloudfront", "list-cloud-front-origin-access-identities").
		PlainList("cache-policies", "cloudfront", "list-cache-policies").
		PlainList("origin-request-policies", "cloudfront", "list-origin-request-policies").
		PlainList("response-headers-policies", "cloudfront", "list-response-headers-policies").
		PlainList("functions", "cloudfront", "list-functions").
		MustBuild()
}

func iam() Service {
	return NewBuilder("iam", Security, GlobalPolicy).
		PlainList("users", "iam", "list-users").
		PlainList("roles", "iam", "list-roles").
		PlainList("groups", "iam", "list-groups").
		PlainList("policies", "iam", "list-policies", "--scope", "Local").
		PlainList("saml-providers", "iam", "list-saml-providers").
		PlainList("oidc-providers", "iam", "list-open-id-connect-providers").
		PlainList("instance-profiles", "iam", "list-instance-profiles").
		PlainList("password-policy", "iam", "get-account-password-policy").
		MustBuild()
}

func acm() Service {
	return NewBuilder("acm", Security, RegionalPolicy).
		ListThenEnrich("certificates",
			NewOperation("acm", "list-certificates"),
			"CertificateSummaryList", "CertificateArn", 5,
			Detail("Certificate", "acm", "describe-certificate", "--certificate-arn"),
			Detail("Tags", "acm", "list-tags-for-certificate", "--certificate-arn"),
		).
		MustBuild()
}

func waf() Service {
	return NewBuilder("waf", Security, RegionalPolicy).
		Alias("wafv2").
		PlainList("web-acls-regional", "wafv2", "list-web-acls", "--scope", "REGIONAL").
		PlainList("ip-sets", "wafv2", "list-ip-sets", "--scope", "REGIONAL").
		PlainList("regex-pattern-sets", "wafv2", "list-regex-pattern-sets", "--scope", "REGIONAL").
		PlainList("rule-groups", "wafv2", "list-rule-groups", "--scope", "REGIONAL").
		PlainList("web-acls-cloudfront", "wafv2", "list-web-acls", "--scope", "CLOUDFRONT").
		Only("us-east-1").
		MustBuild()
}

func secretsManager() Service {
	return NewBuilder("secretsmanager", Security, RegionalPolicy).
		PlainList("secrets", "secretsmanager", "list-secrets").
		MustBuild()
}

func cloudFormation() Service {
	return NewBuilder("cloudformation", Management, RegionalPolicy).
		ListThenEnrich("stacks",
			NewOperation("cloudformation", "describe-stacks"),
			"Stacks", "StackName", 5,
			Detail("Resources", "cloudformation", "list-stack-resources", "--stack-name"),
			Detail("ChangeSets", "cloudformation", "list-change-sets", "--stack-name"),
		).
		PlainList("stack-sets", "cloudformation", "list-stack-sets").
		PlainList("exports", "cloudformation", "list-exports").
		MustBuild()
}

func cloudWatch() Service {
	return NewBuilder("cloudwatch", Management, RegionalPolicy).
		PlainList("alarms", "cloudwatch", "describe-alarms").
		PlainList("dashboards", "cloudwatch", "list-dashboards").
		PlainList("metric-streams", "cloudwatch", "list-metric-streams").
		PlainList("insights-rules", "cloudwatch", "describe-insight-rules").
		ListThenEnrich("log-groups",
			NewOperation("logs", "describe-log-groups"),
			"logGroups", "logGroupName", 10,
			Detail("MetricFilters", "logs", "describe-metric-filters", "--log-group-name"),
			Detail("SubscriptionFilters", "logs", "describe-subscription-filters", "--log-group-name"),
		).
		MustBuild()
}

func eventBridge() Service {
	return NewBuilder("eventbridge", Management, RegionalPolicy).
		Alias("events").
		ListThenEnrich("event-buses",
			NewOperation("events", "list-event-buses"),
			"EventBuses", "Name", 5,
			Detail("Rules", "events", "list-rules", "--event-bus-name"),
		).
		MustBuild()
}

func sns() Service {
	return NewBuilder("sns", Integration, RegionalPolicy).
		ListThenEnrich("topics",
			NewOperation("sns", "list-topics"),
			"Topics", "TopicArn", 10,
			Detail("Attributes", "sns", "get-topic-attributes", "--topic-arn"),
			Detail("Subscriptions", "sns", "list-subscriptions-by-topic", "--topic-arn"),
			Detail("Tags", "sns", "list-tags-for-resource", "--resource-arn"),
		).
		PlainList("platform-applications", "sns", "list-platform-applications").
		MustBuild()
}

func sqs() Service {
	return NewBuilder("sqs", Integration, RegionalPolicy).
		ListThenEnrich("queues",
			NewOperation("sqs", "list-queues", "--query", "{Queues: QueueUrls[].{QueueUrl: @}}"),
			"Queues", "QueueUrl", 10,
			DetailOp("Attributes", "sqs", "get-queue-attributes", "--queue-url", Placeholder, "--attribute-names", "All"),
			Detail("Tags", "sqs", "list-queue-tags", "--queue-url"),
		).
		MustBuild()
}

func ses() Service {
	return NewBuilder("ses", Integration, RegionalPolicy).
		PlainList("identities", "ses", "list-identities").
		PlainList("configuration-sets", "ses", "list-configuration-sets").
		PlainList("receipt-rule-sets", "ses", "list-receipt-rule-sets").
		PlainList("templates", "ses", "list-templates").
		PlainList("custom-verification-email-templates", "ses", "list-custom-verification-email-templates").
		MustBuild()
}

func ecr() Service {
	return NewBuilder("ecr", DevTools, RegionalPolicy).
		ListThenEnrich("repositories",
			NewOperation("ecr", "describe-repositories"),
			"repositories", "repositoryName", 10,
			Detail("Images", "ecr", "list-images", "--repository-name"),
			Detail("LifecyclePolicy", "ecr", "get-lifecycle-policy", "--repository-name"),
			Detail("RepositoryPolicy", "ecr", "get-repository-policy", "--repository-name"),
		).
		MustBuild()
}
