package fetcher

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/support"
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/de-tools/fleet-atlas/pkg/services/accounts"
)

type EC2API interface {
	ec2.DescribeInstancesAPIClient
	ec2.DescribeVolumesAPIClient
	ec2.DescribeSubnetsAPIClient
	ec2.DescribeSpotInstanceRequestsAPIClient
	DescribeReservedInstances(
		ctx context.Context,
		params *ec2.DescribeReservedInstancesInput,
		optFns ...func(*ec2.Options),
	) (*ec2.DescribeReservedInstancesOutput, error)
}

type LoadBalancingAPI interface {
	elasticloadbalancing.DescribeLoadBalancersAPIClient
}

type RDSAPI interface {
	rds.DescribeDBInstancesAPIClient
}

type ElastiCacheAPI interface {
	elasticache.DescribeCacheClustersAPIClient
}

type CloudFormationAPI interface {
	cloudformation.DescribeStacksAPIClient
	cloudformation.ListStackResourcesAPIClient
}

type Route53API interface {
	route53.ListHostedZonesAPIClient
	ListResourceRecordSets(
		ctx context.Context,
		params *route53.ListResourceRecordSetsInput,
		optFns ...func(*route53.Options),
	) (*route53.ListResourceRecordSetsOutput, error)
}

type SupportAPI interface {
	DescribeTrustedAdvisorChecks(
		ctx context.Context,
		params *support.DescribeTrustedAdvisorChecksInput,
		optFns ...func(*support.Options),
	) (*support.DescribeTrustedAdvisorChecksOutput, error)
	DescribeTrustedAdvisorCheckResult(
		ctx context.Context,
		params *support.DescribeTrustedAdvisorCheckResultInput,
		optFns ...func(*support.Options),
	) (*support.DescribeTrustedAdvisorCheckResultOutput, error)
}

type CostExplorerAPI interface {
	GetCostAndUsage(
		ctx context.Context,
		params *costexplorer.GetCostAndUsageInput,
		optFns ...func(*costexplorer.Options),
	) (*costexplorer.GetCostAndUsageOutput, error)
}

// ClientFactory builds service clients for a location, or for an account when
// the service is global.
type ClientFactory interface {
	EC2(ctx context.Context, location domain.Location) (EC2API, error)
	LoadBalancing(ctx context.Context, location domain.Location) (LoadBalancingAPI, error)
	RDS(ctx context.Context, location domain.Location) (RDSAPI, error)
	ElastiCache(ctx context.Context, location domain.Location) (ElastiCacheAPI, error)
	CloudFormation(ctx context.Context, location domain.Location) (CloudFormationAPI, error)
	Route53(ctx context.Context, account string) (Route53API, error)
	Support(ctx context.Context, account string) (SupportAPI, error)
	CostExplorer(ctx context.Context, account string) (CostExplorerAPI, error)
}

type sdkClients struct {
	registry accounts.Registry
}

func NewClientFactory(registry accounts.Registry) ClientFactory {
	return &sdkClients{registry: registry}
}

func global(account string) domain.Location {
	return domain.Location{Account: account, Region: accounts.GlobalRegion}
}

func (c *sdkClients) EC2(ctx context.Context, location domain.Location) (EC2API, error) {
	cfg, err := c.registry.Config(ctx, location)
	if err != nil {
		return nil, err
	}
	return ec2.NewFromConfig(cfg), nil
}

func (c *sdkClients) LoadBalancing(ctx context.Context, location domain.Location) (LoadBalancingAPI, error) {
	cfg, err := c.registry.Config(ctx, location)
	if err != nil {
		return nil, err
	}
	return elasticloadbalancing.NewFromConfig(cfg), nil
}

func (c *sdkClients) RDS(ctx context.Context, location domain.Location) (RDSAPI, error) {
	cfg, err := c.registry.Config(ctx, location)
	if err != nil {
		return nil, err
	}
	return rds.NewFromConfig(cfg), nil
}

func (c *sdkClients) ElastiCache(ctx context.Context, location domain.Location) (ElastiCacheAPI, error) {
	cfg, err := c.registry.Config(ctx, location)
	if err != nil {
		return nil, err
	}
	return elasticache.NewFromConfig(cfg), nil
}

func (c *sdkClients) CloudFormation(ctx context.Context, location domain.Location) (CloudFormationAPI, error) {
	cfg, err := c.registry.Config(ctx, location)
	if err != nil {
		return nil, err
	}
	return cloudformation.NewFromConfig(cfg), nil
}

func (c *sdkClients) Route53(ctx context.Context, account string) (Route53API, error) {
	cfg, err := c.registry.Config(ctx, global(account))
	if err != nil {
		return nil, err
	}
	return route53.NewFromConfig(cfg), nil
}

func (c *sdkClients) Support(ctx context.Context, account string) (SupportAPI, error) {
	cfg, err := c.registry.Config(ctx, global(account))
	if err != nil {
		return nil, err
	}
	return support.NewFromConfig(cfg), nil
}

func (c *sdkClients) CostExplorer(ctx context.Context, account string) (CostExplorerAPI, error) {
	cfg, err := c.registry.Config(ctx, global(account))
	if err != nil {
		return nil, err
	}
	return costexplorer.NewFromConfig(cfg), nil
}
