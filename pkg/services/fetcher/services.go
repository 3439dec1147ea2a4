package fetcher

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticache"
	ectypes "github.com/aws/aws-sdk-go-v2/service/elasticache/types"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	elbtypes "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/samber/lo"
)

func (f *AWSFetcher) LoadBalancers(ctx context.Context) ([]*domain.LoadBalancer, error) {
	return eachLocation(ctx, f.locator.Locations(ctx), func(ctx context.Context, loc domain.Location) ([]*domain.LoadBalancer, error) {
		client, err := f.clients.LoadBalancing(ctx, loc)
		if err != nil {
			return nil, err
		}

		var lbs []*domain.LoadBalancer
		paginator := elasticloadbalancing.NewDescribeLoadBalancersPaginator(client, &elasticloadbalancing.DescribeLoadBalancersInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to describe load balancers: %w", err)
			}
			for _, desc := range page.LoadBalancerDescriptions {
				lbs = append(lbs, mapLoadBalancer(desc, loc))
			}
		}
		return lbs, nil
	})
}

func (f *AWSFetcher) Databases(ctx context.Context) ([]*domain.Database, error) {
	return eachLocation(ctx, f.locator.Locations(ctx), func(ctx context.Context, loc domain.Location) ([]*domain.Database, error) {
		client, err := f.clients.RDS(ctx, loc)
		if err != nil {
			return nil, err
		}

		var dbs []*domain.Database
		paginator := rds.NewDescribeDBInstancesPaginator(client, &rds.DescribeDBInstancesInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to describe RDS instances: %w", err)
			}
			for _, instance := range page.DBInstances {
				dbs = append(dbs, mapDatabase(instance, loc))
			}
		}
		return dbs, nil
	})
}

func (f *AWSFetcher) Caches(ctx context.Context) ([]*domain.Cache, error) {
	return eachLocation(ctx, f.locator.Locations(ctx), func(ctx context.Context, loc domain.Location) ([]*domain.Cache, error) {
		client, err := f.clients.ElastiCache(ctx, loc)
		if err != nil {
			return nil, err
		}

		var caches []*domain.Cache
		paginator := elasticache.NewDescribeCacheClustersPaginator(client, &elasticache.DescribeCacheClustersInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to describe cache clusters: %w", err)
			}
			for _, cluster := range page.CacheClusters {
				caches = append(caches, mapCache(cluster, loc))
			}
		}
		return caches, nil
	})
}

// Stacks returns every stack with the physical ids of the resources it declares.
func (f *AWSFetcher) Stacks(ctx context.Context) ([]*domain.InfrastructureStack, error) {
	return eachLocation(ctx, f.locator.Locations(ctx), func(ctx context.Context, loc domain.Location) ([]*domain.InfrastructureStack, error) {
		client, err := f.clients.CloudFormation(ctx, loc)
		if err != nil {
			return nil, err
		}

		var stacks []*domain.InfrastructureStack
		paginator := cloudformation.NewDescribeStacksPaginator(client, &cloudformation.DescribeStacksInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to describe stacks: %w", err)
			}
			for _, s := range page.Stacks {
				stack := mapStack(s, loc)
				ids, err := stackResourceIDs(ctx, client, stack.Name)
				if err != nil {
					return nil, err
				}
				stack.ResourceIDs = ids
				stacks = append(stacks, stack)
			}
		}
		return stacks, nil
	})
}

func stackResourceIDs(ctx context.Context, client CloudFormationAPI, stackName string) ([]string, error) {
	var ids []string
	paginator := cloudformation.NewListStackResourcesPaginator(client, &cloudformation.ListStackResourcesInput{
		StackName: aws.String(stackName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list resources of stack %s: %w", stackName, err)
		}
		for _, summary := range page.StackResourceSummaries {
			if id := aws.ToString(summary.PhysicalResourceId); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func mapLoadBalancer(desc elbtypes.LoadBalancerDescription, loc domain.Location) *domain.LoadBalancer {
	dnsName := aws.ToString(desc.DNSName)
	lb := &domain.LoadBalancer{
		ResourceBase: domain.ResourceBase{ID: dnsName, Location: loc},
		Name:         aws.ToString(desc.LoadBalancerName),
		DNSName:      dnsName,
		InstanceIDs: lo.FilterMap(desc.Instances, func(i elbtypes.Instance, _ int) (string, bool) {
			return aws.ToString(i.InstanceId), i.InstanceId != nil
		}),
	}

	lb.HTTPPort = instancePortFor(desc.ListenerDescriptions, 80)
	lb.HTTPSPort = instancePortFor(desc.ListenerDescriptions, 443)
	return lb
}

func instancePortFor(listeners []elbtypes.ListenerDescription, port int32) int {
	for _, ld := range listeners {
		if ld.Listener != nil && ld.Listener.LoadBalancerPort == port {
			return int(aws.ToInt32(ld.Listener.InstancePort))
		}
	}
	return 0
}

func mapDatabase(instance rdstypes.DBInstance, loc domain.Location) *domain.Database {
	db := &domain.Database{
		ResourceBase:  domain.ResourceBase{ID: aws.ToString(instance.DBInstanceIdentifier), Location: loc},
		Class:         aws.ToString(instance.DBInstanceClass),
		Engine:        aws.ToString(instance.Engine),
		EngineVersion: aws.ToString(instance.EngineVersion),
		MultiAZ:       aws.ToBool(instance.MultiAZ),
		StorageGB:     int(aws.ToInt32(instance.AllocatedStorage)),
		Status:        aws.ToString(instance.DBInstanceStatus),
	}
	if instance.Endpoint != nil {
		db.Endpoint = fmt.Sprintf("%s:%d", aws.ToString(instance.Endpoint.Address), aws.ToInt32(instance.Endpoint.Port))
	}
	return db
}

func mapCache(cluster ectypes.CacheCluster, loc domain.Location) *domain.Cache {
	cache := &domain.Cache{
		ResourceBase:  domain.ResourceBase{ID: aws.ToString(cluster.CacheClusterId), Location: loc},
		NodeType:      aws.ToString(cluster.CacheNodeType),
		Engine:        aws.ToString(cluster.Engine),
		EngineVersion: aws.ToString(cluster.EngineVersion),
		Status:        aws.ToString(cluster.CacheClusterStatus),
		NodeCount:     int(aws.ToInt32(cluster.NumCacheNodes)),
	}
	if cluster.ConfigurationEndpoint != nil {
		cache.Endpoint = fmt.Sprintf("%s:%d",
			aws.ToString(cluster.ConfigurationEndpoint.Address),
			aws.ToInt32(cluster.ConfigurationEndpoint.Port),
		)
	}
	return cache
}

func mapStack(s cftypes.Stack, loc domain.Location) *domain.InfrastructureStack {
	return &domain.InfrastructureStack{
		ResourceBase: domain.ResourceBase{ID: aws.ToString(s.StackId), Location: loc},
		Name:         aws.ToString(s.StackName),
		Status:       string(s.StackStatus),
		CreatedAt:    aws.ToTime(s.CreationTime),
	}
}
