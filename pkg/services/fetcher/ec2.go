package fetcher

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/samber/lo"
)

func (f *AWSFetcher) RunningUnits(ctx context.Context) ([]*domain.RunningUnit, error) {
	return eachLocation(ctx, f.locator.Locations(ctx), func(ctx context.Context, loc domain.Location) ([]*domain.RunningUnit, error) {
		client, err := f.clients.EC2(ctx, loc)
		if err != nil {
			return nil, err
		}

		var units []*domain.RunningUnit
		paginator := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to describe EC2 instances: %w", err)
			}
			for _, reservation := range page.Reservations {
				for _, instance := range reservation.Instances {
					units = append(units, mapInstance(instance, loc))
				}
			}
		}
		return units, nil
	})
}

// Reservations returns active reserved instances only.
func (f *AWSFetcher) Reservations(ctx context.Context) ([]*domain.ReservedCapacity, error) {
	return eachLocation(ctx, f.locator.Locations(ctx), func(ctx context.Context, loc domain.Location) ([]*domain.ReservedCapacity, error) {
		client, err := f.clients.EC2(ctx, loc)
		if err != nil {
			return nil, err
		}

		resp, err := client.DescribeReservedInstances(ctx, &ec2.DescribeReservedInstancesInput{})
		if err != nil {
			return nil, fmt.Errorf("failed to describe reserved instances: %w", err)
		}

		reservations := lo.Map(resp.ReservedInstances, func(ri types.ReservedInstances, _ int) *domain.ReservedCapacity {
			return mapReservation(ri, loc)
		})
		return lo.Filter(reservations, func(r *domain.ReservedCapacity, _ int) bool {
			return r.Active()
		}), nil
	})
}

func (f *AWSFetcher) Volumes(ctx context.Context) ([]*domain.Volume, error) {
	return eachLocation(ctx, f.locator.Locations(ctx), func(ctx context.Context, loc domain.Location) ([]*domain.Volume, error) {
		client, err := f.clients.EC2(ctx, loc)
		if err != nil {
			return nil, err
		}

		var volumes []*domain.Volume
		paginator := ec2.NewDescribeVolumesPaginator(client, &ec2.DescribeVolumesInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to describe EBS volumes: %w", err)
			}
			for _, v := range page.Volumes {
				volumes = append(volumes, mapVolume(v, loc))
			}
		}
		return volumes, nil
	})
}

func (f *AWSFetcher) Subnets(ctx context.Context) ([]*domain.Subnet, error) {
	return eachLocation(ctx, f.locator.Locations(ctx), func(ctx context.Context, loc domain.Location) ([]*domain.Subnet, error) {
		client, err := f.clients.EC2(ctx, loc)
		if err != nil {
			return nil, err
		}

		var subnets []*domain.Subnet
		paginator := ec2.NewDescribeSubnetsPaginator(client, &ec2.DescribeSubnetsInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to describe subnets: %w", err)
			}
			for _, s := range page.Subnets {
				subnets = append(subnets, mapSubnet(s, loc))
			}
		}
		return subnets, nil
	})
}

func (f *AWSFetcher) SpotRequests(ctx context.Context) ([]*domain.SpotRequest, error) {
	return eachLocation(ctx, f.locator.Locations(ctx), func(ctx context.Context, loc domain.Location) ([]*domain.SpotRequest, error) {
		client, err := f.clients.EC2(ctx, loc)
		if err != nil {
			return nil, err
		}

		var requests []*domain.SpotRequest
		paginator := ec2.NewDescribeSpotInstanceRequestsPaginator(client, &ec2.DescribeSpotInstanceRequestsInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to describe spot requests: %w", err)
			}
			for _, r := range page.SpotInstanceRequests {
				requests = append(requests, mapSpotRequest(r, loc))
			}
		}
		return requests, nil
	})
}

func ec2Tags(tags []types.Tag) map[string]string {
	return lo.SliceToMap(tags, func(t types.Tag) (string, string) {
		return aws.ToString(t.Key), aws.ToString(t.Value)
	})
}

func mapInstance(instance types.Instance, loc domain.Location) *domain.RunningUnit {
	unit := domain.NewRunningUnit(aws.ToString(instance.InstanceId), loc, string(instance.InstanceType))

	if instance.State != nil {
		unit.State = string(instance.State.Name)
	}
	if instance.Placement != nil {
		unit.AvailabilityZone = aws.ToString(instance.Placement.AvailabilityZone)
	}
	if strings.EqualFold(string(instance.Platform), "windows") {
		unit.Platform = domain.PlatformWindows
	}

	unit.VpcID = aws.ToString(instance.VpcId)
	unit.SubnetID = aws.ToString(instance.SubnetId)
	unit.SpotRequestID = aws.ToString(instance.SpotInstanceRequestId)
	unit.PublicDNS = aws.ToString(instance.PublicDnsName)
	unit.PublicIP = aws.ToString(instance.PublicIpAddress)
	unit.PrivateIP = aws.ToString(instance.PrivateIpAddress)
	unit.KeyName = aws.ToString(instance.KeyName)
	unit.LaunchTime = aws.ToTime(instance.LaunchTime)
	unit.Tags = ec2Tags(instance.Tags)
	unit.Name = unit.Tags["Name"]
	return unit
}

func mapReservation(ri types.ReservedInstances, loc domain.Location) *domain.ReservedCapacity {
	r := domain.NewReservedCapacity(
		aws.ToString(ri.ReservedInstancesId),
		loc,
		string(ri.InstanceType),
		int(aws.ToInt32(ri.InstanceCount)),
	)
	if ri.Scope != "" {
		r.Scope = string(ri.Scope)
	}
	r.AvailabilityZone = aws.ToString(ri.AvailabilityZone)
	r.ProductDescription = string(ri.ProductDescription)
	r.State = string(ri.State)
	r.End = aws.ToTime(ri.End)
	return r
}

func mapVolume(v types.Volume, loc domain.Location) *domain.Volume {
	tags := ec2Tags(v.Tags)
	return &domain.Volume{
		ResourceBase:     domain.ResourceBase{ID: aws.ToString(v.VolumeId), Location: loc},
		Name:             tags["Name"],
		SizeGB:           int(aws.ToInt32(v.Size)),
		IOPS:             int(aws.ToInt32(v.Iops)),
		Encrypted:        aws.ToBool(v.Encrypted),
		State:            string(v.State),
		VolumeType:       string(v.VolumeType),
		AvailabilityZone: aws.ToString(v.AvailabilityZone),
		AttachedInstanceIDs: lo.FilterMap(v.Attachments, func(a types.VolumeAttachment, _ int) (string, bool) {
			return aws.ToString(a.InstanceId), a.InstanceId != nil
		}),
	}
}

func mapSubnet(s types.Subnet, loc domain.Location) *domain.Subnet {
	return &domain.Subnet{
		ResourceBase:     domain.ResourceBase{ID: aws.ToString(s.SubnetId), Location: loc},
		Name:             ec2Tags(s.Tags)["Name"],
		VpcID:            aws.ToString(s.VpcId),
		CIDR:             aws.ToString(s.CidrBlock),
		AvailabilityZone: aws.ToString(s.AvailabilityZone),
		DefaultForAZ:     aws.ToBool(s.DefaultForAz),
	}
}

func mapSpotRequest(r types.SpotInstanceRequest, loc domain.Location) *domain.SpotRequest {
	req := &domain.SpotRequest{
		ResourceBase: domain.ResourceBase{ID: aws.ToString(r.SpotInstanceRequestId), Location: loc},
		InstanceID:   aws.ToString(r.InstanceId),
		State:        string(r.State),
	}
	if r.LaunchSpecification != nil {
		req.InstanceType = string(r.LaunchSpecification.InstanceType)
	}
	if price, err := strconv.ParseFloat(aws.ToString(r.SpotPrice), 64); err == nil {
		req.Price = price
	}
	return req
}
