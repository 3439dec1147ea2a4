package fetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	cetypes "github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/aws/aws-sdk-go-v2/service/support"
	"github.com/de-tools/fleet-atlas/pkg/models/domain"
	"github.com/de-tools/fleet-atlas/pkg/services/accounts"
	"github.com/shopspring/decimal"
)

// DomainRecords returns the A and CNAME records of every hosted zone of every account.
func (f *AWSFetcher) DomainRecords(ctx context.Context) ([]*domain.DomainRecord, error) {
	return eachAccount(ctx, f.locator.Accounts(ctx), func(ctx context.Context, account string) ([]*domain.DomainRecord, error) {
		client, err := f.clients.Route53(ctx, account)
		if err != nil {
			return nil, err
		}

		var records []*domain.DomainRecord
		zones := route53.NewListHostedZonesPaginator(client, &route53.ListHostedZonesInput{})
		for zones.HasMorePages() {
			page, err := zones.NextPage(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list hosted zones: %w", err)
			}
			for _, zone := range page.HostedZones {
				sets, err := recordSets(ctx, client, aws.ToString(zone.Id))
				if err != nil {
					return nil, err
				}
				for _, set := range sets {
					if set.Type != r53types.RRTypeA && set.Type != r53types.RRTypeCname {
						continue
					}
					records = append(records, mapRecord(set, account, aws.ToString(zone.Name)))
				}
			}
		}
		return records, nil
	})
}

func recordSets(ctx context.Context, client Route53API, zoneID string) ([]r53types.ResourceRecordSet, error) {
	var sets []r53types.ResourceRecordSet
	input := &route53.ListResourceRecordSetsInput{HostedZoneId: aws.String(zoneID)}
	for {
		out, err := client.ListResourceRecordSets(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to list record sets of zone %s: %w", zoneID, err)
		}
		sets = append(sets, out.ResourceRecordSets...)
		if !out.IsTruncated {
			return sets, nil
		}
		input = &route53.ListResourceRecordSetsInput{
			HostedZoneId:          aws.String(zoneID),
			StartRecordName:       out.NextRecordName,
			StartRecordType:       out.NextRecordType,
			StartRecordIdentifier: out.NextRecordIdentifier,
		}
	}
}

func mapRecord(set r53types.ResourceRecordSet, account, zone string) *domain.DomainRecord {
	name := aws.ToString(set.Name)
	record := &domain.DomainRecord{
		ResourceBase: domain.ResourceBase{
			ID:       name,
			Location: domain.Location{Account: account, Region: accounts.GlobalRegion},
		},
		Zone: zone,
		Type: string(set.Type),
		TTL:  aws.ToInt64(set.TTL),
	}
	switch {
	case len(set.ResourceRecords) > 0:
		record.Target = aws.ToString(set.ResourceRecords[0].Value)
	case set.AliasTarget != nil:
		record.Target = aws.ToString(set.AliasTarget.DNSName)
	}
	return record
}

// Advisories collects flagged Trusted Advisor resources. Accounts without a
// premium support plan are skipped rather than failing the fetch.
func (f *AWSFetcher) Advisories(ctx context.Context) ([]domain.AccountOutcome[domain.AdvisorResult], error) {
	return eachAccountOptional(ctx, f.locator.Accounts(ctx), func(ctx context.Context, account string) ([]domain.AdvisorResult, error) {
		client, err := f.clients.Support(ctx, account)
		if err != nil {
			return nil, err
		}

		checks, err := f.advisorChecks(ctx, client, account)
		if err != nil {
			return nil, err
		}

		var results []domain.AdvisorResult
		for _, check := range checks {
			out, err := client.DescribeTrustedAdvisorCheckResult(ctx, &support.DescribeTrustedAdvisorCheckResultInput{
				CheckId:  aws.String(check.id),
				Language: aws.String("en"),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to describe check result %s: %w", check.name, err)
			}
			if out.Result == nil {
				continue
			}
			for _, flagged := range out.Result.FlaggedResources {
				results = append(results, mapAdvisorResult(account, check, aws.ToStringSlice(flagged.Metadata)))
			}
		}
		return results, nil
	}), nil
}

// advisorChecks lists the checks of an account once and caches them.
func (f *AWSFetcher) advisorChecks(ctx context.Context, client SupportAPI, account string) ([]advisorCheck, error) {
	f.checksMu.Lock()
	cached, ok := f.checks[account]
	f.checksMu.Unlock()
	if ok {
		return cached, nil
	}

	out, err := client.DescribeTrustedAdvisorChecks(ctx, &support.DescribeTrustedAdvisorChecksInput{
		Language: aws.String("en"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe trusted advisor checks: %w", err)
	}

	checks := make([]advisorCheck, 0, len(out.Checks))
	for _, c := range out.Checks {
		checks = append(checks, advisorCheck{
			id:       aws.ToString(c.Id),
			name:     strings.TrimSpace(aws.ToString(c.Name)),
			category: aws.ToString(c.Category),
		})
	}

	f.checksMu.Lock()
	f.checks[account] = checks
	f.checksMu.Unlock()
	return checks, nil
}

// Spend reports the month-to-date unblended cost of every account. Accounts
// without Cost Explorer access are skipped.
func (f *AWSFetcher) Spend(ctx context.Context) ([]domain.AccountOutcome[domain.AccountSpend], error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 0, 1).Truncate(24 * time.Hour)

	return eachAccountOptional(ctx, f.locator.Accounts(ctx), func(ctx context.Context, account string) ([]domain.AccountSpend, error) {
		client, err := f.clients.CostExplorer(ctx, account)
		if err != nil {
			return nil, err
		}

		out, err := client.GetCostAndUsage(ctx, &costexplorer.GetCostAndUsageInput{
			TimePeriod: &cetypes.DateInterval{
				Start: aws.String(start.Format("2006-01-02")),
				End:   aws.String(end.Format("2006-01-02")),
			},
			Granularity: cetypes.GranularityMonthly,
			Metrics:     []string{"UnblendedCost"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get cost and usage: %w", err)
		}
		return mapSpend(account, out.ResultsByTime)
	}), nil
}

func mapSpend(account string, results []cetypes.ResultByTime) ([]domain.AccountSpend, error) {
	spend := make([]domain.AccountSpend, 0, len(results))
	for _, r := range results {
		metric, ok := r.Total["UnblendedCost"]
		if !ok {
			continue
		}
		amount, err := decimal.NewFromString(aws.ToString(metric.Amount))
		if err != nil {
			return nil, fmt.Errorf("invalid cost amount %q: %w", aws.ToString(metric.Amount), err)
		}

		item := domain.AccountSpend{
			Account:  account,
			Amount:   amount,
			Currency: aws.ToString(metric.Unit),
		}
		if r.TimePeriod != nil {
			item.Start, _ = time.Parse("2006-01-02", aws.ToString(r.TimePeriod.Start))
			item.End, _ = time.Parse("2006-01-02", aws.ToString(r.TimePeriod.End))
		}
		spend = append(spend, item)
	}
	return spend, nil
}
