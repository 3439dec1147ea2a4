package fetcher

import (
	"fmt"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
)

type advisorCheck struct {
	id       string
	name     string
	category string
}

type metadata []string

// at tolerates short metadata rows; the layout differs per check and is not
// guaranteed by the API.
func (m metadata) at(i int) string {
	if i < len(m) {
		return m[i]
	}
	return ""
}

type advisorMapper func(m metadata, r *domain.AdvisorResult)

var advisorMappers = map[string]advisorMapper{
	"Low Utilization Amazon EC2 Instances": func(m metadata, r *domain.AdvisorResult) {
		r.ResourceType = "EC2"
		r.Description = fmt.Sprintf("%s is a %s", m.at(2), m.at(3))
		r.Saving = m.at(4)
	},
	"Idle Load Balancers": func(m metadata, r *domain.AdvisorResult) {
		r.ResourceType = "ELB"
		r.Description = m.at(2)
		r.Saving = m.at(3)
	},
	"Unassociated Elastic IP Addresses": func(m metadata, r *domain.AdvisorResult) {
		r.ResourceType = "EIP"
		r.Description = "IP is unused"
	},
	"Underutilized Amazon EBS Volumes": func(m metadata, r *domain.AdvisorResult) {
		r.ResourceType = "EBS"
		r.Description = fmt.Sprintf("Volume %s, %sGb %s", m.at(2), m.at(4), m.at(3))
		r.Saving = m.at(5)
	},
	"Amazon EBS Snapshots": func(m metadata, r *domain.AdvisorResult) {
		r.ResourceType = "EBS"
		if m.at(8) == "Age" {
			r.Description = fmt.Sprintf("Volume %s has a snapshot that is %s days old", m.at(2), m.at(5))
		} else {
			r.Description = fmt.Sprintf("Volume %s does not have a snapshot", m.at(2))
		}
		r.Status = m.at(7)
	},
	"Amazon RDS Idle DB Instances": func(m metadata, r *domain.AdvisorResult) {
		r.ResourceType = "RDS"
		r.Description = fmt.Sprintf("RDS instance %s (%s, %sGb) is idle", m.at(1), m.at(3), m.at(4))
		r.Saving = m.at(6)
	},
	"Amazon RDS Multi-AZ": func(m metadata, r *domain.AdvisorResult) {
		r.ResourceType = "RDS"
		r.Description = fmt.Sprintf("RDS instance %s is in a single AZ", m.at(1))
		r.Status = m.at(4)
	},
	"Service Limits": func(m metadata, r *domain.AdvisorResult) {
		r.ResourceType = m.at(1)
		r.ResourceID = "-"
		r.Description = fmt.Sprintf("Using %s of %s %s", m.at(4), m.at(3), m.at(2))
		r.Status = m.at(5)
	},
	"Amazon S3 Bucket Permissions": func(m metadata, r *domain.AdvisorResult) {
		r.ResourceType = "S3"
		r.ResourceID = m.at(2)
		r.Description = fmt.Sprintf("Bucket has global permissions (List: %s, Upload/Delete: %s)", m.at(3), m.at(4))
		r.Status = m.at(5)
	},
	"Amazon S3 Bucket Versioning": func(m metadata, r *domain.AdvisorResult) {
		r.ResourceType = "S3"
		r.Description = fmt.Sprintf("Versioning is %s", m.at(2))
		r.Status = m.at(4)
	},
	"Amazon Route 53 Alias Resource Record Sets": func(m metadata, r *domain.AdvisorResult) {
		r.Region = "-"
		r.ResourceType = "R53"
		r.ResourceID = m.at(0)
		r.Description = fmt.Sprintf("Use an ALIAS to %s instead of a %s", m.at(2), m.at(3))
		r.Status = m.at(6)
	},
}

func mapAdvisorResult(account string, check advisorCheck, meta []string) domain.AdvisorResult {
	m := metadata(meta)
	result := domain.AdvisorResult{
		Account:    account,
		CheckName:  check.name,
		Category:   check.category,
		Region:     "no region",
		ResourceID: "unknown resource",
		Status:     "None",
	}
	if len(m) > 1 {
		result.Region = m.at(0)
		result.ResourceID = m.at(1)
	}

	mapper, ok := advisorMappers[check.name]
	if !ok {
		result.ResourceType = "-"
		result.Description = check.name
		return result
	}
	mapper(m, &result)
	return result
}
