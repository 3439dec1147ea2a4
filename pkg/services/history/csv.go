package history

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/de-tools/fleet-atlas/pkg/models/domain"
)

var csvHeader = []string{
	"timestamp", "instances", "running", "invpc", "reserved", "matched",
	"loadBalancers", "databases", "domains", "volumes", "costPerHour",
}

// WriteCSV renders summaries oldest first, one row per cycle.
func WriteCSV(w io.Writer, summaries []domain.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, s := range summaries {
		row := []string{
			s.Timestamp.UTC().Format(time.RFC3339),
			strconv.Itoa(s.InstanceCount),
			strconv.Itoa(s.RunningCount),
			strconv.Itoa(s.InVPCCount),
			s.ReservedUnits.String(),
			s.ReservedUsedUnits.String(),
			strconv.Itoa(s.LoadBalancerCount),
			strconv.Itoa(s.DatabaseCount),
			strconv.Itoa(s.DomainRecordCount),
			strconv.Itoa(s.VolumeCount),
			s.TotalCostPerHour.StringFixed(4),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
