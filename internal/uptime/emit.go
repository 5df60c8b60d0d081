package uptime

import (
	"bufio"
	"fmt"
	"io"

	"stationuptime/internal/models"
)

// WriteResults prints one "<station id> <percent>" line per result in the
// order given. Compute already sorts by station ID.
func WriteResults(w io.Writer, results []models.StationUptime) error {
	bw := bufio.NewWriter(w)
	for _, r := range results {
		if _, err := fmt.Fprintf(bw, "%d %d\n", r.StationID, r.Percent); err != nil {
			return fmt.Errorf("uptime: write results: %w", err)
		}
	}
	return bw.Flush()
}
