// Package input parses the section-delimited charger report format:
//
//	[Stations]
//	<station id> <charger id> ... <charger id>
//
//	[Charger Availability Reports]
//	<charger id> <start nanos> <end nanos> <up>
//
// Parsing is all-or-nothing: the first malformed line or ownership conflict
// aborts the whole run, so the uptime engine only ever sees validated data.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"stationuptime/internal/models"
)

type section int

const (
	sectionNone section = iota
	sectionStations
	sectionReports
)

const (
	headerStations = "[Stations]"
	headerReports  = "[Charger Availability Reports]"
)

// File is the validated content of one report file.
type File struct {
	// Ownership maps each declared station to its deduplicated charger IDs,
	// ascending. Stations declared with no chargers are present with an
	// empty slice.
	Ownership map[uint32][]uint32
	// Reports groups availability reports by charger ID, in file order.
	Reports map[uint32][]models.Report
}

// ParseFile opens and parses the file at path.
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("input: open %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the whole report file from r, validating every line. Repeated
// station IDs merge their charger sets. Section headers may repeat and
// appear in any order; a data line before the first header is an error.
func Parse(r io.Reader) (*File, error) {
	// charger -> owning station, and station -> its charger set
	owners := make(map[uint32]uint32)
	chargerSets := make(map[uint32]map[uint32]struct{})
	reports := make(map[uint32][]models.Report)

	current := sectionNone
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case headerStations:
			current = sectionStations
			continue
		case headerReports:
			current = sectionReports
			continue
		}

		switch current {
		case sectionStations:
			stationID, chargers, err := parseStationLine(line)
			if err != nil {
				return nil, fmt.Errorf("input: line %d: %w", lineNo, err)
			}
			set, ok := chargerSets[stationID]
			if !ok {
				set = make(map[uint32]struct{})
				chargerSets[stationID] = set
			}
			for _, chargerID := range chargers {
				if owner, claimed := owners[chargerID]; claimed && owner != stationID {
					return nil, fmt.Errorf("input: line %d: charger %d claimed by stations %d and %d", lineNo, chargerID, owner, stationID)
				}
				owners[chargerID] = stationID
				set[chargerID] = struct{}{}
			}
		case sectionReports:
			report, err := parseReportLine(line)
			if err != nil {
				return nil, fmt.Errorf("input: line %d: %w", lineNo, err)
			}
			reports[report.ChargerID] = append(reports[report.ChargerID], report)
		default:
			return nil, fmt.Errorf("input: line %d: data before any section header", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("input: read: %w", err)
	}

	// Every reported charger must belong to a declared station. Checked
	// after the scan because the sections may arrive in either order.
	for chargerID := range reports {
		if _, ok := owners[chargerID]; !ok {
			return nil, fmt.Errorf("input: report for charger %d not owned by any station", chargerID)
		}
	}

	ownership := make(map[uint32][]uint32, len(chargerSets))
	for stationID, set := range chargerSets {
		chargers := make([]uint32, 0, len(set))
		for chargerID := range set {
			chargers = append(chargers, chargerID)
		}
		sort.Slice(chargers, func(i, j int) bool { return chargers[i] < chargers[j] })
		ownership[stationID] = chargers
	}

	return &File{Ownership: ownership, Reports: reports}, nil
}

func parseStationLine(line string) (uint32, []uint32, error) {
	fields := strings.Fields(line)
	stationID, err := parseID(fields[0])
	if err != nil {
		return 0, nil, fmt.Errorf("invalid station ID %q", fields[0])
	}
	chargers := make([]uint32, 0, len(fields)-1)
	for _, field := range fields[1:] {
		chargerID, err := parseID(field)
		if err != nil {
			return 0, nil, fmt.Errorf("station %d: invalid charger ID %q", stationID, field)
		}
		chargers = append(chargers, chargerID)
	}
	return stationID, chargers, nil
}

func parseReportLine(line string) (models.Report, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 || len(fields) > 4 {
		return models.Report{}, fmt.Errorf("malformed availability report %q", line)
	}
	chargerID, err := parseID(fields[0])
	if err != nil {
		return models.Report{}, fmt.Errorf("invalid charger ID %q", fields[0])
	}
	start, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return models.Report{}, fmt.Errorf("charger %d: invalid start time %q", chargerID, fields[1])
	}
	end, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return models.Report{}, fmt.Errorf("charger %d: invalid end time %q", chargerID, fields[2])
	}
	if end < start {
		return models.Report{}, fmt.Errorf("charger %d: report end %d before start %d", chargerID, end, start)
	}

	// A missing status column reads as down, matching the historical file
	// format. Anything other than a true/false literal is rejected.
	up := false
	if len(fields) == 4 {
		switch fields[3] {
		case "true", "True":
			up = true
		case "false", "False":
			up = false
		default:
			return models.Report{}, fmt.Errorf("charger %d: unresolvable up status %q", chargerID, fields[3])
		}
	}

	return models.Report{ChargerID: chargerID, Start: start, End: end, Up: up}, nil
}

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(id), nil
}
