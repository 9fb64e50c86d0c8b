package gpu

import (
	"strconv"
	"strings"
)

// The allocation annotation appears in two encodings in the field, depending
// on which component wrote it:
//
//	compact:  "GPU-aaa:80,GPU-bbb:20"
//	extended: "GPU-aaa,NVIDIA,40000,70:GPU-bbb,NVIDIA,40000,10:"
//
// Extended entries are colon separated; each entry has at least four comma
// separated fields with the GPU id at index 0 and the allocated units at
// index 3, remaining fields ignored. The two never mix in one annotation.

const extendedUnitsField = 3

// ParseAllocation parses an allocation annotation into records, dropping any
// token that does not carry a parseable id:units pair. When expectedSlots is
// positive the result is padded with empty records up to that length so
// downstream always sees a full slot list.
func ParseAllocation(text string, expectedSlots int) []AllocationRecord {
	records, _ := ParseAllocationStats(text, expectedSlots)
	return records
}

// ParseAllocationStats is ParseAllocation plus the number of malformed
// tokens that were dropped, for callers that surface a drop metric.
func ParseAllocationStats(text string, expectedSlots int) ([]AllocationRecord, int) {
	var records []AllocationRecord
	var dropped int
	if text != "" {
		if isExtendedEncoding(text) {
			records, dropped = parseExtended(text)
		} else {
			records, dropped = parseCompact(text)
		}
	}
	for expectedSlots > 0 && len(records) < expectedSlots {
		records = append(records, AllocationRecord{})
	}
	return records, dropped
}

// isExtendedEncoding dispatches on the shape of the first colon segment: in
// the extended encoding it is a whole entry with >=4 comma separated fields,
// while in the compact encoding it is a bare GPU id with no commas.
func isExtendedEncoding(text string) bool {
	first, _, _ := strings.Cut(text, ":")
	return strings.Count(first, ",") >= extendedUnitsField
}

func parseCompact(text string) ([]AllocationRecord, int) {
	records := make([]AllocationRecord, 0, strings.Count(text, ",")+1)
	dropped := 0
	for _, token := range strings.Split(text, ",") {
		id, unitsStr, found := strings.Cut(token, ":")
		if !found {
			dropped++
			continue
		}
		units, err := strconv.Atoi(strings.TrimSpace(unitsStr))
		if err != nil {
			dropped++
			continue
		}
		records = append(records, AllocationRecord{GPUID: strings.TrimSpace(id), Units: units})
	}
	return records, dropped
}

func parseExtended(text string) ([]AllocationRecord, int) {
	var records []AllocationRecord
	dropped := 0
	for _, entry := range strings.Split(text, ":") {
		if entry == "" {
			continue // trailing separator, not a malformed token
		}
		fields := strings.Split(entry, ",")
		if len(fields) <= extendedUnitsField {
			dropped++
			continue
		}
		units, err := strconv.Atoi(strings.TrimSpace(fields[extendedUnitsField]))
		if err != nil {
			dropped++
			continue
		}
		records = append(records, AllocationRecord{GPUID: strings.TrimSpace(fields[0]), Units: units})
	}
	return records, dropped
}
