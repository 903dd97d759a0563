package lpsof

import (
	"fmt"
	"io"
	"sort"

	"github.com/olekukonko/tablewriter"
)

// processFDCount pairs a process with its open-descriptor count for
// Summary's sort.
type processFDCount struct {
	PID     int
	Command string
	User    int
	Count   int
}

// Summary renders the limit processes with the most open descriptors,
// sorted descending, per spec.md 4.8's summary view.
func Summary(w io.Writer, procs []*ProcessRecord, limit int) error {
	counts := make([]processFDCount, 0, len(procs))
	for _, p := range procs {
		counts = append(counts, processFDCount{
			PID:     p.PID,
			Command: p.Command,
			User:    p.UID,
			Count:   len(p.FDs),
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].PID < counts[j].PID
	})
	if limit > 0 && len(counts) > limit {
		counts = counts[:limit]
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"PID", "USER", "COMMAND", "OPEN FDS"})
	table.SetBorder(false)
	for _, c := range counts {
		table.Append([]string{fmt.Sprint(c.PID), fmt.Sprint(c.User), c.Command, fmt.Sprint(c.Count)})
	}
	table.Render()
	return nil
}
