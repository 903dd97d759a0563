// Command lpsof enumerates processes and their open file descriptors: a
// Go-native replacement for the original AIX lpsof utility, grounded on
// original_source/lpsof/src/lpsof.c's command surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/librepower/csentinel/pkg/lpsof"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lpsof",
		Short: "List open files per process",
	}

	var (
		pids    []int
		uids    []int
		pgids   []int
		cmdPfx  string
		andMode bool

		netOnly  bool
		unixOnly bool
		pathSub  string

		pidsOnly bool
		fields   string
		nullSep  bool
		human    bool
	)

	root.PersistentFlags().IntSliceVarP(&pids, "pid", "p", nil, "restrict to these PIDs")
	root.PersistentFlags().IntSliceVarP(&uids, "uid", "u", nil, "restrict to these UIDs")
	root.PersistentFlags().IntSliceVarP(&pgids, "pgid", "g", nil, "restrict to these process groups")
	root.PersistentFlags().StringVar(&cmdPfx, "command", "", "restrict to commands with this prefix")
	root.PersistentFlags().BoolVarP(&andMode, "and", "a", false, "AND together the process filters instead of OR")

	root.PersistentFlags().BoolVarP(&netOnly, "network-only", "i", false, "only network sockets")
	root.PersistentFlags().BoolVar(&unixOnly, "unix-only", false, "only unix-domain sockets")
	root.PersistentFlags().StringVar(&pathSub, "path", "", "only descriptors whose path contains this substring")

	root.PersistentFlags().BoolVar(&pidsOnly, "pids-only", false, "print only matching PIDs")
	root.PersistentFlags().StringVar(&fields, "fields", "", "comma-separated fields for scripted output")
	root.PersistentFlags().BoolVar(&nullSep, "null", false, "NUL-separate --fields output")
	root.PersistentFlags().BoolVar(&human, "human", false, "humanize byte sizes in table output")

	processFilter := func() lpsof.ProcessFilter {
		return lpsof.ProcessFilter{PIDs: pids, UIDs: uids, PGIDs: pgids, CommandPfx: cmdPfx, AndLogic: andMode}
	}
	fdFilter := func() lpsof.FDFilter {
		return lpsof.FDFilter{NetworkOnly: netOnly, UnixOnly: unixOnly, PathSubstring: pathSub}
	}
	renderOpts := func() lpsof.RenderOptions {
		switch {
		case pidsOnly:
			return lpsof.RenderOptions{Mode: lpsof.RenderPIDsOnly}
		case fields != "":
			return lpsof.RenderOptions{Mode: lpsof.RenderFields, Fields: strings.Split(fields, ","), NullSep: nullSep}
		default:
			return lpsof.RenderOptions{Mode: lpsof.RenderTable, Human: human}
		}
	}

	root.RunE = func(cmd *cobra.Command, args []string) error {
		return runList(processFilter(), fdFilter(), renderOpts())
	}

	root.AddCommand(
		newSummaryCmd(processFilter, fdFilter),
		newSnapshotCmd(processFilter, fdFilter),
		newDiffCmd(processFilter, fdFilter),
		newWatchCmd(processFilter, fdFilter, renderOpts),
		newDoctorCmd(),
	)
	return root
}

func enumerate(pf lpsof.ProcessFilter, ff lpsof.FDFilter) ([]*lpsof.ProcessRecord, error) {
	procs, err := lpsof.EnumerateProcesses(pf)
	if err != nil {
		return nil, err
	}
	for _, p := range procs {
		_ = lpsof.EnumerateFDs(p, ff)
	}
	return procs, nil
}

func runList(pf lpsof.ProcessFilter, ff lpsof.FDFilter, opts lpsof.RenderOptions) error {
	procs, err := enumerate(pf, ff)
	if err != nil {
		return err
	}
	return lpsof.Render(os.Stdout, procs, opts)
}

func newSummaryCmd(pf func() lpsof.ProcessFilter, ff func() lpsof.FDFilter) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the processes with the most open descriptors",
		RunE: func(cmd *cobra.Command, args []string) error {
			procs, err := enumerate(pf(), ff())
			if err != nil {
				return err
			}
			return lpsof.Summary(os.Stdout, procs, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of processes to show")
	return cmd
}

func newSnapshotCmd(pf func() lpsof.ProcessFilter, ff func() lpsof.FDFilter) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save a point-in-time descriptor snapshot to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			procs, err := enumerate(pf(), ff())
			if err != nil {
				return err
			}
			return lpsof.SaveSnapshotFile(out, procs)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "snapshot output path")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newDiffCmd(pf func() lpsof.ProcessFilter, ff func() lpsof.FDFilter) *cobra.Command {
	var prevPath string
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare the current state against a saved snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			prev, err := lpsof.LoadSnapshotFile(prevPath)
			if err != nil {
				return err
			}
			procs, err := enumerate(pf(), ff())
			if err != nil {
				return err
			}
			var buf strings.Builder
			if err := lpsof.WriteSnapshot(&buf, procs); err != nil {
				return err
			}
			current, err := lpsof.ReadSnapshot(strings.NewReader(buf.String()))
			if err != nil {
				return err
			}
			for _, d := range lpsof.Delta(prev, current) {
				verb := "+"
				if d.Kind == lpsof.DeltaClosed {
					verb = "-"
				}
				fmt.Printf("%s pid=%d fd=%s path=%s\n", verb, d.Line.PID, d.Line.FD, d.Line.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&prevPath, "against", "", "previously saved snapshot path")
	cmd.MarkFlagRequired("against")
	return cmd
}

func newWatchCmd(pf func() lpsof.ProcessFilter, ff func() lpsof.FDFilter, ro func() lpsof.RenderOptions) *cobra.Command {
	var intervalSeconds int
	var delta bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll descriptor state at a fixed interval until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := lpsof.WatchOptions{
				Interval: time.Duration(intervalSeconds) * time.Second,
				Filter:   pf(),
				FDFilter: ff(),
				Render:   ro(),
			}
			if !delta {
				return lpsof.Watch(ctx, os.Stdout, opts)
			}
			return lpsof.WatchDelta(ctx, func(entries []lpsof.DeltaEntry) {
				for _, d := range entries {
					verb := "+"
					if d.Kind == lpsof.DeltaClosed {
						verb = "-"
					}
					fmt.Printf("%s pid=%d fd=%s path=%s\n", verb, d.Line.PID, d.Line.FD, d.Line.Path)
				}
			}, opts)
		},
	}
	cmd.Flags().IntVar(&intervalSeconds, "interval", 5, "poll interval in seconds")
	cmd.Flags().BoolVar(&delta, "delta", false, "print only changes between polls")
	return cmd
}

func newDoctorCmd() *cobra.Command {
	var stateDir string
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Self-test lpsof's runtime dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := lpsof.Doctor(stateDir)
			if asYAML {
				if yerr := lpsof.RenderYAML(os.Stdout, report); yerr != nil {
					return yerr
				}
				return err
			}
			fmt.Println("os:", report.OS)
			fmt.Println("effective uid:", strconv.Itoa(report.EffectiveUID))
			fmt.Println("/proc available:", report.ProcAvailable)
			fmt.Println("state dir writable:", report.StateDirWritable)
			for _, h := range report.HelpersFound {
				fmt.Println("helper found:", h)
			}
			for _, h := range report.HelpersMissing {
				fmt.Println("helper missing:", h)
			}
			if err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&stateDir, "state-dir", "/var/tmp/lpsof", "directory lpsof must be able to write to")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "render the report as YAML")
	return cmd
}
