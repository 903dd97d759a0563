package lpsof

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
)

// RenderMode selects lpsof's output format, per spec.md 4.8's rendering
// stage.
type RenderMode int

const (
	RenderTable RenderMode = iota
	RenderPIDsOnly
	RenderFields
)

// RenderOptions controls Render's output.
type RenderOptions struct {
	Mode       RenderMode
	Fields     []string // used only when Mode == RenderFields
	NullSep    bool      // NUL-separate fields instead of a space, for xargs -0
	Human      bool      // humanize byte sizes in table mode
}

// Render writes procs to w according to opts.
func Render(w io.Writer, procs []*ProcessRecord, opts RenderOptions) error {
	switch opts.Mode {
	case RenderPIDsOnly:
		return renderPIDsOnly(w, procs)
	case RenderFields:
		return renderFields(w, procs, opts)
	default:
		return renderTable(w, procs, opts)
	}
}

func renderPIDsOnly(w io.Writer, procs []*ProcessRecord) error {
	seen := make(map[int]bool, len(procs))
	for _, p := range procs {
		if seen[p.PID] {
			continue
		}
		seen[p.PID] = true
		if _, err := fmt.Fprintln(w, p.PID); err != nil {
			return err
		}
	}
	return nil
}

func renderTable(w io.Writer, procs []*ProcessRecord, opts RenderOptions) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"COMMAND", "PID", "USER", "FD", "TYPE", "DEVICE", "SIZE/OFF", "NODE", "NAME"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)

	for _, p := range procs {
		for _, fd := range p.FDs {
			table.Append([]string{
				p.Command,
				strconv.Itoa(p.PID),
				strconv.Itoa(p.UID),
				fdLabel(fd),
				fd.Type.String(),
				strconv.FormatUint(fd.Device, 10),
				sizeLabel(fd, opts.Human),
				strconv.FormatUint(fd.Inode, 10),
				nameLabel(fd),
			})
		}
	}
	table.Render()
	return nil
}

func fdLabel(fd FDRecord) string {
	if fd.Special != "" {
		return string(fd.Special)
	}
	suffix := ""
	switch {
	case fd.Mode.Read && fd.Mode.Write:
		suffix = "u"
	case fd.Mode.Write:
		suffix = "w"
	case fd.Mode.Read:
		suffix = "r"
	}
	return strconv.Itoa(fd.Number) + suffix
}

func sizeLabel(fd FDRecord, human bool) string {
	if fd.Type != TypeRegular && fd.Type != TypeDirectory {
		return "-"
	}
	if human {
		return humanize.Bytes(uint64(fd.Size))
	}
	return strconv.FormatInt(fd.Size, 10)
}

func nameLabel(fd FDRecord) string {
	switch fd.Type {
	case TypeInet, TypeInet6:
		name := fd.Protocol + " " + fd.LocalAddr + ":" + strconv.Itoa(fd.LocalPort)
		if fd.RemotePort != 0 {
			name += "->" + fd.RemoteAddr + ":" + strconv.Itoa(fd.RemotePort)
		}
		name += " (" + fd.State.String() + ")"
		return name
	case TypeUnix:
		return "unix:" + fd.Path
	default:
		return fd.Path
	}
}

// renderFields prints one line per (process, fd) pair with only the
// requested fields, separated by a space (or NUL when opts.NullSep), for
// scripted consumption.
func renderFields(w io.Writer, procs []*ProcessRecord, opts RenderOptions) error {
	sep := " "
	if opts.NullSep {
		sep = "\x00"
	}
	for _, p := range procs {
		for _, fd := range p.FDs {
			values := fieldValues(p, fd, opts.Fields)
			for i, v := range values {
				if i > 0 {
					if _, err := io.WriteString(w, sep); err != nil {
						return err
					}
				}
				if _, err := io.WriteString(w, v); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

func fieldValues(p *ProcessRecord, fd FDRecord, fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		switch field {
		case "pid":
			out = append(out, strconv.Itoa(p.PID))
		case "command":
			out = append(out, p.Command)
		case "user":
			out = append(out, strconv.Itoa(p.UID))
		case "fd":
			out = append(out, fdLabel(fd))
		case "type":
			out = append(out, fd.Type.String())
		case "device":
			out = append(out, strconv.FormatUint(fd.Device, 10))
		case "inode":
			out = append(out, strconv.FormatUint(fd.Inode, 10))
		case "name":
			out = append(out, nameLabel(fd))
		default:
			out = append(out, "")
		}
	}
	return out
}
