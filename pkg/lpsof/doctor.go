package lpsof

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"
)

// DoctorReport is the result of Doctor's self-test.
type DoctorReport struct {
	OS               string   `yaml:"os"`
	EffectiveUID     int      `yaml:"effective_uid"`
	ProcAvailable    bool     `yaml:"proc_available"`
	HelpersFound     []string `yaml:"helpers_found"`
	HelpersMissing   []string `yaml:"helpers_missing"`
	StateDirPath     string   `yaml:"state_dir_path"`
	StateDirWritable bool     `yaml:"state_dir_writable"`
}

// RenderYAML writes report to w as YAML, for scripted consumption of
// lpsof doctor's output alongside its human-readable table.
func RenderYAML(w io.Writer, report DoctorReport) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(report)
}

// Doctor runs lpsof's self-test: OS identity, effective privilege, /proc
// availability, helper-executable availability, and state-directory
// writability, aggregating every failure via multierror rather than
// stopping at the first, per spec.md 4.8's doctor command.
func Doctor(stateDir string) (DoctorReport, error) {
	var merr *multierror.Error

	report := DoctorReport{
		OS:           runtime.GOOS,
		EffectiveUID: os.Geteuid(),
		StateDirPath: stateDir,
	}

	if runtime.GOOS != "linux" && runtime.GOOS != "aix" {
		merr = multierror.Append(merr, fmt.Errorf("unsupported OS %q: lpsof requires a /proc-like filesystem", runtime.GOOS))
	}

	if info, err := os.Stat("/proc"); err == nil && info.IsDir() {
		report.ProcAvailable = true
	} else {
		merr = multierror.Append(merr, fmt.Errorf("/proc is not available: %w", err))
	}

	for _, helper := range helperExecutables(runtime.GOOS) {
		if _, err := exec.LookPath(helper); err == nil {
			report.HelpersFound = append(report.HelpersFound, helper)
		} else {
			report.HelpersMissing = append(report.HelpersMissing, helper)
		}
	}

	if err := checkWritable(stateDir); err != nil {
		merr = multierror.Append(merr, fmt.Errorf("state directory %q is not writable: %w", stateDir, err))
	} else {
		report.StateDirWritable = true
	}

	return report, merr.ErrorOrNil()
}

// helperExecutables lists the external commands lpsof's sibling csentinel
// collector depends on for the running platform; lpsof itself needs none,
// but doctor verifies the shared deployment's full dependency surface.
func helperExecutables(goos string) []string {
	switch goos {
	case "aix":
		return []string{"netstat", "auditpr"}
	default:
		return []string{"ausearch"}
	}
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	probe := dir + "/.lpsof-doctor-probe"
	f, err := os.Create(probe)
	if err != nil {
		return err
	}
	f.Close()
	return os.Remove(probe)
}
