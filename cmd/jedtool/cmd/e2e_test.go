package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

const validJED = "\x02*\nN DEVICE TEST*\nQF26*\nQP4*\nG0*\nF0*\nN CFG*\nL0\n10110000\n1111111111*\nL18 00000001*\nUA42*\nC018F*\n\x03*\n"

const badChecksumJED = "\x02*\nQF8*\nL0 00000000*\nC0001*\n\x03*\n"

func writeJED(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

// run executes the root command with fresh flag state and returns the
// combined output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	verbose = 0
	configPath = ""
	colorMode = ""
	showRows = false
	checkJobs = 0
	exportFormat = ""
	exportOutput = ""
	adapterType = ""
	adapterSpeed = 0
	noVerify = false

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestDumpE2E(t *testing.T) {
	good := writeJED(t, "good.jed", validJED)
	bad := writeJED(t, "bad.jed", badChecksumJED)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "fields",
			args: []string{"dump", good},
			wantContain: []string{
				"JED File Information",
				"Pin Count          : 4",
				"Fuse Count         : 26",
				"Checksum           : 0x018F",
				"User Code          : 0x0000002A",
				"Areas: 2 total",
				"CFG",
			},
		},
		{
			name:        "rows",
			args:        []string{"dump", "--rows", good},
			wantContain: []string{"row 0", "0D", "FF03"},
		},
		{
			name:    "wrong checksum",
			args:    []string{"dump", bad},
			wantErr: true,
		},
		{
			name:    "missing file",
			args:    []string{"dump", filepath.Join(t.TempDir(), "nope.jed")},
			wantErr: true,
		},
		{
			name:    "no args",
			args:    []string{"dump"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := run(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none\nOutput: %s", output)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
		})
	}
}

func TestCheckE2E(t *testing.T) {
	good := writeJED(t, "good.jed", validJED)
	bad := writeJED(t, "bad.jed", badChecksumJED)

	output, err := run(t, "check", good)
	if err != nil {
		t.Fatalf("check good: %v\n%s", err, output)
	}
	if !strings.Contains(output, "OK") || !strings.Contains(output, "26 fuses") {
		t.Errorf("unexpected output:\n%s", output)
	}

	output, err = run(t, "check", "--jobs", "2", good, bad)
	if err == nil {
		t.Fatalf("expected failure\n%s", output)
	}
	if !strings.Contains(err.Error(), "1 of 2 files failed") {
		t.Errorf("err = %v", err)
	}
	if !strings.Contains(output, "FAIL "+bad) || !strings.Contains(output, "wrong checksum") {
		t.Errorf("missing failure line:\n%s", output)
	}
	if strings.Index(output, good) > strings.Index(output, "FAIL") {
		t.Errorf("results not in argument order:\n%s", output)
	}
}

func TestExportE2E(t *testing.T) {
	good := writeJED(t, "good.jed", validJED)

	output, err := run(t, "export", good)
	if err != nil {
		t.Fatalf("export json: %v\n%s", err, output)
	}
	for _, want := range []string{`"fuse_count": 26`, `"checksum": 399`, `"note": "CFG"`} {
		if !strings.Contains(output, want) {
			t.Errorf("json missing %q:\n%s", want, output)
		}
	}

	out := filepath.Join(t.TempDir(), "good.mp")
	if output, err := run(t, "export", "--format", "msgpack", "-o", out, good); err != nil {
		t.Fatalf("export msgpack: %v\n%s", err, output)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var decoded map[string]any
	if err := msgpack.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode msgpack: %v", err)
	}
	if len(decoded) == 0 {
		t.Error("empty msgpack document")
	}

	if _, err := run(t, "export", "--format", "yaml", good); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestProgramE2E(t *testing.T) {
	good := writeJED(t, "good.jed", validJED)
	bad := writeJED(t, "bad.jed", badChecksumJED)

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name: "simulator",
			args: []string{"program", "--adapter", "simulator", good},
			wantContain: []string{
				"Adapter: Simulator",
				"Device:  0x012BA043 (Lattice",
				"Programmed 26 bits in 3 rows across 2 areas (verified)",
			},
		},
		{
			name:        "no verify",
			args:        []string{"program", "--no-verify", good},
			wantContain: []string{"Programmed 26 bits"},
		},
		{
			name:    "invalid file is never shifted",
			args:    []string{"program", bad},
			wantErr: true,
		},
		{
			name:    "hardware adapter",
			args:    []string{"program", "--adapter", "cmsis-dap", good},
			wantErr: true,
		},
		{
			name:    "unknown adapter",
			args:    []string{"program", "--adapter", "ftdi", good},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := run(t, tt.args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none\nOutput: %s", output)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
			if tt.name == "no verify" && strings.Contains(output, "(verified)") {
				t.Errorf("verification reported with --no-verify:\n%s", output)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	good := writeJED(t, "good.jed", validJED)
	conf := filepath.Join(t.TempDir(), "jedtool.toml")
	content := "[programmer]\nverify = false\n\n[output]\nformat = \"msgpack\"\n"
	if err := os.WriteFile(conf, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	output, err := run(t, "--config", conf, "program", good)
	if err != nil {
		t.Fatalf("program: %v\n%s", err, output)
	}
	if strings.Contains(output, "(verified)") {
		t.Errorf("config verify=false ignored:\n%s", output)
	}

	bogus := filepath.Join(t.TempDir(), "bogus.toml")
	if err := os.WriteFile(bogus, []byte("[programmer]\nspeed = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--config", bogus, "dump", good); err == nil {
		t.Error("expected error for unknown config key")
	}
}

func TestInvalidColorMode(t *testing.T) {
	good := writeJED(t, "good.jed", validJED)
	// the later --color wins over the one injected by run
	if _, err := run(t, "--color", "sometimes", "dump", good); err == nil {
		t.Error("expected error for invalid --color")
	}
}

func TestParseErrorReportedOnce(t *testing.T) {
	bad := writeJED(t, "bad.jed", badChecksumJED)

	// Capture stderr, where the log backend writes
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w

	var logged bytes.Buffer
	done := make(chan struct{})
	go func() {
		logged.ReadFrom(r)
		close(done)
	}()

	output, runErr := run(t, "dump", bad)

	w.Close()
	os.Stderr = old
	<-done

	if runErr == nil {
		t.Fatalf("expected error\n%s", output)
	}
	if n := strings.Count(output, "wrong checksum"); n != 1 {
		t.Errorf("command output reports the error %d times, want 1:\n%s", n, output)
	}
	if strings.Contains(logged.String(), "wrong checksum") {
		t.Errorf("error also logged at default verbosity:\n%s", logged.String())
	}
}
