//go:build integration

package main

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
)

var (
	pubdirBinary     string
	pubdirBinaryOnce sync.Once
	pubdirBinaryErr  error
)

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + ": " + e.output
}

// getBinary builds the pubdir binary once and returns its path.
func getBinary(t *testing.T) string {
	t.Helper()
	pubdirBinaryOnce.Do(func() {
		_, filename, _, ok := runtime.Caller(0)
		if !ok {
			pubdirBinaryErr = os.ErrInvalid
			return
		}
		moduleRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))

		tmpDir, err := os.MkdirTemp("", "pubdir-test-*")
		if err != nil {
			pubdirBinaryErr = err
			return
		}
		pubdirBinary = filepath.Join(tmpDir, "pubdir")

		cmd := exec.Command("go", "build", "-o", pubdirBinary, "./cmd/pubdir")
		cmd.Dir = moduleRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			pubdirBinaryErr = &buildError{output: string(output), err: err}
		}
	})
	if pubdirBinaryErr != nil {
		t.Fatalf("failed to build pubdir: %v", pubdirBinaryErr)
	}
	return pubdirBinary
}

// setupWorkspace writes a config pointing at a fresh database and returns
// the workspace directory and config path.
func setupWorkspace(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	content := "db_path: " + filepath.Join(dir, "pubdir.db") + "\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return dir, cfgPath
}

// runPubdir runs the CLI and returns stdout and the exit code.
func runPubdir(t *testing.T, dir, cfgPath string, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(getBinary(t), append([]string{"--config", cfgPath}, args...)...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "PUBDIR_DB_PATH=", "PUBDIR_REDIS_URL=", "PUBDIR_SYNC_SCHEDULE=")
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return string(out), exitErr.ExitCode()
	}
	if err != nil {
		t.Fatalf("running pubdir: %v", err)
	}
	return string(out), 0
}

func mustRun(t *testing.T, dir, cfgPath string, args ...string) string {
	t.Helper()
	out, code := runPubdir(t, dir, cfgPath, args...)
	if code != 0 {
		t.Fatalf("pubdir %s exited %d\nOutput: %s", strings.Join(args, " "), code, out)
	}
	return out
}

func TestRegisterOutputsCredentials(t *testing.T) {
	dir, cfg := setupWorkspace(t)

	out := mustRun(t, dir, cfg, "register")

	var res RegisterResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("parsing output: %v\n%s", err, out)
	}
	if len(res.FacultyID) != 8 || len(res.Password) != 6 {
		t.Errorf("credentials = %+v", res)
	}
}

func TestAddPublicationsAndMetrics(t *testing.T) {
	dir, cfg := setupWorkspace(t)

	for _, c := range []string{"25", "8", "5", "4", "3"} {
		mustRun(t, dir, cfg, "publication", "add",
			"--email", "ada@example.edu",
			"--title", "Paper with "+c+" citations",
			"--journal", "Analytical Letters",
			"--year", "2021",
			"--citations", c)
	}

	out := mustRun(t, dir, cfg, "metrics", "ada@example.edu")

	var d struct {
		Stats struct {
			TotalPublications int `json:"totalPublications"`
			TotalCitations    int `json:"totalCitations"`
			HIndex            int `json:"hIndex"`
			I10Index          int `json:"i10Index"`
		} `json:"stats"`
	}
	if err := json.Unmarshal([]byte(out), &d); err != nil {
		t.Fatalf("parsing output: %v\n%s", err, out)
	}
	if d.Stats.TotalPublications != 5 || d.Stats.TotalCitations != 45 || d.Stats.HIndex != 4 || d.Stats.I10Index != 1 {
		t.Errorf("stats = %+v", d.Stats)
	}
}

func TestAddPublicationValidationExitCode(t *testing.T) {
	dir, cfg := setupWorkspace(t)

	out, code := runPubdir(t, dir, cfg, "publication", "add", "--email", "ada@example.edu")

	if code != ExitDataError {
		t.Errorf("exit code = %d, want %d", code, ExitDataError)
	}
	if !strings.Contains(out, "Title is required") {
		t.Errorf("output = %s", out)
	}
}

func TestDeleteUnknownPublicationExitCode(t *testing.T) {
	dir, cfg := setupWorkspace(t)

	_, code := runPubdir(t, dir, cfg, "publication", "delete", "does-not-exist")

	if code != ExitNotFound {
		t.Errorf("exit code = %d, want %d", code, ExitNotFound)
	}
}

func TestExportAndRebuild(t *testing.T) {
	dir, cfg := setupWorkspace(t)
	mustRun(t, dir, cfg, "register")
	mustRun(t, dir, cfg, "publication", "add",
		"--email", "ada@example.edu",
		"--title", "Notes on the Analytical Engine",
		"--authors", "Ada Lovelace",
		"--year", "1843")

	snapshot := filepath.Join(dir, "snapshot")
	if err := os.MkdirAll(snapshot, 0755); err != nil {
		t.Fatal(err)
	}
	mustRun(t, dir, cfg, "export", "--dir", snapshot)

	otherDir, otherCfg := setupWorkspace(t)
	out := mustRun(t, otherDir, otherCfg, "rebuild", snapshot)

	var res struct {
		Faculty      int `json:"faculty"`
		Publications int `json:"publications"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("parsing output: %v\n%s", err, out)
	}
	if res.Faculty != 1 || res.Publications != 1 {
		t.Errorf("rebuild = %+v", res)
	}

	bib := mustRun(t, otherDir, otherCfg, "export", "--format", "bibtex", "--email", "ada@example.edu")
	if !strings.Contains(bib, "@article{Lovelace1843notes,") {
		t.Errorf("bibtex output = %s", bib)
	}
}

func TestExportBibTeXAppendSkipsExisting(t *testing.T) {
	dir, cfg := setupWorkspace(t)
	mustRun(t, dir, cfg, "publication", "add", "--email", "ada@example.edu", "--title", "First Paper")
	mustRun(t, dir, cfg, "publication", "add", "--email", "ada@example.edu", "--title", "Second Paper")

	bibPath := filepath.Join(dir, "refs.bib")
	existing := "@article{Known2020,\n  title = {First Paper},\n}\n"
	if err := os.WriteFile(bibPath, []byte(existing), 0644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, dir, cfg, "export", "--format", "bibtex", "--email", "ada@example.edu", "--append", bibPath)

	var res AppendResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("parsing output: %v\n%s", err, out)
	}
	if res.Added != 1 || res.Skipped != 1 {
		t.Errorf("append = %+v", res)
	}
	data, err := os.ReadFile(bibPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), "title = {First Paper}") != 1 || !strings.Contains(string(data), "Second Paper") {
		t.Errorf("refs.bib = %s", data)
	}
}
