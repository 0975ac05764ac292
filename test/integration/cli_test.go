package integration

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"
)

// emceeBin is the path to the compiled binary, set by TestMain.
var emceeBin string

func TestMain(m *testing.M) {
	// Build binary once for all tests.
	tmp, err := os.MkdirTemp("", "emcee-integration-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(tmp)

	emceeBin = filepath.Join(tmp, "emcee")
	cmd := exec.Command("go", "build", "-o", emceeBin, "./cmd/emcee/")
	cmd.Dir = findModuleRoot()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

// =============================================================================
// Helpers
// =============================================================================

const corpusText = `the quick brown fox jumps over the lazy dog
a cat sat on the mat and the dog sat on the log
she sells sea shells by the sea shore
`

// findModuleRoot walks up from cwd to find go.mod.
func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("go.mod not found")
		}
		dir = parent
	}
}

// setupProject creates a temp dir holding a small corpus.
func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "corpus.txt"), corpusText)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// runEmcee executes the emcee binary in dir with args, returns stdout, stderr, exit code.
func runEmcee(t *testing.T, dir string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	return runEmceeInput(t, dir, "", args...)
}

// runEmceeInput is runEmcee with stdin fed from input.
func runEmceeInput(t *testing.T, dir, input string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()
	cmd := exec.Command(emceeBin, args...)
	cmd.Dir = dir
	cmd.Stdin = strings.NewReader(input)

	var outBuf, errBuf strings.Builder
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("exec error (not ExitError): %v", err)
		}
	}
	return
}

// mustRun fails the test on a non-zero exit.
func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	stdout, stderr, exit := runEmcee(t, dir, args...)
	if exit != 0 {
		t.Fatalf("emcee %v: exit %d\nstdout: %s\nstderr: %s", args, exit, stdout, stderr)
	}
	return stdout
}

// holdDBLock uses flock(1) to hold an exclusive lock on the bbolt file,
// simulating another emcee process. Returns cleanup func.
func holdDBLock(t *testing.T, dbPath string) func() {
	t.Helper()
	if _, err := exec.LookPath("flock"); err != nil {
		t.Skip("flock(1) not available")
	}
	cmd := exec.Command("flock", "-x", dbPath, "-c", "sleep 60")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		t.Fatalf("flock: %v", err)
	}
	// Give flock time to acquire the lock.
	time.Sleep(200 * time.Millisecond)
	return func() {
		if cmd.Process != nil {
			cmd.Process.Kill()
			cmd.Wait()
		}
	}
}

// =============================================================================
// Models
// =============================================================================

func TestStats_JSONToStdout(t *testing.T) {
	dir := setupProject(t)
	stdout := mustRun(t, dir, "stats", "corpus.txt")

	var doc struct {
		Frequency uint64                     `json:"frequency"`
		Ratio     float64                    `json:"ratio"`
		Symbols   map[string]json.RawMessage `json:"symbols"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("stats output is not JSON: %v\n%s", err, stdout)
	}
	// One transition per symbol plus the closing boundary.
	if want := uint64(len([]rune(corpusText)) + 1); doc.Frequency != want {
		t.Errorf("frequency = %d, want %d", doc.Frequency, want)
	}
	if doc.Ratio != 1 {
		t.Errorf("root ratio = %v, want 1", doc.Ratio)
	}
	if _, ok := doc.Symbols["t"]; !ok {
		t.Errorf("missing context 't'")
	}
}

func TestStats_Stdin(t *testing.T) {
	dir := t.TempDir()
	stdout, stderr, exit := runEmceeInput(t, dir, "stats", "stats")
	if exit != 0 {
		t.Fatalf("exit %d: %s", exit, stderr)
	}
	if !strings.HasPrefix(stdout, `{"frequency":6,"ratio":1,`) {
		t.Errorf("unexpected output: %s", stdout)
	}
}

func TestStats_SaveAndList(t *testing.T) {
	dir := setupProject(t)
	mustRun(t, dir, "stats", "corpus.txt", "--out", "english.json", "--save", "english")

	if _, err := os.Stat(filepath.Join(dir, "english.json")); err != nil {
		t.Errorf("--out file not written: %v", err)
	}

	stdout := mustRun(t, dir, "models")
	if !strings.Contains(stdout, "1 models") || !strings.Contains(stdout, "english") {
		t.Errorf("models output:\n%s", stdout)
	}

	shown := mustRun(t, dir, "models", "show", "english")
	saved, _ := os.ReadFile(filepath.Join(dir, "english.json"))
	if strings.TrimSpace(shown) != strings.TrimSpace(string(saved)) {
		t.Errorf("stored model differs from --out file")
	}

	mustRun(t, dir, "models", "delete", "english")
	stdout = mustRun(t, dir, "models")
	if !strings.Contains(stdout, "0 models") {
		t.Errorf("model not deleted:\n%s", stdout)
	}
}

func TestLetters_Basic(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runEmceeInput(t, dir, "aab\nb\n", "letters")
	if exit != 0 {
		t.Fatalf("exit %d", exit)
	}
	// a:2 b:2 boundary:2
	if !strings.Contains(stdout, "3 symbols, 6 total") {
		t.Errorf("letters output:\n%s", stdout)
	}
}

// =============================================================================
// Keys and search
// =============================================================================

func TestEncipherDecipher_Roundtrip(t *testing.T) {
	dir := t.TempDir()
	plain := "the quick brown fox"

	cipherText, _, exit := runEmceeInput(t, dir, plain, "encipher", "--seed", "7")
	if exit != 0 {
		t.Fatalf("encipher exit %d", exit)
	}
	if cipherText == plain {
		t.Errorf("encipher left text unchanged")
	}

	back, _, exit := runEmceeInput(t, dir, cipherText, "decipher", "--seed", "7")
	if exit != 0 {
		t.Fatalf("decipher exit %d", exit)
	}
	if back != plain {
		t.Errorf("roundtrip = %q, want %q", back, plain)
	}
}

func TestDecipher_ExplicitKey(t *testing.T) {
	dir := t.TempDir()
	stdout, _, exit := runEmceeInput(t, dir, "aabbcc", "decipher", "--alphabet", "abc", "--key", "acb")
	if exit != 0 {
		t.Fatalf("exit %d", exit)
	}
	if stdout != "aaccbb" {
		t.Errorf("got %q, want %q", stdout, "aaccbb")
	}

	_, stderr, exit := runEmceeInput(t, dir, "aabbcc", "decipher", "--alphabet", "abc", "--key", "aab")
	if exit == 0 {
		t.Errorf("expected non-zero exit for a non-bijective key")
	}
	if !strings.Contains(stderr, "bijection") {
		t.Errorf("stderr: %s", stderr)
	}
}

func TestWalk_RecordsRun(t *testing.T) {
	dir := setupProject(t)
	mustRun(t, dir, "stats", "corpus.txt", "--out", "english.json")
	writeFile(t, filepath.Join(dir, "secret.txt"), "a sad cat sat on the mat")

	stdout := mustRun(t, dir, "walk", "secret.txt", "--stats", "english.json", "--seed", "3", "--iterations", "500")
	if !strings.Contains(stdout, "500 iterations") {
		t.Errorf("walk summary missing:\n%s", stdout)
	}
	if !strings.Contains(stdout, "file:english.json") {
		t.Errorf("walk reference missing:\n%s", stdout)
	}
	// Baseline line always printed
	if !strings.Contains(stdout, "#     0") {
		t.Errorf("baseline step missing:\n%s", stdout)
	}

	runs := mustRun(t, dir, "runs")
	if !strings.Contains(runs, "1 runs") || !strings.Contains(runs, "seed=3") {
		t.Errorf("runs output:\n%s", runs)
	}
}

func TestWalk_Deterministic(t *testing.T) {
	dir := setupProject(t)
	writeFile(t, filepath.Join(dir, "secret.txt"), "she sells sea shells")

	args := []string{"walk", "secret.txt", "--seed", "11", "--iterations", "300", "--no-record", "--quiet"}
	first := mustRun(t, dir, args...)
	second := mustRun(t, dir, args...)

	// Everything but the run ID line must match
	strip := func(s string) string {
		var keep []string
		for _, line := range strings.Split(s, "\n") {
			if !strings.Contains(line, "Run:") {
				keep = append(keep, line)
			}
		}
		return strings.Join(keep, "\n")
	}
	if strip(first) != strip(second) {
		t.Errorf("same seed gave different walks:\n%s\n---\n%s", first, second)
	}

	if _, err := os.Stat(filepath.Join(dir, ".emcee", "emcee.db")); err == nil {
		t.Errorf("--no-record created a store")
	}
}

func TestWalk_MissingModel(t *testing.T) {
	dir := setupProject(t)
	_, stderr, exit := runEmceeInput(t, dir, "abc", "walk", "--model", "nope")
	if exit == 0 {
		t.Fatalf("expected failure")
	}
	if !strings.Contains(stderr, "model not found") {
		t.Errorf("stderr: %s", stderr)
	}
}

// =============================================================================
// Config and wipe
// =============================================================================

func TestConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".emcee", "config.yaml"), "alphabet: xyz\nseed: 5\n")

	stdout := mustRun(t, dir, "config")
	for _, want := range []string{"Alphabet:   xyz", "Seed:       5", "Iterations: 10000"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config output missing %q:\n%s", want, stdout)
		}
	}
}

func TestConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".emcee", "config.yaml"), "alphabet: aa\n")

	_, stderr, exit := runEmcee(t, dir, "config")
	if exit == 0 {
		t.Fatalf("expected failure for invalid config")
	}
	if !strings.Contains(stderr, "invalid config") {
		t.Errorf("stderr: %s", stderr)
	}
}

func TestWipe_NoData(t *testing.T) {
	dir := t.TempDir()
	stdout := mustRun(t, dir, "wipe", "--force")
	if !strings.Contains(stdout, "no data to wipe") {
		t.Errorf("wipe output: %s", stdout)
	}
}

func TestWipe_Direct(t *testing.T) {
	dir := setupProject(t)
	mustRun(t, dir, "stats", "corpus.txt", "--save", "english")
	mustRun(t, dir, "wipe", "--force")

	stdout := mustRun(t, dir, "models")
	if !strings.Contains(stdout, "0 models") {
		t.Errorf("models survived wipe:\n%s", stdout)
	}
}

func TestWipe_LockedDB(t *testing.T) {
	dir := setupProject(t)
	mustRun(t, dir, "stats", "corpus.txt", "--save", "english")

	release := holdDBLock(t, filepath.Join(dir, ".emcee", "emcee.db"))
	defer release()

	start := time.Now()
	_, stderr, exit := runEmcee(t, dir, "wipe", "--force")
	if exit == 0 {
		t.Fatalf("expected failure while locked")
	}
	if !strings.Contains(stderr, "locked by another emcee process") {
		t.Errorf("stderr: %s", stderr)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("locked wipe took %v, want fast failure", elapsed)
	}
}
