package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Mr-Dark-debug/paytrail/internal/database"
	"github.com/Mr-Dark-debug/paytrail/internal/server"
	"github.com/Mr-Dark-debug/paytrail/internal/timeline"
	"github.com/Mr-Dark-debug/paytrail/pkg/timeutil"
)

// newSeededServer runs the companion server over an in-memory database
// holding the demo timeline for token "tok".
func newSeededServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := database.NewDBService(":memory:")
	if err != nil {
		t.Fatalf("NewDBService failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if _, _, err := server.Seed(store, "demo", "tok", time.Now()); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	ts := httptest.NewServer(server.New(server.DefaultConfig(), store).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestEnvOr(t *testing.T) {
	t.Setenv("PAYTRAIL_TEST_VALUE", "")
	if got := envOr("PAYTRAIL_TEST_VALUE", "fallback"); got != "fallback" {
		t.Errorf("expected fallback for empty variable, got %q", got)
	}
	t.Setenv("PAYTRAIL_TEST_VALUE", "set")
	if got := envOr("PAYTRAIL_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("expected variable value, got %q", got)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("PAYTRAIL_TEST_TIMEOUT", "3s")
	if got := envDuration("PAYTRAIL_TEST_TIMEOUT", time.Second); got != 3*time.Second {
		t.Errorf("expected 3s, got %s", got)
	}
	t.Setenv("PAYTRAIL_TEST_TIMEOUT", "soon")
	if got := envDuration("PAYTRAIL_TEST_TIMEOUT", time.Second); got != time.Second {
		t.Errorf("expected fallback for bad duration, got %s", got)
	}
}

func TestFlagsReadEnvironment(t *testing.T) {
	t.Setenv("PAYTRAIL_API_URL", "https://pay.example.com/v1/")
	t.Setenv("PAYTRAIL_TIMEOUT", "2s")

	cmd := NewRootCmd()
	flags := cmd.PersistentFlags()
	if got, _ := flags.GetString("api-url"); got != "https://pay.example.com/v1/" {
		t.Errorf("api-url: got %q", got)
	}
	if got, _ := flags.GetDuration("timeout"); got != 2*time.Second {
		t.Errorf("timeout: got %s", got)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "paytrail v"+Version) {
		t.Errorf("unexpected output %q", out)
	}
}

func TestTimelineCommandTable(t *testing.T) {
	ts := newSeededServer(t)
	out, err := execute(t, "timeline", "--api-url", ts.URL, "--token", "tok", "--locale", "en-US")
	if err != nil {
		t.Fatalf("timeline failed: %v\n%s", err, out)
	}
	placed := strings.Index(out, "Order Placed")
	settled := strings.Index(out, "Settlement Completed")
	if placed < 0 || settled < 0 || placed > settled {
		t.Errorf("expected the seeded lifecycle oldest first:\n%s", out)
	}
	if !strings.Contains(out, "ago") {
		t.Errorf("expected relative times in the table:\n%s", out)
	}
}

func TestTimelineCommandJSON(t *testing.T) {
	ts := newSeededServer(t)
	out, err := execute(t, "timeline", "--json", "--api-url", ts.URL, "--token", "tok")
	if err != nil {
		t.Fatalf("timeline --json failed: %v", err)
	}
	var resp timeline.Response
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if !resp.Success || len(resp.Timeline) != 5 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestTimelineCommandUnauthorized(t *testing.T) {
	ts := newSeededServer(t)
	if _, err := execute(t, "timeline", "--api-url", ts.URL, "--token", "wrong"); err == nil {
		t.Fatal("expected an error for a rejected token")
	}
}

func TestWriteTimelineTableEmpty(t *testing.T) {
	var out bytes.Buffer
	writeTimelineTable(&out, &timeline.Response{Success: true}, timeutil.NewFormatter("en-US", time.UTC), time.Now())
	if strings.TrimSpace(out.String()) != "No timeline data found." {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestStatusCommand(t *testing.T) {
	ts := newSeededServer(t)
	out, err := execute(t, "status", "--api-url", ts.URL)
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	for _, want := range []string{"running", "Timeline requests", "Uptime"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestSeedCommandInMemory(t *testing.T) {
	out, err := execute(t, "seed", "--db", ":memory:", "--seed-token", "tok")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if !strings.Contains(out, "Seeded 5 events") {
		t.Errorf("unexpected output %q", out)
	}
}

// TestClientsCommand seeds a database file and lists it back.
func TestClientsCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "paytrail.db")
	if _, err := execute(t, "seed", "--db", db, "--client", "acme", "--seed-token", "tok-a"); err != nil {
		t.Fatalf("seed acme failed: %v", err)
	}
	if _, err := execute(t, "seed", "--db", db, "--client", "globex", "--seed-token", "tok-g"); err != nil {
		t.Fatalf("seed globex failed: %v", err)
	}

	out, err := execute(t, "clients", "--db", db)
	if err != nil {
		t.Fatalf("clients failed: %v\n%s", err, out)
	}
	acme, globex := strings.Index(out, "acme"), strings.Index(out, "globex")
	if acme < 0 || globex < 0 || acme > globex {
		t.Errorf("expected both clients ordered by name:\n%s", out)
	}
	if strings.Contains(out, "tok-a") {
		t.Error("tokens must not be printed")
	}

	out, err = execute(t, "clients", "--db", db, "--name", "globex")
	if err != nil {
		t.Fatalf("clients --name failed: %v", err)
	}
	if strings.Contains(out, "acme") || !strings.Contains(out, "globex") {
		t.Errorf("expected only globex:\n%s", out)
	}
}

func TestWriteClientsTableEmpty(t *testing.T) {
	store, err := database.NewDBService(":memory:")
	if err != nil {
		t.Fatalf("NewDBService failed: %v", err)
	}
	defer store.Close()

	var out bytes.Buffer
	if err := writeClientsTable(&out, store, database.ClientFilter{}, time.Now()); err != nil {
		t.Fatalf("writeClientsTable failed: %v", err)
	}
	if strings.TrimSpace(out.String()) != "No clients found." {
		t.Errorf("unexpected output %q", out.String())
	}
}
