package system

import (
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/grove/internal/cli/clitest"
	"github.com/julianstephens/grove/internal/storage/sqlite"
)

func TestDoctorCmd_HealthyDB(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := clitest.New(t, clitest.Morning, "")

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Errorf("doctor command failed on healthy database: %v\n%s", err, out)
	}
	for _, want := range []string{"✓ Store reachable", "✓ Schema version", "morning open"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctorCmd_NewerSchema(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := clitest.New(t, clitest.Morning, "")

	store, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		t.Fatal("expected sqlite store")
	}
	db := store.GetDB()
	if _, err := db.Exec("DELETE FROM schema_version"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (999)"); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail on a schema newer than the binary")
	}
	if !strings.Contains(out.String(), "❌ Schema version") {
		t.Errorf("output should flag the schema:\n%s", out)
	}
}

func TestDoctorCmd_MissingStore(t *testing.T) {
	gokeyring.MockInit()
	ctx, _ := setupTestInitDB(t)

	var sb strings.Builder
	ctx.Out = &sb
	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor should fail when the store was never initialized")
	}
	if !strings.Contains(sb.String(), "SKIPPED") {
		t.Errorf("schema check should be skipped:\n%s", sb.String())
	}
}
