package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boothsync/internal/insights"
	"github.com/roach88/boothsync/internal/settings"
	"github.com/roach88/boothsync/internal/store"
	"github.com/roach88/boothsync/internal/survey"
	"github.com/roach88/boothsync/internal/transport"
)

const testPIN = settings.DefaultAdminPIN

type result struct {
	code   int
	stdout string
	stderr string
}

// run executes the CLI against dbPath with no dotenv file.
func run(t *testing.T, dbPath string, args ...string) result {
	t.Helper()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	full := append([]string{"--db", dbPath, "--env-file", ""}, args...)
	code := Execute(context.Background(), full, stdout, stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func testDB(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func storedResponses(t *testing.T, dbPath string) []survey.Response {
	t.Helper()
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	rs, err := st.ListResponses(context.Background())
	require.NoError(t, err)
	return rs
}

func submitArgs(first string, nps string) []string {
	return []string{"submit", "--first", first, "--last", "Gómez", "--email", first + "@example.com", "--nps", nps}
}

func TestSubmitAndStatus(t *testing.T) {
	db := testDB(t, "booth.db")

	res := run(t, db, append(submitArgs("ana", "9"), "--role", "Contratista", "--interested", "--product", "Gator")...)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "saved")

	rs := storedResponses(t, db)
	require.Len(t, rs, 1)
	assert.NotEmpty(t, rs[0].ID)
	assert.NotEmpty(t, rs[0].DeviceID)
	assert.Equal(t, survey.RoleContractor, rs[0].Role)
	assert.Equal(t, []string{"Gator"}, rs[0].SelectedProducts)
	assert.False(t, rs[0].IsSynced())

	res = run(t, db, "--format", "json", "status")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var resp struct {
		Status string       `json:"status"`
		Data   StatusResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Data.Pending)
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, rs[0].DeviceID, resp.Data.DeviceID)
	assert.True(t, resp.Data.DevicePersisted)
	assert.Equal(t, settings.DefaultStandID, resp.Data.StandID)
}

func TestSubmit_DeviceIDStable(t *testing.T) {
	db := testDB(t, "booth.db")
	require.Equal(t, ExitSuccess, run(t, db, submitArgs("ana", "9")...).code)
	require.Equal(t, ExitSuccess, run(t, db, submitArgs("luis", "4")...).code)

	rs := storedResponses(t, db)
	require.Len(t, rs, 2)
	assert.Equal(t, rs[0].DeviceID, rs[1].DeviceID)
	assert.NotEqual(t, rs[0].ID, rs[1].ID)
}

func TestSubmit_Rejected(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no score", []string{"submit", "--first", "Ana", "--last", "G", "--email", "a@b.c"}},
		{"score out of range", []string{"submit", "--first", "Ana", "--last", "G", "--email", "a@b.c", "--nps", "11"}},
		{"email without at", []string{"submit", "--first", "Ana", "--last", "G", "--email", "ana", "--nps", "5"}},
		{"blank name", []string{"submit", "--first", " ", "--last", "G", "--email", "a@b.c", "--nps", "5"}},
		{"interest without product", []string{"submit", "--first", "Ana", "--last", "G", "--email", "a@b.c", "--nps", "5", "--interested"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t, "booth.db")
			res := run(t, db, tt.args...)
			assert.Equal(t, ExitFailure, res.code)
			assert.Contains(t, res.stderr, "Error [E001]")
			assert.Empty(t, storedResponses(t, db))
		})
	}
}

func TestAdminCommands_RequirePIN(t *testing.T) {
	db := testDB(t, "booth.db")
	commands := [][]string{
		{"stats"},
		{"responses"},
		{"export", "report", "--out", "-"},
		{"clear", "--yes"},
		{"config", "show"},
		{"insights"},
	}
	for _, args := range commands {
		t.Run(args[0], func(t *testing.T) {
			res := run(t, db, append([]string{"--pin", "0000"}, args...)...)
			assert.Equal(t, ExitFailure, res.code)
			assert.Contains(t, res.stderr, "Error [E005]")
		})
	}
}

func TestExportImport_TwoDevices(t *testing.T) {
	dir := t.TempDir()
	tabletA := filepath.Join(dir, "a.db")
	tabletB := filepath.Join(dir, "b.db")
	snapshot := filepath.Join(dir, "a.json")

	require.Equal(t, ExitSuccess, run(t, tabletA, submitArgs("ana", "10")...).code)
	require.Equal(t, ExitSuccess, run(t, tabletA, submitArgs("eva", "5")...).code)
	require.Equal(t, ExitSuccess, run(t, tabletB, submitArgs("luis", "0")...).code)

	res := run(t, tabletA, "--pin", testPIN, "export", "snapshot", "--out", snapshot)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Exported 2 responses")

	// Exported records are no longer pending on the exporting device.
	for _, r := range storedResponses(t, tabletA) {
		assert.True(t, r.IsSynced())
	}

	res = run(t, tabletB, "--pin", testPIN, "import", snapshot)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "2 added, 0 duplicates")

	res = run(t, tabletB, "--pin", testPIN, "--format", "json", "import", snapshot)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var resp struct {
		Data []ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 0, resp.Data[0].Added)
	assert.Equal(t, 2, resp.Data[0].Duplicates)

	merged := storedResponses(t, tabletB)
	require.Len(t, merged, 3)
	assert.Equal(t, "luis", merged[0].FirstName)
	assert.Equal(t, "ana", merged[1].FirstName)
	assert.Equal(t, "eva", merged[2].FirstName)
	assert.NotEqual(t, merged[0].DeviceID, merged[1].DeviceID)
}

func TestExportSnapshot_DefaultFilename(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "booth.db")
	t.Chdir(dir)

	res := run(t, db, "--pin", testPIN, "export", "snapshot")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	matches, err := filepath.Glob(filepath.Join(dir, "respuestas_"+settings.DefaultStandID+"_*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestExportSnapshot_UnwritableOutKeepsRecordsPending(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "booth.db")
	require.Equal(t, ExitSuccess, run(t, db, submitArgs("ana", "9")...).code)

	out := filepath.Join(dir, "missing-dir", "out.json")
	res := run(t, db, "--pin", testPIN, "export", "snapshot", "--out", out)
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "failed to export snapshot")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
	assert.False(t, storedResponses(t, db)[0].IsSynced(), "no snapshot was written")

	res = run(t, db, "status")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Pending: 1")
}

func TestExportSnapshot_ReportsEncodedCount(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "booth.db")
	require.Equal(t, ExitSuccess, run(t, db, submitArgs("ana", "9")...).code)
	require.Equal(t, ExitSuccess, run(t, db, submitArgs("eva", "4")...).code)

	out := filepath.Join(dir, "snap.json")
	res := run(t, db, "--pin", testPIN, "--format", "json", "export", "snapshot", "--out", out)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var resp struct {
		Data ExportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	batch, err := transport.ParseSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, len(batch), resp.Data.Records)
	assert.Equal(t, len(data), resp.Data.Bytes)

	// No temporary files are left next to the export.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

func TestExportReport_Stdout(t *testing.T) {
	db := testDB(t, "booth.db")
	require.Equal(t, ExitSuccess, run(t, db, submitArgs("ana", "7")...).code)

	res := run(t, db, "--pin", testPIN, "export", "report", "--out", "-")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.True(t, bytes.HasPrefix([]byte(res.stdout), []byte("\xEF\xBB\xBFID,Fecha,Nombre")))
	assert.Contains(t, res.stdout, ",ana,Gómez,ana@example.com,Productor,7,No,\"\",")

	// Reports do not mark anything synced.
	assert.False(t, storedResponses(t, db)[0].IsSynced())
}

func TestImport_MalformedSnapshot(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "booth.db")
	require.Equal(t, ExitSuccess, run(t, db, submitArgs("ana", "7")...).code)

	bad := writeFile(t, dir, "bad.json", `{"foo":1}`)
	res := run(t, db, "--pin", testPIN, "import", bad)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error [E002]")
	assert.Len(t, storedResponses(t, db), 1)

	res = run(t, db, "--pin", testPIN, "--format", "json", "import", bad)
	assert.Equal(t, ExitFailure, res.code)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeFormat, resp.Error.Code)
}

func TestImport_LenientFieldTypes(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "booth.db")
	batch := writeFile(t, dir, "loose.json",
		`[{"id":"f-1","nps":9.0},{"id":"f-2","nps":"7"},{"id":"f-3","nps":null},{"id":"f-4"}]`)

	res := run(t, db, "--pin", testPIN, "import", batch)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "4 added, 0 duplicates")

	rs := storedResponses(t, db)
	require.Len(t, rs, 4)
	assert.Equal(t, 9, rs[0].NPS)
	assert.Equal(t, 7, rs[1].NPS)
	assert.Equal(t, survey.NPSUnanswered, rs[2].NPS)
	assert.Equal(t, survey.NPSUnanswered, rs[3].NPS)

	res = run(t, db, "--pin", testPIN, "--format", "json", "stats")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var resp struct {
		Data struct {
			Count      int     `json:"count"`
			AverageNPS float64 `json:"averageNps"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, 4, resp.Data.Count)
	assert.InDelta(t, 8.0, resp.Data.AverageNPS, 1e-9, "unscored records are left out of the average")
}

func TestImport_MissingFile(t *testing.T) {
	db := testDB(t, "booth.db")
	res := run(t, db, "--pin", testPIN, "import", filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, ExitCommandError, res.code)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "booth.db")
	snapshot := filepath.Join(dir, "backup.json")
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		require.Equal(t, ExitSuccess, run(t, db, submitArgs(name, "8")...).code)
	}
	require.Equal(t, ExitSuccess, run(t, db, "--pin", testPIN, "export", "snapshot", "--out", snapshot).code)

	res := run(t, db, "--pin", testPIN, "clear")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error [E006]")
	assert.Len(t, storedResponses(t, db), 5)

	res = run(t, db, "--pin", testPIN, "clear", "--yes")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Empty(t, storedResponses(t, db))

	// A cleared store treats the earlier export as entirely new.
	res = run(t, db, "--pin", testPIN, "import", snapshot)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "5 added, 0 duplicates")
}

func TestStats_JSON(t *testing.T) {
	db := testDB(t, "booth.db")
	for i, nps := range []string{"10", "5", "0"} {
		require.Equal(t, ExitSuccess, run(t, db, submitArgs(string(rune('a'+i)), nps)...).code)
	}

	res := run(t, db, "--pin", testPIN, "--format", "json", "stats")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var resp struct {
		Data struct {
			Count            int            `json:"count"`
			AverageNPS       float64        `json:"averageNps"`
			PendingSync      int            `json:"pendingSync"`
			RoleDistribution map[string]int `json:"roleDistribution"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, 3, resp.Data.Count)
	assert.InDelta(t, 5.0, resp.Data.AverageNPS, 1e-9)
	assert.Equal(t, 3, resp.Data.PendingSync)
	assert.Equal(t, map[string]int{"Productor": 3}, resp.Data.RoleDistribution)
}

func TestStats_TextEmpty(t *testing.T) {
	res := run(t, testDB(t, "booth.db"), "--pin", testPIN, "stats")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Responses:     0")
	assert.Contains(t, res.stdout, "Average NPS:   0.0")
}

func TestResponses_List(t *testing.T) {
	db := testDB(t, "booth.db")
	require.Equal(t, ExitSuccess, run(t, db, submitArgs("ana", "9")...).code)

	res := run(t, db, "--pin", testPIN, "responses")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "ana Gómez <ana@example.com>")

	res = run(t, db, "--pin", testPIN, "--format", "json", "responses", "--pending")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var resp struct {
		Data []survey.Response `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 9, resp.Data[0].NPS)
}

func TestConfig_SectorStampsNewResponses(t *testing.T) {
	db := testDB(t, "booth.db")

	res := run(t, db, "--pin", testPIN, "config", "set-sector", "Pabellón Verde")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Sector:    PABELLÓN VERDE")

	require.Equal(t, ExitSuccess, run(t, db, submitArgs("ana", "9")...).code)
	assert.Equal(t, "PABELLÓN VERDE", storedResponses(t, db)[0].SectorName)
}

func TestConfig_SetPIN(t *testing.T) {
	db := testDB(t, "booth.db")

	res := run(t, db, "--pin", testPIN, "config", "set-pin", "AbC9")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Admin PIN: ****")
	assert.NotContains(t, res.stdout, "AbC9")

	assert.Equal(t, ExitFailure, run(t, db, "--pin", testPIN, "config", "show").code)
	assert.Equal(t, ExitSuccess, run(t, db, "--pin", "abc9", "config", "show").code)
	assert.Equal(t, ExitSuccess, run(t, db, "--pin", " abc9 ", "config", "show").code)
}

func TestConfig_Products(t *testing.T) {
	db := testDB(t, "booth.db")

	res := run(t, db, "--pin", testPIN, "config", "products", "add", "Drones de pulverización")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "- Drones de pulverización")

	res = run(t, db, "--pin", testPIN, "config", "products", "add", "Drones de pulverización")
	assert.Equal(t, ExitFailure, res.code)

	res = run(t, db, "--pin", testPIN, "config", "products", "remove", "Drones de pulverización")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.NotContains(t, res.stdout, "Drones")

	res = run(t, db, "--pin", testPIN, "config", "products", "remove", "Drones de pulverización")
	assert.Equal(t, ExitFailure, res.code)
}

func TestConfig_LoadProfile(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "booth.db")
	profile := writeFile(t, dir, "expo.yaml", `
standId: expoagro-2025
sectorName: Pabellón Verde
availableProducts:
  - Tractores Serie 8
`)

	res := run(t, db, "--pin", testPIN, "--format", "json", "config", "load-profile", profile)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	var resp struct {
		Data ConfigView `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "expoagro-2025", resp.Data.StandID)
	assert.Equal(t, "PABELLÓN VERDE", resp.Data.SectorName)
	assert.Equal(t, []string{"Tractores Serie 8"}, resp.Data.AvailableProducts)

	// The PIN was not part of the profile and still works.
	assert.Equal(t, ExitSuccess, run(t, db, "--pin", testPIN, "config", "show").code)
}

func TestConfig_LoadProfileInvalid(t *testing.T) {
	dir := t.TempDir()
	profile := writeFile(t, dir, "bad.yaml", "standId: 42\n")

	res := run(t, filepath.Join(dir, "booth.db"), "--pin", testPIN, "config", "load-profile", profile)
	assert.Equal(t, ExitFailure, res.code)
}

func TestInsights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Los productores valoran el stand."}]}}]}`))
	}))
	t.Cleanup(srv.Close)

	db := testDB(t, "booth.db")
	require.Equal(t, ExitSuccess, run(t, db, submitArgs("ana", "9")...).code)

	res := run(t, db, "--pin", testPIN, "insights", "--api-key", "k", "--base-url", srv.URL)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, "Los productores valoran el stand.\n", res.stdout)
}

func TestInsights_FallbackWithoutKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	res := run(t, testDB(t, "booth.db"), "--pin", testPIN, "insights")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, insights.FallbackError+"\n", res.stdout)
}

func TestMemoryDatabase(t *testing.T) {
	res := run(t, MemoryDatabase, submitArgs("ana", "9")...)
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	// Each invocation starts from an empty store.
	res = run(t, MemoryDatabase, "status")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Total:   0")
}

func TestSnapshotFileIsImportableByTransport(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "booth.db")
	out := filepath.Join(dir, "s.json")
	require.Equal(t, ExitSuccess, run(t, db, submitArgs("ana", "9")...).code)
	require.Equal(t, ExitSuccess, run(t, db, "--pin", testPIN, "export", "snapshot", "-o", out).code)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	batch, err := transport.ParseSnapshot(data)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.False(t, batch[0].IsSynced())
	assert.Equal(t, "ana", batch[0].FirstName)
}
