package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const moduleCSV = "\ufeff" + `year,new_Installed_Capacity_[MW],mod_eff,mod_reliability_t50,mod_reliability_t90,mod_degradation,mod_lifetime,mod_Repairing,mod_Repowering,mod_EOL_collection_eff,mod_EOL_collected_recycled
year,MW,%,years,years,%,years,%,%,%,%
2020,100,16,25,30,0.8,25,0,0,30,40
2021,120,16.2,25,30,0.8,25,0,0,31,41
2022,140,16.4,25,30,0.8,25,0,0,32,42
`

const materialCSV = `year,mat_massperm2,mat_MFG_eff,mat_MFG_scrap_recycled,mat_MFG_scrap_recycling_eff,mat_MFG_scrap_Recycled_into_HQ,mat_MFG_scrap_Recycled_into_HQ_Reused4MFG,mat_EOL_collected_Recycled,mat_EOL_Recycling_eff,mat_EOL_Recycled_into_HQ,mat_EOL_RecycledHQ_Reused4MFG
year,g/m2,%,%,%,%,%,%,%,%,%
2020,16000,95,40,70,30,60,80,65,50,40
2021,15900,95,40,70,30,60,80,65,50,40
2022,15800,95,40,70,30,60,80,65,50,40
`

func writeBaselineDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestIngestDirectory(t *testing.T) {
	repo := newFakeRepo()
	svc := NewIngestionService(repo, testLogger(), testMetrics)

	dir := writeBaselineDir(t, map[string]string{
		"baseline_modules_US.csv":     moduleCSV,
		"baseline_material_glass.csv": materialCSV,
		"notes.txt":                   "ignored",
	})

	result, err := svc.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)

	assert.Equal(t, 2, result.TotalFiles)
	assert.Equal(t, 1, result.ScenariosCreated)
	assert.Equal(t, 1, result.MaterialsCreated)
	assert.Equal(t, 6, result.TotalRows)

	scenario, err := repo.GetScenarioByName(context.Background(), "US")
	require.NoError(t, err)

	rows, err := repo.GetModuleBaseline(context.Background(), scenario.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 2020, rows[0].Year)
	// Capacity is stored in watts.
	assert.InEpsilon(t, 100e6, rows[0].NewInstalledCapacityW, 1e-9)
	assert.Equal(t, 32.0, rows[2].EOLCollectionEffPct)

	materials, err := repo.ListMaterials(context.Background(), scenario.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"glass"}, materials)

	matRows, err := repo.GetMaterialBaseline(context.Background(), scenario.ID, "glass")
	require.NoError(t, err)
	require.Len(t, matRows, 3)
	assert.Equal(t, 15800.0, matRows[2].MassPerM2)
}

func TestIngestDirectoryAttachesMaterialsToEveryScenario(t *testing.T) {
	repo := newFakeRepo()
	svc := NewIngestionService(repo, testLogger(), testMetrics)

	dir := writeBaselineDir(t, map[string]string{
		"baseline_modules_US.csv":     moduleCSV,
		"baseline_modules_EU.csv":     moduleCSV,
		"baseline_material_glass.csv": materialCSV,
	})

	result, err := svc.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ScenariosCreated)

	for _, name := range []string{"US", "EU"} {
		scenario, err := repo.GetScenarioByName(context.Background(), name)
		require.NoError(t, err)
		_, err = repo.GetMaterialBaseline(context.Background(), scenario.ID, "glass")
		assert.NoError(t, err, "scenario %s", name)
	}
}

func TestIngestDirectoryBadFileIsReported(t *testing.T) {
	repo := newFakeRepo()
	svc := NewIngestionService(repo, testLogger(), testMetrics)

	dir := writeBaselineDir(t, map[string]string{
		"baseline_modules_US.csv":  moduleCSV,
		"baseline_modules_bad.csv": "year,mod_eff\nyear,%\n2020,16\n",
	})

	result, err := svc.IngestDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ScenariosCreated)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "baseline_modules_bad.csv")
}

func TestIngestDirectoryNoModuleFiles(t *testing.T) {
	repo := newFakeRepo()
	svc := NewIngestionService(repo, testLogger(), testMetrics)

	dir := writeBaselineDir(t, map[string]string{
		"baseline_material_glass.csv": materialCSV,
	})

	_, err := svc.IngestDirectory(context.Background(), dir)
	require.Error(t, err)
}

func TestReadBaselineCSV(t *testing.T) {
	dir := writeBaselineDir(t, map[string]string{
		"baseline_modules_US.csv": moduleCSV,
	})

	header, records, err := readBaselineCSV(filepath.Join(dir, "baseline_modules_US.csv"))
	require.NoError(t, err)

	// The BOM is stripped from the first column and the units row is not a
	// data record.
	assert.Equal(t, "year", header[0])
	require.Len(t, records, 3)
	assert.Equal(t, "2020", records[0]["year"])
	assert.Equal(t, "100", records[0]["new_Installed_Capacity_[MW]"])
	assert.Equal(t, "42", records[2]["mod_EOL_collected_recycled"])
}

func TestBaselineFileNames(t *testing.T) {
	assert.Equal(t, "USA_highelec", scenarioName("/data/baseline_modules_USA_highelec.csv"))
	assert.Equal(t, "silver", materialName("baseline_material_silver.csv"))
}
