package repository

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	sites := "site_code;name;lat;lon;capacity;year\n" +
		"RU-0001;Druzhba;55.7;37.6;100;1980\n" +
		"RU-0002;Sila;59.9;30.3;250;1995\n" +
		";;0;0;0;0\n" +
		"RU-0003;Yamal;56.8;bad;400;2005\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipelines_ru.csv"), []byte(sites), 0o644))

	mapping := "site_code;shutdown_code\nRU-0001;5309\nRU-0002;AB12CD\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mapping_codes.csv"), []byte(mapping), 0o644))

	decoy := "site_code;name;lat;lon;capacity;year\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pipelines_in.csv"), []byte(decoy), 0o644))

	return dir
}

func TestLoadsCatalogAndMapping(t *testing.T) {
	repo := NewSiteRepository(writeDataDir(t))

	sites := repo.Sites()
	require.Len(t, sites, 2, "empty and malformed rows are skipped")
	assert.Equal(t, "RU-0001", sites[0].Code)
	assert.Equal(t, 1980, sites[0].Features.Year)
	assert.Equal(t, 250.0, sites[1].Features.Capacity)

	s, ok := repo.Site(" RU-0002 ")
	require.True(t, ok)
	assert.Equal(t, "RU-0002", s.Code)

	_, ok = repo.Site("RU-9999")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"RU-0001": "5309", "RU-0002": "AB12CD"}, repo.Mapping())
}

func TestMappingReturnsACopy(t *testing.T) {
	repo := NewSiteRepository(writeDataDir(t))

	m := repo.Mapping()
	m["RU-0001"] = "tampered"
	assert.Equal(t, "5309", repo.Mapping()["RU-0001"])
}

func TestCountryCSVPath(t *testing.T) {
	repo := NewSiteRepository(writeDataDir(t))

	path, ok := repo.CountryCSVPath("RU")
	require.True(t, ok)
	assert.Equal(t, "pipelines_ru.csv", filepath.Base(path))

	_, ok = repo.CountryCSVPath("in")
	assert.True(t, ok)

	_, ok = repo.CountryCSVPath("XX")
	assert.False(t, ok)
}

func TestMissingFilesAreTolerated(t *testing.T) {
	repo := NewSiteRepository(t.TempDir())

	assert.Empty(t, repo.Sites())
	assert.Empty(t, repo.Mapping())
	_, ok := repo.PuzzleImagePath()
	assert.False(t, ok)
}
