package repository

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pipeline_rescue/internal/logger"
	"pipeline_rescue/internal/scoring"
)

const (
	sitesFile   = "pipelines_ru.csv"
	mappingFile = "mapping_codes.csv"
	puzzleImage = "poutine_bears.png"
)

// Site is one pipeline site from the catalog.
type Site struct {
	Code     string
	Features scoring.Features
}

// SiteRepository serves the game's static data: the pipeline site catalog,
// the site→shutdown-code mapping and the decoy files per country. Everything
// is loaded once at startup; a round never mutates it.
type SiteRepository struct {
	dataDir string
	sites   map[string]Site
	order   []string
	mapping map[string]string
}

// NewSiteRepository loads the catalog from dataDir. Missing files are logged
// and tolerated so the server can come up degraded, same as a missing model.
func NewSiteRepository(dataDir string) *SiteRepository {
	r := &SiteRepository{
		dataDir: dataDir,
		sites:   make(map[string]Site),
		mapping: make(map[string]string),
	}

	if err := r.loadSites(); err != nil {
		logger.Warn("site catalog not loaded", "file", sitesFile, "err", err)
	}
	if err := r.loadMapping(); err != nil {
		logger.Warn("shutdown-code mapping not loaded", "file", mappingFile, "err", err)
	}
	return r
}

func (r *SiteRepository) loadSites() error {
	rows, header, err := readSemicolonCSV(filepath.Join(r.dataDir, sitesFile))
	if err != nil {
		return err
	}

	idx, err := columnIndex(header, "site_code", "lat", "lon", "capacity", "year")
	if err != nil {
		return err
	}

	for _, row := range rows {
		if len(row) < len(header) {
			continue
		}
		code := strings.TrimSpace(row[idx["site_code"]])
		if code == "" {
			continue
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(row[idx["lat"]]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(row[idx["lon"]]), 64)
		capacity, err3 := strconv.ParseFloat(strings.TrimSpace(row[idx["capacity"]]), 64)
		year, err4 := strconv.Atoi(strings.TrimSpace(row[idx["year"]]))
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			logger.Warn("skipping malformed site row", "site", code)
			continue
		}
		if _, dup := r.sites[code]; !dup {
			r.order = append(r.order, code)
		}
		r.sites[code] = Site{
			Code:     code,
			Features: scoring.Features{Lat: lat, Lon: lon, Capacity: capacity, Year: year},
		}
	}
	return nil
}

func (r *SiteRepository) loadMapping() error {
	rows, header, err := readSemicolonCSV(filepath.Join(r.dataDir, mappingFile))
	if err != nil {
		return err
	}

	idx, err := columnIndex(header, "site_code", "shutdown_code")
	if err != nil {
		return err
	}

	for _, row := range rows {
		if len(row) < len(header) {
			continue
		}
		code := strings.TrimSpace(row[idx["site_code"]])
		secret := strings.TrimSpace(row[idx["shutdown_code"]])
		if code == "" || secret == "" {
			continue
		}
		r.mapping[code] = secret
	}
	return nil
}

// Site looks a site up by code, ignoring surrounding whitespace.
func (r *SiteRepository) Site(code string) (Site, bool) {
	s, ok := r.sites[strings.TrimSpace(code)]
	return s, ok
}

// Sites returns the catalog in file order.
func (r *SiteRepository) Sites() []Site {
	out := make([]Site, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.sites[code])
	}
	return out
}

// Mapping returns a copy of the static site→shutdown-code mapping.
func (r *SiteRepository) Mapping() map[string]string {
	out := make(map[string]string, len(r.mapping))
	for k, v := range r.mapping {
		out[k] = v
	}
	return out
}

// CountryCSVPath resolves the decoy (or real) pipeline file for a country
// code like "RU" or "IN".
func (r *SiteRepository) CountryCSVPath(code string) (string, bool) {
	name := fmt.Sprintf("pipelines_%s.csv", strings.ToLower(strings.TrimSpace(code)))
	path := filepath.Join(r.dataDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// PuzzleImagePath resolves the puzzle image file.
func (r *SiteRepository) PuzzleImagePath() (string, bool) {
	path := filepath.Join(r.dataDir, puzzleImage)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

func readSemicolonCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", filepath.Base(path))
	}
	return records[1:], records[0], nil
}

func columnIndex(header []string, names ...string) (map[string]int, error) {
	idx := make(map[string]int, len(names))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, name := range names {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return idx, nil
}
