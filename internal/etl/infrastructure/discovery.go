package infrastructure

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	shareddomain "quickshop/internal/shared/domain"
	sharedinfra "quickshop/internal/shared/infrastructure"
)

// digitRun une suite maximale de chiffres; seules les suites de 8 chiffres
// exactement sont des tokens de date (YYYYMMDD).
var digitRun = regexp.MustCompile(`\d+`)

// FileDiscoverer trouve les extractions de commandes par motif glob
type FileDiscoverer struct {
	logger *sharedinfra.Logger
}

// NewFileDiscoverer crée un nouveau discoverer
func NewFileDiscoverer(logger *sharedinfra.Logger) *FileDiscoverer {
	return &FileDiscoverer{logger: logger}
}

// Discover retourne les fichiers de dir correspondant au motif, triés par chemin.
// Si la période est bornée, les fichiers sont filtrés sur le token de date de leur nom.
func (d *FileDiscoverer) Discover(dir, pattern string, dateRange shareddomain.DateRange) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	d.logger.Debugf("discovered %d order files using pattern %s", len(matches), pattern)

	if !dateRange.IsBounded() {
		return matches, nil
	}

	kept := make([]string, 0, len(matches))
	for _, path := range matches {
		if d.keep(path, dateRange) {
			kept = append(kept, path)
		}
	}
	d.logger.Debugf("after filename-date filter: %d files remain", len(kept))
	return kept, nil
}

// keep applique le filtre conservateur sur le nom de fichier:
//   - aucun token: gardé (la date sera filtrée ligne à ligne)
//   - un token valide: gardé ssi dans la période
//   - token invalide ou plusieurs tokens: exclu
func (d *FileDiscoverer) keep(path string, dateRange shareddomain.DateRange) bool {
	tokens := DateTokens(filepath.Base(path))
	switch len(tokens) {
	case 0:
		return true
	case 1:
		day, err := time.Parse(shareddomain.DateTokenLayout, tokens[0])
		if err != nil {
			d.logger.Debugf("skipping file with invalid date token: %s", filepath.Base(path))
			return false
		}
		return dateRange.Contains(day)
	default:
		d.logger.Debugf("skipping file with ambiguous date tokens %v: %s", tokens, filepath.Base(path))
		return false
	}
}

// DateTokens retourne les tokens de 8 chiffres du nom de fichier (sans extension)
func DateTokens(name string) []string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	var tokens []string
	for _, run := range digitRun.FindAllString(stem, -1) {
		if len(run) == 8 {
			tokens = append(tokens, run)
		}
	}
	return tokens
}
