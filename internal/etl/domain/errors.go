package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Erreurs sentinelles (utilisables avec errors.Is)
var (
	ErrMissingInput     = errors.New("missing input")
	ErrNoMatchingFiles  = errors.New("no matching order files")
	ErrSchema           = errors.New("schema error")
	ErrValidation       = errors.New("validation error")
	ErrWrite            = errors.New("write error")
	ErrJoinCardinality  = errors.New("join cardinality violation")
	ErrInvalidRunConfig = errors.New("invalid run config")
	ErrTableNotFound    = errors.New("table not found")
)

// MissingInputError fichier de référence obligatoire absent
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("required input file not found: %s", e.Path)
}

func (e *MissingInputError) Unwrap() error { return ErrMissingInput }

// NoMatchingFilesError aucune extraction de commandes trouvée (mode batch)
type NoMatchingFilesError struct {
	Dir     string
	Pattern string
	Range   string
}

func (e *NoMatchingFilesError) Error() string {
	return fmt.Sprintf("no order files matching %q in %s for range %s", e.Pattern, e.Dir, e.Range)
}

func (e *NoMatchingFilesError) Unwrap() error { return ErrNoMatchingFiles }

// SchemaError colonnes obligatoires absentes (toutes listées, pas seulement la première)
type SchemaError struct {
	Kind    RecordKind
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("[%s] missing columns: %s", e.Kind, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchema }

// ValidationError une cellule ne peut pas être convertie dans son type logique
type ValidationError struct {
	Kind   RecordKind
	Column string
	Type   LogicalType
	Row    int // 1-based, hors en-tête
	Value  string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("failed to coerce %s.%s to %s (row %d, value %q): %v",
		e.Kind, e.Column, e.Type, e.Row, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() []error { return []error{ErrValidation, e.Err} }

// WriteError échec de l'écriture d'un artefact
type WriteError struct {
	Target string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Target, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// JoinCardinalityError une clé de référence correspond à plusieurs lignes
type JoinCardinalityError struct {
	Kind      RecordKind
	ProductID int64
}

func (e *JoinCardinalityError) Error() string {
	return fmt.Sprintf("[%s] product_id %d maps to more than one row (expected many-to-one)", e.Kind, e.ProductID)
}

func (e *JoinCardinalityError) Unwrap() error { return ErrJoinCardinality }
