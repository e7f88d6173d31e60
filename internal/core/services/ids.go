package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/docmerge/internal/core/domain"
)

// idNamespace scopes the name-based ids minted for units and terms.
var idNamespace = uuid.MustParse("6f1c2a4e-9d3b-5e7f-8a1b-2c3d4e5f6a7b")

// UnitID returns the stable id of the unit at path within a source.
func UnitID(sourceID string, path domain.Path) string {
	return uuid.NewSHA1(idNamespace, []byte("unit:"+sourceID+"#"+path.String())).String()
}

// TermID returns the stable id of a term within a source.
func TermID(sourceID, term string) string {
	return uuid.NewSHA1(idNamespace, []byte("term:"+sourceID+"#"+strings.ToLower(term))).String()
}

// newGroupID mints a fresh similarity group id.
func newGroupID() string {
	return uuid.New().String()
}
