package domain

import (
	"regexp"
	"strings"
)

// Table is one of the fixed-column output tables.
type Table struct {
	Name    string
	Columns []string
	// IdentityColumn is generated when no source supplies it, and is left out
	// of supplied-versus-recomputed comparisons for that reason.
	IdentityColumn string
}

var CollectedTable = Table{
	Name: "tbscollected",
	Columns: []string{
		"talkingbookid", "recipientid", "collectedtimestamp", "project", "deployment",
		"contentpackage", "firmware", "location", "latitude", "longitude", "username",
		"tbcdid", "action", "testing", "deployment_uuid", "collection_uuid",
	},
	IdentityColumn: "collection_uuid",
}

var DeployedTable = Table{
	Name: "tbsdeployed",
	Columns: []string{
		"talkingbookid", "recipientid", "deployedtimestamp", "project", "deployment",
		"contentpackage", "firmware", "location", "latitude", "longitude", "username",
		"tbcdid", "action", "newsn", "testing", "deployment_uuid",
	},
	IdentityColumn: "deployment_uuid",
}

func (t Table) Has(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Row holds the values of one output row keyed by column name.
type Row struct {
	table  Table
	values map[string]string
}

func NewRow(table Table) Row {
	return Row{table: table, values: map[string]string{}}
}

func (r Row) Table() Table {
	return r.table
}

func (r Row) Get(column string) string {
	return r.values[column]
}

// Set stores a trimmed value; columns outside the table are ignored.
func (r Row) Set(column, value string) {
	if !r.table.Has(column) {
		return
	}
	r.values[column] = strings.TrimSpace(value)
}

// Fill sets column only while it is still empty.
func (r Row) Fill(column, value string) {
	if r.Get(column) == "" {
		r.Set(column, value)
	}
}

func (r Row) Values() []string {
	out := make([]string, len(r.table.Columns))
	for i, c := range r.table.Columns {
		out[i] = r.values[c]
	}
	return out
}

func (r Row) Map() map[string]string {
	out := make(map[string]string, len(r.table.Columns))
	for _, c := range r.table.Columns {
		out[c] = r.values[c]
	}
	return out
}

func (r Row) Clone() Row {
	clone := NewRow(r.table)
	for k, v := range r.values {
		clone.values[k] = v
	}
	return clone
}

var packageSeparators = regexp.MustCompile(`[,;]`)

// Normalize keeps only the first of several content package names. Secondary
// packages are reporting artifacts.
func (r Row) Normalize() Row {
	out := r.Clone()
	pkg := out.Get("contentpackage")
	if packageSeparators.MatchString(pkg) {
		out.Set("contentpackage", FirstPackage(pkg))
	}
	return out
}

func FirstPackage(value string) string {
	for _, part := range packageSeparators.Split(value, -1) {
		if p := strings.TrimSpace(part); p != "" {
			return p
		}
	}
	return ""
}

// Mismatch is a column whose supplied and recomputed values differ.
type Mismatch struct {
	Table      string
	Column     string
	Supplied   string
	Recomputed string
}

// Compare lists the columns where supplied and recomputed rows disagree.
func Compare(supplied, recomputed Row) []Mismatch {
	var out []Mismatch
	for _, c := range supplied.table.Columns {
		if c == supplied.table.IdentityColumn {
			continue
		}
		s, r := supplied.Get(c), recomputed.Get(c)
		if !strings.EqualFold(s, r) {
			out = append(out, Mismatch{Table: supplied.table.Name, Column: c, Supplied: s, Recomputed: r})
		}
	}
	return out
}

var placeholderValues = map[string]bool{
	"unknown":              true,
	"none":                 true,
	"null":                 true,
	"n/a":                  true,
	"-- to be assigned --": true,
}

// IsPlaceholder reports values that stand in for "not known".
func IsPlaceholder(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "" || placeholderValues[v]
}
