package domain

import "strings"

// Properties are the flat key/value pairs of stats_collected.properties.
type Properties map[string]string

// Lookup returns the first non-placeholder value among keys.
func (p Properties) Lookup(keys ...string) string {
	for _, key := range keys {
		if v, ok := p[key]; ok && !IsPlaceholder(v) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// OperationalRecord is one row of an on-device tbData log, keyed by header.
type OperationalRecord map[string]string

func (o OperationalRecord) Get(column string) string {
	return strings.TrimSpace(o[column])
}

// Recomputed holds the values reconstructed from the parsed device logs.
type Recomputed struct {
	ContentPackage string
	Firmware       string
}

// Sources are the inputs merged into the output rows, in precedence order:
// tbData, then properties overriding per field, then recomputed values, then
// defaults.
type Sources struct {
	TBData     OperationalRecord
	Properties Properties
	Recomputed Recomputed
}

type fieldSource struct {
	tbData     string
	properties []string
}

var collectedFields = map[string]fieldSource{
	"talkingbookid":      {tbData: "IN-SN", properties: []string{"talkingbookid", "serialnumber"}},
	"recipientid":        {tbData: "IN-RECIPIENTID", properties: []string{"recipientid"}},
	"collectedtimestamp": {tbData: "UPDATE_DATE_TIME", properties: []string{"collectedtimestamp", "timestamp"}},
	"project":            {tbData: "PROJECT", properties: []string{"project"}},
	"deployment":         {tbData: "IN-DEPLOYMENT", properties: []string{"deployment"}},
	"contentpackage":     {tbData: "IN-IMAGE", properties: []string{"contentpackage", "package"}},
	"firmware":           {tbData: "IN-FW-REV", properties: []string{"firmware"}},
	"location":           {tbData: "LOCATION", properties: []string{"location"}},
	"latitude":           {tbData: "LATITUDE", properties: []string{"latitude"}},
	"longitude":          {tbData: "LONGITUDE", properties: []string{"longitude"}},
	"username":           {tbData: "USERNAME", properties: []string{"username"}},
	"tbcdid":             {tbData: "TBCDID", properties: []string{"tbcdid"}},
	"action":             {tbData: "ACTION", properties: []string{"action"}},
	"testing":            {tbData: "TESTING", properties: []string{"testing"}},
	"deployment_uuid":    {tbData: "IN-DEPLOYMENT-UUID", properties: []string{"deployment_uuid"}},
	"collection_uuid":    {tbData: "STATS-UUID", properties: []string{"collection_uuid", "stats_uuid"}},
}

var deployedFields = map[string]fieldSource{
	"talkingbookid":     {tbData: "OUT-SN", properties: []string{"new_talkingbookid", "talkingbookid", "serialnumber"}},
	"recipientid":       {tbData: "OUT-RECIPIENTID", properties: []string{"new_recipientid"}},
	"deployedtimestamp": {tbData: "UPDATE_DATE_TIME", properties: []string{"deployedtimestamp", "timestamp"}},
	"project":           {tbData: "PROJECT", properties: []string{"new_project", "project"}},
	"deployment":        {tbData: "OUT-DEPLOYMENT", properties: []string{"new_deployment"}},
	"contentpackage":    {tbData: "OUT-IMAGE", properties: []string{"new_contentpackage", "new_package"}},
	"firmware":          {tbData: "OUT-FW-REV", properties: []string{"new_firmware"}},
	"location":          {tbData: "LOCATION", properties: []string{"location"}},
	"latitude":          {tbData: "LATITUDE", properties: []string{"latitude"}},
	"longitude":         {tbData: "LONGITUDE", properties: []string{"longitude"}},
	"username":          {tbData: "USERNAME", properties: []string{"username"}},
	"tbcdid":            {tbData: "TBCDID", properties: []string{"tbcdid"}},
	"action":            {tbData: "ACTION", properties: []string{"action"}},
	"newsn":             {tbData: "NEW-SN", properties: []string{"newsn"}},
	"testing":           {tbData: "TESTING", properties: []string{"testing"}},
	"deployment_uuid":   {tbData: "OUT-DEPLOYMENT-UUID", properties: []string{"new_deployment_uuid"}},
}

var (
	collectedKeyColumns = []string{"talkingbookid", "deployment", "project"}
	deployedKeyColumns  = []string{"talkingbookid", "deployment", "project"}
)

// tbDataUsable reports whether the tbData record populates every key column
// of the table with a real value.
func tbDataUsable(rec OperationalRecord, fields map[string]fieldSource, keys []string) bool {
	if len(rec) == 0 {
		return false
	}
	for _, key := range keys {
		if IsPlaceholder(rec.Get(fields[key].tbData)) {
			return false
		}
	}
	return true
}

func merge(table Table, fields map[string]fieldSource, keys []string, src Sources) Row {
	row := NewRow(table)
	if tbDataUsable(src.TBData, fields, keys) {
		for _, c := range table.Columns {
			if v := src.TBData.Get(fields[c].tbData); !IsPlaceholder(v) {
				row.Set(c, v)
			}
		}
	}
	for _, c := range table.Columns {
		if v := src.Properties.Lookup(fields[c].properties...); v != "" {
			row.Set(c, v)
		}
	}
	return row
}

// BuildCollected merges the collection row. The identity column stays empty
// when no source supplies it; callers assign one.
func BuildCollected(src Sources) Row {
	row := merge(CollectedTable, collectedFields, collectedKeyColumns, src)
	row.Fill("contentpackage", src.Recomputed.ContentPackage)
	row.Fill("firmware", src.Recomputed.Firmware)
	row.Fill("testing", "f")
	return row.Normalize()
}

func BuildDeployed(src Sources) Row {
	row := merge(DeployedTable, deployedFields, deployedKeyColumns, src)
	row.Fill("testing", "f")
	row.Fill("newsn", "f")
	return row.Normalize()
}

var statsOnlyActions = map[string]bool{
	"stats":         true,
	"stats-only":    true,
	"statsonly":     true,
	"collect-stats": true,
}

// IsStatsOnly reports an action that collected statistics without deploying
// content.
func IsStatsOnly(action string) bool {
	return statsOnlyActions[strings.ToLower(strings.TrimSpace(action))]
}
