package main

import (
	"flag"
	"fmt"
	"masterdata-web/internal/models"
	"masterdata-web/internal/rules"
	"masterdata-web/internal/service"
	"masterdata-web/internal/utils"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// sampleGroups are the groups a workbook is generated for, per master type.
var sampleGroups = map[models.MasterType][]string{
	models.MasterItem:      {"GENERAL", "PAPER", "REEL", "INK"},
	models.MasterTool:      {"PLATES", "DIES"},
	models.MasterLedger:    {"SUNDRY DEBTORS", "SUNDRY CREDITORS"},
	models.MasterHSN:       {"HSN"},
	models.MasterSparePart: {"BEARINGS"},
}

func main() {
	out := flag.String("out", "./storage/samples", "output directory")
	rows := flag.Int("rows", 10, "clean rows per workbook")
	withErrors := flag.Bool("errors", false, "append a duplicate, a missing and a mismatched row")
	flag.Parse()

	log := utils.GetLogger()
	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.WithError(err).Fatal("Failed to create output directory")
	}

	excel := service.NewExcelService()
	for _, t := range rules.All() {
		for _, name := range sampleGroups[t.Type] {
			group := models.Group{MasterType: t.Type, Name: name}
			data := sampleRows(t, group, *rows, *withErrors)

			buf, err := excel.Export(data, t, group, nil)
			if err != nil {
				log.WithError(err).WithField("group", name).Fatal("Failed to build workbook")
			}

			path := filepath.Join(*out, group.ExpectedFilename())
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				log.WithError(err).WithField("path", path).Fatal("Failed to write workbook")
			}
			log.WithFields(logrus.Fields{
				"master_type": t.Type,
				"path":        path,
				"rows":        len(data),
			}).Info("Workbook generated")
		}
	}
}

// sampleRows builds n rows that validate clean against the sample reference lists. With
// withErrors a duplicate, a row missing a required field and a unit mismatch are appended.
func sampleRows(t *rules.Table, group models.Group, n int, withErrors bool) []models.Row {
	rows := make([]models.Row, 0, n+3)
	for i := 0; i < n; i++ {
		rows = append(rows, sampleRow(t, i+1))
	}
	t.ApplyDerivations(rows, group)

	if withErrors && n > 0 {
		rows = append(rows, rows[0].Clone())

		missing := sampleRow(t, n+1)
		for _, key := range t.RequiredFor(group) {
			if !isKeyField(t, key) {
				delete(missing, key)
				break
			}
		}
		rows = append(rows, missing)

		mismatch := sampleRow(t, n+2)
		for _, f := range t.Fields {
			if f.Reference == rules.RefUnit || f.Reference == rules.RefCountry {
				mismatch[f.Key] = "UNKNOWN"
				break
			}
		}
		rows = append(rows, mismatch)
		t.ApplyDerivations(rows[n+1:], group)
	}
	return rows
}

func sampleRow(t *rules.Table, i int) models.Row {
	row := models.Row{}
	for _, f := range t.Fields {
		switch {
		case f.Kind == rules.KindBool:
			row[f.Key] = true
		case len(f.Enum) > 0:
			row[f.Key] = f.Enum[0]
		case f.Reference != rules.RefNone:
			if v := sampleReference[f.Reference]; v != "" {
				row[f.Key] = v
			}
		case f.Kind == rules.KindNumber:
			row[f.Key] = float64(10 * i)
		default:
			row[f.Key] = fmt.Sprintf("%s %d", f.Column, i)
		}
	}
	return row
}

// sampleReference are the reference values used by generated rows.
var sampleReference = map[rules.Reference]string{
	rules.RefUnit:    "KG",
	rules.RefHSN:     "Paper 18%",
	rules.RefCountry: "India",
	rules.RefState:   "Gujarat",
}

func isKeyField(t *rules.Table, key string) bool {
	for _, k := range t.NaturalKey {
		if k == key {
			return true
		}
	}
	return false
}
