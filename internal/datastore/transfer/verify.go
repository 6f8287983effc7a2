package transfer

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
)

// DefaultSampleSize is the number of running catalog rows compared field by
// field when Verify is given a zero sample size.
const DefaultSampleSize = 20

// Mismatch describes one difference between source and target.
type Mismatch struct {
	Table  string `yaml:"table"`
	ID     int64  `yaml:"id,omitempty"`
	Detail string `yaml:"detail"`
}

func (m Mismatch) String() string {
	if m.ID == 0 {
		return fmt.Sprintf("%s: %s", m.Table, m.Detail)
	}
	return fmt.Sprintf("%s %d: %s", m.Table, m.ID, m.Detail)
}

// Verify compares row counts of every catalog table and then samples the
// running catalog, the table most sensitive to float truncation between
// backends. An empty result means the copy is faithful.
func Verify(ctx context.Context, source, target datastore.Manager, sample int) ([]Mismatch, error) {
	if sample <= 0 {
		sample = DefaultSampleSize
	}
	src := source.DB().WithContext(ctx)
	dst := target.DB().WithContext(ctx)

	var out []Mismatch
	for _, model := range entities.All() {
		stmt := &gorm.Statement{DB: src}
		if err := stmt.Parse(model); err != nil {
			return nil, verifyError(err, "parse")
		}

		var srcCount, dstCount int64
		if err := src.Model(model).Count(&srcCount).Error; err != nil {
			return nil, verifyError(err, stmt.Table)
		}
		if err := dst.Model(model).Count(&dstCount).Error; err != nil {
			return nil, verifyError(err, stmt.Table)
		}
		if srcCount != dstCount {
			out = append(out, Mismatch{
				Table:  stmt.Table,
				Detail: fmt.Sprintf("source has %d rows, target %d", srcCount, dstCount),
			})
		}
	}

	sampled, err := sampleRunningCatalog(src, dst, sample)
	if err != nil {
		return nil, verifyError(err, "runningcatalog")
	}
	return append(out, sampled...), nil
}

// sampleRunningCatalog spreads the sample evenly over the id range.
func sampleRunningCatalog(src, dst *gorm.DB, sample int) ([]Mismatch, error) {
	var total int64
	if err := src.Model(&entities.RunningCatalog{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}
	step := max(int(total)/sample, 1)

	var ids []int64
	if err := src.Model(&entities.RunningCatalog{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	var out []Mismatch
	for i := 0; i < len(ids) && i/step < sample; i += step {
		var a, b entities.RunningCatalog
		if err := src.First(&a, ids[i]).Error; err != nil {
			return nil, err
		}
		if err := dst.Limit(1).Find(&b, ids[i]).Error; err != nil {
			return nil, err
		}
		if b.ID == 0 {
			out = append(out, Mismatch{Table: "runningcatalog", ID: a.ID, Detail: "missing in target"})
			continue
		}
		if d := diffRunningCatalog(&a, &b); d != "" {
			out = append(out, Mismatch{Table: "runningcatalog", ID: a.ID, Detail: d})
		}
	}
	return out, nil
}

func diffRunningCatalog(a, b *entities.RunningCatalog) string {
	switch {
	case a.Xtrsrc != b.Xtrsrc:
		return fmt.Sprintf("xtrsrc %d vs %d", a.Xtrsrc, b.Xtrsrc)
	case a.Datapoints != b.Datapoints:
		return fmt.Sprintf("datapoints %d vs %d", a.Datapoints, b.Datapoints)
	case a.WmRA != b.WmRA:
		return fmt.Sprintf("wm_ra %v vs %v", a.WmRA, b.WmRA)
	case a.WmDecl != b.WmDecl:
		return fmt.Sprintf("wm_decl %v vs %v", a.WmDecl, b.WmDecl)
	case a.MonSrc != b.MonSrc:
		return fmt.Sprintf("mon_src %t vs %t", a.MonSrc, b.MonSrc)
	}
	return ""
}

func verifyError(err error, table string) error {
	return errors.New(err).
		Component("transfer").
		Category(errors.CategoryDatabase).
		Context("operation", "verify").
		Context("table", table).
		Build()
}
