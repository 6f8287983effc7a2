package repository

import (
	"context"
	"database/sql"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/spatial"
)

// runningCatalogRepository implements RunningCatalogRepository.
type runningCatalogRepository struct {
	db       *gorm.DB
	lockRows bool
}

// NewRunningCatalogRepository creates a new RunningCatalogRepository.
// Parameters:
//   - db: GORM database connection, normally a transaction
//   - lockRows: true to read rows with SELECT ... FOR UPDATE (MySQL)
func NewRunningCatalogRepository(db *gorm.DB, lockRows bool) RunningCatalogRepository {
	return &runningCatalogRepository{db: db, lockRows: lockRows}
}

func (r *runningCatalogRepository) tableName() string {
	return tableRunningCatalog
}

func (r *runningCatalogRepository) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx).Table(r.tableName())
	if r.lockRows {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *runningCatalogRepository) Create(ctx context.Context, rc *entities.RunningCatalog) error {
	return r.db.WithContext(ctx).Table(r.tableName()).Create(rc).Error
}

func (r *runningCatalogRepository) GetByID(ctx context.Context, id int64) (*entities.RunningCatalog, error) {
	var rc entities.RunningCatalog
	err := r.query(ctx).Where("id = ?", id).First(&rc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunningCatalogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

func (r *runningCatalogRepository) Update(ctx context.Context, rc *entities.RunningCatalog) error {
	result := r.db.WithContext(ctx).Table(r.tableName()).
		Where("id = ?", rc.ID).
		Select("*").
		Omit("id").
		Updates(rc)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRunningCatalogNotFound
	}
	return nil
}

func (r *runningCatalogRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Table(r.tableName()).
		Where("id = ?", id).
		Delete(&entities.RunningCatalog{}).Error
}

func (r *runningCatalogRepository) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []int64
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("id IN ?", ids).
		Order("id").
		Pluck("id", &found).Error
	return found, err
}

func (r *runningCatalogRepository) MaxUncertainty(ctx context.Context, datasetID int64) (float64, error) {
	var maxEW, maxNS sql.NullFloat64
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Select("MAX(wm_uncertainty_ew), MAX(wm_uncertainty_ns)").
		Where("dataset = ?", datasetID).
		Row().Scan(&maxEW, &maxNS)
	if err != nil {
		return 0, err
	}
	return max(maxEW.Float64, maxNS.Float64), nil
}

func (r *runningCatalogRepository) Index(datasetID int64) spatial.Index {
	return &runningCatalogIndex{db: r.db, dataset: datasetID}
}

// runningCatalogIndex answers spatial candidate queries from the
// runningcatalog table: zone IN, declination BETWEEN and one or two RA
// intervals. Rows are filtered again with the same box in Go so the result
// matches the in-memory index exactly.
type runningCatalogIndex struct {
	db      *gorm.DB
	dataset int64
}

func (i *runningCatalogIndex) Candidates(ctx context.Context, p spatial.Point, radius float64) ([]spatial.Entry, error) {
	box := spatial.NewBox(p, radius)

	q := i.db.WithContext(ctx).Table(tableRunningCatalog).
		Where("dataset = ?", i.dataset).
		Where("zone IN ?", box.Zones).
		Where("wm_decl BETWEEN ? AND ?", box.MinDec, box.MaxDec)

	if !box.FullCircle() {
		ranges := box.RARanges()
		conds := make([]string, 0, len(ranges))
		args := make([]any, 0, 2*len(ranges))
		for _, rr := range ranges {
			conds = append(conds, "wm_ra BETWEEN ? AND ?")
			args = append(args, rr.Min, rr.Max)
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	var rows []entities.RunningCatalog
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]spatial.Entry, 0, len(rows))
	for idx := range rows {
		rc := &rows[idx]
		if !box.Contains(rc.WmRA, rc.WmDecl) {
			continue
		}
		entries = append(entries, spatial.Entry{
			ID:            rc.ID,
			RA:            rc.WmRA,
			Dec:           rc.WmDecl,
			UncertaintyEW: rc.WmUncertaintyEW,
			UncertaintyNS: rc.WmUncertaintyNS,
		})
	}
	return entries, nil
}
