package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/errors"
)

// frequencyBandRepository implements FrequencyBandRepository.
type frequencyBandRepository struct {
	db *gorm.DB
}

// NewFrequencyBandRepository creates a new FrequencyBandRepository.
func NewFrequencyBandRepository(db *gorm.DB) FrequencyBandRepository {
	return &frequencyBandRepository{db: db}
}

func (r *frequencyBandRepository) tableName() string {
	return tableFrequencyBand
}

func (r *frequencyBandRepository) FindContaining(ctx context.Context, freq float64) (*entities.FrequencyBand, error) {
	var band entities.FrequencyBand
	err := r.db.WithContext(ctx).Table(r.tableName()).
		Where("freq_low <= ? AND freq_high >= ?", freq, freq).
		Order("id").
		First(&band).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFrequencyBandNotFound
	}
	if err != nil {
		return nil, err
	}
	return &band, nil
}

func (r *frequencyBandRepository) GetOrCreate(ctx context.Context, freqEff, bandwidth float64) (*entities.FrequencyBand, error) {
	band, err := r.FindContaining(ctx, freqEff)
	if err == nil {
		return band, nil
	}
	if !errors.Is(err, ErrFrequencyBandNotFound) {
		return nil, err
	}

	half := bandwidth / 2
	band = &entities.FrequencyBand{
		FreqCentral: freqEff,
		FreqLow:     freqEff - half,
		FreqHigh:    freqEff + half,
	}
	if err := r.db.WithContext(ctx).Table(r.tableName()).Create(band).Error; err != nil {
		return nil, err
	}
	return band, nil
}
