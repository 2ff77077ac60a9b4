package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// deviceRecord is the GORM model for the devices table.
// Column names and constraints mirror the SQLite schema in migrations/.
// Length limits live in validation only, so every string column is text.
//
// Status is a pointer so an explicit "" is written as given; a nil status
// takes the column default. created_at is assigned by the database.
type deviceRecord struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	DeviceID  string    `gorm:"column:device_id;type:text;not null;uniqueIndex"`
	Name      string    `gorm:"column:name;type:text;not null"`
	Type      *string   `gorm:"column:type;type:text"`
	IPAddress *string   `gorm:"column:ip_address;type:text"`
	Location  *string   `gorm:"column:location;type:text"`
	Status    *string   `gorm:"column:status;type:text;not null;default:active"`
	CreatedAt time.Time `gorm:"column:created_at;not null;index;autoCreateTime:false;default:CURRENT_TIMESTAMP"`
}

// TableName pins the table name regardless of GORM naming strategy.
func (deviceRecord) TableName() string {
	return "devices"
}

func (rec *deviceRecord) toDevice() *Device {
	status := StatusActive
	if rec.Status != nil {
		status = *rec.Status
	}

	return &Device{
		ID:        rec.ID,
		DeviceID:  rec.DeviceID,
		Name:      rec.Name,
		Type:      rec.Type,
		IPAddress: rec.IPAddress,
		Location:  rec.Location,
		Status:    status,
		CreatedAt: rec.CreatedAt.UTC(),
	}
}

// GormRepository implements Repository on top of GORM. It is used with the
// PostgreSQL driver in server deployments.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a GORM-backed repository.
//
// The handle should be opened with TranslateError enabled so duplicate keys
// surface as gorm.ErrDuplicatedKey (database.OpenPostgres does this).
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Migrate creates the devices table and its indexes if they are absent.
func (r *GormRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&deviceRecord{}); err != nil {
		return fmt.Errorf("migrating devices table: %w", err)
	}
	return nil
}

// Create inserts a device and re-reads it inside one transaction.
// The status is stored verbatim; id and created_at come from the database.
func (r *GormRepository) Create(ctx context.Context, device *Device) (*Device, error) {
	status := device.Status
	rec := deviceRecord{
		DeviceID:  device.DeviceID,
		Name:      device.Name,
		Type:      device.Type,
		IPAddress: device.IPAddress,
		Location:  device.Location,
		Status:    &status,
	}

	var stored deviceRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Only the id is returned; the full row is re-read below.
		err := tx.Clauses(clause.Returning{Columns: []clause.Column{{Name: "id"}}}).Create(&rec).Error
		if err != nil {
			return err //nolint:wrapcheck // classified below
		}
		return tx.First(&stored, rec.ID).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueConstraintError(err) {
			return nil, ErrDeviceExists
		}
		return nil, fmt.Errorf("inserting device: %w", err)
	}

	return stored.toDevice(), nil
}

// GetByDeviceID retrieves a device by its business key.
func (r *GormRepository) GetByDeviceID(ctx context.Context, deviceID string) (*Device, error) {
	var rec deviceRecord
	err := r.db.WithContext(ctx).Where("device_id = ?", deviceID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device: %w", err)
	}
	return rec.toDevice(), nil
}

// List retrieves all devices ordered by created_at descending.
func (r *GormRepository) List(ctx context.Context) ([]Device, error) {
	var recs []deviceRecord
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}

	devices := make([]Device, 0, len(recs))
	for i := range recs {
		devices = append(devices, *recs[i].toDevice())
	}
	return devices, nil
}

// DeleteByDeviceID removes a device in a transaction.
func (r *GormRepository) DeleteByDeviceID(ctx context.Context, deviceID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("device_id = ?", deviceID).Delete(&deviceRecord{})
		if res.Error != nil {
			return fmt.Errorf("deleting device: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrDeviceNotFound
		}
		return nil
	})
}

// Ping verifies the underlying connection pool is usable.
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("getting connection pool: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
