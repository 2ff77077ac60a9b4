// Package device provides the device registry: the Device entity, its
// create-input validation, and persistence over a relational store.
//
// # Architecture
//
//	┌──────────────────┐    ┌──────────────────────────┐    ┌──────────────────┐
//	│     Registry     │    │        Repository        │    │    Validation    │
//	│  (registry.go)   │───▶│ SQLiteRepository         │    │ (validation.go)  │
//	│                  │    │   (repository.go)        │    │                  │
//	│ • validate       │    │ GormRepository           │    │ • validator tags │
//	│ • conflict check │    │   (gorm_repository.go)   │    │ • field errors   │
//	│ • event publish  │    └──────────────────────────┘    └──────────────────┘
//	└──────────────────┘
//
// The business key is device_id. Uniqueness is checked by the Registry
// before insert and enforced again by a UNIQUE constraint in the store, so
// a concurrent duplicate still surfaces as ErrDeviceExists.
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db.DB)
//	registry := device.NewRegistry(repo)
//	registry.SetLogger(log)
//
//	dev, err := registry.CreateDevice(ctx, device.CreateInput{
//	    DeviceID: "dev-1",
//	    Name:     "Sensor",
//	})
//	if errors.Is(err, device.ErrDeviceExists) {
//	    // 409
//	}
package device
