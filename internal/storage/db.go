package storage

import (
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// New initializes the database connection and performs migrations. The
// open is retried so the service survives the database coming up after
// it does.
func New(dsn string) (*gorm.DB, error) {
	var db *gorm.DB
	err := retry.Do(
		func() error {
			var err error
			db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
			return err
		},
		retry.Attempts(5),
		retry.Delay(time.Second),
		retry.OnRetry(func(n uint, err error) {
			log.Warn().Uint("attempt", n+1).Err(err).Msg("database connect failed, retrying")
		}),
	)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Player{}, &Invitation{}, &Game{}, &TurnRecord{}); err != nil {
		return nil, err
	}
	return db, nil
}
