package storage

import (
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Durai69/LLS-Survey/storage/model"
)

// Storage is a GORM-based storage implementation
type Storage struct {
	db         *gorm.DB
	userParams Argon2idParams
}

var models = []any{
	&model.Department{},
	&model.PermissionEdge{},
	&model.MatrixRevision{},
	&model.Survey{},
	&model.Question{},
	&model.QuestionOption{},
	&model.SurveySubmission{},
	&model.SurveyAnswer{},
	&model.RemarkResponse{},
	&model.KeyValue{},
	&model.User{},
}

// NewStorage creates a new GORM-based storage
func NewStorage(config Config) (*Storage, error) {
	db, err := Connect(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err = db.AutoMigrate(models...); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	// The matrix revision row must exist before the first save
	if err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(
		&model.MatrixRevision{ID: model.MatrixRevisionID},
	).Error; err != nil {
		return nil, errors.Wrap(err, "failed to initialize matrix revision")
	}

	params := config.UsersHash
	if params.Time == 0 {
		params = defaultArgon2idParams()
	}

	return &Storage{
		db:         db,
		userParams: params,
	}, nil
}

// Backends returns all storages of this warehouse grouped as model.Backends
func (s *Storage) Backends() model.Backends {
	return model.Backends{
		Departments: s.DepartmentsStorage(),
		Permissions: s.PermissionsStorage(),
		Surveys:     s.SurveysStorage(),
		Submissions: s.SubmissionsStorage(),
		Remarks:     s.RemarksStorage(),
		Reports:     s.ReportsStorage(),
		Users:       s.UsersStorage(),
		KV:          s.KeyValue(),
	}
}

// DB returns the underlying gorm.DB
func (s *Storage) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying database connection
func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueConstraintError performs a cheap check across supported drivers.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	// sqlite | mysql | postgres common markers
	return containsAny(msg, "UNIQUE constraint failed") ||
		containsAny(msg, "Duplicate entry", "Error 1062") ||
		containsAny(msg, "duplicate key value", "violates unique constraint")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
