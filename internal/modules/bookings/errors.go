package bookings

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrTokenMismatch     = errors.New("review token mismatch")
)

// IsDuplicateKey reports whether err is a unique-index violation. The
// composite (order, listing) indexes fire when two deliveries race past the
// dedup probe at the same time.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
