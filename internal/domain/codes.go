package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// Public code formats follow the original front-desk conventions:
// date-scoped running numbers for operational records, a salted running
// number for cats so codes are not guessable from volume.

func FormatPackageCode(day time.Time, seq int) string {
	return fmt.Sprintf("PKG-%s-%04d", day.Format("060102"), seq)
}

func FormatPendingBookingCode(day time.Time, seq int) string {
	return fmt.Sprintf("PB-%s-%04d", day.Format("060102"), seq)
}

func FormatComboCode(day time.Time, seq int) string {
	return fmt.Sprintf("COMBO-%s-%04d", day.Format("060102"), seq)
}

func FormatTaskCode(day time.Time, seq int) string {
	return fmt.Sprintf("TSK-%s-%04d", day.Format("060102"), seq)
}

func FormatPointRequestCode(day time.Time, seq int) string {
	return fmt.Sprintf("PR-%s-%04d", day.Format("060102"), seq)
}

func FormatCustomerCode(seq int) string {
	return fmt.Sprintf("CUST%04d", seq)
}

// FormatCatCode builds CAT<rrr><nnn><rrr>: a zero-padded running number
// wrapped in two random 3-digit groups.
func FormatCatCode(seq int) string {
	return fmt.Sprintf("CAT%03d%03d%03d", 100+rand.Intn(900), seq%1000, 100+rand.Intn(900))
}
