package data

import (
	"os"
	"testing"

	tcommon "github.com/bobmcallan/advisor/tests/common"
)

func TestMain(m *testing.M) {
	code := m.Run()
	tcommon.CleanupSurrealDB()
	os.Exit(code)
}
