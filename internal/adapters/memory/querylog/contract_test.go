package querylog

import (
	"testing"

	"github.com/district-compass/school-search-api/internal/adapters/contracttest"
	querylogport "github.com/district-compass/school-search-api/internal/ports/out/querylog"
)

func TestContract_MemoryQueryLogStore(t *testing.T) {
	contracttest.RunQueryLogStore(t, func(t *testing.T) (querylogport.Store, func()) {
		t.Helper()
		return NewStore(), nil
	})
}
