package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/lostfound/internal/db"
	"github.com/vbonduro/lostfound/internal/store"
	"github.com/vbonduro/lostfound/internal/store/storetest"
)

func TestContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Repository {
		d, err := db.OpenForTesting()
		require.NoError(t, err)
		s := New(d)
		t.Cleanup(func() { assert.NoError(t, s.Close()) })
		return s
	})
}
